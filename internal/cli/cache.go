package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the response cache",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show entries per bucket and cache size",
		Args:  cobra.NoArgs,
		Run:   runCacheStats,
	}

	clearCmd := &cobra.Command{
		Use:   "clear [bucket...]",
		Short: "Clear cache buckets (all when none given)",
		Long:  "Clear cache buckets: characters, recommendations, analyses, evolutions. All buckets are cleared when none are named.",
		Run:   runCacheClear,
	}

	cmd.AddCommand(stats, clearCmd)
	RootCmd.AddCommand(cmd)
}

func runCacheStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	st := newCache(s).Stats(cmd.Context())
	emit(st, func(w io.Writer) { fmt.Fprint(w, st.String()) })
}

func runCacheClear(cmd *cobra.Command, args []string) {
	var buckets []cache.Bucket
	for _, name := range args {
		b, err := cache.ParseBucket(name)
		if err != nil {
			exitErr("cache clear", err)
		}
		buckets = append(buckets, b)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c := newCache(s)
	c.Clear(cmd.Context(), buckets...)

	st := c.Stats(cmd.Context())
	emit(st, func(w io.Writer) { fmt.Fprint(w, st.String()) })
}
