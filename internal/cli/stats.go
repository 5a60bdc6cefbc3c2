package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	emit(stats, func(w io.Writer) {
		fmt.Fprintf(w, "database: %s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
		fmt.Fprintf(w, "storage:  %s of %s\n", humanize.Bytes(uint64(stats.UsedBytes)), humanize.Bytes(uint64(stats.QuotaBytes)))
		for _, it := range stats.Items {
			fmt.Fprintf(w, "  %-20s %s\n", it.Key, humanize.Bytes(uint64(it.Bytes)))
		}
		fmt.Fprintf(w, "characters: %s, pathways: %d\n", humanize.Comma(int64(stats.Characters)), stats.Pathways)
	})
}
