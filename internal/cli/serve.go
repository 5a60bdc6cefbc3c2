package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gatzby-git/shuowenjiezi/internal/web"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, localhost:8080)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	a := mustOpenApp()
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &web.Server{
		Knowledge: a.knowledge,
		Profiles:  a.profiles,
		Addr:      addr,
	}
	if err := srv.ListenAndServe(ctx); err != nil {
		exitErr("serve", err)
	}
}
