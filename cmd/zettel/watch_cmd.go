package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/zettel/internal/cli"
	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/vault"
	"github.com/sgx-labs/zettel/internal/watcher"
)

func watchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-scan the vault whenever a file in it changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, stats, err := e.load(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(os.Stderr, "Watching %s\n", cli.ShortenHome(e.loader.Root()))
			fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop.\n\n")
			reportReload(out, stats)

			return watcher.Watch(ctx, e.loader, watcher.Options{Logger: e.log},
				func(_ []note.Note, stats vault.Stats) { reportReload(out, stats) })
		},
	}
}

func reportReload(w io.Writer, stats vault.Stats) {
	fmt.Fprintf(w, "  %s%s%s  %s notes parsed, %s skipped\n",
		cli.Dim, stats.Timestamp, cli.Reset,
		cli.FormatNumber(stats.Parsed), cli.FormatNumber(stats.Skipped))
}
