package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/vault"
	"github.com/sgx-labs/zettel/internal/watcher"
	"github.com/sgx-labs/zettel/internal/web"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Browse the vault in a local read-only web view",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, _, err := e.index(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if watch {
				go func() {
					err := watcher.Watch(ctx, e.loader, watcher.Options{Logger: e.log},
						func(notes []note.Note, _ vault.Stats) {
							if err := db.ReplaceNotes(notes); err != nil {
								e.log.Warn("reindex failed", zap.Error(err))
							}
						})
					if err != nil {
						e.log.Warn("watcher stopped", zap.Error(err))
					}
				}()
			}

			fmt.Fprintf(os.Stderr, "zettel web view: http://%s\n", addr)
			return web.New(db, Version, e.loader.Root(), e.log).Serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4078", "Listen address (loopback only)")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reindex when files in the vault change")
	return cmd
}
