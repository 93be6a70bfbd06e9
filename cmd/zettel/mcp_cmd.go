package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/sgx-labs/zettel/internal/mcp"
)

func mcpCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the AI tool integration server (MCP) on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			srv, err := mcpserver.NewServer(cmd.Context(), e.loader, mcpserver.Options{
				Version:        Version,
				ReloadCooldown: e.cfg.MCP.ReloadCooldown,
				Logger:         e.log,
			})
			if err != nil {
				return err
			}
			defer srv.Close()
			return srv.Serve(cmd.Context())
		},
	}
}
