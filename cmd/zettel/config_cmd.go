package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/zettel/internal/config"
)

func configCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.Show(cfg))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the path to the config file for the vault",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Vault.RootDir == "" {
				return userError("No vault directory configured",
					"Pass --root <dir> or set ZETTEL_ROOT_DIR")
			}
			fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFilePath(cfg.Vault.RootDir))
			return nil
		},
	})

	return cmd
}
