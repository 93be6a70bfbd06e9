package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/zettel/internal/cli"
)

func scanCmd(g *globalFlags) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Parse every note in the vault and report what was skipped",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			_, stats, err := e.load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				data, _ := json.MarshalIndent(stats, "", "  ")
				fmt.Fprintln(out, string(data))
				return nil
			}

			cli.Header(out, "Vault scan")
			cli.Box(out, []string{
				"root:    " + cli.ShortenHome(e.loader.Root()),
				"files:   " + cli.FormatNumber(stats.Total),
				"parsed:  " + cli.FormatNumber(stats.Parsed),
				"skipped: " + cli.FormatNumber(stats.Skipped),
			})
			if stats.Skipped > 0 {
				cli.Section(out, "Skipped")
				cli.Counts(out, stats.ByClass)
				if !g.verbose {
					fmt.Fprintf(out, "\n  %sRun with --verbose to list each skipped file.%s\n", cli.Dim, cli.Reset)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
