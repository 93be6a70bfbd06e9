package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/zettel/internal/cli"
	"github.com/sgx-labs/zettel/internal/store"
)

func searchCmd(g *globalFlags) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "search <terms...>",
		Short: "Keyword search over note names and bodies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			terms := store.ExtractSearchTerms(strings.Join(args, " "))
			if len(terms) == 0 {
				return userError("Query has no searchable terms",
					"Use words of at least two characters")
			}

			e, err := g.setup()
			if err != nil {
				return err
			}
			db, _, err := e.index(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			results, err := db.KeywordSearch(terms, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if results == nil {
					results = []store.SearchResult{}
				}
				data, _ := json.MarshalIndent(results, "", "  ")
				fmt.Fprintln(out, string(data))
				return nil
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found.")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "\n  %s%d. %s%s %s[%s, %s]%s\n", cli.Bold, i+1, r.Name, cli.Reset, cli.Dim, r.Kind, r.Scope, cli.Reset)
				if r.Snippet != "" {
					fmt.Fprintf(out, "     %s\n", strings.ReplaceAll(r.Snippet, "\n", "\n     "))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of results")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
