package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/zettel/internal/cli"
	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/store"
)

func listCmd(g *globalFlags) *cobra.Command {
	var (
		scope   string
		kind    string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List parsed notes in listing order",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := store.Filter{Scope: scope}
			if kind != "" {
				k, err := note.ParseKind(kind)
				if err != nil {
					return userError(err.Error(), "Use --kind main or --kind source")
				}
				f.Kind = &k
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

			notes, err := db.ListNotes(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				if notes == nil {
					notes = []note.Note{}
				}
				data, _ := json.MarshalIndent(notes, "", "  ")
				fmt.Fprintln(out, string(data))
				return nil
			}
			if len(notes) == 0 {
				fmt.Fprintln(out, "No notes found.")
				return nil
			}
			for _, n := range notes {
				cli.NoteRow(out, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "Only notes with this scope")
	cmd.Flags().StringVar(&kind, "kind", "", "Only notes of this type (main or source)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
