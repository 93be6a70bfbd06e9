package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/zettel/internal/cli"
)

func linksCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "links <name>",
		Short: "Show a note's outgoing links and backlinks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			db, notes, err := e.index(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			name := args[0]
			n, ok, err := db.NoteByName(name)
			if err != nil {
				return err
			}
			if !ok {
				return notFound(notes, name)
			}
			back, err := db.Backlinks(name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cli.Section(out, "Outgoing")
			if len(n.Links) == 0 {
				fmt.Fprintf(out, "  %s(none)%s\n", cli.Dim, cli.Reset)
			}
			for _, l := range n.Links {
				if l.Label != "" {
					fmt.Fprintf(out, "  %s %s(%s)%s\n", l.Target, cli.Dim, l.Label, cli.Reset)
				} else {
					fmt.Fprintf(out, "  %s\n", l.Target)
				}
			}

			cli.Section(out, "Backlinks")
			if len(back) == 0 {
				fmt.Fprintf(out, "  %s(none)%s\n", cli.Dim, cli.Reset)
			}
			for _, b := range back {
				fmt.Fprintf(out, "  %s\n", b.From)
			}
			return nil
		},
	}
}
