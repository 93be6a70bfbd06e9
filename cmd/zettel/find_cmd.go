package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgx-labs/zettel/internal/cli"
	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/render"
)

func findCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "find [name]",
		Short: "Look up a note by exact file name",
		Long:  "Look up a note by exact file name. Without an argument, the [vault] lookup name from the config is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			name := e.cfg.Vault.Lookup
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				return userError("No note name given",
					"Pass a file name, or set lookup under [vault] in .zettel/config.toml")
			}

			notes, _, err := e.load(cmd.Context())
			if err != nil {
				return err
			}
			n, ok := note.Find(notes, name)
			if !ok {
				return notFound(notes, name)
			}
			cli.NoteCard(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func showCmd(g *globalFlags) *cobra.Command {
	var html bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a note's normalized body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.setup()
			if err != nil {
				return err
			}
			notes, _, err := e.load(cmd.Context())
			if err != nil {
				return err
			}
			n, ok := note.Find(notes, args[0])
			if !ok {
				return notFound(notes, args[0])
			}

			body := n.Body
			if html {
				if body, err = render.HTML(n.Body); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), body)
			return nil
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "Render the body as HTML")
	return cmd
}
