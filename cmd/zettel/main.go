// Package main is the entrypoint for the zettel CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sgx-labs/zettel/internal/config"
	"github.com/sgx-labs/zettel/internal/logger"
	"github.com/sgx-labs/zettel/internal/note"
	"github.com/sgx-labs/zettel/internal/store"
	"github.com/sgx-labs/zettel/internal/vault"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	rootDir    string
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "zettel",
		Short:         "Read a flat directory of zettelkasten notes",
		Long:          "zettel parses a flat directory of markdown notes with YAML front matter and rewrites [[wiki-links]] as markdown links.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(scanCmd(g))
	root.AddCommand(findCmd(g))
	root.AddCommand(showCmd(g))
	root.AddCommand(listCmd(g))
	root.AddCommand(linksCmd(g))
	root.AddCommand(searchCmd(g))
	root.AddCommand(watchCmd(g))
	root.AddCommand(mcpCmd(g))
	root.AddCommand(serveCmd(g))
	root.AddCommand(configCmd(g))
	root.AddCommand(versionCmd())

	root.PersistentFlags().StringVar(&g.rootDir, "root", "", "Vault directory (overrides config and ZETTEL_ROOT_DIR)")
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config.toml")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log skipped files and other diagnostics to stderr")

	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the zettel version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "zettel %s\n", Version)
			return nil
		},
	}
}

// env is what a subcommand needs to read the vault.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	loader *vault.Loader
}

func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Overrides{
		ConfigPath: g.configPath,
		RootDir:    g.rootDir,
		Verbose:    g.verbose,
	})
	if err != nil {
		return nil, userError(fmt.Sprintf("Cannot load configuration: %v", err),
			"Check the file given by --config or ZETTEL_CONFIG")
	}
	return cfg, nil
}

func (g *globalFlags) setup() (*env, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrNoRootDir) {
			return nil, userError("No vault directory configured",
				"Pass --root <dir>, set ZETTEL_ROOT_DIR, or add root_dir to .zettel/config.toml")
		}
		return nil, userError(err.Error(), "Point --root at the directory that holds your notes")
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, userError(err.Error(), "Use one of: debug, info, warn, error")
	}

	return &env{
		cfg:    cfg,
		log:    log,
		loader: vault.New(cfg.Vault.RootDir, vault.WithLogger(log)),
	}, nil
}

// load scans the vault, turning a listing failure into an actionable error.
func (e *env) load(ctx context.Context) ([]note.Note, vault.Stats, error) {
	notes, stats, err := e.loader.LoadWithStats(ctx)
	if errors.Is(err, vault.ErrListRoot) {
		return nil, stats, userError(fmt.Sprintf("Cannot read vault directory %s", e.loader.Root()),
			"Check that root_dir exists and is readable")
	}
	return notes, stats, err
}

// index scans the vault into a fresh in-memory index. The caller closes it.
func (e *env) index(ctx context.Context) (*store.DB, []note.Note, error) {
	notes, _, err := e.load(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := store.OpenMemory()
	if err != nil {
		return nil, nil, fmt.Errorf("open index: %w", err)
	}
	if err := db.ReplaceNotes(notes); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("index notes: %w", err)
	}
	return db, notes, nil
}

// notFound builds the error for a failed name lookup, with fuzzy suggestions.
func notFound(notes []note.Note, name string) error {
	if suggestions := note.Suggest(notes, name, 5); len(suggestions) > 0 {
		return userError(fmt.Sprintf("not found: %s", name),
			"Did you mean: "+strings.Join(suggestions, ", ")+"?")
	}
	return userError(fmt.Sprintf("not found: %s", name),
		"Run 'zettel list' to see the notes in the vault")
}

// ---------- error helpers ----------

type zettelError struct {
	message string
	hint    string
}

func (e *zettelError) Error() string {
	return fmt.Sprintf("%s\n  Hint: %s", e.message, e.hint)
}

func userError(message, hint string) error {
	return &zettelError{message: message, hint: hint}
}
