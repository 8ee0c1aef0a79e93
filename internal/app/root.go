package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewcat/internal/brew"
	"github.com/blackwell-systems/brewcat/internal/config"
	"github.com/blackwell-systems/brewcat/internal/logging"
	"github.com/blackwell-systems/brewcat/internal/scanner"
	"github.com/blackwell-systems/brewcat/internal/store"
)

var (
	dbPath     string
	prefixFlag string
	strictFlag bool
	verbose    bool

	// cfg is loaded by the root command before any subcommand runs.
	cfg *config.Config

	// RootCmd is the root command for brewcat
	RootCmd = &cobra.Command{
		Use:   "brewcat",
		Short: "Catalog installed Homebrew formulae and casks",
		Long: `brewcat reads the Homebrew Cellar and Caskroom directly and keeps a
catalog of every installed formula and cask: its versions, install date,
size on disk, and whether it was installed on request or pulled in as a
dependency.

The catalog is all-or-nothing: if any package folder cannot be read or
its install receipt is corrupt, the scan fails and the previous catalog
is kept.

Quick Start:
  1. brewcat scan
  2. brewcat list --intentional
  3. brewcat watch --daemon  # keep the catalog current

Examples:
  # Scan with strict receipt checking
  brewcat scan --strict

  # List casks as JSON
  brewcat list --kind cask --format json

  # Show one package
  brewcat show wget`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: $XDG_DATA_HOME/brewcat/brewcat.db)")
	RootCmd.PersistentFlags().StringVar(&prefixFlag, "prefix", "", "Homebrew prefix (default: brew --prefix)")
	RootCmd.PersistentFlags().BoolVar(&strictFlag, "strict", false, "fail when a formula has no install receipt")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(searchCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(statusCmd)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logging.Close()
	return RootCmd.ExecuteContext(ctx)
}

// setup loads configuration, applies flag overrides and initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("prefix") {
		loaded.Prefix = prefixFlag
	}
	if flags.Changed("strict") {
		loaded.Strict = strictFlag
	}
	if flags.Changed("db") {
		loaded.DBPath = dbPath
	}
	if verbose {
		loaded.Log.Level = "debug"
	}
	cfg = loaded

	return logging.Init(logging.Config{Level: cfg.Log.Level})
}

// currentConfig returns the loaded config, or defaults when a command runs
// without the root pre-run (tests calling RunE directly).
func currentConfig() *config.Config {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			loaded = &config.Config{}
		}
		cfg = loaded
	}
	return cfg
}

// getDBPath returns the database path and makes sure its directory exists.
func getDBPath() (string, error) {
	path := currentConfig().DBPath
	if dbPath != "" {
		path = dbPath
	}
	if path == "" {
		return "", fmt.Errorf("no database path configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path, nil
}

// openStore opens the catalog database and creates the schema if needed.
func openStore() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, err
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.CreateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return db, nil
}

// resolvePrefix returns the Homebrew prefix to scan.
func resolvePrefix(ctx context.Context) (string, error) {
	return brew.ResolvePrefix(ctx, currentConfig().Prefix)
}

func scanOptions() scanner.Options {
	c := currentConfig()
	return scanner.Options{Strict: c.Strict, Workers: c.Workers}
}
