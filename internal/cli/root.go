// Package cli wires the sqlstash commands: the cached query path and the
// maintenance operations over the local result store.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sqlstash/sqlstash/internal/cache"
	"github.com/sqlstash/sqlstash/internal/config"
	"github.com/sqlstash/sqlstash/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Set once in PersistentPreRun

// NewRootCmd creates the root Cobra command for the sqlstash CLI.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sqlstash",
		Short:   "Local result cache for warehouse queries",
		Long:    "sqlstash runs SQL against a remote warehouse and caches the tabular results on local disk, keyed by a fingerprint of the query text.",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.InfoLevel
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				level = zerolog.DebugLevel
			}
			logger = logging.New(level)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file (default ~/.sqlstash/config.yaml)")
	cmd.PersistentFlags().String("cache-dir", "", "cache directory (overrides config)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.AddCommand(newQueryCmd(), newListCmd(), newSchemaCmd(), newInspectCmd(), newClearCmd())

	return cmd
}

const rootCmdExample = `  # Run a query, serving a cached result if one is fresh enough
  sqlstash query "SELECT region, sum(volume) FROM trades GROUP BY region"

  # Force re-execution and overwrite the cached entry
  sqlstash query --refresh "SELECT * FROM curves LIMIT 100"

  # List cached entries with sizes and ages
  sqlstash list

  # Show column schemas without loading row data
  sqlstash schema

  # Inspect one entry with a sample of rows
  sqlstash inspect e004ebd5b553

  # Delete entries older than two days
  sqlstash clear --older-than 2d`

// loadConfig resolves the configuration for a command invocation:
// flags override environment, which overrides the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		cfg.CacheDir = dir
	}
	return cfg, nil
}

// openStore resolves the configuration and opens the cache store.
func openStore(cmd *cobra.Command) (*cache.FileStore, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := cache.NewFileStore(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// resolveFingerprint expands a full fingerprint or a unique prefix (git
// style) to the stored entry it names.
func resolveFingerprint(store *cache.FileStore, arg string) (string, error) {
	if store.Exists(arg) {
		return arg, nil
	}

	entries, err := store.List()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, e := range entries {
		if len(arg) >= 4 && len(arg) < len(e.Fingerprint) && e.Fingerprint[:len(arg)] == arg {
			matches = append(matches, e.Fingerprint)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no cache entry matches %q", arg)
	default:
		return "", fmt.Errorf("fingerprint prefix %q is ambiguous (%d matches)", arg, len(matches))
	}
}
