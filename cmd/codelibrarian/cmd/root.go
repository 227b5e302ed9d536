// Package cmd implements the codelibrarian CLI: the same query surface
// the MCP server exposes, reachable from a terminal for scripting and
// debugging without an MCP client in the loop.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "codelibrarian",
	Short: "A local, self-maintaining code index",
	Long: `codelibrarian parses a source tree into a SQLite index of symbols,
call edges, import edges, and class hierarchies, then answers structural
and semantic questions about it from the command line or over MCP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = slog.New(slog.NewTextHandler(os.Stderr, nil))

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromCWD()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.toml (default: search upward from cwd)")
}

// Config returns the config loaded by the currently running command.
func Config() *config.Config {
	return cfg
}

// Logger returns the process-wide structured logger.
func Logger() *slog.Logger {
	return log
}
