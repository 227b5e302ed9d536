package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report index size and health",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := Config()
		store, err := storage.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		fmt.Printf("Root:     %s\n", cfg.IndexRoot())
		fmt.Printf("Database: %s\n", cfg.DatabasePath())
		fmt.Printf("Files:    %d\n", stats.Files)
		fmt.Printf("Symbols:  %d\n", stats.Symbols)
		fmt.Printf("Imports:  %d\n", stats.Imports)
		fmt.Printf("Calls:    %d\n", stats.Calls)
		fmt.Printf("Inherits: %d\n", stats.Inherits)
		fmt.Printf("Embedded: %d\n", stats.Embedded)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
