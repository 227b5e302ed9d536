package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/config"
	"github.com/dshills/codelibrarian/internal/storage"
)

var initPath string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .codelibrarian/ in a project root",
	Long: `Create the .codelibrarian/ directory and its config.toml (if one
doesn't already exist), then open the SQLite index so its schema is in
place. Run this once before "codelibrarian index".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(initPath)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		configDir := filepath.Join(root, ".codelibrarian")

		if _, err := os.Stat(configDir); err == nil {
			fmt.Printf("Already initialized at %s\n", configDir)
		} else {
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", configDir, err)
			}
			fmt.Printf("Created %s\n", configDir)
		}

		configFile := filepath.Join(configDir, "config.toml")
		if _, err := os.Stat(configFile); err == nil {
			fmt.Printf("Config already exists: %s\n", configFile)
		} else {
			if err := os.WriteFile(configFile, []byte(config.DefaultConfigTOML), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", configFile, err)
			}
			fmt.Printf("Created %s\n", configFile)
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		store, err := storage.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}
		defer store.Close()

		fmt.Printf("Initialized database at %s\n", cfg.DatabasePath())
		fmt.Println(`Done. Run "codelibrarian index" to index the codebase.`)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initPath, "path", ".", "project root directory")
	rootCmd.AddCommand(initCmd)
}
