package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/searcher"
	"github.com/dshills/codelibrarian/internal/storage"
)

var importsCmd = &cobra.Command{
	Use:   "imports [file-path]",
	Short: "Show what modules a file imports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := Config()
		store, err := storage.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		var embed *embedder.Client
		if cfg.Embeddings.Enabled {
			embed = embedder.NewClient(cfg.Embeddings, embedder.NewCache(0))
		}
		engine := searcher.New(store, embed, nil, 0)

		imports, err := engine.GetFileImports(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("imports: %w", err)
		}
		if len(imports) == 0 {
			fmt.Println("no imports")
			return nil
		}
		for _, imp := range imports {
			resolved := "unresolved"
			if imp.ResolvedFileID != nil {
				resolved = "resolved"
			}
			fmt.Printf("%-40s %s\n", imp.ToModule, resolved)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importsCmd)
}
