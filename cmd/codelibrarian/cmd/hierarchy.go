package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/searcher"
	"github.com/dshills/codelibrarian/internal/storage"
)

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy [class-name]",
	Short: "Show a class's ancestors and descendants",
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

		h, err := engine.GetClassHierarchy(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("hierarchy: %w", err)
		}
		if h == nil {
			fmt.Println("class not found")
			return nil
		}

		fmt.Println("Ancestors:")
		for _, a := range h.Ancestors {
			fmt.Printf("  %s\n", a.QualifiedName)
		}
		fmt.Println("Descendants:")
		for _, d := range h.Descendants {
			fmt.Printf("  %s\n", d.QualifiedName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
}
