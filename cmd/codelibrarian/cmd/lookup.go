package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/searcher"
	"github.com/dshills/codelibrarian/internal/storage"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [name]",
	Short: "Look up a symbol by exact name or qualified name",
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

		symbols, err := engine.LookupSymbol(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("lookup: %w", err)
		}
		if len(symbols) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, s := range symbols {
			fmt.Printf("%s  %s\n    %s:%d-%d\n    %s\n", s.Kind, s.QualifiedName, s.RelativePath, s.LineStart, s.LineEnd, s.Signature)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
