package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/indexer"
	"github.com/dshills/codelibrarian/internal/storage"
)

var indexMode string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index (or re-index) the configured project root",
	Long: `Discover source files under the configured index root, parse them
into symbols and edges, and write the result to the project's SQLite
index. Incremental mode (the default) skips files whose content hash
hasn't changed since the last run.`,
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

		idx := indexer.New(store, embed, cfg)
		stats, err := idx.Run(cmd.Context(), indexer.Mode(indexMode))
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}

		fmt.Printf("Indexed %s\n", cfg.IndexRoot())
		fmt.Printf("  Files:    %d indexed, %d skipped, %d failed, %d deleted\n", stats.FilesIndexed, stats.FilesSkipped, stats.FilesFailed, stats.FilesDeleted)
		fmt.Printf("  Symbols:  %d\n", stats.SymbolsExtracted)
		fmt.Printf("  Edges:    %d imports, %d calls, %d inherits\n", stats.ImportEdges, stats.CallEdges, stats.InheritEdges)
		fmt.Printf("  Embedded: %d symbols\n", stats.EmbeddedSymbols)
		fmt.Printf("  Duration: %s\n", stats.Duration.Round(time.Millisecond))
		for _, e := range stats.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexMode, "mode", "incremental", "indexing mode: incremental, full, or reembed")
	rootCmd.AddCommand(indexCmd)
}
