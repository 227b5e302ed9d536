package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/searcher"
	"github.com/dshills/codelibrarian/internal/storage"
	"github.com/dshills/codelibrarian/pkg/types"
)

var edgeDepth int

// newEdgeCmd builds a callers/callees-style command: open the store,
// resolve the symbol via the given lookup, print each hit's location.
func newEdgeCmd(use, short string, lookup func(ctx context.Context, engine *searcher.Engine, name string, depth int) ([]*types.SymbolRecord, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
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

			symbols, err := lookup(cmd.Context(), engine, args[0], edgeDepth)
			if err != nil {
				return err
			}
			if len(symbols) == 0 {
				fmt.Println("none")
				return nil
			}
			for _, s := range symbols {
				fmt.Printf("%s\n    %s:%d\n", s.QualifiedName, s.RelativePath, s.LineStart)
			}
			return nil
		},
	}
}

var callersCmd = newEdgeCmd("callers [qualified-name]", "List direct callers of a symbol",
	func(ctx context.Context, engine *searcher.Engine, name string, depth int) ([]*types.SymbolRecord, error) {
		return engine.GetCallers(ctx, name, depth)
	})

func init() {
	callersCmd.Flags().IntVar(&edgeDepth, "depth", 1, "call-graph hops to traverse")
	rootCmd.AddCommand(callersCmd)
}
