package cmd

import (
	"context"

	"github.com/dshills/codelibrarian/internal/searcher"
	"github.com/dshills/codelibrarian/pkg/types"
)

var calleesCmd = newEdgeCmd("callees [qualified-name]", "List direct callees of a symbol",
	func(ctx context.Context, engine *searcher.Engine, name string, depth int) ([]*types.SymbolRecord, error) {
		return engine.GetCallees(ctx, name, depth)
	})

func init() {
	calleesCmd.Flags().IntVar(&edgeDepth, "depth", 1, "call-graph hops to traverse")
	rootCmd.AddCommand(calleesCmd)
}
