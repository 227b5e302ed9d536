package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/embedder"
	"github.com/dshills/codelibrarian/internal/rewriter"
	"github.com/dshills/codelibrarian/internal/searcher"
	"github.com/dshills/codelibrarian/internal/storage"
)

var (
	searchLimit   int
	searchMode    string
	searchRewrite bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Hybrid semantic + full-text search over the index",
	Args:  cobra.MinimumNArgs(1),
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
		var rewrite *rewriter.Client
		if cfg.QueryRewrite.Enabled {
			rewrite = rewriter.NewClient(cfg.QueryRewrite.APIURL, cfg.QueryRewrite.Model, 0)
		}
		engine := searcher.New(store, embed, rewrite, cfg.QueryRewrite.FocusMultiplier)

		results, err := engine.Search(cmd.Context(), searcher.Request{
			Query:        strings.Join(args, " "),
			Limit:        searchLimit,
			SemanticOnly: searchMode == "semantic",
			TextOnly:     searchMode == "fulltext",
			ForceRewrite: searchRewrite,
		})
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("no results")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%.3f  %-9s %s\n    %s:%d\n", r.Score, r.MatchType, r.Symbol.QualifiedName, r.Symbol.RelativePath, r.Symbol.LineStart)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results")
	searchCmd.Flags().StringVar(&searchMode, "mode", "hybrid", "search mode: hybrid, semantic, or fulltext")
	searchCmd.Flags().BoolVar(&searchRewrite, "rewrite", false, "force LLM query rewriting")
	rootCmd.AddCommand(searchCmd)
}
