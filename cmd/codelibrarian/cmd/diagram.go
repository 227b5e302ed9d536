package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codelibrarian/internal/diagram"
	"github.com/dshills/codelibrarian/internal/storage"
)

var (
	diagramDepth     int
	diagramDirection string
)

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Generate Mermaid diagrams from the index",
}

var diagramClassCmd = &cobra.Command{
	Use:   "class [class-name]",
	Short: "Render a class hierarchy diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, gen, err := openGenerator()
		if err != nil {
			return err
		}
		defer store.Close()

		out, err := gen.ClassDiagram(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printDiagram(out)
	},
}

var diagramCallGraphCmd = &cobra.Command{
	Use:   "callgraph [qualified-name]",
	Short: "Render a call graph diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, gen, err := openGenerator()
		if err != nil {
			return err
		}
		defer store.Close()

		out, err := gen.CallGraph(cmd.Context(), args[0], diagramDepth, diagramDirection)
		if err != nil {
			return err
		}
		return printDiagram(out)
	},
}

var diagramImportsCmd = &cobra.Command{
	Use:   "imports [file-path]",
	Short: "Render a file import graph, optionally scoped to one file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, gen, err := openGenerator()
		if err != nil {
			return err
		}
		defer store.Close()

		relPath := ""
		if len(args) > 0 {
			relPath = args[0]
		}
		out, err := gen.ImportGraph(cmd.Context(), relPath)
		if err != nil {
			return err
		}
		return printDiagram(out)
	},
}

func openGenerator() (*storage.Store, *diagram.Generator, error) {
	cfg := Config()
	store, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return store, diagram.New(store), nil
}

func printDiagram(out string) error {
	if out == "" {
		fmt.Println("nothing to render")
		return nil
	}
	fmt.Println(out)
	return nil
}

func init() {
	diagramCallGraphCmd.Flags().IntVar(&diagramDepth, "depth", 2, "hops to traverse")
	diagramCallGraphCmd.Flags().StringVar(&diagramDirection, "direction", "callees", "callees or callers")

	diagramCmd.AddCommand(diagramClassCmd, diagramCallGraphCmd, diagramImportsCmd)
	rootCmd.AddCommand(diagramCmd)
}
