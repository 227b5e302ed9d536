package parser

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dshills/codelibrarian/internal/langspec"
)

var (
	tsLangsOnce sync.Once
	tsLangs     map[langspec.Language]*tree_sitter.Language
	tsPools     map[langspec.Language]*sync.Pool
)

func initTreeSitterLanguages() {
	tsLangsOnce.Do(func() {
		tsLangs = map[langspec.Language]*tree_sitter.Language{
			langspec.Python:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			langspec.JavaScript: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
			langspec.TypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			langspec.Rust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
			langspec.Java:       tree_sitter.NewLanguage(tree_sitter_java.Language()),
			langspec.Cpp:        tree_sitter.NewLanguage(tree_sitter_cpp.Language()),
		}
		tsPools = make(map[langspec.Language]*sync.Pool, len(tsLangs))
		for lang, tsLang := range tsLangs {
			tsLang := tsLang
			tsPools[lang] = &sync.Pool{
				New: func() any {
					p := tree_sitter.NewParser()
					if err := p.SetLanguage(tsLang); err != nil {
						panic(fmt.Sprintf("set tree-sitter language: %v", err))
					}
					return p
				},
			}
		}
	})
}

// parseSource parses source bytes with a pooled parser for lang,
// returning the resulting tree. Callers must call tree.Close().
func parseSource(lang langspec.Language, source []byte) (*tree_sitter.Tree, error) {
	initTreeSitterLanguages()
	pool, ok := tsPools[lang]
	if !ok {
		return nil, fmt.Errorf("%s: no tree-sitter grammar registered", lang)
	}
	p, _ := pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("%s: parser pool exhausted", lang)
	}
	defer pool.Put(p)

	tree := p.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: parse returned no tree", lang)
	}
	return tree, nil
}

func walk(node *tree_sitter.Node, fn func(*tree_sitter.Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), fn)
	}
}

func nodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
