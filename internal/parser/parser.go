// Package parser turns a source file into symbols and unresolved graph
// edges. Go files go through GoExtractor, a native go/ast walk; every
// other supported language goes through GenericExtractor, a tree-sitter
// walk driven by the node-type map in internal/langspec.
package parser

import (
	"github.com/dshills/codelibrarian/internal/langspec"
	"github.com/dshills/codelibrarian/pkg/types"
)

// Extractor dispatches a file to the deep Go extractor or the generic
// tree-sitter extractor based on its detected language.
type Extractor struct {
	deep    *GoExtractor
	generic *GenericExtractor
}

// New returns an Extractor ready to parse files of any registered
// language.
func New() *Extractor {
	return &Extractor{
		deep:    NewGoExtractor(),
		generic: NewGenericExtractor(),
	}
}

// ParseFile extracts symbols and edges from the file at path, whose
// path relative to the index root is relPath. lang selects the
// extraction strategy; ErrUnsupportedLanguage is returned for a
// language with no registered spec and no native extractor.
func (e *Extractor) ParseFile(path, relPath string, lang langspec.Language) (*types.ParseResult, error) {
	if lang == langspec.Go {
		return e.deep.ParseFile(path, relPath)
	}
	return e.generic.ParseFile(path, relPath, lang)
}
