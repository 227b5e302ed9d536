package parser

import (
	"path/filepath"
	"strings"
)

// ModuleName derives a Python-style dotted module identifier from a
// file's path relative to the index root: the extension and a trailing
// __init__ are dropped and path separators become dots. The tree-sitter
// languages qualify names with it; the Go extractor uses the file's
// package name instead.
func ModuleName(relPath string) string {
	trimmed := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	trimmed = strings.TrimSuffix(trimmed, "/__init__")
	trimmed = strings.TrimSuffix(trimmed, string(filepath.Separator)+"__init__")
	parts := strings.Split(filepath.ToSlash(trimmed), "/")
	return strings.Join(parts, ".")
}

// QualifiedName joins a module name and a symbol path (e.g. "Type.Method")
// with a dot, skipping either side when empty.
func QualifiedName(module, symbolPath string) string {
	if module == "" {
		return symbolPath
	}
	if symbolPath == "" {
		return module
	}
	return module + "." + symbolPath
}
