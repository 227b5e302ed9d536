// Package langspec is the per-language node-type-map registry the
// generic tree-sitter extractor drives. Each supported language
// registers a Spec naming which concrete-syntax-tree node kinds carry
// functions, classes, modules, calls, imports, and inheritance, plus a
// curated list of builtin call targets to skip during call-edge
// extraction (spec.md §9 Open Question 1).
package langspec

import "path/filepath"

// Language is a short language tag matching codelibrarian's config
// (index.languages) and file-extension detection.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Rust       Language = "rust"
	Java       Language = "java"
	Cpp        Language = "cpp"
	Go         Language = "go"
)

// Spec describes one language's grammar shape for the generic
// extractor. Go is handled by the deep go/ast extractor instead and
// has no Spec entry.
type Spec struct {
	Language Language

	// FunctionNodeTypes name top-level function definitions.
	FunctionNodeTypes []string
	// MethodNodeTypes name function definitions nested in a class body.
	// Empty when the grammar doesn't distinguish (a class-body walk
	// reclassifies FunctionNodeTypes hits as methods).
	MethodNodeTypes []string
	// ClassNodeTypes name class/struct/interface-like definitions.
	ClassNodeTypes []string
	// CallNodeTypes name call-expression nodes.
	CallNodeTypes []string
	// ImportNodeTypes name import/require statement nodes.
	ImportNodeTypes []string
	// InheritFields names the child field(s) of a class node holding
	// its base-class/interface list (tree-sitter field names).
	InheritFields []string
	// NameField is the field name holding a definition's identifier.
	NameField string
	// BodyField is the field name holding a definition's body block.
	BodyField string
	// DocstringLeading, when true, means a documentation comment is
	// the sibling node immediately preceding the definition (Go/Rust/
	// JS-doc style); when false, documentation is the first statement
	// inside the body (Python docstring style).
	DocstringLeading bool
	// Builtins lists call targets that are never emitted as call edges.
	Builtins map[string]bool
}

var registry = map[Language]*Spec{}

// Register adds a language's Spec to the registry. Called from each
// per-language file's init().
func Register(s *Spec) {
	registry[s.Language] = s
}

// ForLanguage returns the registered Spec, or nil if the generic
// extractor doesn't cover this language (e.g. Go, which uses the deep
// extractor).
func ForLanguage(l Language) *Spec {
	return registry[l]
}

// extensionLanguage maps file extensions to language tags across both
// the deep and generic extractors.
var extensionLanguage = map[string]Language{
	".py":   Python,
	".ts":   TypeScript,
	".tsx":  TypeScript,
	".js":   JavaScript,
	".jsx":  JavaScript,
	".mjs":  JavaScript,
	".rs":   Rust,
	".java": Java,
	".cpp":  Cpp,
	".cc":   Cpp,
	".cxx":  Cpp,
	".c":    Cpp,
	".h":    Cpp,
	".hpp":  Cpp,
	".go":   Go,
}

// LanguageForExtension detects a language from a file path's
// extension, matching the enabled-languages config in
// internal/config. Returns "" for unrecognized extensions.
func LanguageForExtension(path string) Language {
	ext := filepath.Ext(path)
	lower := make([]byte, len(ext))
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	return extensionLanguage[string(lower)]
}
