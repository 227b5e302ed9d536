package types

import "fmt"

// SymbolKind classifies a parsed code symbol.
type SymbolKind string

const (
	KindFunction SymbolKind = "function"
	KindMethod   SymbolKind = "method"
	KindClass    SymbolKind = "class"
	KindModule   SymbolKind = "module"
)

// Valid reports whether k is one of the four recognized symbol kinds.
func (k SymbolKind) Valid() bool {
	switch k {
	case KindFunction, KindMethod, KindClass, KindModule:
		return true
	default:
		return false
	}
}

// Parameter is one entry in a symbol's ordered parameter list.
type Parameter struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Default string `json:"default,omitempty"`
}

// Symbol is a code construct extracted by a parser: a function, method,
// class, or module. QualifiedName is stable and language-idiomatic
// (e.g. "pkg.Type.Method" for Go, "pkg.mod.Class.method" for Python).
// ParentQualifiedName links nested symbols (methods in classes) to their
// enclosing definition; the indexer resolves it to the parent's symbol
// id when the parent was written earlier from the same file.
type Symbol struct {
	Name                string      `json:"name"`
	QualifiedName       string      `json:"qualified_name"`
	Kind                SymbolKind  `json:"kind"`
	FilePath            string      `json:"file_path"`
	LineStart           int         `json:"line_start"`
	LineEnd             int         `json:"line_end"`
	Signature           string      `json:"signature"`
	Documentation       string      `json:"documentation"`
	Parameters          []Parameter `json:"parameters"`
	ReturnType          string      `json:"return_type,omitempty"`
	Decorators          []string    `json:"decorators,omitempty"`
	ParentQualifiedName string      `json:"parent_qualified_name,omitempty"`
}

// Validate checks the minimal invariants a Symbol must satisfy before
// it is written to the store.
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidSymbol)
	}
	if s.QualifiedName == "" {
		return fmt.Errorf("%w: qualified_name is empty", ErrInvalidSymbol)
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSymbol, s.Kind)
	}
	if s.LineEnd < s.LineStart {
		return fmt.Errorf("%w: line_end %d before line_start %d", ErrInvalidSymbol, s.LineEnd, s.LineStart)
	}
	return nil
}

// EmbeddingText builds the text submitted to the embedding service for
// this symbol: qualified name, signature, and documentation, truncated
// to maxChars. See DESIGN.md Open Question 1 for why the qualified name
// is included even though the original reference implementation omits it.
func (s *Symbol) EmbeddingText(maxChars int) string {
	text := s.QualifiedName
	if s.Signature != "" {
		text += "\n" + s.Signature
	}
	if s.Documentation != "" {
		text += "\n" + s.Documentation
	}
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text
}

// SymbolRecord is a Symbol as hydrated from the store, carrying its
// assigned id and file location.
type SymbolRecord struct {
	ID            int64       `json:"id"`
	FileID        int64       `json:"-"`
	Name          string      `json:"name"`
	QualifiedName string      `json:"qualified_name"`
	Kind          SymbolKind  `json:"kind"`
	FilePath      string      `json:"file_path"`
	RelativePath  string      `json:"relative_path"`
	LineStart     int         `json:"line_start"`
	LineEnd       int         `json:"line_end"`
	Signature     string      `json:"signature"`
	Documentation string      `json:"documentation"`
	Parameters    []Parameter `json:"parameters"`
	ReturnType    string      `json:"return_type,omitempty"`
	Decorators    []string    `json:"decorators,omitempty"`
	ParentID      *int64      `json:"-"`
}

// ToMap renders the record as an MCP/JSON-facing map, matching the
// original reference implementation's SymbolRecord.to_dict() field set.
func (r *SymbolRecord) ToMap() map[string]any {
	return map[string]any{
		"id":             r.ID,
		"name":           r.Name,
		"qualified_name": r.QualifiedName,
		"kind":           string(r.Kind),
		"file_path":      r.FilePath,
		"relative_path":  r.RelativePath,
		"line_start":     r.LineStart,
		"line_end":       r.LineEnd,
		"signature":      r.Signature,
		"documentation":  r.Documentation,
		"parameters":     r.Parameters,
		"return_type":    r.ReturnType,
		"decorators":     r.Decorators,
	}
}

// EmbeddingText builds the text submitted to the embedding service
// for this stored symbol, the same shape as Symbol.EmbeddingText.
func (r *SymbolRecord) EmbeddingText(maxChars int) string {
	text := r.QualifiedName
	if r.Signature != "" {
		text += "\n" + r.Signature
	}
	if r.Documentation != "" {
		text += "\n" + r.Documentation
	}
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text
}
