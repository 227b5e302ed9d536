package parser

import (
	"os"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dshills/codelibrarian/internal/langspec"
	"github.com/dshills/codelibrarian/pkg/types"
)

// GenericExtractor extracts symbols and edges from any language with a
// registered langspec.Spec and tree-sitter grammar. It trades the deep
// extractor's precision for coverage: names and call targets are read
// straight off the grammar's node-type map rather than resolved through
// a language-specific type system.
type GenericExtractor struct{}

// NewGenericExtractor returns a ready-to-use tree-sitter-backed extractor.
func NewGenericExtractor() *GenericExtractor {
	return &GenericExtractor{}
}

// ParseFile extracts symbols and graph edges from a source file written
// in lang. Unsupported languages return ErrUnsupportedLanguage.
func (g *GenericExtractor) ParseFile(path, relPath string, lang langspec.Language) (*types.ParseResult, error) {
	spec := langspec.ForLanguage(lang)
	if spec == nil {
		return nil, types.ErrUnsupportedLanguage
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result := &types.ParseResult{}
	tree, err := parseSource(lang, src)
	if err != nil {
		result.AddError(path, 0, 0, err.Error())
		return result, nil
	}
	defer tree.Close()

	e := &genericFileExtractor{
		spec:      spec,
		src:       src,
		relPath:   relPath,
		module:    ModuleName(relPath),
		result:    result,
		funcSet:   toSet(spec.FunctionNodeTypes),
		classSet:  toSet(spec.ClassNodeTypes),
		callSet:   toSet(spec.CallNodeTypes),
		importSet: toSet(spec.ImportNodeTypes),
	}
	e.walkModule(tree.RootNode())
	return result, nil
}

func toSet(vals []string) map[string]bool {
	s := make(map[string]bool, len(vals))
	for _, v := range vals {
		s[v] = true
	}
	return s
}

type genericFileExtractor struct {
	spec      *langspec.Spec
	src       []byte
	relPath   string
	module    string
	result    *types.ParseResult
	funcSet   map[string]bool
	classSet  map[string]bool
	callSet   map[string]bool
	importSet map[string]bool
}

// walkModule visits every node in the file, extracting top-level and
// nested classes/functions and recording import statements. Function
// bodies are walked a second time (by extractFunction) to collect
// call edges, so this traversal skips descending into node subtrees
// that were already fully handled.
func (e *genericFileExtractor) walkModule(root *tree_sitter.Node) {
	walk(root, func(n *tree_sitter.Node) bool {
		kind := n.Kind()
		switch {
		case e.importSet[kind]:
			e.extractImport(n)
			return false
		case e.classSet[kind]:
			e.extractClass(n, "")
			return false
		case e.funcSet[kind]:
			e.extractFunction(n, "", "")
			return false
		}
		return true
	})
}

func (e *genericFileExtractor) extractImport(n *tree_sitter.Node) {
	text := strings.TrimSpace(nodeText(n, e.src))
	e.result.Edges.Imports = append(e.result.Edges.Imports, types.ImportEdge{
		ToModule: text,
	})
}

func (e *genericFileExtractor) extractClass(n *tree_sitter.Node, _ string) {
	name := e.fieldText(n, e.spec.NameField)
	if name == "" {
		return
	}
	qualified := QualifiedName(e.module, name)

	e.result.Symbols = append(e.result.Symbols, types.Symbol{
		Name:          name,
		QualifiedName: qualified,
		Kind:          types.KindClass,
		FilePath:      e.relPath,
		LineStart:     int(n.StartPosition().Row) + 1,
		LineEnd:       int(n.EndPosition().Row) + 1,
		Signature:     strings.TrimSpace(firstLine(nodeText(n, e.src))),
		Documentation: e.leadingDocstring(n),
	})

	for _, field := range e.spec.InheritFields {
		if parentNode := n.ChildByFieldName(field); parentNode != nil {
			for _, parentName := range identifierNames(parentNode, e.src) {
				e.result.Edges.Inherits = append(e.result.Edges.Inherits, types.InheritEdge{
					ChildQualifiedName: qualified,
					ParentName:         parentName,
				})
			}
		}
	}

	body := n.ChildByFieldName(e.spec.BodyField)
	if body == nil {
		return
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		if e.funcSet[child.Kind()] {
			e.extractFunction(child, qualified, name)
		}
	}
}

func (e *genericFileExtractor) extractFunction(n *tree_sitter.Node, parentQualified, parentName string) {
	name := e.fieldText(n, e.spec.NameField)
	if name == "" {
		return
	}
	kind := types.KindFunction
	qualified := QualifiedName(e.module, name)
	if parentName != "" {
		kind = types.KindMethod
		qualified = parentQualified + "." + name
	}

	e.result.Symbols = append(e.result.Symbols, types.Symbol{
		Name:                name,
		QualifiedName:       qualified,
		Kind:                kind,
		FilePath:            e.relPath,
		LineStart:           int(n.StartPosition().Row) + 1,
		LineEnd:             int(n.EndPosition().Row) + 1,
		Signature:           strings.TrimSpace(firstLine(nodeText(n, e.src))),
		Documentation:       e.leadingDocstring(n),
		Parameters:          e.extractParameters(n),
		ParentQualifiedName: parentQualified,
	})

	body := n.ChildByFieldName(e.spec.BodyField)
	if body == nil {
		return
	}
	walk(body, func(call *tree_sitter.Node) bool {
		if !e.callSet[call.Kind()] {
			return true
		}
		callee := e.calleeName(call)
		if callee == "" || e.spec.Builtins[callee] {
			return true
		}
		e.result.Edges.Calls = append(e.result.Edges.Calls, types.CallEdge{
			CallerQualifiedName: qualified,
			CalleeName:          callee,
			Line:                int(call.StartPosition().Row) + 1,
		})
		return true
	})
}

func (e *genericFileExtractor) extractParameters(n *tree_sitter.Node) []types.Parameter {
	paramsNode := n.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var params []types.Parameter
	for i := uint(0); i < paramsNode.ChildCount(); i++ {
		child := paramsNode.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		name := child.ChildByFieldName("name")
		if name != nil {
			params = append(params, types.Parameter{Name: nodeText(name, e.src)})
			continue
		}
		text := strings.TrimSpace(nodeText(child, e.src))
		if text != "" && text != "self" && text != "this" {
			params = append(params, types.Parameter{Name: text})
		}
	}
	return params
}

// calleeName reads the invoked name off a call node: the "function"
// field if the grammar exposes one, otherwise the trailing identifier
// of the call's first child.
func (e *genericFileExtractor) calleeName(call *tree_sitter.Node) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		fn = call.ChildByFieldName("method")
	}
	if fn == nil && call.ChildCount() > 0 {
		fn = call.Child(0)
	}
	if fn == nil {
		return ""
	}
	text := nodeText(fn, e.src)
	if idx := strings.LastIndexAny(text, ".:>"); idx >= 0 {
		return text[idx+1:]
	}
	return text
}

func (e *genericFileExtractor) fieldText(n *tree_sitter.Node, field string) string {
	if field == "" {
		return ""
	}
	target := n.ChildByFieldName(field)
	if target == nil {
		return ""
	}
	return nodeText(target, e.src)
}

// leadingDocstring returns a definition's documentation comment. For
// DocstringLeading languages (Go/Rust/JS/Java/C++ style) that's the run
// of "comment"-kind siblings immediately preceding n; for the rest
// (Python style) it's the first statement of the body, when that
// statement is itself a string literal.
func (e *genericFileExtractor) leadingDocstring(n *tree_sitter.Node) string {
	if e.spec.DocstringLeading {
		return e.precedingComment(n)
	}

	body := n.ChildByFieldName(e.spec.BodyField)
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first == nil {
		return ""
	}
	text := strings.TrimSpace(nodeText(first, e.src))
	if strings.HasPrefix(text, `"""`) || strings.HasPrefix(text, "'''") {
		return strings.Trim(text, "\"' \t\n")
	}
	return ""
}

// precedingComment walks backward over comment-kind siblings directly
// above n, joining them in source order.
func (e *genericFileExtractor) precedingComment(n *tree_sitter.Node) string {
	var lines []string
	for prev := n.PrevSibling(); prev != nil && prev.Kind() == "comment"; prev = prev.PrevSibling() {
		lines = append([]string{strings.TrimSpace(nodeText(prev, e.src))}, lines...)
	}
	return strings.Join(lines, "\n")
}

func identifierNames(n *tree_sitter.Node, src []byte) []string {
	var names []string
	walk(n, func(child *tree_sitter.Node) bool {
		if child.Kind() == "identifier" || child.Kind() == "type_identifier" {
			names = append(names, nodeText(child, src))
			return false
		}
		return true
	})
	return names
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
