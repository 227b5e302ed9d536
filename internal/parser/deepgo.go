package parser

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strings"

	"github.com/dshills/codelibrarian/pkg/types"
)

// goPredeclared holds the predeclared identifiers that never yield a
// call edge worth tracking: builtin functions and the predeclared type
// names that show up as CallExpr.Fun idents when used as conversions.
var goPredeclared = map[string]bool{
	"append": true, "cap": true, "close": true, "complex": true, "copy": true,
	"delete": true, "imag": true, "len": true, "make": true, "new": true,
	"panic": true, "print": true, "println": true, "real": true, "recover": true,
	"min": true, "max": true, "clear": true,
	"error": true, "string": true, "int": true, "int8": true, "int16": true,
	"int32": true, "int64": true, "uint": true, "uint8": true, "uint16": true,
	"uint32": true, "uint64": true, "uintptr": true, "float32": true,
	"float64": true, "complex64": true, "complex128": true, "bool": true,
	"byte": true, "rune": true, "any": true,
}

// GoExtractor is the deep, native extractor for Go source: it uses
// go/ast directly rather than tree-sitter, giving Go files the most
// precise symbol and edge extraction the pipeline offers.
type GoExtractor struct {
	fset *token.FileSet
}

// NewGoExtractor returns a ready-to-use Go deep extractor.
func NewGoExtractor() *GoExtractor {
	return &GoExtractor{fset: token.NewFileSet()}
}

// ParseFile extracts symbols and graph edges from a single Go source
// file. Syntax errors are recorded on the returned ParseResult rather
// than returned as an error, so a codebase with a handful of broken
// files still yields symbols for everything else; the broken file
// itself yields the diagnostic and no symbols. Names are qualified by
// the file's package clause (package sample's Runner.Run is
// "sample.Runner.Run").
func (g *GoExtractor) ParseFile(path, relPath string) (*types.ParseResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result := &types.ParseResult{}

	file, err := parser.ParseFile(g.fset, path, src, parser.ParseComments)
	if err != nil {
		result.AddError(path, 0, 0, err.Error())
		return result, nil
	}

	module := ModuleName(relPath)
	if file.Name != nil && file.Name.Name != "" {
		module = file.Name.Name
	}
	e := &goFileExtractor{
		fset:    g.fset,
		file:    file,
		module:  module,
		relPath: relPath,
		result:  result,
	}
	e.collectImports()
	e.collectTypeNames()
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			e.extractFunction(d)
		case *ast.GenDecl:
			e.extractGenDecl(d)
		}
	}
	return result, nil
}

type goFileExtractor struct {
	fset      *token.FileSet
	file      *ast.File
	module    string
	relPath   string
	result    *types.ParseResult
	typeNames map[string]bool
}

func (e *goFileExtractor) collectImports() {
	for _, imp := range e.file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		name := path
		if imp.Name != nil {
			name = imp.Name.Name
		}
		e.result.Edges.Imports = append(e.result.Edges.Imports, types.ImportEdge{
			ToModule:   path,
			ImportName: name,
		})
	}
}

// collectTypeNames records the name of every top-level type declaration
// in the file in e.typeNames. extractEmbeddedFields does not consult it.
func (e *goFileExtractor) collectTypeNames() {
	e.typeNames = map[string]bool{}
	for _, decl := range e.file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				e.typeNames[ts.Name.Name] = true
			}
		}
	}
}

func (e *goFileExtractor) extractFunction(fn *ast.FuncDecl) {
	name := fn.Name.Name
	kind := types.KindFunction
	qualified := QualifiedName(e.module, name)
	parent := ""

	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		recvType := e.receiverTypeName(fn.Recv.List[0].Type)
		kind = types.KindMethod
		parent = QualifiedName(e.module, recvType)
		qualified = parent + "." + name
	}

	sym := types.Symbol{
		Name:                name,
		QualifiedName:       qualified,
		Kind:                kind,
		FilePath:            e.relPath,
		LineStart:           e.fset.Position(fn.Pos()).Line,
		LineEnd:             e.fset.Position(fn.End()).Line,
		Signature:           e.functionSignature(fn),
		Documentation:       docText(fn.Doc),
		Parameters:          fieldListToParams(fn.Type.Params),
		ReturnType:          fieldListToString(fn.Type.Results),
		ParentQualifiedName: parent,
	}
	e.result.Symbols = append(e.result.Symbols, sym)

	if fn.Body != nil {
		e.extractCalls(qualified, fn.Body)
	}
}

func (e *goFileExtractor) extractGenDecl(gd *ast.GenDecl) {
	switch gd.Tok {
	case token.TYPE:
		for _, spec := range gd.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				e.extractTypeSpec(gd, ts)
			}
		}
	case token.CONST, token.VAR:
		for _, spec := range gd.Specs {
			if vs, ok := spec.(*ast.ValueSpec); ok {
				e.extractValueSpec(gd, vs)
			}
		}
	}
}

func (e *goFileExtractor) extractTypeSpec(gd *ast.GenDecl, ts *ast.TypeSpec) {
	qualified := QualifiedName(e.module, ts.Name.Name)
	doc := docText(gd.Doc)
	if doc == "" {
		doc = docText(ts.Doc)
	}

	var signature string
	switch t := ts.Type.(type) {
	case *ast.StructType:
		signature = "struct " + ts.Name.Name
		e.extractEmbeddedFields(qualified, t)
	case *ast.InterfaceType:
		signature = "interface " + ts.Name.Name
	default:
		signature = "type " + ts.Name.Name + " " + exprToString(ts.Type)
	}

	e.result.Symbols = append(e.result.Symbols, types.Symbol{
		Name:          ts.Name.Name,
		QualifiedName: qualified,
		Kind:          types.KindClass,
		FilePath:      e.relPath,
		LineStart:     e.fset.Position(ts.Pos()).Line,
		LineEnd:       e.fset.Position(ts.End()).Line,
		Signature:     signature,
		Documentation: doc,
	})
}

// extractEmbeddedFields records every anonymous struct field as an
// inherit edge, whether or not its type is declared in this file, the
// Go analog of a base class (see DESIGN.md Open Question 4). The parent
// is the embedded type's bare name, without any package qualifier.
func (e *goFileExtractor) extractEmbeddedFields(childQualified string, st *ast.StructType) {
	if st.Fields == nil {
		return
	}
	for _, field := range st.Fields.List {
		if len(field.Names) != 0 {
			continue
		}
		name := embeddedFieldName(field.Type)
		if name == "" {
			continue
		}
		e.result.Edges.Inherits = append(e.result.Edges.Inherits, types.InheritEdge{
			ChildQualifiedName: childQualified,
			ParentName:         name,
		})
	}
}

func embeddedFieldName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedFieldName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	default:
		return ""
	}
}

func (e *goFileExtractor) extractValueSpec(gd *ast.GenDecl, vs *ast.ValueSpec) {
	for _, name := range vs.Names {
		if name.Name == "_" {
			continue
		}
		typeStr := ""
		if vs.Type != nil {
			typeStr = exprToString(vs.Type)
		}
		e.result.Symbols = append(e.result.Symbols, types.Symbol{
			Name:          name.Name,
			QualifiedName: QualifiedName(e.module, name.Name),
			Kind:          types.KindModule,
			FilePath:      e.relPath,
			LineStart:     e.fset.Position(vs.Pos()).Line,
			LineEnd:       e.fset.Position(vs.End()).Line,
			Signature:     tokString(gd.Tok) + " " + name.Name + " " + typeStr,
			Documentation: docText(gd.Doc),
		})
	}
}

// extractCalls walks a function body recording every call expression
// whose callee resolves to a plain identifier or a selector, skipping
// predeclared identifiers. Resolution against other files' symbols
// happens later in the storage layer's edge-resolution pass.
func (e *goFileExtractor) extractCalls(callerQualified string, body *ast.BlockStmt) {
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		name := callName(call.Fun)
		if name == "" || goPredeclared[name] {
			return true
		}
		e.result.Edges.Calls = append(e.result.Edges.Calls, types.CallEdge{
			CallerQualifiedName: callerQualified,
			CalleeName:          name,
			Line:                e.fset.Position(call.Pos()).Line,
		})
		return true
	})
}

func callName(expr ast.Expr) string {
	switch fn := expr.(type) {
	case *ast.Ident:
		return fn.Name
	case *ast.SelectorExpr:
		return fn.Sel.Name
	default:
		return ""
	}
}

func (e *goFileExtractor) receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return e.receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return exprToString(expr)
	}
}

func (e *goFileExtractor) functionSignature(fn *ast.FuncDecl) string {
	var b strings.Builder
	b.WriteString("func ")
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		b.WriteString("(" + fieldListToString(fn.Recv) + ") ")
	}
	b.WriteString(fn.Name.Name)
	b.WriteString("(" + fieldListToString(fn.Type.Params) + ")")
	if fn.Type.Results != nil {
		results := fieldListToString(fn.Type.Results)
		if len(fn.Type.Results.List) > 1 || len(fn.Type.Results.List[0].Names) > 0 {
			b.WriteString(" (" + results + ")")
		} else {
			b.WriteString(" " + results)
		}
	}
	return b.String()
}

func fieldListToParams(fl *ast.FieldList) []types.Parameter {
	if fl == nil {
		return nil
	}
	var params []types.Parameter
	for _, field := range fl.List {
		typeStr := exprToString(field.Type)
		if len(field.Names) == 0 {
			params = append(params, types.Parameter{Name: "", Type: typeStr})
			continue
		}
		for _, name := range field.Names {
			params = append(params, types.Parameter{Name: name.Name, Type: typeStr})
		}
	}
	return params
}

func fieldListToString(fl *ast.FieldList) string {
	if fl == nil {
		return ""
	}
	var parts []string
	for _, field := range fl.List {
		typeStr := exprToString(field.Type)
		if len(field.Names) == 0 {
			parts = append(parts, typeStr)
			continue
		}
		names := make([]string, len(field.Names))
		for i, n := range field.Names {
			names[i] = n.Name
		}
		parts = append(parts, strings.Join(names, ", ")+" "+typeStr)
	}
	return strings.Join(parts, ", ")
}

func exprToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + exprToString(t.X)
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + exprToString(t.Elt)
		}
		return "[...]" + exprToString(t.Elt)
	case *ast.MapType:
		return "map[" + exprToString(t.Key) + "]" + exprToString(t.Value)
	case *ast.ChanType:
		return "chan " + exprToString(t.Value)
	case *ast.FuncType:
		return "func(" + fieldListToString(t.Params) + ")"
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.StructType:
		return "struct{}"
	case *ast.SelectorExpr:
		return exprToString(t.X) + "." + t.Sel.Name
	case *ast.Ellipsis:
		return "..." + exprToString(t.Elt)
	case *ast.ParenExpr:
		return "(" + exprToString(t.X) + ")"
	default:
		return ""
	}
}

func docText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

func tokString(tok token.Token) string {
	if tok == token.CONST {
		return "const"
	}
	return "var"
}
