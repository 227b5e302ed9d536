package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelibrarian/internal/langspec"
	"github.com/dshills/codelibrarian/pkg/types"
)

const goFixture = `package sample

import "fmt"

// Base provides shared behavior.
type Base struct{}

// Common does something common.
func (b *Base) Common() {}

// Runner executes jobs.
type Runner struct {
	Base
}

// Run starts the job loop.
func (r *Runner) Run() {
	r.Common()
	fmt.Println("running")
}
`

func writeFixture(t *testing.T, name, src string) (path, relPath string) {
	t.Helper()
	dir := t.TempDir()
	path = filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path, name
}

func TestExtractorDispatchesGoToDeepExtractor(t *testing.T) {
	path, relPath := writeFixture(t, "sample.go", goFixture)
	e := New()

	result, err := e.ParseFile(path, relPath, langspec.Go)
	require.NoError(t, err)
	require.False(t, result.HasErrors())

	names := make(map[string]types.SymbolKind)
	for _, s := range result.Symbols {
		names[s.QualifiedName] = s.Kind
	}
	assert.Equal(t, types.KindClass, names["sample.Base"])
	assert.Equal(t, types.KindClass, names["sample.Runner"])
	assert.Equal(t, types.KindMethod, names["sample.Base.Common"])
	assert.Equal(t, types.KindMethod, names["sample.Runner.Run"])
}

func TestGoExtractorRecordsImportCallAndInheritEdges(t *testing.T) {
	path, relPath := writeFixture(t, "sample.go", goFixture)
	g := NewGoExtractor()

	result, err := g.ParseFile(path, relPath)
	require.NoError(t, err)

	require.Len(t, result.Edges.Imports, 1)
	assert.Equal(t, "fmt", result.Edges.Imports[0].ToModule)

	require.Len(t, result.Edges.Inherits, 1)
	assert.Equal(t, "sample.Runner", result.Edges.Inherits[0].ChildQualifiedName)
	assert.Equal(t, "Base", result.Edges.Inherits[0].ParentName)

	var sawCommon bool
	for _, c := range result.Edges.Calls {
		if c.CallerQualifiedName == "sample.Runner.Run" && c.CalleeName == "Common" {
			sawCommon = true
		}
	}
	assert.True(t, sawCommon, "expected a call edge from Runner.Run to Common")
}

func TestGoExtractorRecordsSyntaxErrorWithoutFailing(t *testing.T) {
	path, relPath := writeFixture(t, "broken.go", "package sample\nfunc broken( {\n")
	g := NewGoExtractor()

	result, err := g.ParseFile(path, relPath)
	require.NoError(t, err)
	assert.True(t, result.HasErrors())
}

const pythonFixture = `class Greeter:
    """Greets people by name."""

    def hello(self, name):
        """Say hello."""
        print(name)
`

const jsFixture = `// Greeter says hello to people.
class Greeter {
  // hello says hello.
  hello(name) {
    console.log(name);
  }
}
`

func TestGenericExtractorReadsPythonBodyDocstring(t *testing.T) {
	path, relPath := writeFixture(t, "greeter.py", pythonFixture)
	g := NewGenericExtractor()

	result, err := g.ParseFile(path, relPath, langspec.Python)
	require.NoError(t, err)

	docs := make(map[string]string)
	for _, s := range result.Symbols {
		docs[s.QualifiedName] = s.Documentation
	}
	assert.Equal(t, "Greets people by name.", docs["greeter.Greeter"])
	assert.Equal(t, "Say hello.", docs["greeter.Greeter.hello"])
}

func TestGenericExtractorReadsLeadingCommentDocstring(t *testing.T) {
	path, relPath := writeFixture(t, "greeter.js", jsFixture)
	g := NewGenericExtractor()

	result, err := g.ParseFile(path, relPath, langspec.JavaScript)
	require.NoError(t, err)

	docs := make(map[string]string)
	for _, s := range result.Symbols {
		docs[s.QualifiedName] = s.Documentation
	}
	assert.Equal(t, "// Greeter says hello to people.", docs["greeter.Greeter"])
	assert.Equal(t, "// hello says hello.", docs["greeter.Greeter.hello"])
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "internal.sample", ModuleName("internal/sample.go"))
	assert.Equal(t, "pkg.mod", ModuleName("pkg/mod/__init__.py"))
}

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, "sample.Runner.Run", QualifiedName("sample", "Runner.Run"))
	assert.Equal(t, "Run", QualifiedName("", "Run"))
	assert.Equal(t, "sample", QualifiedName("sample", ""))
}
