package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/codelibrarian/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUpsertFileIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id1, err := store.UpsertFile(ctx, "pkg/foo.go", "go", "hash1")
	require.NoError(t, err)

	id2, err := store.UpsertFile(ctx, "pkg/foo.go", "go", "hash2")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	file, err := store.GetFileByPath(ctx, "pkg/foo.go")
	require.NoError(t, err)
	assert.Equal(t, "hash2", file.ContentHash)
}

func TestInsertSymbolAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fileID, err := store.UpsertFile(ctx, "pkg/foo.go", "go", "h")
	require.NoError(t, err)

	sym := types.Symbol{
		Name:          "Foo",
		QualifiedName: "pkg.Foo",
		Kind:          types.KindFunction,
		LineStart:     1,
		LineEnd:       3,
		Signature:     "func Foo()",
	}
	symID, err := store.InsertSymbol(ctx, fileID, sym, nil)
	require.NoError(t, err)
	assert.NotZero(t, symID)

	record, err := store.GetSymbolByQualifiedName(ctx, "pkg.Foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo", record.Name)
	assert.Equal(t, "pkg/foo.go", record.RelativePath)

	matches, err := store.LookupSymbol(ctx, "pkg.Foo")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	prefixMatches, err := store.LookupSymbol(ctx, "pkg.F")
	require.NoError(t, err)
	require.Len(t, prefixMatches, 1)
}

func TestInsertSymbolAllowsDuplicateQualifiedNames(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fileID, err := store.UpsertFile(ctx, "pkg/calc.go", "go", "h")
	require.NoError(t, err)

	overloadA := types.Symbol{
		Name:          "add",
		QualifiedName: "pkg.Calc.add",
		Kind:          types.KindMethod,
		LineStart:     1,
		LineEnd:       3,
		Signature:     "func (c *Calc) add(n int)",
	}
	overloadB := types.Symbol{
		Name:          "add",
		QualifiedName: "pkg.Calc.add",
		Kind:          types.KindMethod,
		LineStart:     5,
		LineEnd:       7,
		Signature:     "func (c *Calc) add(s string)",
	}

	idA, err := store.InsertSymbol(ctx, fileID, overloadA, nil)
	require.NoError(t, err)
	idB, err := store.InsertSymbol(ctx, fileID, overloadB, nil)
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB, "overloaded methods sharing a qualified name must not collide")

	matches, err := store.LookupSymbol(ctx, "pkg.Calc.add")
	require.NoError(t, err)
	assert.Len(t, matches, 2, "both overloads should survive as distinct symbols")
}

func TestDeleteFileSymbolsRemovesChildrenFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fileID, err := store.UpsertFile(ctx, "pkg/foo.go", "go", "h")
	require.NoError(t, err)

	classID, err := store.InsertSymbol(ctx, fileID, types.Symbol{
		Name: "Foo", QualifiedName: "pkg.Foo", Kind: types.KindClass, LineStart: 1, LineEnd: 10,
	}, nil)
	require.NoError(t, err)

	_, err = store.InsertSymbol(ctx, fileID, types.Symbol{
		Name: "Bar", QualifiedName: "pkg.Foo.Bar", Kind: types.KindMethod, LineStart: 2, LineEnd: 4,
	}, &classID)
	require.NoError(t, err)

	require.NoError(t, store.DeleteFileSymbols(ctx, fileID))

	_, err = store.GetSymbolByQualifiedName(ctx, "pkg.Foo")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = store.GetSymbolByQualifiedName(ctx, "pkg.Foo.Bar")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDeleteFileCascadesAndNullsInboundEdges(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	callerFileID, err := store.UpsertFile(ctx, "pkg/caller.go", "go", "h1")
	require.NoError(t, err)
	calleeFileID, err := store.UpsertFile(ctx, "pkg/callee.go", "go", "h2")
	require.NoError(t, err)

	callerID, err := store.InsertSymbol(ctx, callerFileID, types.Symbol{
		Name: "Caller", QualifiedName: "pkg.Caller", Kind: types.KindFunction, LineStart: 1, LineEnd: 3,
	}, nil)
	require.NoError(t, err)
	calleeID, err := store.InsertSymbol(ctx, calleeFileID, types.Symbol{
		Name: "Callee", QualifiedName: "pkg.Callee", Kind: types.KindFunction, LineStart: 1, LineEnd: 3,
	}, nil)
	require.NoError(t, err)

	require.NoError(t, store.InsertCall(ctx, callerID, types.CallEdge{
		CallerQualifiedName: "pkg.Caller", CalleeName: "pkg.Callee", Line: 2,
	}))
	require.NoError(t, store.ResolveGraphEdges(ctx))

	callers, err := store.GetCallers(ctx, calleeID, 1)
	require.NoError(t, err)
	require.Len(t, callers, 1)

	require.NoError(t, store.DeleteFile(ctx, calleeFileID))

	_, err = store.GetSymbolByQualifiedName(ctx, "pkg.Callee")
	assert.ErrorIs(t, err, types.ErrNotFound)

	// The caller's own row and its outbound call edge survive; the
	// edge's target simply goes unresolved again.
	caller, err := store.GetSymbolByQualifiedName(ctx, "pkg.Caller")
	require.NoError(t, err)
	callees, err := store.GetCallees(ctx, caller.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, callees, "unresolved edges must stay hidden from traversal")
}

func TestClearEmbeddingsRemovesAllVectors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fileID, err := store.UpsertFile(ctx, "pkg/foo.go", "go", "h")
	require.NoError(t, err)
	symID, err := store.InsertSymbol(ctx, fileID, types.Symbol{
		Name: "Foo", QualifiedName: "pkg.Foo", Kind: types.KindFunction, LineStart: 1, LineEnd: 3,
	}, nil)
	require.NoError(t, err)

	require.NoError(t, store.EnsureVectorTable(ctx, 3))
	require.NoError(t, store.UpsertEmbedding(ctx, symID, []float32{0.1, 0.2, 0.3}, "test-model"))

	pending, err := store.SymbolsWithoutEmbeddings(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, store.ClearEmbeddings(ctx))

	pending, err = store.SymbolsWithoutEmbeddings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "pkg.Foo", pending[0].QualifiedName)
}

func TestResolveGraphEdgesExactMatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fileID, err := store.UpsertFile(ctx, "pkg/foo.go", "go", "h")
	require.NoError(t, err)

	callerID, err := store.InsertSymbol(ctx, fileID, types.Symbol{
		Name: "Caller", QualifiedName: "pkg.Caller", Kind: types.KindFunction, LineStart: 1, LineEnd: 5,
	}, nil)
	require.NoError(t, err)

	_, err = store.InsertSymbol(ctx, fileID, types.Symbol{
		Name: "Callee", QualifiedName: "pkg.Callee", Kind: types.KindFunction, LineStart: 10, LineEnd: 12,
	}, nil)
	require.NoError(t, err)

	require.NoError(t, store.InsertCall(ctx, callerID, types.CallEdge{CalleeName: "Callee", Line: 2}))
	require.NoError(t, store.ResolveGraphEdges(ctx))

	callees, err := store.GetCallees(ctx, callerID, 1)
	require.NoError(t, err)
	require.Len(t, callees, 1)
	assert.Equal(t, "pkg.Callee", callees[0].QualifiedName)

	count, err := store.CountCallees(ctx, callerID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFTSSearchFallsBackToOrQuery(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	fileID, err := store.UpsertFile(ctx, "pkg/auth.go", "go", "h")
	require.NoError(t, err)

	_, err = store.InsertSymbol(ctx, fileID, types.Symbol{
		Name: "Authenticate", QualifiedName: "pkg.Authenticate", Kind: types.KindFunction,
		LineStart: 1, LineEnd: 5, Documentation: "verifies user credentials",
	}, nil)
	require.NoError(t, err)

	matches, err := store.FTSSearch(ctx, "authenticate credentials nonexistentterm", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}
