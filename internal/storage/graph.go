package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dshills/codelibrarian/pkg/types"
)

// InsertImport records an import edge for fileID. Duplicate
// (file_id, to_module) pairs are silently ignored.
func (s *Store) InsertImport(ctx context.Context, fileID int64, edge types.ImportEdge) error {
	return insertImport(ctx, s.querier(), fileID, edge)
}

// InsertImport is the transactional counterpart.
func (t *Tx) InsertImport(ctx context.Context, fileID int64, edge types.ImportEdge) error {
	return insertImport(ctx, t.querier(), fileID, edge)
}

func insertImport(ctx context.Context, q querier, fileID int64, edge types.ImportEdge) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO imports (file_id, to_module, import_name)
		VALUES (?, ?, ?)
	`, fileID, edge.ToModule, edge.ImportName)
	if err != nil {
		return fmt.Errorf("insert import %s: %w", edge.ToModule, err)
	}
	return nil
}

// InsertCall records a call edge from callerID, with callee_id left
// null until edge resolution runs.
func (s *Store) InsertCall(ctx context.Context, callerID int64, edge types.CallEdge) error {
	return insertCall(ctx, s.querier(), callerID, edge)
}

// InsertCall is the transactional counterpart.
func (t *Tx) InsertCall(ctx context.Context, callerID int64, edge types.CallEdge) error {
	return insertCall(ctx, t.querier(), callerID, edge)
}

func insertCall(ctx context.Context, q querier, callerID int64, edge types.CallEdge) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO calls (caller_id, callee_name, line)
		VALUES (?, ?, ?)
	`, callerID, edge.CalleeName, edge.Line)
	if err != nil {
		return fmt.Errorf("insert call to %s: %w", edge.CalleeName, err)
	}
	return nil
}

// InsertInherit records a base-class edge from childID, with
// parent_id left null until edge resolution runs.
func (s *Store) InsertInherit(ctx context.Context, childID int64, edge types.InheritEdge) error {
	return insertInherit(ctx, s.querier(), childID, edge)
}

// InsertInherit is the transactional counterpart.
func (t *Tx) InsertInherit(ctx context.Context, childID int64, edge types.InheritEdge) error {
	return insertInherit(ctx, t.querier(), childID, edge)
}

func insertInherit(ctx context.Context, q querier, childID int64, edge types.InheritEdge) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO inherits (child_id, parent_name)
		VALUES (?, ?)
	`, childID, edge.ParentName)
	if err != nil {
		return fmt.Errorf("insert inherit from %s: %w", edge.ParentName, err)
	}
	return nil
}

// ResolveGraphEdges runs the two-pass edge resolution that turns the
// unresolved names recorded during parsing into symbol/file ids:
// pass one matches calls and inherits by exact qualified-name or bare
// name; pass two retries the remainder with a dotted-suffix match
// (so "obj.Method" resolves against a symbol named "Type.Method"
// elsewhere in the index). Imports resolve by relative-path substring
// match against tracked files. Called once per indexing run, after
// every file's symbols have been committed.
func (s *Store) ResolveGraphEdges(ctx context.Context) error {
	if err := s.resolveCallsExact(ctx); err != nil {
		return fmt.Errorf("resolve calls (exact): %w", err)
	}
	if err := s.resolveCallsDottedSuffix(ctx); err != nil {
		return fmt.Errorf("resolve calls (dotted suffix): %w", err)
	}
	if err := s.resolveInherits(ctx); err != nil {
		return fmt.Errorf("resolve inherits: %w", err)
	}
	if err := s.resolveImports(ctx); err != nil {
		return fmt.Errorf("resolve imports: %w", err)
	}
	return nil
}

func (s *Store) resolveCallsExact(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE calls SET callee_id = (
			SELECT id FROM symbols
			WHERE symbols.qualified_name = calls.callee_name
			   OR symbols.name = calls.callee_name
			LIMIT 1
		)
		WHERE callee_id IS NULL
	`)
	return err
}

// resolveCallsDottedSuffix retries unresolved calls whose callee_name
// looks like "recv.Method": it matches any symbol whose qualified
// name ends with ".Method".
func (s *Store) resolveCallsDottedSuffix(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, callee_name FROM calls WHERE callee_id IS NULL
	`)
	if err != nil {
		return err
	}
	type pending struct {
		id   int64
		name string
	}
	var work []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.name); err != nil {
			rows.Close()
			return err
		}
		work = append(work, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range work {
		name := p.name
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
		suffix := "." + name
		var symbolID int64
		err := s.db.QueryRowContext(ctx, `
			SELECT id FROM symbols WHERE qualified_name LIKE '%' || ? LIMIT 1
		`, suffix).Scan(&symbolID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE calls SET callee_id = ? WHERE id = ?`, symbolID, p.id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) resolveInherits(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE inherits SET parent_id = (
			SELECT id FROM symbols
			WHERE symbols.kind = 'class'
			  AND (symbols.qualified_name = inherits.parent_name
			       OR symbols.name = inherits.parent_name)
			LIMIT 1
		)
		WHERE parent_id IS NULL
	`)
	return err
}

func (s *Store) resolveImports(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, to_module FROM imports WHERE resolved_file_id IS NULL
	`)
	if err != nil {
		return err
	}
	type pending struct {
		id     int64
		module string
	}
	var work []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.module); err != nil {
			rows.Close()
			return err
		}
		work = append(work, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range work {
		pathLike := "%" + strings.ReplaceAll(p.module, ".", "/") + "%"
		var fileID int64
		err := s.db.QueryRowContext(ctx, `
			SELECT id FROM files WHERE relative_path LIKE ? LIMIT 1
		`, pathLike).Scan(&fileID)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE imports SET resolved_file_id = ? WHERE id = ?`, fileID, p.id); err != nil {
			return err
		}
	}
	return nil
}

// CallEdgeRow is one resolved call edge with both endpoints'
// qualified names, used by the call-graph diagram generator.
type CallEdgeRow struct {
	CallerQualifiedName string
	CalleeQualifiedName string
	Line                int
}

const maxGraphDepth = 10

// GetCallers returns every symbol that (transitively, up to maxDepth
// hops) calls symbolID, using a recursive CTE over resolved call
// edges. maxDepth is clamped to maxGraphDepth.
func (s *Store) GetCallers(ctx context.Context, symbolID int64, maxDepth int) ([]*types.SymbolRecord, error) {
	return s.walkCallGraph(ctx, symbolID, clampDepth(maxDepth), "callee_id", "caller_id")
}

// GetCallees returns every symbol that symbolID (transitively, up to
// maxDepth hops) calls.
func (s *Store) GetCallees(ctx context.Context, symbolID int64, maxDepth int) ([]*types.SymbolRecord, error) {
	return s.walkCallGraph(ctx, symbolID, clampDepth(maxDepth), "caller_id", "callee_id")
}

// clampDepth bounds a caller-supplied depth to maxGraphDepth. It does
// NOT raise a non-positive depth: depth 0 (or negative) must yield an
// empty traversal per spec.md §8's boundary behaviour, so zero passes
// through unchanged and is handled by walkCallGraph's early return.
func clampDepth(d int) int {
	if d > maxGraphDepth {
		return maxGraphDepth
	}
	return d
}

func (s *Store) walkCallGraph(ctx context.Context, symbolID int64, maxDepth int, fromCol, toCol string) ([]*types.SymbolRecord, error) {
	if maxDepth <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		WITH RECURSIVE reachable(id, depth) AS (
			SELECT %s, 1 FROM calls WHERE %s = ? AND %s IS NOT NULL
			UNION
			SELECT c.%s, r.depth + 1
			FROM calls c
			JOIN reachable r ON c.%s = r.id
			WHERE c.%s IS NOT NULL AND r.depth < ?
		)
		SELECT DISTINCT id FROM reachable
	`, toCol, fromCol, toCol, toCol, fromCol, toCol)

	rows, err := s.db.QueryContext(ctx, query, symbolID, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("walk call graph: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.symbolsByIDs(ctx, ids)
}

// CountCallers returns the direct (depth-1) caller count for symbolID.
func (s *Store) CountCallers(ctx context.Context, symbolID int64) (int, error) {
	return s.countEdges(ctx, "SELECT COUNT(DISTINCT caller_id) FROM calls WHERE callee_id = ?", symbolID)
}

// CountCallees returns the direct (depth-1) callee count for symbolID.
func (s *Store) CountCallees(ctx context.Context, symbolID int64) (int, error) {
	return s.countEdges(ctx, "SELECT COUNT(DISTINCT callee_id) FROM calls WHERE caller_id = ?", symbolID)
}

func (s *Store) countEdges(ctx context.Context, query string, symbolID int64) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, symbolID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) symbolsByIDs(ctx context.Context, ids []int64) ([]*types.SymbolRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := symbolSelectSQL + " WHERE s.id IN (" + strings.Join(placeholders, ",") + ") ORDER BY s.qualified_name"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbolRecordsFromRows(rows)
}

const hierarchyDepth = 5

// ClassHierarchy holds a class's ancestors and descendants, each
// nearest-first.
type ClassHierarchy struct {
	Ancestors   []*types.SymbolRecord
	Descendants []*types.SymbolRecord
}

// GetClassHierarchy returns the ancestor and descendant chains for a
// class symbol, each bounded to hierarchyDepth hops.
func (s *Store) GetClassHierarchy(ctx context.Context, classID int64) (*ClassHierarchy, error) {
	ancestors, err := s.walkHierarchy(ctx, classID, "child_id", "parent_id")
	if err != nil {
		return nil, fmt.Errorf("walk ancestors: %w", err)
	}
	descendants, err := s.walkHierarchy(ctx, classID, "parent_id", "child_id")
	if err != nil {
		return nil, fmt.Errorf("walk descendants: %w", err)
	}
	return &ClassHierarchy{Ancestors: ancestors, Descendants: descendants}, nil
}

func (s *Store) walkHierarchy(ctx context.Context, classID int64, fromCol, toCol string) ([]*types.SymbolRecord, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE hierarchy(id, depth) AS (
			SELECT %s, 1 FROM inherits WHERE %s = ? AND %s IS NOT NULL
			UNION
			SELECT i.%s, h.depth + 1
			FROM inherits i
			JOIN hierarchy h ON i.%s = h.id
			WHERE i.%s IS NOT NULL AND h.depth < ?
		)
		SELECT id FROM hierarchy ORDER BY depth
	`, toCol, fromCol, toCol, toCol, fromCol, toCol)

	rows, err := s.db.QueryContext(ctx, query, classID, hierarchyDepth)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	records, err := s.symbolsByIDs(ctx, ids)
	if err != nil || len(records) == 0 {
		return records, err
	}
	byID := make(map[int64]*types.SymbolRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	ordered := make([]*types.SymbolRecord, 0, len(records))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			ordered = append(ordered, r)
			delete(byID, id)
		}
	}
	return ordered, nil
}

// GetCallEdges returns resolved call edges reachable from symbolID in
// the given direction, annotated with both endpoints' qualified
// names, for the call-graph diagram generator.
func (s *Store) GetCallEdges(ctx context.Context, symbolID int64, direction string, maxDepth int) ([]CallEdgeRow, error) {
	fromCol, toCol := "caller_id", "callee_id"
	if direction == "callers" {
		fromCol, toCol = "callee_id", "caller_id"
	}
	reached, err := s.walkCallGraph(ctx, symbolID, clampDepth(maxDepth), fromCol, toCol)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(reached)+1)
	ids = append(ids, symbolID)
	for _, r := range reached {
		ids = append(ids, r.ID)
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	inClause := strings.Join(placeholders, ",")
	query := fmt.Sprintf(`
		SELECT cs.qualified_name, es.qualified_name, c.line
		FROM calls c
		JOIN symbols cs ON cs.id = c.caller_id
		JOIN symbols es ON es.id = c.callee_id
		WHERE c.caller_id IN (%s) AND c.callee_id IN (%s)
	`, inClause, inClause)
	args = append(args, args...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get call edges: %w", err)
	}
	defer rows.Close()

	var edges []CallEdgeRow
	for rows.Next() {
		var e CallEdgeRow
		if err := rows.Scan(&e.CallerQualifiedName, &e.CalleeQualifiedName, &e.Line); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
