package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// FTSMatch is one full-text search hit: a symbol id and its raw BM25
// score (negative; more negative is a better match, per SQLite FTS5
// convention).
type FTSMatch struct {
	SymbolID int64
	BM25     float64
}

var ftsSpecialChars = regexp.MustCompile(`["^*():]`)

// escapeFTS5 quotes a query term when it contains FTS5 syntax
// characters, so a search for e.g. "get(x)" is treated as a literal
// phrase instead of malformed query syntax.
func escapeFTS5(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return term
	}
	if ftsSpecialChars.MatchString(term) {
		return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return term
}

// FTSSearch runs a full-text query against symbol name, qualified
// name, signature, and documentation. An AND match (implicit in FTS5
// for multi-term queries) is tried first; if it returns nothing, the
// terms are retried OR-joined so a query with one matching word still
// surfaces results.
func (s *Store) FTSSearch(ctx context.Context, query string, limit int) ([]FTSMatch, error) {
	escaped := escapeFTS5(query)
	if escaped == "" {
		return nil, nil
	}

	matches, err := s.ftsQuery(ctx, escaped, limit)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return matches, nil
	}

	terms := strings.Fields(query)
	if len(terms) < 2 {
		return matches, nil
	}
	for i, t := range terms {
		terms[i] = escapeFTS5(t)
	}
	orQuery := strings.Join(terms, " OR ")
	return s.ftsQuery(ctx, orQuery, limit)
}

func (s *Store) ftsQuery(ctx context.Context, ftsQuery string, limit int) ([]FTSMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid, bm25(symbols_fts) FROM symbols_fts
		WHERE symbols_fts MATCH ?
		ORDER BY bm25(symbols_fts) LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("fts query %q: %w", ftsQuery, err)
	}
	defer rows.Close()

	var matches []FTSMatch
	for rows.Next() {
		var m FTSMatch
		if err := rows.Scan(&m.SymbolID, &m.BM25); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// GetFileImports returns every resolved and unresolved import edge
// for a file, in insertion order.
func (s *Store) GetFileImports(ctx context.Context, fileID int64) ([]ImportRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_module, import_name, resolved_file_id FROM imports
		WHERE file_id = ? ORDER BY id
	`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []ImportRow
	for rows.Next() {
		var (
			row      ImportRow
			resolved sql.NullInt64
		)
		if err := rows.Scan(&row.ToModule, &row.ImportName, &resolved); err != nil {
			return nil, err
		}
		if resolved.Valid {
			id := resolved.Int64
			row.ResolvedFileID = &id
		}
		imports = append(imports, row)
	}
	return imports, rows.Err()
}

// ImportRow is one import edge as stored, resolved or not.
type ImportRow struct {
	ToModule       string
	ImportName     string
	ResolvedFileID *int64
}

// GetAllImportEdges returns every import edge in the database, used
// by the import-graph diagram generator.
func (s *Store) GetAllImportEdges(ctx context.Context) ([]ImportEdgeRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.relative_path, i.to_module, i.resolved_file_id, rf.relative_path
		FROM imports i
		JOIN files f ON f.id = i.file_id
		LEFT JOIN files rf ON rf.id = i.resolved_file_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []ImportEdgeRow
	for rows.Next() {
		var (
			e            ImportEdgeRow
			resolvedPath sql.NullString
		)
		if err := rows.Scan(&e.FromPath, &e.ToModule, &e.ResolvedFileID, &resolvedPath); err != nil {
			return nil, err
		}
		if resolvedPath.Valid {
			e.ResolvedPath = resolvedPath.String
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// ImportEdgeRow is one import edge annotated with source and resolved
// (when known) file paths.
type ImportEdgeRow struct {
	FromPath       string
	ToModule       string
	ResolvedFileID sql.NullInt64
	ResolvedPath   string
}
