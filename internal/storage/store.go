package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/codelibrarian/pkg/types"
)

// Store is the SQLite-backed persistence layer for one project's index.
// It is safe for concurrent readers, but writes must go through a
// single caller at a time — see internal/indexer for the writer
// discipline this assumes.
type Store struct {
	db  *sql.DB
	vec *vectorIndex
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting every
// WithQuerier method run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx wraps a database transaction; every Store method has a matching
// Tx method so a caller can batch a file's writes atomically.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// Open connects to the SQLite database at dbPath, applying pending
// migrations and loading the sqlite-vec extension when the build was
// compiled with CGO support for it.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	// SQLite has one writer at a time regardless of connection count;
	// pinning the pool to one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	vec, err := openVectorIndex(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open vector index: %w", err)
	}

	return &Store{db: db, vec: vec}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginTx starts a transaction whose Store-shaped methods share it.
func (s *Store) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func (s *Store) querier() querier { return s.db }
func (t *Tx) querier() querier    { return t.tx }

// FileRecord is a tracked source file as hydrated from the store.
type FileRecord struct {
	ID            int64
	RelativePath  string
	Language      string
	ContentHash   string
	LastIndexedAt time.Time
}

// UpsertFile inserts or updates a file row keyed by its relative path
// and returns its id.
func (s *Store) UpsertFile(ctx context.Context, relPath, language, contentHash string) (int64, error) {
	return upsertFile(ctx, s.querier(), relPath, language, contentHash)
}

// UpsertFile is the transactional counterpart of Store.UpsertFile.
func (t *Tx) UpsertFile(ctx context.Context, relPath, language, contentHash string) (int64, error) {
	return upsertFile(ctx, t.querier(), relPath, language, contentHash)
}

func upsertFile(ctx context.Context, q querier, relPath, language, contentHash string) (int64, error) {
	_, err := q.ExecContext(ctx, `
		INSERT INTO files (relative_path, language, content_hash, last_indexed_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(relative_path) DO UPDATE SET
			language = excluded.language,
			content_hash = excluded.content_hash,
			last_indexed_at = CURRENT_TIMESTAMP
	`, relPath, language, contentHash)
	if err != nil {
		return 0, fmt.Errorf("upsert file %s: %w", relPath, err)
	}
	var id int64
	if err := q.QueryRowContext(ctx, `SELECT id FROM files WHERE relative_path = ?`, relPath).Scan(&id); err != nil {
		return 0, fmt.Errorf("read back file id for %s: %w", relPath, err)
	}
	return id, nil
}

// GetFileByPath returns the file record for relPath, or ErrNotFound.
func (s *Store) GetFileByPath(ctx context.Context, relPath string) (*FileRecord, error) {
	row := s.querier().QueryRowContext(ctx, `
		SELECT id, relative_path, language, content_hash, last_indexed_at
		FROM files WHERE relative_path = ?
	`, relPath)
	return scanFile(row)
}

func scanFile(row *sql.Row) (*FileRecord, error) {
	var f FileRecord
	if err := row.Scan(&f.ID, &f.RelativePath, &f.Language, &f.ContentHash, &f.LastIndexedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// DeleteFile removes a file row by id. Foreign keys declared ON DELETE
// CASCADE take care of the rest: its symbols, their full-text rows,
// their embeddings, and their outbound edges all disappear with it.
// Inbound edges from surviving files (imports.resolved_file_id,
// calls.callee_id, inherits.parent_id) are declared ON DELETE SET NULL,
// so they remain as unresolved edges rather than vanishing — exactly
// the ownership rule in spec.md §3.
func (s *Store) DeleteFile(ctx context.Context, fileID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID); err != nil {
		return fmt.Errorf("delete file %d: %w", fileID, err)
	}
	return nil
}

// ListFiles returns every tracked file, ordered by relative path.
func (s *Store) ListFiles(ctx context.Context) ([]*FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, relative_path, language, content_hash, last_indexed_at
		FROM files ORDER BY relative_path
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.ID, &f.RelativePath, &f.Language, &f.ContentHash, &f.LastIndexedAt); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// DeleteFileSymbols removes a file's symbols (and everything that
// cascades from them: FTS rows, calls, inherits, embeddings) while
// preserving edges that point *into* those symbols from elsewhere by
// nulling the far end first — mirroring the original store's
// deletion order so re-indexing never trips a foreign-key violation.
func (s *Store) DeleteFileSymbols(ctx context.Context, fileID int64) error {
	return deleteFileSymbols(ctx, s.querier(), fileID)
}

// DeleteFileSymbols is the transactional counterpart.
func (t *Tx) DeleteFileSymbols(ctx context.Context, fileID int64) error {
	return deleteFileSymbols(ctx, t.querier(), fileID)
}

func deleteFileSymbols(ctx context.Context, q querier, fileID int64) error {
	if _, err := q.ExecContext(ctx, `
		UPDATE calls SET callee_id = NULL
		WHERE callee_id IN (SELECT id FROM symbols WHERE file_id = ?)
	`, fileID); err != nil {
		return fmt.Errorf("null dangling call targets: %w", err)
	}
	if _, err := q.ExecContext(ctx, `
		UPDATE inherits SET parent_id = NULL
		WHERE parent_id IN (SELECT id FROM symbols WHERE file_id = ?)
	`, fileID); err != nil {
		return fmt.Errorf("null dangling inherit targets: %w", err)
	}
	// Children (methods) first, since parent_id has ON DELETE SET NULL
	// rather than CASCADE and we want a clean re-insert, not orphans.
	if _, err := q.ExecContext(ctx, `
		DELETE FROM symbols WHERE file_id = ? AND parent_id IS NOT NULL
	`, fileID); err != nil {
		return fmt.Errorf("delete child symbols: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM symbols WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("delete symbols: %w", err)
	}
	return nil
}

// InsertSymbol inserts a parsed symbol and returns its id. parentID is
// nil for top-level functions, classes, and modules.
func (s *Store) InsertSymbol(ctx context.Context, fileID int64, sym types.Symbol, parentID *int64) (int64, error) {
	return insertSymbol(ctx, s.querier(), fileID, sym, parentID)
}

// InsertSymbol is the transactional counterpart.
func (t *Tx) InsertSymbol(ctx context.Context, fileID int64, sym types.Symbol, parentID *int64) (int64, error) {
	return insertSymbol(ctx, t.querier(), fileID, sym, parentID)
}

func insertSymbol(ctx context.Context, q querier, fileID int64, sym types.Symbol, parentID *int64) (int64, error) {
	paramsJSON, err := json.Marshal(sym.Parameters)
	if err != nil {
		return 0, fmt.Errorf("marshal parameters for %s: %w", sym.QualifiedName, err)
	}
	decoratorsJSON, err := json.Marshal(sym.Decorators)
	if err != nil {
		return 0, fmt.Errorf("marshal decorators for %s: %w", sym.QualifiedName, err)
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO symbols (
			file_id, parent_id, name, qualified_name, kind,
			line_start, line_end, signature, documentation,
			parameters, return_type, decorators
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, fileID, parentID, sym.Name, sym.QualifiedName, string(sym.Kind),
		sym.LineStart, sym.LineEnd, sym.Signature, sym.Documentation,
		string(paramsJSON), sym.ReturnType, string(decoratorsJSON))
	if err != nil {
		return 0, fmt.Errorf("insert symbol %s: %w", sym.QualifiedName, err)
	}
	return res.LastInsertId()
}

// GetSymbolByID returns the fully hydrated record for a symbol id.
func (s *Store) GetSymbolByID(ctx context.Context, id int64) (*types.SymbolRecord, error) {
	row := s.db.QueryRowContext(ctx, symbolSelectSQL+" WHERE s.id = ?", id)
	return scanSymbolRecord(row)
}

// GetSymbolByQualifiedName returns the record for an exact qualified
// name match, or ErrNotFound. When multiple kinds share a qualified
// name the first row SQLite returns wins (see DESIGN.md Open Question 6).
func (s *Store) GetSymbolByQualifiedName(ctx context.Context, qualifiedName string) (*types.SymbolRecord, error) {
	row := s.db.QueryRowContext(ctx, symbolSelectSQL+" WHERE s.qualified_name = ? LIMIT 1", qualifiedName)
	return scanSymbolRecord(row)
}

const symbolSelectSQL = `
	SELECT s.id, s.file_id, f.relative_path, s.name, s.qualified_name, s.kind,
	       s.line_start, s.line_end, s.signature, s.documentation,
	       s.parameters, s.return_type, s.decorators, s.parent_id
	FROM symbols s
	JOIN files f ON f.id = s.file_id
`

func scanSymbolRecord(row *sql.Row) (*types.SymbolRecord, error) {
	var (
		r              types.SymbolRecord
		kind           string
		paramsJSON     string
		decoratorsJSON string
		parentID       sql.NullInt64
	)
	err := row.Scan(&r.ID, &r.FileID, &r.RelativePath, &r.Name, &r.QualifiedName, &kind,
		&r.LineStart, &r.LineEnd, &r.Signature, &r.Documentation,
		&paramsJSON, &r.ReturnType, &decoratorsJSON, &parentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	r.Kind = types.SymbolKind(kind)
	r.FilePath = r.RelativePath
	if paramsJSON != "" {
		_ = json.Unmarshal([]byte(paramsJSON), &r.Parameters)
	}
	if decoratorsJSON != "" {
		_ = json.Unmarshal([]byte(decoratorsJSON), &r.Decorators)
	}
	if parentID.Valid {
		id := parentID.Int64
		r.ParentID = &id
	}
	return &r, nil
}

func scanSymbolRecordsFromRows(rows *sql.Rows) ([]*types.SymbolRecord, error) {
	var records []*types.SymbolRecord
	for rows.Next() {
		var (
			r              types.SymbolRecord
			kind           string
			paramsJSON     string
			decoratorsJSON string
			parentID       sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.FileID, &r.RelativePath, &r.Name, &r.QualifiedName, &kind,
			&r.LineStart, &r.LineEnd, &r.Signature, &r.Documentation,
			&paramsJSON, &r.ReturnType, &decoratorsJSON, &parentID); err != nil {
			return nil, err
		}
		r.Kind = types.SymbolKind(kind)
		r.FilePath = r.RelativePath
		if paramsJSON != "" {
			_ = json.Unmarshal([]byte(paramsJSON), &r.Parameters)
		}
		if decoratorsJSON != "" {
			_ = json.Unmarshal([]byte(decoratorsJSON), &r.Decorators)
		}
		if parentID.Valid {
			id := parentID.Int64
			r.ParentID = &id
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// LookupSymbol resolves a name to symbols by exact qualified-name or
// name match; when nothing matches exactly it falls back to a
// case-insensitive prefix match, capped at 20 results either way.
func (s *Store) LookupSymbol(ctx context.Context, name string) ([]*types.SymbolRecord, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectSQL+`
		WHERE s.qualified_name = ? OR s.name = ?
		ORDER BY s.qualified_name LIMIT 20
	`, name, name)
	if err != nil {
		return nil, err
	}
	exact, err := scanSymbolRecordsFromRows(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(exact) > 0 {
		return exact, nil
	}

	rows, err = s.db.QueryContext(ctx, symbolSelectSQL+`
		WHERE s.name LIKE ? OR s.qualified_name LIKE ?
		ORDER BY s.qualified_name LIMIT 20
	`, name+"%", name+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbolRecordsFromRows(rows)
}

// ListSymbolFilter narrows ListSymbols by kind and/or file path.
type ListSymbolFilter struct {
	Kind         types.SymbolKind
	RelativePath string
}

// ListSymbols returns up to 200 symbols, optionally filtered by kind
// and/or file.
func (s *Store) ListSymbols(ctx context.Context, filter ListSymbolFilter) ([]*types.SymbolRecord, error) {
	query := symbolSelectSQL + " WHERE 1=1"
	var args []any
	if filter.Kind != "" {
		query += " AND s.kind = ?"
		args = append(args, string(filter.Kind))
	}
	if filter.RelativePath != "" {
		query += " AND f.relative_path = ?"
		args = append(args, filter.RelativePath)
	}
	query += " ORDER BY s.qualified_name LIMIT 200"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbolRecordsFromRows(rows)
}

// GetMethodsForClass returns every symbol whose parent_id is the given
// class symbol's id, ordered by name.
func (s *Store) GetMethodsForClass(ctx context.Context, classID int64) ([]*types.SymbolRecord, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectSQL+`
		WHERE s.parent_id = ? ORDER BY s.name
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbolRecordsFromRows(rows)
}

// Stats summarizes the current index for the status tool.
type Stats struct {
	Files    int
	Symbols  int
	Imports  int
	Calls    int
	Inherits int
	Embedded int
}

// Stats reports row counts across the schema.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	queries := []struct {
		dest  *int
		query string
	}{
		{&st.Files, "SELECT COUNT(*) FROM files"},
		{&st.Symbols, "SELECT COUNT(*) FROM symbols"},
		{&st.Imports, "SELECT COUNT(*) FROM imports"},
		{&st.Calls, "SELECT COUNT(*) FROM calls"},
		{&st.Inherits, "SELECT COUNT(*) FROM inherits"},
		{&st.Embedded, "SELECT COUNT(*) FROM embeddings"},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("stats query %q: %w", q.query, err)
		}
	}
	return st, nil
}
