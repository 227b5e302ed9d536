//go:build sqlite_vec

package storage

// This file is compiled only with the sqlite_vec build tag, alongside
// build_cgo.go. It is the sole importer of the sqlite-vec cgo binding so
// that a purego/CGO_ENABLED=0 build never has to link against it.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_vec,fts5" ./...

import (
	"context"
	"database/sql"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

func initNativeVectorExtension() {
	sqlite_vec.Auto()
}

func ensureNativeVectorTable(ctx context.Context, db *sql.DB, dim int) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS symbol_vectors`); err != nil {
		return fmt.Errorf("drop stale vector table: %w", err)
	}
	stmt := fmt.Sprintf(`CREATE VIRTUAL TABLE symbol_vectors USING vec0(symbol_id INTEGER PRIMARY KEY, embedding FLOAT[%d])`, dim)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create vector table: %w", err)
	}
	return nil
}

func upsertNativeVector(ctx context.Context, db *sql.DB, symbolID int64, vector []float32) error {
	vecJSON, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return fmt.Errorf("serialize vector for symbol %d: %w", symbolID, err)
	}
	if _, err := db.ExecContext(ctx, `
		INSERT INTO symbol_vectors (symbol_id, embedding) VALUES (?, ?)
		ON CONFLICT(symbol_id) DO UPDATE SET embedding = excluded.embedding
	`, symbolID, vecJSON); err != nil {
		return fmt.Errorf("upsert native vector for symbol %d: %w", symbolID, err)
	}
	return nil
}

func clearNativeVectors(ctx context.Context, db *sql.DB) error {
	var name string
	err := db.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master WHERE type='table' AND name='symbol_vectors'
	`).Scan(&name)
	switch {
	case err == sql.ErrNoRows:
		return nil
	case err != nil:
		return fmt.Errorf("check native vector table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM symbol_vectors`); err != nil {
		return fmt.Errorf("clear native vectors: %w", err)
	}
	return nil
}

func searchNativeVectors(ctx context.Context, db *sql.DB, query []float32, k int) ([]VectorMatch, error) {
	queryJSON, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, fmt.Errorf("serialize query vector: %w", err)
	}
	rows, err := db.QueryContext(ctx, `
		SELECT symbol_id, distance FROM symbol_vectors
		WHERE embedding MATCH ? AND k = ?
		ORDER BY distance
	`, queryJSON, k)
	if err != nil {
		return nil, fmt.Errorf("native vector search: %w", err)
	}
	defer rows.Close()

	var matches []VectorMatch
	for rows.Next() {
		var m VectorMatch
		if err := rows.Scan(&m.SymbolID, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
