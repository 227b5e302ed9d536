package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/dshills/codelibrarian/pkg/types"
)

// vectorIndex wraps whichever vector search strategy this build
// supports: the native sqlite-vec extension when compiled with the
// sqlite_vec build tag (VectorExtensionAvailable), or a Go-side
// brute-force cosine scan otherwise. The embeddings table is written in
// every build and is what the Go scan reads; the native path searches
// the separate symbol_vectors vec0 table, which only a sqlite_vec build
// fills.
type vectorIndex struct {
	db     *sql.DB
	native bool
	dim    int
}

func openVectorIndex(db *sql.DB) (*vectorIndex, error) {
	if !VectorExtensionAvailable {
		return &vectorIndex{db: db, native: false}, nil
	}
	initNativeVectorExtension()
	return &vectorIndex{db: db, native: true}, nil
}

// EnsureVectorTable (re)creates the native vec0 virtual table for the
// given embedding dimension. Called once per indexing run since vec0
// tables are fixed-dimension; a dimension change (e.g. switching
// embedding models) drops and recreates it, matching the reference
// implementation's reembed behavior.
func (s *Store) EnsureVectorTable(ctx context.Context, dim int) error {
	if !s.vec.native {
		s.vec.dim = dim
		return nil
	}
	if s.vec.dim == dim {
		return nil
	}
	if err := ensureNativeVectorTable(ctx, s.db, dim); err != nil {
		return err
	}
	s.vec.dim = dim
	return nil
}

// UpsertEmbedding stores a symbol's embedding vector, updating both
// the durable embeddings table and (when available) the native vec0
// index used for fast nearest-neighbor search.
func (s *Store) UpsertEmbedding(ctx context.Context, symbolID int64, vector []float32, model string) error {
	blob := encodeVector(vector)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (symbol_id, vector, dimension, model, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(symbol_id) DO UPDATE SET
			vector = excluded.vector, dimension = excluded.dimension,
			model = excluded.model, created_at = CURRENT_TIMESTAMP
	`, symbolID, blob, len(vector), model)
	if err != nil {
		return fmt.Errorf("upsert embedding for symbol %d: %w", symbolID, err)
	}

	if s.vec.native {
		if err := upsertNativeVector(ctx, s.db, symbolID, vector); err != nil {
			return err
		}
	}
	return nil
}

// ClearEmbeddings marks every symbol's embedding stale by deleting all
// embedding rows (durable table and, when present, the native vec0
// index), so a subsequent embedding pass re-requests every symbol from
// scratch. Used by the indexer's "reembed" mode.
func (s *Store) ClearEmbeddings(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return fmt.Errorf("clear embeddings: %w", err)
	}
	if s.vec.native {
		if err := clearNativeVectors(ctx, s.db); err != nil {
			return err
		}
	}
	return nil
}

// SymbolsWithoutEmbeddings returns up to limit symbol ids and their
// embedding text that have no row in the embeddings table yet.
func (s *Store) SymbolsWithoutEmbeddings(ctx context.Context, limit int) ([]*types.SymbolRecord, error) {
	rows, err := s.db.QueryContext(ctx, symbolSelectSQL+`
		WHERE s.id NOT IN (SELECT symbol_id FROM embeddings)
		ORDER BY s.id LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSymbolRecordsFromRows(rows)
}

// VectorMatch is one nearest-neighbor search result.
type VectorMatch struct {
	SymbolID int64
	Distance float64
}

// VectorSearch returns the k symbols whose embeddings are nearest to
// query, using the native sqlite-vec index when available and a
// brute-force Go scan otherwise.
func (s *Store) VectorSearch(ctx context.Context, query []float32, k int) ([]VectorMatch, error) {
	if s.vec.native {
		return searchNativeVectors(ctx, s.db, query, k)
	}
	return s.vectorSearchGo(ctx, query, k)
}

func (s *Store) vectorSearchGo(ctx context.Context, query []float32, k int) ([]VectorMatch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol_id, vector FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("go-fallback vector scan: %w", err)
	}
	defer rows.Close()

	var matches []VectorMatch
	for rows.Next() {
		var symbolID int64
		var blob []byte
		if err := rows.Scan(&symbolID, &blob); err != nil {
			return nil, err
		}
		vec := decodeVector(blob)
		matches = append(matches, VectorMatch{
			SymbolID: symbolID,
			Distance: cosineDistance(query, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0 // maximal cosine distance, sorts last
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2.0
	}
	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return 1 - similarity
}

func encodeVector(v []float32) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(v) * 4)
	for _, f := range v {
		_ = binary.Write(buf, binary.LittleEndian, f)
	}
	return buf.Bytes()
}

func decodeVector(blob []byte) []float32 {
	n := len(blob) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
		v[i] = math.Float32frombits(bits)
	}
	return v
}
