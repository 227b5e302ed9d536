//go:build !sqlite_vec

package storage

// This file is compiled whenever the sqlite_vec build tag is absent
// (the default build and the purego build). It provides stand-ins for
// the native vec0 functions; they're never called, since vectorIndex.native
// is only true when VectorExtensionAvailable is (build_cgo.go, sqlite_vec
// tag only), but the symbols must exist for vector.go to link.

import (
	"context"
	"database/sql"
	"fmt"
)

func initNativeVectorExtension() {}

func ensureNativeVectorTable(ctx context.Context, db *sql.DB, dim int) error {
	return fmt.Errorf("native vector extension not compiled into this build")
}

func upsertNativeVector(ctx context.Context, db *sql.DB, symbolID int64, vector []float32) error {
	return fmt.Errorf("native vector extension not compiled into this build")
}

func clearNativeVectors(ctx context.Context, db *sql.DB) error {
	return fmt.Errorf("native vector extension not compiled into this build")
}

func searchNativeVectors(ctx context.Context, db *sql.DB, query []float32, k int) ([]VectorMatch, error) {
	return nil, fmt.Errorf("native vector extension not compiled into this build")
}
