// Package pgvector provides a VectorIndex backed by PostgreSQL with the
// pgvector extension.
//
// The table carries no ANN index, so ORDER BY embedding <-> $1 is an exact
// L2 scan. Positions are assigned inside a transaction holding an exclusive
// table lock, which keeps batches contiguous across processes.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultTable is the table used when none is configured.
const DefaultTable = "chunk_vectors"

// Config holds configuration for the pgvector index.
type Config struct {
	// DSN is a lib/pq connection string.
	DSN string

	// Table is the table name. Defaults to DefaultTable.
	Table string

	// Dimensions is the vector size.
	Dimensions int
}

// Index stores vectors in a PostgreSQL table.
type Index struct {
	db    *sql.DB
	table string
	dims  int
}

// Open connects, ensures the extension and table exist, and verifies an
// existing table was created with the same dimensions.
func Open(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", domain.ErrVectorIndexUnavailable, err)
	}

	return newIndex(ctx, db, cfg.Table, cfg.Dimensions)
}

func newIndex(ctx context.Context, db *sql.DB, table string, dims int) (*Index, error) {
	x := &Index{db: db, table: pq.QuoteIdentifier(table), dims: dims}

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			position  BIGINT PRIMARY KEY,
			embedding vector(%d) NOT NULL
		)`, x.table, dims),
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("prepare pgvector schema: %w", err)
		}
	}

	var existing sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT atttypmod FROM pg_attribute
		 WHERE attrelid = $1::regclass AND attname = 'embedding'`, table).Scan(&existing)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("inspect pgvector schema: %w", err)
	}
	if existing.Valid && existing.Int64 > 0 && int(existing.Int64) != dims {
		_ = db.Close()
		return nil, fmt.Errorf("%w: table %s has %d dimensions, embedder produces %d",
			domain.ErrDimensionMismatch, table, existing.Int64, dims)
	}

	return x, nil
}

// Add appends vectors in one transaction and returns the first position.
func (x *Index) Add(ctx context.Context, vectors [][]float32) (int, error) {
	for i, v := range vectors {
		if len(v) != x.dims {
			return 0, fmt.Errorf("%w: vector %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, len(v), x.dims)
		}
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`LOCK TABLE %s IN EXCLUSIVE MODE`, x.table)); err != nil {
		return 0, fmt.Errorf("lock vector table: %w", err)
	}

	var start int
	if err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COALESCE(MAX(position) + 1, 0) FROM %s`, x.table)).Scan(&start); err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (position, embedding) VALUES ($1, $2)`, x.table))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range vectors {
		if _, err := stmt.ExecContext(ctx, start+i, pgvector.NewVector(v)); err != nil {
			return 0, fmt.Errorf("insert vector %d: %w", start+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return start, nil
}

// Search returns up to k nearest vectors by L2 distance, closest first.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), x.dims)
	}
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	rows, err := x.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT position, embedding <-> $1 AS distance
		 FROM %s ORDER BY distance, position LIMIT $2`, x.table),
		pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	hits := make([]driven.VectorHit, 0, k)
	for rows.Next() {
		var h driven.VectorHit
		if err := rows.Scan(&h.Position, &h.Distance); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hits: %w", err)
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (x *Index) Len(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, x.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count vectors: %w", err)
	}
	return n, nil
}

// Dimensions returns the vector size.
func (x *Index) Dimensions() int {
	return x.dims
}

// Close closes the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}
