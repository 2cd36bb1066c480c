// Package postgres provides a Postgres-backed block Store using the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"orchard/internal/block/core"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion ensuring the store satisfies the block interface.
var _ core.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/orchard?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists blocks as rows of the `blocks` table.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back to
// defaultDSN) and ensures the blocks table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureBlocksTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureBlocksTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS blocks (
		block_id BIGINT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure blocks table: %w", err)
	}
	return nil
}

// Driver returns the block driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverPostgres }

// GetData returns the stored payload of the block.
func (s *Store) GetData(ctx context.Context, id core.ID) ([]byte, bool, error) {
	return readBlock(ctx, s.db.QueryRowContext, `SELECT payload FROM blocks WHERE block_id = $1`, id)
}

func readBlock(ctx context.Context, queryRow func(context.Context, string, ...any) *sql.Row, query string, id core.ID) ([]byte, bool, error) {
	var payload []byte
	err := queryRow(ctx, query, int64(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select block %d: %w", id, err)
	}
	return payload, true, nil
}

// PatchData locks the row, applies the patch and upserts it in one transaction.
func (s *Store) PatchData(ctx context.Context, id core.ID, buf []byte, offset int) error {
	if err := core.CheckPatch(offset, len(buf)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	base, _, err := readBlock(ctx, tx.QueryRowContext, `SELECT payload FROM blocks WHERE block_id = $1 FOR UPDATE`, id)
	if err != nil {
		return err
	}
	next, err := core.Apply(base, buf, offset)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO blocks(block_id,payload) VALUES($1,$2) ON CONFLICT(block_id) DO UPDATE SET payload=EXCLUDED.payload`, int64(id), next); err != nil {
		return fmt.Errorf("upsert block %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
