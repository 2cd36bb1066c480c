// Package sqlite implements a block Store in an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"orchard/internal/block/core"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store keeps one row per block in the `blocks` table. Patches run inside a
// transaction so the read-modify-write commits as a unit.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the SQLite database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "orchard.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS blocks (
		block_id INTEGER PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create blocks table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Driver returns the block driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverSQLite }

// GetData returns the stored payload of the block.
func (s *Store) GetData(ctx context.Context, id core.ID) ([]byte, bool, error) {
	return readBlock(ctx, s.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readBlock(ctx context.Context, q queryer, id core.ID) ([]byte, bool, error) {
	var payload []byte
	err := q.QueryRowContext(ctx, `SELECT payload FROM blocks WHERE block_id = ?`, int64(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select block %d: %w", id, err)
	}
	return payload, true, nil
}

// PatchData applies buf at offset within a transaction.
func (s *Store) PatchData(ctx context.Context, id core.ID, buf []byte, offset int) (retErr error) {
	if err := core.CheckPatch(offset, len(buf)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	base, _, err := readBlock(ctx, tx, id)
	if err != nil {
		return err
	}
	next, err := core.Apply(base, buf, offset)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO blocks(block_id,payload) VALUES(?,?) ON CONFLICT(block_id) DO UPDATE SET payload=excluded.payload`, int64(id), next); err != nil {
		return fmt.Errorf("upsert block %d: %w", id, err)
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
