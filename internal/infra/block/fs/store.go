// Package fs implements a block Store on a local directory, one file per block.
package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"

	"orchard/internal/block/core"
)

// Store keeps each block in `<root>/block-<id>.bin`. Patches are written to a
// temp file and renamed into place so readers never observe a partial block.
type Store struct {
	root string
	mu   sync.Mutex
}

// New returns a filesystem block store rooted at path, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./blockdata"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Driver returns the block driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

// Root returns the directory holding the block files.
func (s *Store) Root() string { return s.root }

func (s *Store) pathFor(id core.ID) string {
	return filepath.Join(s.root, fmt.Sprintf("block-%08x.bin", uint32(id)))
}

// GetData reads the block file; a missing file is an unwritten block.
func (s *Store) GetData(_ context.Context, id core.ID) ([]byte, bool, error) {
	b, err := os.ReadFile(s.pathFor(id))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// PatchData rewrites the whole block file with buf applied at offset.
func (s *Store) PatchData(ctx context.Context, id core.ID, buf []byte, offset int) error {
	if err := core.CheckPatch(offset, len(buf)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	base, _, err := s.GetData(ctx, id)
	if err != nil {
		return err
	}
	next, err := core.Apply(base, buf, offset)
	if err != nil {
		return err
	}
	dataPath := s.pathFor(id)
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(next); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// atomically move into place
	return os.Rename(tmp.Name(), dataPath)
}
