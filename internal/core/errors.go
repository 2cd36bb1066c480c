package core

import (
	"fmt"

	blockcore "orchard/internal/block/core"
)

// StorageError wraps a failure reported by the block store.
type StorageError struct {
	Op    string
	Block blockcore.ID
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("genome %s block %d: %v", e.Op, e.Block, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
