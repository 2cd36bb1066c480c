// Package core defines the block storage contract used to persist fixed-size
// records, plus helpers shared by the concrete backends.
package core

import (
	"context"
	"errors"
	"fmt"
)

// Driver identifies a concrete block storage backend implementation.
type Driver string

const (
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory"
	// DriverFilesystem stores one file per block under a root directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3"
	// DriverSQLite represents an embedded sqlite file.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres represents a PostgreSQL server.
	DriverPostgres Driver = "postgres"
)

// BlockSize is the capacity of one block in bytes.
const BlockSize = 2048

// ErasedByte is the value of never-written bytes inside a block.
const ErasedByte = 0xFF

// ID addresses a block.
type ID uint32

// Store reads committed blocks and applies atomic patches to them.
type Store interface {
	// GetData returns a copy of the committed block. ok is false when the
	// block has never been written.
	GetData(ctx context.Context, id ID) (data []byte, ok bool, err error)
	// PatchData writes buf at offset within the block as one atomic commit.
	// Bytes outside the patch keep their previous (or erased) value.
	PatchData(ctx context.Context, id ID, buf []byte, offset int) error
	// Driver returns the configured backend driver.
	Driver() Driver
}

// ErrOutOfBounds is returned when a patch does not fit inside a block.
var ErrOutOfBounds = errors.New("block: patch out of bounds")

// CheckPatch validates that len bytes at offset fit in a block.
func CheckPatch(offset, length int) error {
	if offset < 0 || length < 0 || offset+length > BlockSize {
		return fmt.Errorf("%w: offset %d length %d block %d", ErrOutOfBounds, offset, length, BlockSize)
	}
	return nil
}

// ErasedBlock returns a block with every byte erased.
func ErasedBlock() []byte {
	b := make([]byte, BlockSize)
	for i := range b {
		b[i] = ErasedByte
	}
	return b
}

// Apply returns a new block holding base with buf written at offset. A nil
// or short base is padded with erased bytes.
func Apply(base, buf []byte, offset int) ([]byte, error) {
	if err := CheckPatch(offset, len(buf)); err != nil {
		return nil, err
	}
	out := ErasedBlock()
	copy(out, base)
	copy(out[offset:], buf)
	return out, nil
}
