// Package block re-exports the block storage contract and selects a backend.
package block

import "orchard/internal/block/core"

type (
	// Driver identifies a block backend driver.
	Driver = core.Driver
	// ID addresses a block.
	ID = core.ID
	// Store is the interface for block storage backends.
	Store = core.Store
)

const (
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverSQLite is the embedded sqlite driver.
	DriverSQLite = core.DriverSQLite
	// DriverPostgres is the PostgreSQL driver.
	DriverPostgres = core.DriverPostgres

	// Size is the capacity of one block in bytes.
	Size = core.BlockSize
	// ErasedByte is the value of never-written bytes.
	ErasedByte = core.ErasedByte
)

// ErrOutOfBounds is returned when a patch does not fit inside a block.
var ErrOutOfBounds = core.ErrOutOfBounds
