package block

import (
	"context"
	"fmt"
	"io"

	"orchard/internal/infra/block/fs"
	"orchard/internal/infra/block/memory"
	"orchard/internal/infra/block/postgres"
	"orchard/internal/infra/block/s3"
	"orchard/internal/infra/block/sqlite"
)

// S3Config configures the S3 backend.
type S3Config = s3.Config

// Config selects and parameterizes a backend. Empty fields fall back to the
// backend defaults.
type Config struct {
	Driver      Driver
	FSRoot      string
	SQLitePath  string
	PostgresDSN string
	S3          S3Config
}

// Open constructs the Store named by cfg.Driver (default fs).
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return fs.New(cfg.FSRoot)
	case DriverMemory:
		return memory.New(), nil
	case DriverS3:
		return s3.New(ctx, cfg.S3)
	case DriverSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case DriverPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown block driver %s", driver)
	}
}

// Close releases the resources held by store when it owns any.
func Close(store Store) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
