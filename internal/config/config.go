// Package config loads runtime settings from a YAML document overlaid by
// ORCHARD_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"orchard/internal/block"
	"orchard/pkg/genome"
)

// DefaultYAML is the document every Load starts from.
const DefaultYAML = `# orchard configuration
storage:
  # memory, fs, s3, sqlite or postgres
  driver: fs
  fs_root: ./blockdata
  sqlite_path: orchard.db
  postgres_dsn: ""
  s3:
    region: us-east-1
    bucket: ""
    prefix: blocks/
    endpoint: ""
    path_style: false

genome:
  block: 1
  offset: 0
  # fixed seed for reproducible families; leave unset to seed from the clock
  # seed: 42

log:
  level: info
  format: text

metrics:
  # expvar, prometheus or none
  exporter: expvar
`

// S3Config mirrors the S3 backend parameters.
type S3Config struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// StorageConfig selects the block backend.
type StorageConfig struct {
	Driver      string   `yaml:"driver"`
	FSRoot      string   `yaml:"fs_root"`
	SQLitePath  string   `yaml:"sqlite_path"`
	PostgresDSN string   `yaml:"postgres_dsn"`
	S3          S3Config `yaml:"s3"`
}

// GenomeConfig locates the family record and seeds generation.
type GenomeConfig struct {
	Block  uint32  `yaml:"block"`
	Offset int     `yaml:"offset"`
	Seed   *uint64 `yaml:"seed,omitempty"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig picks the metrics exporter.
type MetricsConfig struct {
	Exporter string `yaml:"exporter"`
}

// Config is the full runtime configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Genome  GenomeConfig  `yaml:"genome"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Metrics exporters.
const (
	ExporterExpvar     = "expvar"
	ExporterPrometheus = "prometheus"
	ExporterNone       = "none"
)

// Default returns the configuration described by DefaultYAML.
func Default() Config {
	var cfg Config
	if err := decode(strings.NewReader(DefaultYAML), &cfg); err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// Load reads path (when non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304: operator-supplied config path
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(bytes.NewReader(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	str("ORCHARD_BLOCK_DRIVER", &cfg.Storage.Driver)
	str("ORCHARD_BLOCK_FS_ROOT", &cfg.Storage.FSRoot)
	str("ORCHARD_BLOCK_SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("ORCHARD_BLOCK_POSTGRES_DSN", &cfg.Storage.PostgresDSN)
	str("ORCHARD_BLOCK_S3_REGION", &cfg.Storage.S3.Region)
	str("ORCHARD_BLOCK_S3_BUCKET", &cfg.Storage.S3.Bucket)
	str("ORCHARD_BLOCK_S3_PREFIX", &cfg.Storage.S3.Prefix)
	str("ORCHARD_BLOCK_S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	str("ORCHARD_LOG_LEVEL", &cfg.Log.Level)
	str("ORCHARD_LOG_FORMAT", &cfg.Log.Format)
	str("ORCHARD_METRICS_EXPORTER", &cfg.Metrics.Exporter)

	if v, ok := lookup("ORCHARD_BLOCK_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ORCHARD_BLOCK_S3_PATH_STYLE: %w", err)
		}
		cfg.Storage.S3.PathStyle = b
	}
	if v, ok := lookup("ORCHARD_GENOME_BLOCK"); ok {
		n, err := strconv.ParseUint(v, 0, 32)
		if err != nil {
			return fmt.Errorf("ORCHARD_GENOME_BLOCK: %w", err)
		}
		cfg.Genome.Block = uint32(n)
	}
	if v, ok := lookup("ORCHARD_GENOME_OFFSET"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ORCHARD_GENOME_OFFSET: %w", err)
		}
		cfg.Genome.Offset = n
	}
	if v, ok := lookup("ORCHARD_GENOME_SEED"); ok {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return fmt.Errorf("ORCHARD_GENOME_SEED: %w", err)
		}
		cfg.Genome.Seed = &n
	}
	return nil
}

// Validate rejects unknown drivers, levels, formats and exporters, and a
// record that would not fit its block.
func (c Config) Validate() error {
	switch block.Driver(c.Storage.Driver) {
	case block.DriverMemory, block.DriverFilesystem, block.DriverS3, block.DriverSQLite, block.DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Genome.Offset < 0 || c.Genome.Offset+genome.RecordSize > block.Size {
		return fmt.Errorf("genome offset %d: record of %d bytes does not fit a %d byte block", c.Genome.Offset, genome.RecordSize, block.Size)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	switch c.Metrics.Exporter {
	case ExporterExpvar, ExporterPrometheus, ExporterNone:
	default:
		return fmt.Errorf("unknown metrics exporter %q", c.Metrics.Exporter)
	}
	return nil
}

// BlockConfig converts the storage section for block.Open.
func (c Config) BlockConfig() block.Config {
	return block.Config{
		Driver:      block.Driver(c.Storage.Driver),
		FSRoot:      c.Storage.FSRoot,
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
		S3: block.S3Config{
			Region:    c.Storage.S3.Region,
			Bucket:    c.Storage.S3.Bucket,
			Prefix:    c.Storage.S3.Prefix,
			Endpoint:  c.Storage.S3.Endpoint,
			PathStyle: c.Storage.S3.PathStyle,
		},
	}
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.Log.Level)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}
