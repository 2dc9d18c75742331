// Package config loads and validates collide run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/tamirms/collide"
	collideerrors "github.com/tamirms/collide/errors"
	"github.com/tamirms/collide/source"
)

// DefaultTotal is 7^8 * 2 identifiers.
const DefaultTotal = 1_176_490

// DefaultProgressInterval is how many distinct identifiers a worker collects
// between progress reports.
const DefaultProgressInterval = 100_000

// Source kinds.
const (
	SourceRandom = "random"
	SourceSeeded = "seeded"
	SourceFile   = "file"
	SourceExec   = "exec"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is a collide run configuration.
type Config struct {
	Total            int     `toml:"total"`
	Workers          int     `toml:"workers"`
	BatchSize        int     `toml:"batch_size"`
	Buckets          int     `toml:"buckets"`
	KeyspaceExponent int     `toml:"keyspace_exponent"`
	Tolerance        float64 `toml:"tolerance"`
	MaxBatches       int     `toml:"max_batches"`
	ProgressInterval int     `toml:"progress_interval"`
	Format           string  `toml:"format"`

	Source SourceConfig `toml:"source"`
	Log    LogConfig    `toml:"log"`
}

// SourceConfig selects and parameterizes the Identifier Source.
type SourceConfig struct {
	// Kind is one of "random", "seeded", "file" or "exec".
	Kind string `toml:"kind"`
	// Seed feeds the seeded source.
	Seed uint64 `toml:"seed"`
	// Length is the generated identifier length, tag included.
	Length int `toml:"length"`
	// Path is the identifier dump read by the file source.
	Path string `toml:"path"`
	// Command is the argv run by the exec source. "{count}" is replaced
	// by the batch size.
	Command []string `toml:"command"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Total:            DefaultTotal,
		Workers:          0,
		BatchSize:        collide.DefaultBatchSize,
		Buckets:          collide.DefaultBuckets,
		KeyspaceExponent: collide.DefaultKeyspaceExponent,
		Tolerance:        collide.DefaultTolerance,
		ProgressInterval: DefaultProgressInterval,
		Format:           FormatText,
		Source: SourceConfig{
			Kind:   SourceRandom,
			Seed:   1,
			Length: source.DefaultLength,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path, or a path that does
// not exist, yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// EffectiveWorkers returns Workers, or the number of CPUs when it is zero.
func (c *Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// Options converts the configuration to collide run options.
func (c *Config) Options() []collide.Option {
	return []collide.Option{
		collide.WithWorkers(c.Workers),
		collide.WithBatchSize(c.BatchSize),
		collide.WithBuckets(c.Buckets),
		collide.WithKeyspaceExponent(c.KeyspaceExponent),
		collide.WithTolerance(c.Tolerance),
		collide.WithMaxBatches(c.MaxBatches),
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", collideerrors.ErrInvalidConfig, fmt.Sprintf(format, args...)))
	}

	if c.Total <= 0 {
		invalid("total must be positive, got %d", c.Total)
	}
	if c.Workers < 0 {
		invalid("workers must not be negative, got %d", c.Workers)
	}
	if c.BatchSize <= 0 {
		invalid("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Buckets <= 0 {
		invalid("buckets must be positive, got %d", c.Buckets)
	}
	if c.KeyspaceExponent <= 0 {
		invalid("keyspace_exponent must be positive, got %d", c.KeyspaceExponent)
	}
	if c.Tolerance < 0 || c.Tolerance >= 1 {
		invalid("tolerance must be in [0, 1), got %v", c.Tolerance)
	}
	if c.MaxBatches < 0 {
		invalid("max_batches must not be negative, got %d", c.MaxBatches)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		invalid("format must be text, json or yaml, got %q", c.Format)
	}

	switch c.Source.Kind {
	case SourceRandom, SourceSeeded:
		if c.Source.Length < 2 {
			invalid("source.length must be at least 2, got %d", c.Source.Length)
		}
	case SourceFile:
		if c.Source.Path == "" {
			invalid("source.path is required for the file source")
		}
	case SourceExec:
		if len(c.Source.Command) == 0 {
			invalid("source.command is required for the exec source")
		}
	default:
		invalid("unknown source.kind %q", c.Source.Kind)
	}

	return errors.Join(errs...)
}
