package collide

import (
	"fmt"
	"log/slog"
	"runtime"

	collideerrors "github.com/tamirms/collide/errors"
)

const (
	// DefaultBatchSize is the largest number of identifiers requested from a
	// Source in one call.
	DefaultBatchSize = 10_000

	// DefaultBuckets is the number of histogram buckets over the keyspace.
	DefaultBuckets = 20

	// DefaultKeyspaceExponent is k in the keyspace [0, 36^k).
	DefaultKeyspaceExponent = 23

	// DefaultTolerance is the allowed relative deviation of a bucket from
	// the expected uniform bucket size.
	DefaultTolerance = 0.05
)

// Option is a functional option for configuring pool builds and runs.
type Option func(*runConfig)

type runConfig struct {
	workers          int
	batchSize        int
	buckets          int
	exponent         int
	maxBatches       int // 0 means unbounded
	tolerance        float64
	progressInterval int
	progress         ProgressFunc
	logger           *slog.Logger

	worker int // index of the worker building a pool; set by RunParallel
}

func defaultRunConfig() *runConfig {
	return &runConfig{
		workers:   0, // Resolved to runtime.NumCPU() when a run starts
		batchSize: DefaultBatchSize,
		buckets:   DefaultBuckets,
		exponent:  DefaultKeyspaceExponent,
		tolerance: DefaultTolerance,
	}
}

func newRunConfig(opts []Option) (*runConfig, error) {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *runConfig) validate() error {
	if c.batchSize <= 0 {
		return fmt.Errorf("%w: %d", collideerrors.ErrInvalidBatchSize, c.batchSize)
	}
	if c.workers < 0 {
		return fmt.Errorf("%w: %d", collideerrors.ErrInvalidWorkers, c.workers)
	}
	if c.buckets <= 0 {
		return fmt.Errorf("%w: %d", collideerrors.ErrInvalidBuckets, c.buckets)
	}
	if c.exponent <= 0 {
		return fmt.Errorf("%w: %d", collideerrors.ErrInvalidKeyspace, c.exponent)
	}
	if c.tolerance < 0 || c.tolerance >= 1 {
		return fmt.Errorf("%w: %v", collideerrors.ErrInvalidTolerance, c.tolerance)
	}
	return nil
}

// effectiveWorkers returns the configured worker count, defaulting to the
// number of available CPUs.
func (c *runConfig) effectiveWorkers() int {
	if c.workers > 0 {
		return c.workers
	}
	return runtime.NumCPU()
}

// WithWorkers sets the number of parallel workers.
// Zero (the default) uses one worker per available CPU.
func WithWorkers(n int) Option {
	return func(c *runConfig) {
		c.workers = n
	}
}

// WithBatchSize sets the largest number of identifiers requested from a
// Source per call.
func WithBatchSize(n int) Option {
	return func(c *runConfig) {
		c.batchSize = n
	}
}

// WithBuckets sets the number of histogram buckets.
func WithBuckets(n int) Option {
	return func(c *runConfig) {
		c.buckets = n
	}
}

// WithKeyspaceExponent sets k for the keyspace [0, 36^k).
func WithKeyspaceExponent(k int) Option {
	return func(c *runConfig) {
		c.exponent = k
	}
}

// WithMaxBatches caps the number of Source requests a single pool build may
// issue. A pool build that reaches the cap without collecting its target
// fails with ErrBatchLimit. Zero (the default) leaves the loop unbounded, so
// a Source that keeps repeating itself makes the build spin forever.
func WithMaxBatches(n int) Option {
	return func(c *runConfig) {
		c.maxBatches = n
	}
}

// WithTolerance sets the distribution tolerance used by Run.
func WithTolerance(f float64) Option {
	return func(c *runConfig) {
		c.tolerance = f
	}
}

// WithProgress registers fn to be called whenever a pool's accumulator
// crosses a multiple of interval distinct identifiers, and once when the
// pool is complete. fn is called from worker goroutines and must be safe for
// concurrent use. An interval <= 0 reports completion only.
func WithProgress(interval int, fn ProgressFunc) Option {
	return func(c *runConfig) {
		c.progressInterval = interval
		c.progress = fn
	}
}

// WithLogger sets the logger for shortfall warnings and run events.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// withWorker records the index of the worker a pool is built for.
func withWorker(i int) Option {
	return func(c *runConfig) {
		c.worker = i
	}
}
