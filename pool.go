package collide

import (
	"context"
	"fmt"
	"math/big"

	"github.com/cespare/xxhash/v2"
	collideerrors "github.com/tamirms/collide/errors"
	"github.com/tamirms/collide/internal/keyspace"
)

// Pool is the output of one worker: target distinct identifiers in the order
// they were first seen, their keyspace positions, and a histogram of those
// positions.
type Pool struct {
	// Worker is the index of the worker that built the pool.
	Worker int
	// Target is the number of distinct identifiers the pool was asked for.
	Target int

	IDs       []string
	Numbers   []*big.Int // Numbers[i] is the keyspace position of IDs[i], nil if undecodable
	Histogram []int

	// Batches is the number of Source requests issued.
	Batches int
	// Shortfalls is the number of requests that returned fewer identifiers
	// than asked for.
	Shortfalls int
	// Duplicates is the number of returned identifiers the accumulator
	// already held.
	Duplicates int
	// Undecodable is the number of IDs whose body is not base 36.
	Undecodable int
	// Digest is the xxHash64 of IDs in order, newline separated.
	Digest uint64
}

// Progress is reported to a ProgressFunc while a pool is being built.
type Progress struct {
	Worker    int
	Collected int
	Target    int
}

// ProgressFunc observes pool build progress.
type ProgressFunc func(Progress)

// BuildPool requests identifiers from src until target distinct identifiers
// have been collected, then decodes each one (minus its first character)
// into a keyspace position and bins the positions into a histogram.
//
// Duplicates returned by src are collapsed silently. A short batch is
// recorded and followed by another request for the remainder. An error from
// src aborts the build and is returned wrapped in ErrSourceFailure.
// Identifiers are decoded case-insensitively; one that still cannot be
// decoded is kept with a nil position, left out of the histogram and
// counted in Undecodable.
func BuildPool(ctx context.Context, src Source, target int, opts ...Option) (*Pool, error) {
	if target <= 0 {
		return nil, fmt.Errorf("%w: %d", collideerrors.ErrInvalidTarget, target)
	}
	cfg, err := newRunConfig(opts)
	if err != nil {
		return nil, err
	}
	space, err := keyspace.New(cfg.exponent, cfg.buckets)
	if err != nil {
		return nil, err
	}
	return buildPool(ctx, src, target, cfg, space)
}

func buildPool(ctx context.Context, src Source, target int, cfg *runConfig, space *keyspace.Space) (*Pool, error) {
	pool := &Pool{
		Worker: cfg.worker,
		Target: target,
	}
	log := cfg.logger.With("worker", cfg.worker)

	seen := make(map[string]struct{}, target)
	ids := make([]string, 0, target)
	milestone := 0

	for len(ids) < target {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if cfg.maxBatches > 0 && pool.Batches >= cfg.maxBatches {
			return nil, fmt.Errorf("%w: worker %d collected %d of %d after %d batches",
				collideerrors.ErrBatchLimit, cfg.worker, len(ids), target, pool.Batches)
		}

		request := min(cfg.batchSize, target-len(ids))
		batch, err := src.Generate(ctx, request)
		pool.Batches++
		if err != nil {
			return nil, fmt.Errorf("%w: worker %d batch %d: %w",
				collideerrors.ErrSourceFailure, cfg.worker, pool.Batches, err)
		}
		if len(batch) < request {
			pool.Shortfalls++
			log.Warn("source returned fewer identifiers than requested",
				"requested", request, "received", len(batch))
		}

		for _, id := range batch {
			if _, ok := seen[id]; ok {
				pool.Duplicates++
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}

		if cfg.progress != nil && cfg.progressInterval > 0 {
			if m := min(len(ids), target) / cfg.progressInterval; m > milestone {
				milestone = m
				cfg.progress(Progress{Worker: cfg.worker, Collected: min(len(ids), target), Target: target})
			}
		}
	}

	// A Source may over-deliver; keep the first target in insertion order.
	pool.IDs = ids[:target:target]

	pool.Numbers = make([]*big.Int, len(pool.IDs))
	digest := xxhash.New()
	for i, id := range pool.IDs {
		// An undecodable id stays in the pool with a nil position; the
		// charset check reports it.
		n, err := position(id)
		if err != nil {
			pool.Undecodable++
			log.Warn("identifier has no keyspace position", "id", id, "error", err)
		}
		pool.Numbers[i] = n
		_, _ = digest.WriteString(id)
		_, _ = digest.WriteString("\n")
	}
	pool.Digest = digest.Sum64()
	pool.Histogram = space.Histogram(pool.Numbers)

	if cfg.progress != nil {
		cfg.progress(Progress{Worker: cfg.worker, Collected: len(pool.IDs), Target: target})
	}
	log.Debug("pool complete",
		"target", target,
		"batches", pool.Batches,
		"shortfalls", pool.Shortfalls,
		"duplicates", pool.Duplicates,
		"undecodable", pool.Undecodable)
	return pool, nil
}

// position decodes everything after the first character of id. The tag is
// never interpreted, so any first character is accepted; letter case in the
// body is ignored.
func position(id string) (*big.Int, error) {
	if len(id) < 2 {
		return nil, fmt.Errorf("%w: %q has no body", collideerrors.ErrMalformedIdentifier, id)
	}
	return keyspace.DecodeFold(id[1:])
}
