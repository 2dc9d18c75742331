package collide

import (
	"context"
	"fmt"

	collideerrors "github.com/tamirms/collide/errors"
	"github.com/tamirms/collide/internal/keyspace"
	"golang.org/x/sync/errgroup"
)

// Shares splits total across workers. Every worker but the last receives
// floor(total/workers); the last receives whatever remains, so the shares
// sum to total exactly. Assignment stops early once nothing remains, and
// never more workers than total are used, so no share is zero.
func Shares(total, workers int) []int {
	if total <= 0 || workers <= 0 {
		return nil
	}
	workers = min(workers, total)

	shares := make([]int, 0, workers)
	remaining := total
	for i := 0; i < workers; i++ {
		share := total / workers
		if i == workers-1 {
			share = remaining
		}
		remaining -= share
		shares = append(shares, share)
		if remaining <= 0 {
			break
		}
	}
	return shares
}

// workerResult is the one message a worker sends back to the orchestrator.
type workerResult struct {
	worker int
	pool   *Pool
}

// RunParallel builds one Pool per worker share of total, each worker in its
// own goroutine with its own Source from newSource, and returns the pools in
// assignment order.
//
// Workers share nothing mutable; each posts a single result message. The
// first failure fails the whole run: RunParallel returns that error at once
// without waiting for the remaining workers, which stop at their next batch
// boundary and whose results are dropped.
func RunParallel(ctx context.Context, newSource SourceFactory, total int, opts ...Option) ([]*Pool, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: %d", collideerrors.ErrInvalidTarget, total)
	}
	cfg, err := newRunConfig(opts)
	if err != nil {
		return nil, err
	}
	space, err := keyspace.New(cfg.exponent, cfg.buckets)
	if err != nil {
		return nil, err
	}

	shares := Shares(total, cfg.effectiveWorkers())
	cfg.logger.Info("starting workers", "total", total, "workers", len(shares), "shares", shares)

	results := make(chan workerResult, len(shares))
	g, gctx := errgroup.WithContext(ctx)
	for i, share := range shares {
		g.Go(func() error {
			src, err := newSource(i)
			if err != nil {
				return fmt.Errorf("%w: worker %d: create source: %w",
					collideerrors.ErrSourceFailure, i, err)
			}
			workerCfg := *cfg
			withWorker(i)(&workerCfg)

			pool, err := buildPool(gctx, src, share, &workerCfg, space)
			if err != nil {
				cfg.logger.Error("worker failed", "worker", i, "error", err)
				return err
			}
			results <- workerResult{worker: i, pool: pool}
			return nil
		})
	}

	pools := make([]*Pool, len(shares))
	for received := 0; received < len(shares); {
		select {
		case r := <-results:
			pools[r.worker] = r.pool
			received++
		case <-gctx.Done():
			// errgroup cancels gctx with the first worker error as its cause.
			return nil, context.Cause(gctx)
		}
	}

	// Every worker has posted its result, so Wait returns immediately.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pools, nil
}
