package collide

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	collideerrors "github.com/tamirms/collide/errors"
)

// ============================================================================
// Shares
// ============================================================================

func TestSharesLastWorkerAbsorbsRemainder(t *testing.T) {
	total := 7 * 7 * 7 * 7 * 7 * 7 * 7 * 7 * 2 // 1,176,490
	got := Shares(total, 4)
	if want := []int{294122, 294122, 294122, 294124}; !slices.Equal(got, want) {
		t.Fatalf("Shares(%d, 4) = %v, want %v", total, got, want)
	}
}

func TestSharesSumToTotal(t *testing.T) {
	rng := newTestRNG(t, 0)
	for i := 0; i < 2000; i++ {
		workers := rng.IntN(64) + 1
		total := rng.IntN(1_000_000) + workers
		shares := Shares(total, workers)
		if len(shares) != workers {
			t.Fatalf("Shares(%d, %d) has %d shares", total, workers, len(shares))
		}
		sum := 0
		for j, s := range shares {
			if s <= 0 {
				t.Fatalf("Shares(%d, %d)[%d] = %d", total, workers, j, s)
			}
			if j < len(shares)-1 && s != total/workers {
				t.Fatalf("Shares(%d, %d)[%d] = %d, want %d", total, workers, j, s, total/workers)
			}
			sum += s
		}
		if sum != total {
			t.Fatalf("sum(Shares(%d, %d)) = %d", total, workers, sum)
		}
	}
}

func TestSharesFewerItemsThanWorkers(t *testing.T) {
	tests := []struct {
		total, workers int
		want           []int
	}{
		{3, 4, []int{1, 1, 1}},
		{1, 16, []int{1}},
		{5, 5, []int{1, 1, 1, 1, 1}},
		{0, 4, nil},
		{4, 0, nil},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d/%d", tc.total, tc.workers), func(t *testing.T) {
			if got := Shares(tc.total, tc.workers); !slices.Equal(got, tc.want) {
				t.Errorf("Shares(%d, %d) = %v, want %v", tc.total, tc.workers, got, tc.want)
			}
		})
	}
}

// ============================================================================
// RunParallel
// ============================================================================

func TestRunParallelPoolsInAssignmentOrder(t *testing.T) {
	const total = 10_003
	pools, err := RunParallel(context.Background(), uniformFactory(t), total,
		WithWorkers(4), WithBatchSize(1000), WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}

	want := Shares(total, 4)
	if len(pools) != len(want) {
		t.Fatalf("got %d pools, want %d", len(pools), len(want))
	}
	population := 0
	for i, p := range pools {
		if p.Worker != i {
			t.Errorf("pools[%d].Worker = %d", i, p.Worker)
		}
		if p.Target != want[i] || len(p.IDs) != want[i] {
			t.Errorf("pools[%d]: Target=%d len(IDs)=%d, want %d", i, p.Target, len(p.IDs), want[i])
		}
		population += len(p.IDs)
	}
	if population != total {
		t.Errorf("population = %d, want %d", population, total)
	}
}

func TestRunParallelEachWorkerOwnsSource(t *testing.T) {
	created := make(chan int, 8)
	factory := func(worker int) (Source, error) {
		created <- worker
		return uniformSource(newTestRNG(t, uint64(worker)+1)), nil
	}
	if _, err := RunParallel(context.Background(), factory, 80,
		WithWorkers(8), WithLogger(quietLogger())); err != nil {
		t.Fatal(err)
	}
	close(created)

	var workers []int
	for w := range created {
		workers = append(workers, w)
	}
	slices.Sort(workers)
	if want := []int{0, 1, 2, 3, 4, 5, 6, 7}; !slices.Equal(workers, want) {
		t.Errorf("factory called for %v, want %v", workers, want)
	}
}

func TestRunParallelFailsFast(t *testing.T) {
	errBoom := errors.New("boom")
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	// Worker 2 fails at once; the others hang in Generate without watching
	// ctx, so RunParallel can only return if it does not wait for them.
	factory := func(worker int) (Source, error) {
		if worker == 2 {
			return SourceFunc(func(ctx context.Context, count int) ([]string, error) {
				return nil, errBoom
			}), nil
		}
		return SourceFunc(func(ctx context.Context, count int) ([]string, error) {
			<-release
			return nil, ctx.Err()
		}), nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := RunParallel(context.Background(), factory, 400,
			WithWorkers(4), WithLogger(quietLogger()))
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, errBoom) || !errors.Is(err, collideerrors.ErrSourceFailure) {
			t.Errorf("err = %v, want ErrSourceFailure wrapping boom", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("RunParallel waited for hung workers after a failure")
	}
}

func TestRunParallelFactoryError(t *testing.T) {
	errNoSource := errors.New("no source")
	factory := func(worker int) (Source, error) {
		if worker == 1 {
			return nil, errNoSource
		}
		return uniformSource(newTestRNG(t, uint64(worker)+1)), nil
	}
	_, err := RunParallel(context.Background(), factory, 100,
		WithWorkers(2), WithLogger(quietLogger()))
	if !errors.Is(err, errNoSource) || !errors.Is(err, collideerrors.ErrSourceFailure) {
		t.Errorf("err = %v, want ErrSourceFailure wrapping the factory error", err)
	}
}

func TestRunParallelParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunParallel(ctx, uniformFactory(t), 1000,
		WithWorkers(2), WithLogger(quietLogger()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunParallelRejectsInvalidTotal(t *testing.T) {
	if _, err := RunParallel(context.Background(), uniformFactory(t), 0); !errors.Is(err, collideerrors.ErrInvalidTarget) {
		t.Errorf("err = %v, want ErrInvalidTarget", err)
	}
}

func TestRunParallelDefaultsToCPUCount(t *testing.T) {
	pools, err := RunParallel(context.Background(), uniformFactory(t), 1,
		WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	// One identifier can only ever go to a single worker.
	if len(pools) != 1 || len(pools[0].IDs) != 1 {
		t.Errorf("pools = %+v, want one pool of one id", pools)
	}
}
