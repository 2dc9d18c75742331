package collide

import "context"

// Source produces candidate identifiers.
//
// Generate returns at most count identifiers, each expected to match
// [a-z0-9]+. It may return fewer than requested and may repeat identifiers
// returned by earlier calls; the Pool Builder tolerates both. Any error is
// treated as a hard failure of the run.
//
// A Source is used by a single worker goroutine and need not be safe for
// concurrent use. It must hold nothing that needs cleanup when a run is
// abandoned mid-batch.
type Source interface {
	Generate(ctx context.Context, count int) ([]string, error)
}

// SourceFunc adapts an ordinary function to the Source interface.
type SourceFunc func(ctx context.Context, count int) ([]string, error)

// Generate calls f(ctx, count).
func (f SourceFunc) Generate(ctx context.Context, count int) ([]string, error) {
	return f(ctx, count)
}

// SourceFactory returns the Source owned by one worker. It is called once
// per worker, from the worker's goroutine, with the worker's index in
// assignment order.
type SourceFactory func(worker int) (Source, error)
