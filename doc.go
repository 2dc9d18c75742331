// Package collide validates identifier generators by drawing a large
// population of identifiers in parallel and checking it for collisions,
// completeness, uniform spread over the keyspace and character-set
// conformance.
//
// An identifier is a one-character tag followed by a base-36 body over
// [0-9a-z]. The body is read as an integer in [0, 36^k) and assigned to one
// of B equal-width buckets; the per-worker histograms are what the
// distribution check inspects.
//
// # Basic Usage
//
// Running a full verification:
//
//	report, err := collide.Run(ctx, func(worker int) (collide.Source, error) {
//	    return source.NewRandom(source.DefaultLength)
//	}, 1_176_490, collide.WithWorkers(4))
//	if err != nil {
//	    log.Fatal(err) // a source failed; no report
//	}
//	for _, c := range report.Failures() {
//	    fmt.Printf("%s failed: %s\n", c.Name, c.Detail)
//	}
//
// Building a single pool:
//
//	pool, err := collide.BuildPool(ctx, src, 10_000, collide.WithBatchSize(1000))
//
// # Package Structure
//
//   - Public API: verify.go (Run, Verify), parallel.go (RunParallel, Shares), pool.go (BuildPool)
//   - Configuration: run_options.go (Option, With* functions)
//   - Results: report.go (Report, Check)
//   - Sources: source.go (Source, SourceFactory), source/ (random, seeded, file, exec)
//   - Keyspace math: internal/keyspace/ (base-36 decode, bucket assignment)
//   - Distinct counting: internal/distinct/ (independent counting methods)
//   - Command line: cmd/collide, internal/cli, internal/config, internal/render
package collide
