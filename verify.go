package collide

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/tamirms/collide/internal/distinct"
)

const (
	// sampleSize is the number of leading identifiers copied into a Report.
	sampleSize = 10

	// maxInvalidListed caps the offending identifiers listed by the charset check.
	maxInvalidListed = 20
)

var charsetPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Verify checks the combined population of pools against target.
//
// All four checks always run: global uniqueness (several independent
// distinct counts that must agree and equal target), count fidelity,
// distribution of the first pool's histogram within tolerance, and
// character-set conformance.
func Verify(pools []*Pool, target int, tolerance float64) *Report {
	ids := combine(pools)

	report := &Report{
		Target:     target,
		Population: len(ids),
		Workers:    len(pools),
		Tolerance:  tolerance,
		Sample:     slices.Clone(ids[:min(sampleSize, len(ids))]),
	}
	for _, p := range pools {
		report.Shares = append(report.Shares, p.Target)
		report.Pools = append(report.Pools, summarize(p))
	}

	uniqueness := checkUniqueness(ids, target)
	report.Collisions = uniqueness.Collisions

	var first *Pool
	if len(pools) > 0 {
		first = pools[0]
		report.Histogram = first.Histogram
	}

	report.Checks = []Check{
		uniqueness,
		checkCount(ids, target),
		checkDistribution(first, tolerance),
		checkCharset(ids),
	}
	return report
}

// Run builds pools with RunParallel and verifies them with the configured
// tolerance. A source failure aborts the run and no report is produced.
func Run(ctx context.Context, newSource SourceFactory, total int, opts ...Option) (*Report, error) {
	cfg, err := newRunConfig(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pools, err := RunParallel(ctx, newSource, total, opts...)
	if err != nil {
		return nil, err
	}
	report := Verify(pools, total, cfg.tolerance)
	report.RunID = uuid.NewString()
	report.Elapsed = time.Since(start)

	cfg.logger.Info("verification complete",
		"run", report.RunID,
		"population", report.Population,
		"passed", report.Passed(),
		"elapsed", report.Elapsed)
	return report, nil
}

func summarize(p *Pool) PoolSummary {
	return PoolSummary{
		Worker:      p.Worker,
		Share:       p.Target,
		Batches:     p.Batches,
		Shortfalls:  p.Shortfalls,
		Duplicates:  p.Duplicates,
		Undecodable: p.Undecodable,
		Digest:      fmt.Sprintf("%016x", p.Digest),
	}
}

// combine concatenates pool identifiers in worker order.
func combine(pools []*Pool) []string {
	n := 0
	for _, p := range pools {
		n += len(p.IDs)
	}
	ids := make([]string, 0, n)
	for _, p := range pools {
		ids = append(ids, p.IDs...)
	}
	return ids
}

func checkUniqueness(ids []string, target int) Check {
	res := distinct.Count(ids)
	c := Check{
		Name:       CheckUniqueness,
		Actual:     res.Distinct(),
		Expected:   target,
		Counts:     res.Counts,
		Collisions: res.Repeats,
	}
	switch {
	case !res.Agree():
		c.Detail = "counting methods disagree"
	case res.Distinct() != target:
		c.Detail = fmt.Sprintf("%d distinct of %d expected, %d repeated", res.Distinct(), target, len(res.Repeats))
	default:
		c.Passed = true
	}
	return c
}

func checkCount(ids []string, target int) Check {
	return Check{
		Name:     CheckCount,
		Passed:   len(ids) == target,
		Actual:   len(ids),
		Expected: target,
	}
}

// BinBounds returns the exclusive lower and upper bucket-size bounds for a
// pool of share identifiers over buckets buckets.
func BinBounds(share, buckets int, tolerance float64) (expected, lo, hi int) {
	expected = (share + buckets - 1) / buckets
	lo = int(math.Round(float64(expected) * (1 - tolerance)))
	hi = int(math.Round(float64(expected) * (1 + tolerance)))
	return expected, lo, hi
}

// InTolerance reports whether count lies strictly between lo and hi.
func InTolerance(count, lo, hi int) bool {
	return count > lo && count < hi
}

// checkDistribution uses the first worker's histogram only; one shard is
// enough to test uniformity and keeps the check independent of worker count.
func checkDistribution(first *Pool, tolerance float64) Check {
	c := Check{Name: CheckDistribution}
	if first == nil || len(first.Histogram) == 0 {
		c.Detail = "no histogram to check"
		return c
	}

	expected, lo, hi := BinBounds(first.Target, len(first.Histogram), tolerance)
	c.Expected = expected
	c.Actual = first.Histogram
	c.Min, c.Max = lo, hi
	for i, count := range first.Histogram {
		if !InTolerance(count, lo, hi) {
			c.OffendingBuckets = append(c.OffendingBuckets, i)
		}
	}
	c.Passed = len(c.OffendingBuckets) == 0
	if !c.Passed {
		c.Detail = fmt.Sprintf("%d of %d buckets outside (%d, %d)",
			len(c.OffendingBuckets), len(first.Histogram), lo, hi)
	}
	return c
}

func checkCharset(ids []string) Check {
	c := Check{
		Name:     CheckCharset,
		Expected: 0,
	}
	for _, id := range ids {
		if charsetPattern.MatchString(id) {
			continue
		}
		c.InvalidCount++
		if len(c.Invalid) < maxInvalidListed {
			c.Invalid = append(c.Invalid, id)
		}
	}
	c.Actual = c.InvalidCount
	c.Passed = c.InvalidCount == 0
	if !c.Passed {
		c.Detail = fmt.Sprintf("%d identifiers outside [a-z0-9]+", c.InvalidCount)
	}
	return c
}
