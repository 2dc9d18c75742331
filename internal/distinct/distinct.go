// Package distinct counts distinct identifiers in a population by several
// independent methods.
//
// The methods share no data structure, so a bug in one (or a hash collision
// in a fingerprinting method) shows up as a disagreement between counts
// rather than as a silently wrong answer.
package distinct

import (
	"math/bits"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// Method names a counting method.
type Method string

const (
	MethodSet         Method = "set"
	MethodScan        Method = "scan"
	MethodSorted      Method = "sorted"
	MethodFingerprint Method = "xxh3"
	MethodPartitioned Method = "partitioned"
)

// Methods lists every counting method in reporting order.
var Methods = []Method{MethodSet, MethodScan, MethodSorted, MethodFingerprint, MethodPartitioned}

// DefaultShards is the shard count used by Count for the partitioned method.
const DefaultShards = 16

// CountSet returns the size of a hash set built from ids.
func CountSet(ids []string) int {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return len(set)
}

// Scan walks ids once, keeping a seen-before set. Every id already present
// when it is reached is appended to repeats, so an id occurring three times
// appears twice in repeats.
func Scan(ids []string) (distinct int, repeats []string) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			repeats = append(repeats, id)
			continue
		}
		seen[id] = struct{}{}
	}
	return len(seen), repeats
}

// CountSorted sorts a copy of ids and counts runs of equal values.
func CountSorted(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return len(slices.Compact(sorted))
}

// CountFingerprints counts distinct xxh3-128 fingerprints of ids.
// Two distinct ids sharing a 128-bit fingerprint would undercount by one;
// at the population sizes this is used for that probability is negligible.
func CountFingerprints(ids []string) int {
	set := make(map[xxh3.Uint128]struct{}, len(ids))
	for _, id := range ids {
		set[xxh3.HashString128(id)] = struct{}{}
	}
	return len(set)
}

// CountPartitioned routes every id to one of shards partitions by its
// xxhash64 value, then counts each partition concurrently with its own set.
// Equal ids always land in the same partition, so the partition counts sum
// to the distinct count.
func CountPartitioned(ids []string, shards int) int {
	if shards <= 0 {
		shards = 1
	}
	parts := make([][]string, shards)
	for _, id := range ids {
		p := fastRange32(xxhash.Sum64String(id), uint32(shards))
		parts[p] = append(parts[p], id)
	}

	counts := make([]int, shards)
	var g errgroup.Group
	for i := range parts {
		g.Go(func() error {
			counts[i] = CountSet(parts[i])
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// Result holds the outcome of every counting method.
type Result struct {
	Counts  map[Method]int
	Repeats []string
}

// Agree reports whether every method produced the same count.
func (r Result) Agree() bool {
	first := true
	var want int
	for _, c := range r.Counts {
		if first {
			want, first = c, false
			continue
		}
		if c != want {
			return false
		}
	}
	return true
}

// Distinct returns the count produced by the scan method.
func (r Result) Distinct() int {
	return r.Counts[MethodScan]
}

// Count runs every method over ids.
func Count(ids []string) Result {
	scanned, repeats := Scan(ids)
	return Result{
		Counts: map[Method]int{
			MethodSet:         CountSet(ids),
			MethodScan:        scanned,
			MethodSorted:      CountSorted(ids),
			MethodFingerprint: CountFingerprints(ids),
			MethodPartitioned: CountPartitioned(ids, DefaultShards),
		},
		Repeats: repeats,
	}
}

// fastRange32 maps a 64-bit hash uniformly to [0, n) by taking the high
// word of hash*n, which avoids modulo bias.
func fastRange32(hash uint64, n uint32) uint32 {
	if n == 0 {
		return 0
	}
	hi, _ := bits.Mul64(hash, uint64(n))
	return uint32(hi)
}
