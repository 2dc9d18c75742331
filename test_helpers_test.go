package collide

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"io"
	"log/slog"
	"math/big"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/tamirms/collide/internal/keyspace"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a deterministic RNG seeded from the test name and salt.
func newTestRNG(t testing.TB, salt uint64) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1^salt, testSeed2^s2))
}

// quietLogger discards all output so shortfall warnings don't clutter test logs.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// uniformSource returns tag 'c' plus a 23-digit body drawn uniformly (up to a
// negligible modulo bias) from the default keyspace.
func uniformSource(rng *rand.Rand) Source {
	size := new(big.Int).Exp(big.NewInt(keyspace.Base), big.NewInt(DefaultKeyspaceExponent), nil)
	return SourceFunc(func(ctx context.Context, count int) ([]string, error) {
		ids := make([]string, count)
		var buf [16]byte
		n := new(big.Int)
		for i := range ids {
			binary.BigEndian.PutUint64(buf[:8], rng.Uint64())
			binary.BigEndian.PutUint64(buf[8:], rng.Uint64())
			n.SetBytes(buf[:])
			n.Mod(n, size)
			ids[i] = "c" + keyspace.Encode(n, DefaultKeyspaceExponent)
		}
		return ids, nil
	})
}

// uniformFactory gives every worker its own deterministic uniform source.
func uniformFactory(t testing.TB) SourceFactory {
	return func(worker int) (Source, error) {
		return uniformSource(newTestRNG(t, uint64(worker)+1)), nil
	}
}

// scriptedSource replays fixed batches and records every requested count.
// Once the script runs out it returns an empty batch.
type scriptedSource struct {
	mu       sync.Mutex
	batches  [][]string
	requests []int
}

func (s *scriptedSource) Generate(ctx context.Context, count int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, count)
	if len(s.batches) == 0 {
		return nil, nil
	}
	b := s.batches[0]
	s.batches = s.batches[1:]
	return b, nil
}

// fixedSource always returns count copies of the same identifier.
func fixedSource(id string) Source {
	return SourceFunc(func(ctx context.Context, count int) ([]string, error) {
		ids := make([]string, count)
		for i := range ids {
			ids[i] = id
		}
		return ids, nil
	})
}

// poolOf builds a Pool directly from ids, bypassing any Source.
func poolOf(t testing.TB, worker int, ids []string, buckets int) *Pool {
	t.Helper()
	space, err := keyspace.New(DefaultKeyspaceExponent, buckets)
	if err != nil {
		t.Fatal(err)
	}
	numbers := make([]*big.Int, len(ids))
	for i, id := range ids {
		n, err := position(id)
		if err != nil {
			t.Fatalf("position(%q): %v", id, err)
		}
		numbers[i] = n
	}
	return &Pool{
		Worker:    worker,
		Target:    len(ids),
		IDs:       ids,
		Numbers:   numbers,
		Histogram: space.Histogram(numbers),
	}
}
