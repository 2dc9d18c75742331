package source

import (
	"context"
	"encoding/binary"
	"math/big"

	"github.com/spaolacci/murmur3"
	"github.com/tamirms/collide/internal/keyspace"
)

// Seeded is a reproducible source. The i-th identifier it returns is derived
// from murmur3-128 over (seed, worker, i), so two Seeded sources built with
// the same arguments yield the same stream, and sources for different
// workers yield unrelated streams.
type Seeded struct {
	seed    uint64
	worker  uint64
	length  int
	space   *big.Int
	counter uint64
	buf     [24]byte
}

// NewSeeded returns a Seeded source for one worker.
func NewSeeded(seed uint64, worker, length int) (*Seeded, error) {
	space, err := bodySpace(length)
	if err != nil {
		return nil, err
	}
	s := &Seeded{
		seed:   seed,
		worker: uint64(worker),
		length: length,
		space:  space,
	}
	binary.LittleEndian.PutUint64(s.buf[0:8], s.seed)
	binary.LittleEndian.PutUint64(s.buf[8:16], s.worker)
	return s, nil
}

// Generate returns the next count identifiers of the stream.
func (s *Seeded) Generate(ctx context.Context, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, count)
	var raw [16]byte
	body := new(big.Int)
	for range count {
		binary.LittleEndian.PutUint64(s.buf[16:24], s.counter)
		s.counter++

		h1, h2 := murmur3.Sum128WithSeed(s.buf[:], uint32(s.seed))
		binary.BigEndian.PutUint64(raw[0:8], h1)
		binary.BigEndian.PutUint64(raw[8:16], h2)

		// 2^128 is several hundred times 36^23, so reducing modulo the body
		// space biases any bucket by well under one percent.
		body.SetBytes(raw[:])
		body.Mod(body, s.space)

		t := tagAlphabet[(h2>>32)%uint64(len(tagAlphabet))]
		ids = append(ids, string(t)+keyspace.Encode(body, s.length-1))
	}
	return ids, nil
}
