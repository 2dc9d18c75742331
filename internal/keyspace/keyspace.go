// Package keyspace maps identifier bodies onto the integer range [0, 36^k)
// and bins those integers into equal-width buckets.
//
// All arithmetic is arbitrary precision: 36^23 needs about 119 bits, so
// positions, widths and bucket indices never pass through a native integer
// until the quotient is known to be small.
package keyspace

import (
	"fmt"
	"math/big"

	collideerrors "github.com/tamirms/collide/errors"
)

// Base is the radix of identifier bodies.
const Base = 36

// Space is a keyspace [0, Base^exponent) partitioned into a fixed number of
// equal-width buckets. A Space is immutable after New and safe for
// concurrent use.
type Space struct {
	exponent int
	buckets  int
	size     *big.Int
	width    *big.Int
}

// New returns the keyspace of Base^exponent positions split into buckets.
// Bucket width is ceil(Base^exponent / buckets).
func New(exponent, buckets int) (*Space, error) {
	if exponent <= 0 {
		return nil, fmt.Errorf("%w: %d", collideerrors.ErrInvalidKeyspace, exponent)
	}
	if buckets <= 0 {
		return nil, fmt.Errorf("%w: %d", collideerrors.ErrInvalidBuckets, buckets)
	}

	size := new(big.Int).Exp(big.NewInt(Base), big.NewInt(int64(exponent)), nil)
	n := big.NewInt(int64(buckets))

	// ceil(size / n) == (size + n - 1) / n
	width := new(big.Int).Add(size, n)
	width.Sub(width, big.NewInt(1))
	width.Quo(width, n)

	return &Space{
		exponent: exponent,
		buckets:  buckets,
		size:     size,
		width:    width,
	}, nil
}

// Exponent returns k for the keyspace [0, Base^k).
func (s *Space) Exponent() int { return s.exponent }

// Buckets returns the number of histogram buckets.
func (s *Space) Buckets() int { return s.buckets }

// Size returns Base^k. The caller owns the returned value.
func (s *Space) Size() *big.Int { return new(big.Int).Set(s.size) }

// BucketWidth returns ceil(Base^k / buckets). The caller owns the returned value.
func (s *Space) BucketWidth() *big.Int { return new(big.Int).Set(s.width) }

// Bucket returns floor(n / width). Positions outside [0, Base^k) are clamped
// into the first or last bucket so the histogram sum always equals the
// number of binned values.
func (s *Space) Bucket(n *big.Int) int {
	return s.bucket(n, new(big.Int))
}

// bucket is Bucket with a caller-provided scratch value to avoid an
// allocation per position when binning large populations.
func (s *Space) bucket(n, scratch *big.Int) int {
	if n.Sign() <= 0 {
		return 0
	}
	scratch.Quo(n, s.width)
	if !scratch.IsInt64() || scratch.Int64() >= int64(s.buckets) {
		return s.buckets - 1
	}
	return int(scratch.Int64())
}

// Histogram counts numbers per bucket. Nil entries are skipped.
func (s *Space) Histogram(numbers []*big.Int) []int {
	counts := make([]int, s.buckets)
	var scratch big.Int
	for _, n := range numbers {
		if n == nil {
			continue
		}
		counts[s.bucket(n, &scratch)]++
	}
	return counts
}

// Decode interprets body as a base-36 integer. Only the digits 0-9 and the
// lowercase letters a-z are accepted; anything else, including an empty
// body, wraps ErrMalformedIdentifier. Decode is a pure function of body.
func Decode(body string) (*big.Int, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: empty body", collideerrors.ErrMalformedIdentifier)
	}
	for i := 0; i < len(body); i++ {
		if !IsDigit(body[i]) {
			return nil, fmt.Errorf("%w: %q has %q at offset %d",
				collideerrors.ErrMalformedIdentifier, body, body[i], i)
		}
	}
	n, ok := new(big.Int).SetString(body, Base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", collideerrors.ErrMalformedIdentifier, body)
	}
	return n, nil
}

// DecodeFold is Decode with ASCII upper-case letters folded to lower case,
// so "ABC" and "abc" decode to the same position.
func DecodeFold(body string) (*big.Int, error) {
	b := []byte(body)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return Decode(string(b))
}

// Encode renders n in base 36, left-padded with zeros to width digits.
// Values needing more than width digits are returned unpadded.
func Encode(n *big.Int, width int) string {
	digits := n.Text(Base)
	if len(digits) >= width {
		return digits
	}
	buf := make([]byte, width)
	pad := width - len(digits)
	for i := 0; i < pad; i++ {
		buf[i] = '0'
	}
	copy(buf[pad:], digits)
	return string(buf)
}

// IsDigit reports whether c is a lowercase base-36 digit.
func IsDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')
}
