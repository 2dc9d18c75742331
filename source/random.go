package source

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	collideerrors "github.com/tamirms/collide/errors"
	"github.com/tamirms/collide/internal/keyspace"
)

// DefaultLength is a tag character followed by a 23-digit body.
const DefaultLength = 24

// tagAlphabet holds the characters allowed as an identifier's first
// character. Identifiers start with a letter so they are never all digits.
const tagAlphabet = "abcdefghijklmnopqrstuvwxyz"

// bodySpace returns 36^(length-1), the number of distinct bodies.
func bodySpace(length int) (*big.Int, error) {
	if length < 2 {
		return nil, fmt.Errorf("%w: identifier length %d leaves no body", collideerrors.ErrInvalidKeyspace, length)
	}
	return new(big.Int).Exp(big.NewInt(keyspace.Base), big.NewInt(int64(length-1)), nil), nil
}

// Random generates identifiers from crypto/rand: a random letter followed
// by a body drawn uniformly from [0, 36^(length-1)).
type Random struct {
	length int
	space  *big.Int
}

// NewRandom returns a Random source producing identifiers of length
// characters.
func NewRandom(length int) (*Random, error) {
	space, err := bodySpace(length)
	if err != nil {
		return nil, err
	}
	return &Random{length: length, space: space}, nil
}

// Generate returns count fresh identifiers.
func (r *Random) Generate(ctx context.Context, count int) ([]string, error) {
	ids := make([]string, 0, count)
	tags := big.NewInt(int64(len(tagAlphabet)))
	for range count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tag, err := rand.Int(rand.Reader, tags)
		if err != nil {
			return nil, err
		}
		body, err := rand.Int(rand.Reader, r.space)
		if err != nil {
			return nil, err
		}
		t := tagAlphabet[tag.Int64()]
		ids = append(ids, string(t)+keyspace.Encode(body, r.length-1))
	}
	return ids, nil
}
