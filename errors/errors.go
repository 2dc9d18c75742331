// Package errors defines all exported error sentinels for the collide library.
//
// This is the single source of truth for error values. The top-level collide
// package, the source adapters and the internal packages all import from
// here, so errors.Is checks work across package boundaries.
package errors

import "errors"

// Run errors
var (
	ErrSourceFailure       = errors.New("collide: identifier source failed")
	ErrSourceExhausted     = errors.New("collide: identifier source exhausted")
	ErrMalformedIdentifier = errors.New("collide: identifier is not [a-z0-9]+")
	ErrBatchLimit          = errors.New("collide: batch limit reached before target was collected")
)

// Parameter errors
var (
	ErrInvalidTarget    = errors.New("collide: target must be positive")
	ErrInvalidBatchSize = errors.New("collide: batch size must be positive")
	ErrInvalidWorkers   = errors.New("collide: worker count must not be negative")
	ErrInvalidBuckets   = errors.New("collide: bucket count must be positive")
	ErrInvalidKeyspace  = errors.New("collide: keyspace exponent must be positive")
	ErrInvalidTolerance = errors.New("collide: tolerance must be in [0, 1)")
	ErrInvalidConfig    = errors.New("collide: invalid configuration")
)

// Verification errors
var (
	ErrChecksFailed = errors.New("collide: verification checks failed")
)
