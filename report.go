package collide

import (
	"time"

	"github.com/tamirms/collide/internal/distinct"
)

// CheckName identifies one verification check.
type CheckName string

const (
	CheckUniqueness   CheckName = "uniqueness"
	CheckCount        CheckName = "count"
	CheckDistribution CheckName = "distribution"
	CheckCharset      CheckName = "charset"
)

// Check is the outcome of one verification check. Actual and Expected hold
// the compared values; the remaining fields are populated only by the check
// they belong to.
type Check struct {
	Name     CheckName `json:"name" yaml:"name"`
	Passed   bool      `json:"passed" yaml:"passed"`
	Actual   any       `json:"actual" yaml:"actual"`
	Expected any       `json:"expected" yaml:"expected"`
	Detail   string    `json:"detail,omitempty" yaml:"detail,omitempty"`

	// uniqueness
	Counts     map[distinct.Method]int `json:"counts,omitempty" yaml:"counts,omitempty"`
	Collisions []string                `json:"collisions,omitempty" yaml:"collisions,omitempty"`

	// distribution
	Min              int   `json:"min,omitempty" yaml:"min,omitempty"`
	Max              int   `json:"max,omitempty" yaml:"max,omitempty"`
	OffendingBuckets []int `json:"offendingBuckets,omitempty" yaml:"offendingBuckets,omitempty"`

	// charset
	Invalid      []string `json:"invalid,omitempty" yaml:"invalid,omitempty"`
	InvalidCount int      `json:"invalidCount,omitempty" yaml:"invalidCount,omitempty"`
}

// PoolSummary describes how one worker's pool was built.
type PoolSummary struct {
	Worker      int    `json:"worker" yaml:"worker"`
	Share       int    `json:"share" yaml:"share"`
	Batches     int    `json:"batches" yaml:"batches"`
	Shortfalls  int    `json:"shortfalls" yaml:"shortfalls"`
	Duplicates  int    `json:"duplicates" yaml:"duplicates"`
	Undecodable int    `json:"undecodable" yaml:"undecodable"`
	Digest      string `json:"digest" yaml:"digest"` // xxHash64 of the pool's ids, hex
}

// Report is the result of verifying a combined population. Failing checks
// are reported, never raised.
type Report struct {
	RunID      string        `json:"runId,omitempty" yaml:"runId,omitempty"`
	Elapsed    time.Duration `json:"elapsed,omitempty" yaml:"elapsed,omitempty"`
	Target     int           `json:"target" yaml:"target"`
	Population int           `json:"population" yaml:"population"`
	Workers    int           `json:"workers" yaml:"workers"`
	Shares     []int         `json:"shares" yaml:"shares"`
	Tolerance  float64       `json:"tolerance" yaml:"tolerance"`
	Sample     []string      `json:"sample,omitempty" yaml:"sample,omitempty"`
	Histogram  []int         `json:"histogram" yaml:"histogram"`
	Collisions []string      `json:"collisions,omitempty" yaml:"collisions,omitempty"`
	Pools      []PoolSummary `json:"pools" yaml:"pools"`
	Checks     []Check       `json:"checks" yaml:"checks"`
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Check returns the check with the given name.
func (r *Report) Check(name CheckName) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// Failures returns the checks that did not pass, in report order.
func (r *Report) Failures() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}
