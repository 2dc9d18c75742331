package config

import (
	"fmt"

	"github.com/tamirms/collide"
	"github.com/tamirms/collide/source"
)

// SourceFactory builds the per-worker source factory described by c. The
// returned closer releases anything shared across workers and must be
// called once the run is over.
func (c *Config) SourceFactory() (collide.SourceFactory, func() error, error) {
	noop := func() error { return nil }

	switch c.Source.Kind {
	case SourceRandom:
		length := c.Source.Length
		return func(int) (collide.Source, error) {
			r, err := source.NewRandom(length)
			if err != nil {
				return nil, err
			}
			return r, nil
		}, noop, nil

	case SourceSeeded:
		seed, length := c.Source.Seed, c.Source.Length
		return func(worker int) (collide.Source, error) {
			s, err := source.NewSeeded(seed, worker, length)
			if err != nil {
				return nil, err
			}
			return s, nil
		}, noop, nil

	case SourceFile:
		f, err := source.OpenFile(c.Source.Path)
		if err != nil {
			return nil, nil, err
		}
		// Partition by the number of workers that will actually run.
		n := len(collide.Shares(c.Total, c.EffectiveWorkers()))
		return func(worker int) (collide.Source, error) {
			return f.Partition(worker, n), nil
		}, f.Close, nil

	case SourceExec:
		argv := c.Source.Command
		return func(int) (collide.Source, error) {
			e, err := source.NewExec(argv)
			if err != nil {
				return nil, err
			}
			return e, nil
		}, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown source kind %q", c.Source.Kind)
}
