// Package epoch is the single place wall-clock time enters the process.
//
// Core engines never call time.Now: every mutating operation takes an
// explicit now, supplied at the boundary by this source. Epochs are a
// derived counter over elapsed time since genesis — nothing ticks; the
// epoch only advances because a later now arrives with some call.
package epoch

import "time"

// Config sets the genesis instant and epoch length.
type Config struct {
	Genesis     time.Time     // zero means "process start"
	EpochLength time.Duration // zero means DefaultEpochLength
}

// DefaultEpochLength is one day.
const DefaultEpochLength = 24 * time.Hour

// Source supplies the current time and the epoch counter.
type Source struct {
	now         func() time.Time
	genesis     time.Time
	epochLength time.Duration
}

// Option customizes a Source.
type Option func(*Source)

// WithNow replaces the wall clock, for tests and simulations.
func WithNow(now func() time.Time) Option {
	return func(s *Source) { s.now = now }
}

// New builds a Source. A zero Genesis pins genesis to the first clock
// reading so epoch 0 starts when the process does.
func New(cfg Config, opts ...Option) *Source {
	s := &Source{
		now:         time.Now,
		genesis:     cfg.Genesis,
		epochLength: cfg.EpochLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.epochLength <= 0 {
		s.epochLength = DefaultEpochLength
	}
	if s.genesis.IsZero() {
		s.genesis = s.now()
	}
	return s
}

// Now returns the current time from the injected clock.
func (s *Source) Now() time.Time {
	return s.now()
}

// Genesis returns the epoch-0 start instant.
func (s *Source) Genesis() time.Time {
	return s.genesis
}

// Epoch returns the epoch counter at now: elapsed whole epoch lengths
// since genesis, 0 for any instant at or before genesis.
func (s *Source) Epoch(now time.Time) uint64 {
	if !now.After(s.genesis) {
		return 0
	}
	return uint64(now.Sub(s.genesis) / s.epochLength)
}

// EpochStart returns the instant epoch n begins.
func (s *Source) EpochStart(n uint64) time.Time {
	return s.genesis.Add(time.Duration(n) * s.epochLength)
}
