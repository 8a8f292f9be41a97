package domain

import (
	"fmt"
	"math"
	"time"
)

// ─── Governed Parameters ────────────────────────────────────────────────────
// The configuration surface every component reads and only a passed,
// executed governance proposal writes.

// RateScale is the fixed-point denominator for decay rates: a rate equal
// to RateScale decays 100% of the balance per second.
const RateScale uint64 = 1_000_000_000_000_000_000

// ParamName enumerates the governable configuration fields. The set is
// closed: proposals naming anything else are rejected at submission.
type ParamName string

const (
	ParamDecayRatePerSecond   ParamName = "decay_rate_per_second"
	ParamVotingPeriodSeconds  ParamName = "voting_period_seconds"
	ParamQuorumWeight         ParamName = "quorum_weight"
	ParamMinimumDeposit       ParamName = "minimum_deposit"
	ParamRequiredRevealQuorum ParamName = "required_reveal_quorum"
	ParamUnbondLockSeconds    ParamName = "unbond_lock_seconds"
)

// ParamChange is the typed payload a governance proposal carries in place
// of an opaque calldata blob. Validated when the proposal is submitted,
// which guarantees execution cannot fail on a malformed payload.
type ParamChange struct {
	Param ParamName `json:"param"`
	Value uint64    `json:"value"`
}

// Validate rejects unknown parameters and out-of-range values.
func (c ParamChange) Validate() error {
	switch c.Param {
	case ParamDecayRatePerSecond:
		if c.Value > RateScale {
			return fmt.Errorf("%w: %s exceeds full decay per second", ErrInvalidParam, c.Param)
		}
	case ParamVotingPeriodSeconds:
		if c.Value == 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidParam, c.Param)
		}
	case ParamRequiredRevealQuorum:
		if c.Value == 0 || c.Value > math.MaxUint32 {
			return fmt.Errorf("%w: %s must be in [1, 2^32)", ErrInvalidParam, c.Param)
		}
	case ParamQuorumWeight, ParamMinimumDeposit, ParamUnbondLockSeconds:
		// Any uint64 value is meaningful, zero included.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, c.Param)
	}
	return nil
}

// Params is a snapshot of the governed configuration.
type Params struct {
	DecayRatePerSecond   uint64 `json:"decay_rate_per_second"`
	VotingPeriodSeconds  uint64 `json:"voting_period_seconds"`
	QuorumWeight         uint64 `json:"quorum_weight"`
	MinimumDeposit       uint64 `json:"minimum_deposit"`
	RequiredRevealQuorum uint32 `json:"required_reveal_quorum"`
	UnbondLockSeconds    uint64 `json:"unbond_lock_seconds"`
}

// DefaultParams returns the boot configuration: decay disabled, 3-day
// voting period, quorum weight 25, minimum deposit 100, reveal quorum 2,
// 7-day unbond lock.
func DefaultParams() Params {
	return Params{
		DecayRatePerSecond:   0,
		VotingPeriodSeconds:  3 * 24 * 3600,
		QuorumWeight:         25,
		MinimumDeposit:       100,
		RequiredRevealQuorum: 2,
		UnbondLockSeconds:    7 * 24 * 3600,
	}
}

// VotingPeriod returns the voting window as a duration.
func (p Params) VotingPeriod() time.Duration {
	return time.Duration(p.VotingPeriodSeconds) * time.Second
}

// UnbondLock returns the unbond lock as a duration.
func (p Params) UnbondLock() time.Duration {
	return time.Duration(p.UnbondLockSeconds) * time.Second
}

// Apply returns a copy of p with the change written in.
func (p Params) Apply(c ParamChange) Params {
	switch c.Param {
	case ParamDecayRatePerSecond:
		p.DecayRatePerSecond = c.Value
	case ParamVotingPeriodSeconds:
		p.VotingPeriodSeconds = c.Value
	case ParamQuorumWeight:
		p.QuorumWeight = c.Value
	case ParamMinimumDeposit:
		p.MinimumDeposit = c.Value
	case ParamRequiredRevealQuorum:
		p.RequiredRevealQuorum = uint32(c.Value)
	case ParamUnbondLockSeconds:
		p.UnbondLockSeconds = c.Value
	}
	return p
}
