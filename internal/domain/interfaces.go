package domain

import "time"

// ─── Collaborator Interfaces ────────────────────────────────────────────────
// Boundaries to services outside the core. Infrastructure implements them;
// the engine depends on them. Collaborator calls are synchronous and
// fallible inside the same transaction boundary: callers must check
// failure BEFORE mutating any local state.

// CreditLedger is the external fungible-balance service used for proposal
// deposits, vote-stake escrow, submission bonds, and awards. Debit fails
// with ErrInsufficientCredits and leaves the account untouched; Credit
// never fails.
type CreditLedger interface {
	Debit(account string, amount uint64, tx TransactionType, note string) error
	Credit(account string, amount uint64, tx TransactionType, note string)
	Balance(account string) uint64
}

// AssetRegistry is the external non-fungible registry. IDs are assigned by
// the registry's own counter.
type AssetRegistry interface {
	Mint(owner string, kind AssetKind, ref string, now time.Time) (Asset, error)
	Transfer(assetID uint64, from, to string) error
	Burn(assetID uint64, owner string) error
}

// Journal is the audit sink. Implementations must be safe for concurrent
// use. Failures are surfaced to the caller, who logs and moves on:
// auditing never blocks a state transition.
type Journal interface {
	RecordEvent(e Event) error
	RecordParamChange(param ParamName, value uint64, proposalID uint64, at time.Time) error
	SaveSnapshot(state []byte, takenAt time.Time) (int64, error)
}

// ─── Internal Read Surfaces ─────────────────────────────────────────────────
// Narrow views components read each other through, so no component ever
// caches another's state.

// ScoreSource is the score ledger surface the bonding ledger and badge
// evaluator read through. GetScore is a pure decayed read; Touch persists
// the decayed value and refreshes the timestamp.
type ScoreSource interface {
	GetScore(subject string, now time.Time) uint64
	Touch(subject string, now time.Time) uint64
}

// BondSource is the bonding surface badge evaluation reads through.
type BondSource interface {
	BondedTo(subject, target string, now time.Time) uint64
	BondedTotal(subject string, now time.Time) uint64
}

// TargetGate reports whether a bond target currently accepts new bonds.
type TargetGate interface {
	ActiveTarget(id string) bool
}
