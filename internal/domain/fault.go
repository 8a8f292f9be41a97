package domain

import "errors"

// ─── Fault Taxonomy ─────────────────────────────────────────────────────────
// Kinds, not types: every sentinel classifies into exactly one kind so
// outer layers can map failures uniformly without parsing messages.
// All mutations are all-or-nothing per call; nothing is retried
// automatically. Temporal faults are the normal, frequently-retried case —
// the fields needed to predict success (unlock_time, voting_deadline) are
// always readable.

// FaultKind buckets an error for transport mapping.
type FaultKind int

const (
	FaultNone         FaultKind = iota // nil error
	FaultPrecondition                  // caller-visible rule not met; nothing mutated
	FaultIntegrity                     // hash mismatch or invariant breach; nothing mutated
	FaultResource                      // external ledger refused; propagated unchanged
	FaultTemporal                      // too early; retry after the readable deadline
	FaultNotFound                      // referenced aggregate does not exist
	FaultInternal                      // unclassified failure
)

// String returns the kind's wire name.
func (k FaultKind) String() string {
	switch k {
	case FaultNone:
		return "none"
	case FaultPrecondition:
		return "precondition_violation"
	case FaultIntegrity:
		return "integrity_violation"
	case FaultResource:
		return "resource_exhaustion"
	case FaultTemporal:
		return "temporal_violation"
	case FaultNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

var (
	preconditionErrs = []error{
		ErrZeroAmount, ErrAttestationRevoked, ErrDuplicateCommit, ErrNoCommit,
		ErrBadDigest, ErrItemNotPending, ErrItemNotVerified, ErrItemDisputed,
		ErrItemNotDisputed, ErrItemResolved, ErrMutationPending, ErrInsufficientFreeScore,
		ErrInsufficientBond, ErrRequestAlreadyPending, ErrDepositTooSmall,
		ErrProposalNotActive, ErrProposalNotPassed, ErrAlreadyVoted,
		ErrVotingClosed, ErrUnknownParam, ErrInvalidParam, ErrNotEligible,
		ErrAlreadyClaimed, ErrCommunityExists, ErrCommunityNotActive,
		ErrCommunityName, ErrNotOwner, ErrJournalDisabled,
	}
	integrityErrs = []error{ErrHashMismatch}
	resourceErrs  = []error{ErrInsufficientCredits}
	temporalErrs  = []error{ErrLockNotExpired, ErrVotingOpen}
	notFoundErrs  = []error{
		ErrUnknownAttestation, ErrUnknownItem, ErrUnknownProposal,
		ErrUnknownBadge, ErrUnknownCommunity, ErrUnknownAsset, ErrNoRequest,
	}
)

// Classify maps an error chain onto its fault kind.
func Classify(err error) FaultKind {
	if err == nil {
		return FaultNone
	}
	for _, e := range temporalErrs {
		if errors.Is(err, e) {
			return FaultTemporal
		}
	}
	for _, e := range resourceErrs {
		if errors.Is(err, e) {
			return FaultResource
		}
	}
	for _, e := range integrityErrs {
		if errors.Is(err, e) {
			return FaultIntegrity
		}
	}
	for _, e := range notFoundErrs {
		if errors.Is(err, e) {
			return FaultNotFound
		}
	}
	for _, e := range preconditionErrs {
		if errors.Is(err, e) {
			return FaultPrecondition
		}
	}
	return FaultInternal
}
