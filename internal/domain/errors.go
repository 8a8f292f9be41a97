package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Score errors
	ErrZeroAmount         = errors.New("amount must be positive")
	ErrUnknownAttestation = errors.New("attestation not found")
	ErrAttestationRevoked = errors.New("attestation already revoked")

	// Commit-reveal errors
	ErrUnknownItem     = errors.New("item not found")
	ErrDuplicateCommit = errors.New("commitment already recorded for this round")
	ErrNoCommit        = errors.New("no commitment recorded for this round")
	ErrHashMismatch    = errors.New("reveal does not match commitment hash")
	ErrBadDigest       = errors.New("malformed commitment digest")
	ErrItemNotPending  = errors.New("item is not pending verification")
	ErrItemNotVerified = errors.New("item is not verified")
	ErrItemDisputed    = errors.New("item is under dispute")
	ErrItemNotDisputed = errors.New("item is not under dispute")
	ErrItemResolved    = errors.New("item is resolved and immutable")
	ErrMutationPending = errors.New("a mutation round is already open")

	// Bonding errors
	ErrInsufficientFreeScore = errors.New("insufficient free score")
	ErrInsufficientBond      = errors.New("bonded amount smaller than requested")
	ErrRequestAlreadyPending = errors.New("an unbond request is already pending for this target")
	ErrNoRequest             = errors.New("no unbond request for this target")
	ErrLockNotExpired        = errors.New("unbond lock has not expired")

	// Governance errors
	ErrUnknownProposal   = errors.New("proposal not found")
	ErrDepositTooSmall   = errors.New("deposit below minimum")
	ErrProposalNotActive = errors.New("proposal is not active")
	ErrProposalNotPassed = errors.New("proposal has not passed")
	ErrAlreadyVoted      = errors.New("voter has already voted on this proposal")
	ErrVotingClosed      = errors.New("voting deadline has passed")
	ErrVotingOpen        = errors.New("voting deadline has not passed")
	ErrUnknownParam      = errors.New("unknown governed parameter")
	ErrInvalidParam      = errors.New("parameter value out of range")

	// Badge errors
	ErrUnknownBadge   = errors.New("badge rule not found")
	ErrNotEligible    = errors.New("subject does not meet badge requirements")
	ErrAlreadyClaimed = errors.New("badge already claimed")

	// Community errors
	ErrUnknownCommunity   = errors.New("community not found")
	ErrCommunityExists    = errors.New("community name already registered")
	ErrCommunityNotActive = errors.New("community is not active")
	ErrCommunityName      = errors.New("community name must be 3-64 characters")

	// Collaborator errors
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUnknownAsset        = errors.New("asset not found")
	ErrNotOwner            = errors.New("account does not own this asset")
	ErrJournalDisabled     = errors.New("journaling is disabled")
)
