// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// ─── Score Types ────────────────────────────────────────────────────────────

// Subject is any identity accruing reputation. Records are created
// implicitly on the first score-affecting event and never deleted; a score
// may decay to zero but the row persists for history.
type Subject struct {
	ID         string    `json:"id"`
	Score      uint64    `json:"score"`
	LastUpdate time.Time `json:"last_update"`
}

// AdjustCause classifies why a score changed.
type AdjustCause string

const (
	CauseVerifiedInteraction AdjustCause = "VERIFIED_INTERACTION"
	CauseAttestationGranted  AdjustCause = "ATTESTATION_GRANTED"
	CauseAttestationRevoked  AdjustCause = "ATTESTATION_REVOKED"
	CauseChallengeOutcome    AdjustCause = "CHALLENGE_OUTCOME"
	CauseMutationOutcome     AdjustCause = "MUTATION_OUTCOME"
)

// ScoreAdjustment is one applied score mutation. Immutable once recorded.
type ScoreAdjustment struct {
	Seq      uint64      `json:"seq"`
	Subject  string      `json:"subject"`
	Delta    int64       `json:"delta"`
	NewScore uint64      `json:"new_score"`
	Cause    AdjustCause `json:"cause"`
	At       time.Time   `json:"at"`
}

// Attestation is a score endorsement granted by a trusted recorder.
// Revoking takes the points back but keeps the row.
type Attestation struct {
	ID        uint64    `json:"id"`
	Recorder  string    `json:"recorder"`
	Subject   string    `json:"subject"`
	Points    uint64    `json:"points"`
	Note      string    `json:"note,omitempty"`
	GrantedAt time.Time `json:"granted_at"`
	Revoked   bool      `json:"revoked"`
}

// Standing is one leaderboard row, ranked by decayed score.
type Standing struct {
	Rank    int    `json:"rank"`
	Subject string `json:"subject"`
	Score   uint64 `json:"score"`
}

// ─── Item Types ─────────────────────────────────────────────────────────────

// ItemState tracks an item's verification lifecycle.
// Pending -> Verified once reveals reach quorum with positives ahead.
// Pending -> Disputed on an explicit challenge (freezes the tally).
// Disputed -> Pending (challenge dismissed) or Resolved (upheld, terminal).
type ItemState int

const (
	ItemPending ItemState = iota
	ItemVerified
	ItemDisputed
	ItemResolved
)

// String returns the human-readable state name.
func (s ItemState) String() string {
	switch s {
	case ItemPending:
		return "pending"
	case ItemVerified:
		return "verified"
	case ItemDisputed:
		return "disputed"
	case ItemResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// ParseItemState maps a state name back to its value.
func ParseItemState(name string) (ItemState, bool) {
	switch name {
	case "pending":
		return ItemPending, true
	case "verified":
		return ItemVerified, true
	case "disputed":
		return ItemDisputed, true
	case "resolved":
		return ItemResolved, true
	}
	return 0, false
}

// MarshalJSON renders the state as its name.
func (s ItemState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a state name.
func (s *ItemState) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	v, ok := ParseItemState(name)
	if !ok {
		return fmt.Errorf("unknown item state %q", name)
	}
	*s = v
	return nil
}

// Mutation is a pending content change on a Verified item, decided by a
// fresh commit-reveal round.
type Mutation struct {
	Proposer   string    `json:"proposer"`
	ContentRef string    `json:"content_ref"`
	Round      uint32    `json:"round"`
	OpenedAt   time.Time `json:"opened_at"`
}

// Item is the unit of content under verification. Reveal counters are
// per-round; Round starts at 1 and advances when a mutation round opens.
type Item struct {
	ID              uint64    `json:"id"`
	Contributor     string    `json:"contributor"`
	ContentRef      string    `json:"content_ref"`
	State           ItemState `json:"state"`
	Round           uint32    `json:"round"`
	PositiveReveals uint32    `json:"positive_reveals"`
	NegativeReveals uint32    `json:"negative_reveals"`
	Challenger      string    `json:"challenger,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
	Mutation        *Mutation `json:"mutation,omitempty"`
}

// CommitRecord is a sealed commitment awaiting reveal, keyed by
// (item, round, participant). Destroyed on successful reveal.
type CommitRecord struct {
	ItemID      uint64    `json:"item_id"`
	Round       uint32    `json:"round"`
	Participant string    `json:"participant"`
	Hash        [32]byte  `json:"-"`
	CommittedAt time.Time `json:"committed_at"`
}

// HashHex renders the stored commitment digest as lowercase hex.
func (c CommitRecord) HashHex() string {
	return hex.EncodeToString(c.Hash[:])
}

// RevealResult reports the effect of a successful reveal.
type RevealResult struct {
	Item             Item `json:"item"`
	Outcome          bool `json:"outcome"`
	Verified         bool `json:"verified,omitempty"`          // item reached Verified on this reveal
	MutationApplied  bool `json:"mutation_applied,omitempty"`  // mutation round closed positive
	MutationRejected bool `json:"mutation_rejected,omitempty"` // mutation round closed negative
	SecretReused     bool `json:"secret_reused,omitempty"`     // advisory: secret probably seen before
}

// ─── Governance Types ───────────────────────────────────────────────────────

// ProposalState tracks a proposal's lifecycle.
// Active -> Passed -> Executed, or Active -> Rejected. Rejected and
// Executed are terminal.
type ProposalState int

const (
	ProposalActive ProposalState = iota
	ProposalPassed
	ProposalRejected
	ProposalExecuted
)

// String returns the human-readable state name.
func (s ProposalState) String() string {
	switch s {
	case ProposalActive:
		return "active"
	case ProposalPassed:
		return "passed"
	case ProposalRejected:
		return "rejected"
	case ProposalExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// ParseProposalState maps a state name back to its value.
func ParseProposalState(name string) (ProposalState, bool) {
	switch name {
	case "active":
		return ProposalActive, true
	case "passed":
		return ProposalPassed, true
	case "rejected":
		return ProposalRejected, true
	case "executed":
		return ProposalExecuted, true
	}
	return 0, false
}

// MarshalJSON renders the state as its name.
func (s ProposalState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a state name.
func (s *ProposalState) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	v, ok := ParseProposalState(name)
	if !ok {
		return fmt.Errorf("unknown proposal state %q", name)
	}
	*s = v
	return nil
}

// ProposalKind discriminates what a proposal decides.
type ProposalKind string

const (
	// ProposalParamChange carries a governed-parameter update.
	ProposalParamChange ProposalKind = "PARAM_CHANGE"
	// ProposalDispute decides a challenged item: passed means the
	// challenge is upheld and the item is resolved against the
	// contributor; rejected means the challenge is dismissed.
	ProposalDispute ProposalKind = "DISPUTE"
)

// Proposal is a governance question under quadratic vote.
type Proposal struct {
	ID             uint64        `json:"id"`
	Kind           ProposalKind  `json:"kind"`
	Proposer       string        `json:"proposer"`
	Change         *ParamChange  `json:"change,omitempty"`
	ItemID         uint64        `json:"item_id,omitempty"`
	Memo           string        `json:"memo,omitempty"`
	Deposit        uint64        `json:"deposit"`
	CreatedAt      time.Time     `json:"created_at"`
	VotingDeadline time.Time     `json:"voting_deadline"`
	YesWeight      uint64        `json:"yes_weight"`
	NoWeight       uint64        `json:"no_weight"`
	State          ProposalState `json:"state"`
}

// Vote is one voter's quadratic-weighted position on a proposal.
// Immutable once cast; the stake is escrowed until tally or execution.
type Vote struct {
	ProposalID uint64    `json:"proposal_id"`
	Voter      string    `json:"voter"`
	Stake      uint64    `json:"stake"`
	Weight     uint64    `json:"weight"`
	Support    bool      `json:"support"`
	At         time.Time `json:"at"`
}

// ─── Bonding Types ──────────────────────────────────────────────────────────

// BondRecord is score earmarked by a subject toward a target community.
// Bonded score still counts toward the subject's total; it is reserved,
// not transferred.
type BondRecord struct {
	Subject string `json:"subject"`
	Target  string `json:"target"`
	Amount  uint64 `json:"amount"`
}

// UnbondRequest is score in limbo between bonded and free: neither counts
// as bonded to the target nor is spendable until claimed after UnlockTime.
// At most one outstanding request per (subject, target).
type UnbondRequest struct {
	Seq         uint64    `json:"seq"`
	Subject     string    `json:"subject"`
	Target      string    `json:"target"`
	Amount      uint64    `json:"amount"`
	RequestedAt time.Time `json:"requested_at"`
	UnlockTime  time.Time `json:"unlock_time"`
}

// ─── Badge Types ────────────────────────────────────────────────────────────

// BadgeRule is a declarative eligibility threshold. RequiredTarget, when
// set, scopes MinBondedAmount to bonds on that community; otherwise the
// subject's total bonded amount counts.
type BadgeRule struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	MinTotalScore   uint64 `json:"min_total_score"`
	MinBondedAmount uint64 `json:"min_bonded_amount"`
	RequiredTarget  string `json:"required_target,omitempty"`
}

// BadgeClaim is a permanent credential grant. Claims are never revoked,
// even if the score later decays below the rule's threshold.
type BadgeClaim struct {
	Seq     uint64    `json:"seq"`
	Subject string    `json:"subject"`
	BadgeID string    `json:"badge_id"`
	At      time.Time `json:"at"`
}

// ─── Community Types ────────────────────────────────────────────────────────

// CommunityState tracks a bond target's lifecycle. Only Active communities
// accept new bonds; unbonding and claiming work in any state.
type CommunityState int

const (
	CommunityActive CommunityState = iota
	CommunitySuspended
	CommunityDissolved
)

// String returns the human-readable state name.
func (s CommunityState) String() string {
	switch s {
	case CommunityActive:
		return "active"
	case CommunitySuspended:
		return "suspended"
	case CommunityDissolved:
		return "dissolved"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the state as its name.
func (s CommunityState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Community is a registered bond target.
type Community struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	State       CommunityState `json:"state"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ─── Asset Types ────────────────────────────────────────────────────────────

// AssetKind classifies what a minted asset represents.
type AssetKind string

const (
	// AssetVerifiedItem marks the credential minted to a contributor when
	// an item reaches Verified.
	AssetVerifiedItem AssetKind = "VERIFIED_ITEM"
)

// Asset is a non-fungible record held by the registry collaborator.
type Asset struct {
	ID       uint64    `json:"id"`
	Owner    string    `json:"owner"`
	Kind     AssetKind `json:"kind"`
	Ref      string    `json:"ref,omitempty"`
	MintedAt time.Time `json:"minted_at"`
}

// ─── Audit Types ────────────────────────────────────────────────────────────

// Event is one audit journal row.
type Event struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject,omitempty"`
	ItemID     uint64    `json:"item_id,omitempty"`
	ProposalID uint64    `json:"proposal_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// ─── Utilities ──────────────────────────────────────────────────────────────

// CommitDigest computes the commitment hash for an (outcome, secret) pair:
// sha256(outcomeByte || secret), where outcomeByte is 0x01 for a positive
// outcome and 0x00 for a negative one.
func CommitDigest(outcome bool, secret []byte) [32]byte {
	buf := make([]byte, 1+len(secret))
	if outcome {
		buf[0] = 0x01
	}
	copy(buf[1:], secret)
	return sha256.Sum256(buf)
}

// DigestHex renders a commitment digest as lowercase hex.
func DigestHex(d [32]byte) string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses a 64-character hex commitment digest.
func ParseDigest(s string) ([32]byte, error) {
	var d [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return d, fmt.Errorf("%w: %q", ErrBadDigest, s)
	}
	copy(d[:], raw)
	return d, nil
}
