// Package engine is the single write path over the curia stores.
//
// Every mutating flow locks the engine mutex, so cross-component
// sequences (debit then submit, reveal then award then mint) never
// interleave. Reads skip the engine mutex and go straight to the
// component stores, each of which guards itself.
//
// External money movement precedes local mutation: a refused debit
// leaves every store untouched. Journal appends and metric updates
// happen after the mutation succeeds and are best-effort — an audit
// failure is logged and counted, never surfaced to the caller.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/assets"
	"github.com/curia-network/curia/internal/infra/badge"
	"github.com/curia-network/curia/internal/infra/bonding"
	"github.com/curia-network/curia/internal/infra/community"
	"github.com/curia-network/curia/internal/infra/credits"
	"github.com/curia-network/curia/internal/infra/governance"
	"github.com/curia-network/curia/internal/infra/observability"
	"github.com/curia-network/curia/internal/infra/score"
	"github.com/curia-network/curia/internal/infra/verify"
)

// ─── Event Kinds ────────────────────────────────────────────────────────────
// Audit journal vocabulary, one kind per successful mutation.

const (
	EventScoreAdjusted      = "SCORE_ADJUSTED"
	EventAttestationGranted = "ATTESTATION_GRANTED"
	EventAttestationRevoked = "ATTESTATION_REVOKED"
	EventItemSubmitted      = "ITEM_SUBMITTED"
	EventCommitRecorded     = "COMMIT_RECORDED"
	EventRevealAccepted     = "REVEAL_ACCEPTED"
	EventItemVerified       = "ITEM_VERIFIED"
	EventMutationProposed   = "MUTATION_PROPOSED"
	EventMutationApplied    = "MUTATION_APPLIED"
	EventMutationRejected   = "MUTATION_REJECTED"
	EventItemChallenged     = "ITEM_CHALLENGED"
	EventChallengeDismissed = "CHALLENGE_DISMISSED"
	EventItemResolved       = "ITEM_RESOLVED"
	EventProposalOpened     = "PROPOSAL_OPENED"
	EventVoteCast           = "VOTE_CAST"
	EventProposalPassed     = "PROPOSAL_PASSED"
	EventProposalRejected   = "PROPOSAL_REJECTED"
	EventProposalExecuted   = "PROPOSAL_EXECUTED"
	EventParamChanged       = "PARAM_CHANGED"
	EventBondAdded          = "BOND_ADDED"
	EventUnbondRequested    = "UNBOND_REQUESTED"
	EventUnbondClaimed      = "UNBOND_CLAIMED"
	EventBadgeClaimed       = "BADGE_CLAIMED"
	EventCommunityCreated   = "COMMUNITY_CREATED"
	EventCommunitySuspended = "COMMUNITY_SUSPENDED"
	EventCommunityDissolved = "COMMUNITY_DISSOLVED"
	EventCreditsSeeded      = "CREDITS_SEEDED"
	EventSnapshotTaken      = "SNAPSHOT_TAKEN"
)

// ─── Configuration ──────────────────────────────────────────────────────────

// Config sets the engine's bond and award schedule.
type Config struct {
	SubmissionBond   uint64 // credits escrowed per submitted item
	ContributorAward int64  // score awarded on verification, charged back on resolution
	VerifierAward    uint64 // credits paid per accepted reveal
}

// DefaultConfig returns boot defaults: 50-credit submission bond,
// 25-point contributor award, 5-credit verifier award.
func DefaultConfig() Config {
	return Config{
		SubmissionBond:   50,
		ContributorAward: 25,
		VerifierAward:    5,
	}
}

// ─── Engine ─────────────────────────────────────────────────────────────────

// Deps wires the stores the engine orchestrates. Journal and Tracer may
// be nil, disabling auditing and span capture; everything else is
// required.
type Deps struct {
	Scores      *score.Ledger
	Verifier    *verify.Verifier
	Bonds       *bonding.Ledger
	Governance  *governance.Engine
	Badges      *badge.Evaluator
	Communities *community.Registry
	Credits     *credits.Ledger
	Assets      *assets.Registry
	Journal     domain.Journal
	Tracer      *observability.Tracer
}

// Engine serializes mutating flows across the component stores.
type Engine struct {
	mu     sync.Mutex
	config Config

	scores      *score.Ledger
	verifier    *verify.Verifier
	bonds       *bonding.Ledger
	governance  *governance.Engine
	badges      *badge.Evaluator
	communities *community.Registry
	credits     *credits.Ledger
	assets      *assets.Registry
	journal     domain.Journal
	tracer      *observability.Tracer

	// itemBonds holds each item's escrowed submission bond until it is
	// refunded (Verified) or forfeited to the challenger (Resolved).
	itemBonds map[uint64]uint64
}

// New creates an engine over the given stores.
func New(cfg Config, deps Deps) *Engine {
	return &Engine{
		config:      cfg,
		scores:      deps.Scores,
		verifier:    deps.Verifier,
		bonds:       deps.Bonds,
		governance:  deps.Governance,
		badges:      deps.Badges,
		communities: deps.Communities,
		credits:     deps.Credits,
		assets:      deps.Assets,
		journal:     deps.Journal,
		tracer:      deps.Tracer,
		itemBonds:   make(map[uint64]uint64),
	}
}

// ─── Read Facades ───────────────────────────────────────────────────────────
// Reads bypass the engine mutex: each store guards itself, and no store
// caches another's state.

// Scores returns the score ledger.
func (e *Engine) Scores() *score.Ledger { return e.scores }

// Verifier returns the commit-reveal verifier.
func (e *Engine) Verifier() *verify.Verifier { return e.verifier }

// Bonds returns the bonding ledger.
func (e *Engine) Bonds() *bonding.Ledger { return e.bonds }

// Governance returns the governance engine.
func (e *Engine) Governance() *governance.Engine { return e.governance }

// Badges returns the badge evaluator.
func (e *Engine) Badges() *badge.Evaluator { return e.badges }

// Communities returns the community registry.
func (e *Engine) Communities() *community.Registry { return e.communities }

// Credits returns the credit ledger.
func (e *Engine) Credits() *credits.Ledger { return e.credits }

// Assets returns the asset registry.
func (e *Engine) Assets() *assets.Registry { return e.assets }

// Tracer returns the span tracer, nil when disabled.
func (e *Engine) Tracer() *observability.Tracer { return e.tracer }

// Params reports the governed configuration as currently in force.
func (e *Engine) Params() domain.Params {
	return domain.Params{
		DecayRatePerSecond:   e.scores.DecayRate(),
		VotingPeriodSeconds:  uint64(e.governance.VotingPeriod() / time.Second),
		QuorumWeight:         e.governance.QuorumWeight(),
		MinimumDeposit:       e.governance.MinimumDeposit(),
		RequiredRevealQuorum: e.verifier.RequiredQuorum(),
		UnbondLockSeconds:    uint64(e.bonds.LockDuration() / time.Second),
	}
}

// ─── Operator Operations ────────────────────────────────────────────────────

// SeedCredits grants fresh credits to an account and returns the new
// balance. Operator path; the only credit entry point outside refunds
// and awards.
func (e *Engine) SeedCredits(account string, amount uint64, now time.Time) uint64 {
	done := e.trace("engine.SeedCredits")
	defer done(nil)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.credits.Seed(account, amount)
	e.record(EventCreditsSeeded, account, 0, 0, fmt.Sprintf("seeded %d credits", amount), now)
	return e.credits.Balance(account)
}

// snapshotState is the JSON document a Snapshot row persists.
type snapshotState struct {
	TakenAt     time.Time          `json:"taken_at"`
	Params      domain.Params      `json:"params"`
	Standings   []domain.Standing  `json:"standings"`
	Items       []domain.Item      `json:"items"`
	Proposals   []domain.Proposal  `json:"proposals"`
	Communities []domain.Community `json:"communities"`
	Balances    map[string]uint64  `json:"balances"`
	Bonds       bonding.Stats      `json:"bonds"`
	AssetCount  int                `json:"asset_count"`
}

// Snapshot persists a full-state JSON snapshot row and returns its ID.
// The in-memory stores stay authoritative; the row is an operational
// record, not a recovery point.
func (e *Engine) Snapshot(now time.Time) (id int64, err error) {
	done := e.trace("engine.Snapshot")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.journal == nil {
		return 0, fmt.Errorf("snapshot: %w", domain.ErrJournalDisabled)
	}

	balances := make(map[string]uint64)
	for _, account := range e.credits.Accounts() {
		balances[account] = e.credits.Balance(account)
	}
	state := snapshotState{
		TakenAt:     now,
		Params:      e.Params(),
		Standings:   e.scores.TopSubjects(0, now),
		Items:       e.verifier.Items(),
		Proposals:   e.governance.Proposals(),
		Communities: e.communities.Communities(),
		Balances:    balances,
		Bonds:       e.bonds.Stats(),
		AssetCount:  e.assets.Count(),
	}
	blob, err := json.Marshal(state)
	if err != nil {
		return 0, fmt.Errorf("snapshot: encode state: %w", err)
	}
	id, err = e.journal.SaveSnapshot(blob, now)
	if err != nil {
		return 0, fmt.Errorf("snapshot: %w", err)
	}
	e.record(EventSnapshotTaken, "", 0, 0, fmt.Sprintf("snapshot %d, %d bytes", id, len(blob)), now)
	return id, nil
}

// ─── Internals ──────────────────────────────────────────────────────────────

// trace opens a span for a mutating flow. The returned func records it
// with the flow's outcome.
func (e *Engine) trace(op string) func(error) {
	if e.tracer == nil {
		return func(error) {}
	}
	span := e.tracer.StartSpan(context.Background(), op, nil)
	return func(err error) { e.tracer.EndSpan(span, err) }
}

// record appends an audit event, best-effort.
func (e *Engine) record(kind, subject string, itemID, proposalID uint64, detail string, at time.Time) {
	if e.journal == nil {
		return
	}
	err := e.journal.RecordEvent(domain.Event{
		Kind:       kind,
		Subject:    subject,
		ItemID:     itemID,
		ProposalID: proposalID,
		Detail:     detail,
		At:         at,
	})
	if err != nil {
		observability.JournalWriteFailures.Inc()
		log.Printf("[engine] journal %s: %v", kind, err)
	}
}

// adjust applies a score delta and counts it. Runs under e.mu.
func (e *Engine) adjust(subject string, delta int64, cause domain.AdjustCause, now time.Time) uint64 {
	newScore := e.scores.Adjust(subject, delta, cause, now)
	observability.Adjustments.WithLabelValues(string(cause)).Inc()
	return newScore
}

// syncScoreMetrics refreshes the subject gauge.
func (e *Engine) syncScoreMetrics() {
	observability.Subjects.Set(float64(e.scores.SubjectCount()))
}

// syncItemMetrics refreshes the per-state item gauges. CountByState
// omits empty states, so every label is written explicitly.
func (e *Engine) syncItemMetrics() {
	counts := e.verifier.CountByState()
	for _, s := range []domain.ItemState{domain.ItemPending, domain.ItemVerified, domain.ItemDisputed, domain.ItemResolved} {
		observability.Items.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}

// syncBondMetrics refreshes the bonding gauges.
func (e *Engine) syncBondMetrics() {
	stats := e.bonds.Stats()
	observability.ActiveBonds.Set(float64(stats.BondCount))
	observability.BondedAmount.Set(float64(stats.BondedAmount))
	observability.PendingUnbonds.Set(float64(stats.PendingRequests))
}
