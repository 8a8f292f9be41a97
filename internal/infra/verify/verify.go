// Package verify implements the commit-reveal verification pipeline for
// submitted content items.
//
// Participants judge an item in two moves: a sealed commitment
//
//	hash = sha256(outcomeByte || secret)
//
// followed by a reveal of (outcome, secret), which must reproduce the
// stored hash exactly. Sealing keeps early verdicts from steering later
// ones. Reveal counters are per round: round 1 verifies the fresh
// submission, and each mutation proposal on a Verified item opens the
// next round with fresh counters.
//
// An item is Verified once positive reveals reach the required quorum
// and outnumber negatives. A challenge moves a Pending item to Disputed
// and freezes the tally: reveals still land and are recorded, but no
// transition fires until governance settles the dispute, either
// resolving the item (terminal) or dismissing the challenge, which
// thaws the tally and re-evaluates it.
package verify

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/dsa"
)

// ─── Configuration ──────────────────────────────────────────────────────────

// Config configures the verifier.
type Config struct {
	RequiredQuorum uint32 // positive reveals needed to verify an item
}

// DefaultConfig returns boot defaults: two positive reveals verify.
func DefaultConfig() Config {
	return Config{
		RequiredQuorum: 2,
	}
}

// ─── Verifier ───────────────────────────────────────────────────────────────

// commitKey addresses one participant's sealed slot in one round.
type commitKey struct {
	itemID      uint64
	round       uint32
	participant string
}

// Verifier runs the commit-reveal state machine for all items.
// Thread-safe.
type Verifier struct {
	mu      sync.RWMutex
	config  Config
	items   map[uint64]*domain.Item
	commits map[commitKey]*domain.CommitRecord
	secrets *dsa.BloomFilter // advisory reveal-secret reuse detector
	itemSeq uint64
}

// NewVerifier creates an empty verifier.
func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		config:  cfg,
		items:   make(map[uint64]*domain.Item),
		commits: make(map[commitKey]*domain.CommitRecord),
		secrets: dsa.NewBloomFilter(dsa.DefaultBloomConfig()),
	}
}

// RequiredQuorum returns the current verification quorum.
func (v *Verifier) RequiredQuorum() uint32 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config.RequiredQuorum
}

// SetRequiredQuorum replaces the verification quorum. Open rounds are
// judged against the new value on their next reveal. Written only by an
// executed governance proposal.
func (v *Verifier) SetRequiredQuorum(q uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.config.RequiredQuorum = q
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// Submit registers a new Pending item in round 1.
func (v *Verifier) Submit(contributor, contentRef string, now time.Time) (domain.Item, error) {
	if contributor == "" || contentRef == "" {
		return domain.Item{}, fmt.Errorf("submit: contributor and content ref required: %w", domain.ErrInvalidParam)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.itemSeq++
	item := &domain.Item{
		ID:          v.itemSeq,
		Contributor: contributor,
		ContentRef:  contentRef,
		State:       domain.ItemPending,
		Round:       1,
		SubmittedAt: now,
	}
	v.items[item.ID] = item
	return *item, nil
}

// Commit seals a participant's verdict for the item's current round.
// Accepted while the item is Pending, or Verified with a mutation round
// open. One commit per (item, round, participant).
func (v *Verifier) Commit(itemID uint64, participant string, hash [32]byte, now time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	item, ok := v.items[itemID]
	if !ok {
		return fmt.Errorf("commit item %d: %w", itemID, domain.ErrUnknownItem)
	}
	switch item.State {
	case domain.ItemDisputed:
		return fmt.Errorf("commit item %d: %w", itemID, domain.ErrItemDisputed)
	case domain.ItemResolved:
		return fmt.Errorf("commit item %d: %w", itemID, domain.ErrItemResolved)
	case domain.ItemVerified:
		if item.Mutation == nil {
			return fmt.Errorf("commit item %d: %w", itemID, domain.ErrItemNotPending)
		}
	}

	key := commitKey{itemID, item.Round, participant}
	if _, dup := v.commits[key]; dup {
		return fmt.Errorf("commit item %d round %d by %s: %w", itemID, item.Round, participant, domain.ErrDuplicateCommit)
	}
	v.commits[key] = &domain.CommitRecord{
		ItemID:      itemID,
		Round:       item.Round,
		Participant: participant,
		Hash:        hash,
		CommittedAt: now,
	}
	return nil
}

// Reveal opens a sealed commitment. The (outcome, secret) pair must hash
// to the committed digest; on mismatch the commit stays consumable for a
// corrected retry. A valid reveal consumes the commit, bumps the round
// tally, and evaluates state transitions unless the item is Disputed,
// whose tally is frozen.
func (v *Verifier) Reveal(itemID uint64, participant string, outcome bool, secret []byte, now time.Time) (domain.RevealResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	item, ok := v.items[itemID]
	if !ok {
		return domain.RevealResult{}, fmt.Errorf("reveal item %d: %w", itemID, domain.ErrUnknownItem)
	}
	if item.State == domain.ItemResolved {
		return domain.RevealResult{}, fmt.Errorf("reveal item %d: %w", itemID, domain.ErrItemResolved)
	}

	key := commitKey{itemID, item.Round, participant}
	rec, ok := v.commits[key]
	if !ok {
		return domain.RevealResult{}, fmt.Errorf("reveal item %d round %d by %s: %w", itemID, item.Round, participant, domain.ErrNoCommit)
	}
	if domain.CommitDigest(outcome, secret) != rec.Hash {
		return domain.RevealResult{}, fmt.Errorf("reveal item %d round %d by %s: %w", itemID, item.Round, participant, domain.ErrHashMismatch)
	}
	delete(v.commits, key)

	res := domain.RevealResult{Outcome: outcome, SecretReused: v.secrets.Contains(secret)}
	v.secrets.Add(secret)

	if outcome {
		item.PositiveReveals++
	} else {
		item.NegativeReveals++
	}

	switch {
	case item.State == domain.ItemPending:
		res.Verified = v.maybeVerify(item)
	case item.State == domain.ItemVerified && item.Mutation != nil:
		res.MutationApplied, res.MutationRejected = v.maybeCloseMutation(item)
	}

	res.Item = snapshot(item)
	return res, nil
}

// Challenge moves a Pending item to Disputed, freezing its tally until
// governance settles the dispute.
func (v *Verifier) Challenge(itemID uint64, challenger string, now time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	item, ok := v.items[itemID]
	if !ok {
		return fmt.Errorf("challenge item %d: %w", itemID, domain.ErrUnknownItem)
	}
	switch item.State {
	case domain.ItemDisputed:
		return fmt.Errorf("challenge item %d: %w", itemID, domain.ErrItemDisputed)
	case domain.ItemResolved:
		return fmt.Errorf("challenge item %d: %w", itemID, domain.ErrItemResolved)
	case domain.ItemVerified:
		return fmt.Errorf("challenge item %d: %w", itemID, domain.ErrItemNotPending)
	}
	item.State = domain.ItemDisputed
	item.Challenger = challenger
	return nil
}

// DismissChallenge returns a Disputed item to Pending and re-evaluates
// the thawed tally, so an item whose frozen reveals already satisfy the
// quorum verifies immediately.
func (v *Verifier) DismissChallenge(itemID uint64, now time.Time) (domain.Item, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	item, ok := v.items[itemID]
	if !ok {
		return domain.Item{}, fmt.Errorf("dismiss challenge on item %d: %w", itemID, domain.ErrUnknownItem)
	}
	if item.State != domain.ItemDisputed {
		return domain.Item{}, fmt.Errorf("dismiss challenge on item %d: %w", itemID, domain.ErrItemNotDisputed)
	}
	item.State = domain.ItemPending
	item.Challenger = ""
	v.maybeVerify(item)
	return snapshot(item), nil
}

// Resolve terminates a Disputed item. Terminal: no further commits,
// reveals, mutations, or challenges.
func (v *Verifier) Resolve(itemID uint64, now time.Time) (domain.Item, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	item, ok := v.items[itemID]
	if !ok {
		return domain.Item{}, fmt.Errorf("resolve item %d: %w", itemID, domain.ErrUnknownItem)
	}
	if item.State != domain.ItemDisputed {
		return domain.Item{}, fmt.Errorf("resolve item %d: %w", itemID, domain.ErrItemNotDisputed)
	}
	item.State = domain.ItemResolved
	return snapshot(item), nil
}

// ProposeMutation opens the next verification round on a Verified item,
// carrying a replacement content ref that applies only if the round
// closes positive. One open mutation per item.
func (v *Verifier) ProposeMutation(itemID uint64, proposer, newContentRef string, now time.Time) (uint32, error) {
	if newContentRef == "" {
		return 0, fmt.Errorf("mutate item %d: content ref required: %w", itemID, domain.ErrInvalidParam)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	item, ok := v.items[itemID]
	if !ok {
		return 0, fmt.Errorf("mutate item %d: %w", itemID, domain.ErrUnknownItem)
	}
	if item.State != domain.ItemVerified {
		return 0, fmt.Errorf("mutate item %d: %w", itemID, domain.ErrItemNotVerified)
	}
	if item.Mutation != nil {
		return 0, fmt.Errorf("mutate item %d: %w", itemID, domain.ErrMutationPending)
	}

	v.voidRound(item.ID, item.Round)
	item.Round++
	item.PositiveReveals = 0
	item.NegativeReveals = 0
	item.Mutation = &domain.Mutation{
		Proposer:   proposer,
		ContentRef: newContentRef,
		Round:      item.Round,
		OpenedAt:   now,
	}
	return item.Round, nil
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// Item returns one item by ID.
func (v *Verifier) Item(itemID uint64) (domain.Item, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	item, ok := v.items[itemID]
	if !ok {
		return domain.Item{}, fmt.Errorf("item %d: %w", itemID, domain.ErrUnknownItem)
	}
	return snapshot(item), nil
}

// Items returns items in the given states (all states when none given),
// ordered by ID.
func (v *Verifier) Items(states ...domain.ItemState) []domain.Item {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var out []domain.Item
	for _, item := range v.items {
		if len(states) > 0 && !containsState(states, item.State) {
			continue
		}
		out = append(out, snapshot(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Commits returns the unrevealed commitments for an item's current
// round, ordered by participant.
func (v *Verifier) Commits(itemID uint64) []domain.CommitRecord {
	v.mu.RLock()
	defer v.mu.RUnlock()

	item, ok := v.items[itemID]
	if !ok {
		return nil
	}
	var out []domain.CommitRecord
	for key, rec := range v.commits {
		if key.itemID == itemID && key.round == item.Round {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Participant < out[j].Participant })
	return out
}

// CountByState reports how many items sit in each state.
func (v *Verifier) CountByState() map[domain.ItemState]int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	counts := make(map[domain.ItemState]int, 4)
	for _, item := range v.items {
		counts[item.State]++
	}
	return counts
}

// ─── Internals ──────────────────────────────────────────────────────────────

// maybeVerify must run under v.mu. Applies the Pending -> Verified rule.
func (v *Verifier) maybeVerify(item *domain.Item) bool {
	if item.State != domain.ItemPending {
		return false
	}
	if item.PositiveReveals >= v.config.RequiredQuorum && item.PositiveReveals > item.NegativeReveals {
		item.State = domain.ItemVerified
		return true
	}
	return false
}

// maybeCloseMutation must run under v.mu. Positive close replaces the
// content ref; negative close keeps the old one. Either close clears
// the mutation slot and voids the round's remaining commits.
func (v *Verifier) maybeCloseMutation(item *domain.Item) (applied, rejected bool) {
	pos, neg, q := item.PositiveReveals, item.NegativeReveals, v.config.RequiredQuorum
	switch {
	case pos >= q && pos > neg:
		item.ContentRef = item.Mutation.ContentRef
		applied = true
	case neg >= q && neg >= pos:
		rejected = true
	default:
		return false, false
	}
	item.Mutation = nil
	v.voidRound(item.ID, item.Round)
	return applied, rejected
}

// voidRound must run under v.mu. Discards every unrevealed commit of a
// closed round.
func (v *Verifier) voidRound(itemID uint64, round uint32) {
	for key := range v.commits {
		if key.itemID == itemID && key.round == round {
			delete(v.commits, key)
		}
	}
}

// snapshot deep-copies an item so callers never alias verifier state.
func snapshot(item *domain.Item) domain.Item {
	out := *item
	if item.Mutation != nil {
		m := *item.Mutation
		out.Mutation = &m
	}
	return out
}

func containsState(states []domain.ItemState, s domain.ItemState) bool {
	for _, state := range states {
		if state == s {
			return true
		}
	}
	return false
}
