package engine

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/observability"
)

// ─── Item Lifecycle ─────────────────────────────────────────────────────────

// SubmitItem escrows the submission bond and creates a Pending item.
// The bond is refunded when the item verifies and forfeited to the
// challenger when a dispute resolves against it.
func (e *Engine) SubmitItem(contributor, contentRef string, now time.Time) (item domain.Item, err error) {
	done := e.trace("engine.SubmitItem")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if contributor == "" || contentRef == "" {
		return domain.Item{}, fmt.Errorf("submit item: contributor and content ref required: %w", domain.ErrInvalidParam)
	}
	if err = e.credits.Debit(contributor, e.config.SubmissionBond, domain.TxDeposit, "submission bond"); err != nil {
		return domain.Item{}, fmt.Errorf("submit item: %w", err)
	}
	item, err = e.verifier.Submit(contributor, contentRef, now)
	if err != nil {
		e.credits.Credit(contributor, e.config.SubmissionBond, domain.TxRefund, "submission bond refund")
		return domain.Item{}, err
	}
	e.itemBonds[item.ID] = e.config.SubmissionBond
	e.record(EventItemSubmitted, contributor, item.ID, 0, item.ContentRef, now)
	e.syncItemMetrics()
	return item, nil
}

// Commit seals a participant's vote on an item's current round.
func (e *Engine) Commit(itemID uint64, participant string, hash [32]byte, now time.Time) (err error) {
	done := e.trace("engine.Commit")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.verifier.Commit(itemID, participant, hash, now); err != nil {
		return err
	}
	e.record(EventCommitRecorded, participant, itemID, 0, "", now)
	return nil
}

// Reveal opens a commitment. An accepted reveal pays the verifier
// award; a reveal that verifies the item triggers the contributor
// award, the bond refund, and the credential mint; a reveal that closes
// a mutation round pays the mutation proposer when the round passes.
func (e *Engine) Reveal(itemID uint64, participant string, outcome bool, secret []byte, now time.Time) (res domain.RevealResult, err error) {
	done := e.trace("engine.Reveal")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	// The mutation proposer leaves the item once its round closes, so
	// capture it before the reveal.
	var mutationProposer string
	if prev, perr := e.verifier.Item(itemID); perr == nil && prev.Mutation != nil {
		mutationProposer = prev.Mutation.Proposer
	}

	res, err = e.verifier.Reveal(itemID, participant, outcome, secret, now)
	if err != nil {
		if errors.Is(err, domain.ErrHashMismatch) {
			observability.RevealFailures.Inc()
		}
		return domain.RevealResult{}, err
	}

	observability.Reveals.WithLabelValues(outcomeLabel(res.Outcome)).Inc()
	if res.SecretReused {
		observability.SecretReuseWarnings.Inc()
	}
	if e.config.VerifierAward > 0 {
		e.credits.Credit(participant, e.config.VerifierAward, domain.TxAward, fmt.Sprintf("reveal accepted, item %d", itemID))
	}
	e.record(EventRevealAccepted, participant, itemID, 0, outcomeLabel(res.Outcome), now)

	switch {
	case res.Verified:
		e.onVerified(res.Item, now)
	case res.MutationApplied:
		e.adjust(mutationProposer, e.config.ContributorAward, domain.CauseMutationOutcome, now)
		e.record(EventMutationApplied, mutationProposer, itemID, 0, res.Item.ContentRef, now)
		e.syncScoreMetrics()
	case res.MutationRejected:
		e.record(EventMutationRejected, mutationProposer, itemID, 0, "", now)
	}
	e.syncItemMetrics()
	return res, nil
}

// ProposeMutation opens a fresh commit-reveal round over replacement
// content for a Verified item. Returns the new round number.
func (e *Engine) ProposeMutation(itemID uint64, proposer, newContentRef string, now time.Time) (round uint32, err error) {
	done := e.trace("engine.ProposeMutation")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	round, err = e.verifier.ProposeMutation(itemID, proposer, newContentRef, now)
	if err != nil {
		return 0, err
	}
	e.record(EventMutationProposed, proposer, itemID, 0, newContentRef, now)
	return round, nil
}

// Challenge freezes a Pending item's tally and opens the dispute
// proposal deciding it. The challenger's deposit escrows through
// governance; a refused escrow leaves the item untouched.
func (e *Engine) Challenge(itemID uint64, challenger, memo string, deposit uint64, now time.Time) (p domain.Proposal, err error) {
	done := e.trace("engine.Challenge")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	item, err := e.verifier.Item(itemID)
	if err != nil {
		return domain.Proposal{}, err
	}
	switch item.State {
	case domain.ItemDisputed:
		return domain.Proposal{}, fmt.Errorf("challenge item %d: %w", itemID, domain.ErrItemDisputed)
	case domain.ItemResolved:
		return domain.Proposal{}, fmt.Errorf("challenge item %d: %w", itemID, domain.ErrItemResolved)
	case domain.ItemVerified:
		return domain.Proposal{}, fmt.Errorf("challenge item %d: %w", itemID, domain.ErrItemNotPending)
	}

	p, err = e.governance.ProposeDispute(challenger, itemID, memo, deposit, now)
	if err != nil {
		return domain.Proposal{}, err
	}
	if cerr := e.verifier.Challenge(itemID, challenger, now); cerr != nil {
		// Unreachable while e.mu is held: the item was checked Pending above.
		log.Printf("[engine] challenge item %d after dispute %d opened: %v", itemID, p.ID, cerr)
	}
	e.record(EventItemChallenged, challenger, itemID, p.ID, memo, now)
	e.syncItemMetrics()
	return p, nil
}

// onVerified applies the one-time verification bookkeeping: contributor
// score award, submission bond refund, credential mint. Runs under e.mu.
func (e *Engine) onVerified(item domain.Item, now time.Time) {
	e.adjust(item.Contributor, e.config.ContributorAward, domain.CauseVerifiedInteraction, now)
	if bond, ok := e.itemBonds[item.ID]; ok {
		delete(e.itemBonds, item.ID)
		e.credits.Credit(item.Contributor, bond, domain.TxRefund, fmt.Sprintf("submission bond refund, item %d", item.ID))
	}
	if _, err := e.assets.Mint(item.Contributor, domain.AssetVerifiedItem, item.ContentRef, now); err != nil {
		log.Printf("[engine] mint credential for item %d: %v", item.ID, err)
	}
	e.record(EventItemVerified, item.Contributor, item.ID, 0, item.ContentRef, now)
	e.syncScoreMetrics()
}

func outcomeLabel(outcome bool) string {
	if outcome {
		return "positive"
	}
	return "negative"
}
