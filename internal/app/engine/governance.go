package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/observability"
)

// ─── Governance Lifecycle ───────────────────────────────────────────────────

// Propose opens a parameter-change proposal.
func (e *Engine) Propose(proposer string, change domain.ParamChange, memo string, deposit uint64, now time.Time) (p domain.Proposal, err error) {
	done := e.trace("engine.Propose")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err = e.governance.Propose(proposer, change, memo, deposit, now)
	if err != nil {
		return domain.Proposal{}, err
	}
	e.record(EventProposalOpened, proposer, 0, p.ID, fmt.Sprintf("%s=%d", change.Param, change.Value), now)
	return p, nil
}

// Vote escrows stake on a proposal and adds its quadratic weight.
func (e *Engine) Vote(proposalID uint64, voter string, stake uint64, support bool, now time.Time) (v domain.Vote, err error) {
	done := e.trace("engine.Vote")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	v, err = e.governance.Vote(proposalID, voter, stake, support, now)
	if err != nil {
		return domain.Vote{}, err
	}
	observability.Votes.Inc()
	e.record(EventVoteCast, voter, 0, proposalID,
		fmt.Sprintf("stake %d weight %d support %t", v.Stake, v.Weight, v.Support), now)
	return v, nil
}

// Tally resolves a proposal past its deadline. Rejecting a dispute
// dismisses the challenge and re-evaluates the thawed tally.
func (e *Engine) Tally(proposalID uint64, now time.Time) (p domain.Proposal, err error) {
	done := e.trace("engine.Tally")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err = e.governance.Tally(proposalID, now)
	if err != nil {
		return domain.Proposal{}, err
	}
	e.afterTally(p, now)
	return p, nil
}

// TallyDue resolves every proposal whose deadline has passed, in
// deadline order. The daemon's housekeeping loop calls this each tick.
func (e *Engine) TallyDue(now time.Time) []domain.Proposal {
	done := e.trace("engine.TallyDue")
	defer done(nil)

	e.mu.Lock()
	defer e.mu.Unlock()

	resolved := e.governance.TallyDue(now)
	for _, p := range resolved {
		e.afterTally(p, now)
	}
	return resolved
}

// Execute finalizes a Passed proposal and releases its escrow. A
// parameter change routes to the owning store; a dispute resolves the
// item against the contributor.
func (e *Engine) Execute(proposalID uint64, now time.Time) (p domain.Proposal, err error) {
	done := e.trace("engine.Execute")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err = e.governance.Execute(proposalID, now)
	if err != nil {
		return domain.Proposal{}, err
	}
	observability.Proposals.WithLabelValues("executed").Inc()
	e.record(EventProposalExecuted, p.Proposer, p.ItemID, p.ID, "", now)

	switch p.Kind {
	case domain.ProposalParamChange:
		e.applyParamChange(p, now)
	case domain.ProposalDispute:
		e.resolveDispute(p, now)
	}
	return p, nil
}

// ─── Verdict Plumbing ───────────────────────────────────────────────────────

// afterTally journals the verdict and unfreezes rejected disputes.
// Runs under e.mu.
func (e *Engine) afterTally(p domain.Proposal, now time.Time) {
	switch p.State {
	case domain.ProposalPassed:
		observability.Proposals.WithLabelValues("passed").Inc()
		e.record(EventProposalPassed, p.Proposer, p.ItemID, p.ID, "", now)
	case domain.ProposalRejected:
		observability.Proposals.WithLabelValues("rejected").Inc()
		e.record(EventProposalRejected, p.Proposer, p.ItemID, p.ID, "", now)
		if p.Kind == domain.ProposalDispute {
			e.dismissRejected(p, now)
		}
	}
}

// dismissRejected returns a disputed item to Pending after its dispute
// fails. Dismissal re-runs verification, so an item whose frozen tally
// satisfies a since-lowered quorum verifies here. Runs under e.mu.
func (e *Engine) dismissRejected(p domain.Proposal, now time.Time) {
	item, err := e.verifier.DismissChallenge(p.ItemID, now)
	if err != nil {
		log.Printf("[engine] dismiss challenge on item %d: %v", p.ItemID, err)
		return
	}
	e.record(EventChallengeDismissed, item.Contributor, p.ItemID, p.ID, "", now)
	if item.State == domain.ItemVerified {
		e.onVerified(item, now)
	}
	e.syncItemMetrics()
}

// applyParamChange routes an executed parameter change to the store
// owning it and records the change in the audit history. Runs under e.mu.
func (e *Engine) applyParamChange(p domain.Proposal, now time.Time) {
	if p.Change == nil {
		return
	}
	change := *p.Change
	switch change.Param {
	case domain.ParamDecayRatePerSecond:
		e.scores.SetDecayRate(change.Value)
	case domain.ParamVotingPeriodSeconds:
		e.governance.SetVotingPeriod(time.Duration(change.Value) * time.Second)
	case domain.ParamQuorumWeight:
		e.governance.SetQuorumWeight(change.Value)
	case domain.ParamMinimumDeposit:
		e.governance.SetMinimumDeposit(change.Value)
	case domain.ParamRequiredRevealQuorum:
		e.verifier.SetRequiredQuorum(uint32(change.Value))
	case domain.ParamUnbondLockSeconds:
		e.bonds.SetLockDuration(time.Duration(change.Value) * time.Second)
	default:
		// Validate at submission keeps the set closed.
		log.Printf("[engine] executed proposal %d carries unknown param %q", p.ID, change.Param)
		return
	}
	if e.journal != nil {
		if err := e.journal.RecordParamChange(change.Param, change.Value, p.ID, now); err != nil {
			observability.JournalWriteFailures.Inc()
			log.Printf("[engine] param history %s: %v", change.Param, err)
		}
	}
	e.record(EventParamChanged, "", 0, p.ID, fmt.Sprintf("%s=%d", change.Param, change.Value), now)
}

// resolveDispute finalizes an upheld challenge: the item goes terminal,
// the contributor pays the score penalty, and the forfeited submission
// bond pays the challenger. Runs under e.mu.
func (e *Engine) resolveDispute(p domain.Proposal, now time.Time) {
	item, err := e.verifier.Resolve(p.ItemID, now)
	if err != nil {
		log.Printf("[engine] resolve item %d: %v", p.ItemID, err)
		return
	}
	e.adjust(item.Contributor, -e.config.ContributorAward, domain.CauseChallengeOutcome, now)
	if bond, ok := e.itemBonds[item.ID]; ok {
		delete(e.itemBonds, item.ID)
		if item.Challenger != "" {
			e.credits.Credit(item.Challenger, bond, domain.TxForfeit, fmt.Sprintf("forfeited bond, item %d", item.ID))
		}
	}
	e.record(EventItemResolved, item.Contributor, item.ID, p.ID, "", now)
	e.syncScoreMetrics()
	e.syncItemMetrics()
}
