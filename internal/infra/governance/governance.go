// Package governance implements quadratic-vote governance over the
// engine's runtime parameters and item disputes.
//
// Voting power is the integer square root of escrowed stake,
//
//	weight = isqrt(stake)
//
// so influence grows with commitment but sub-linearly: concentrating
// credits in one wallet buys less weight than spreading conviction
// across voters.
//
// A proposal is Active from creation until its voting deadline. Tally
// resolves it: Passed iff yesWeight > noWeight and yesWeight + noWeight
// meets the quorum, Rejected otherwise. Deposits and vote stakes are
// escrowed in the external credit ledger the moment they enter: a
// Rejected tally refunds everything immediately, a Passed proposal
// keeps escrow until execution. Collaborator debits happen before any
// local mutation, so a refused debit leaves no trace here.
package governance

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/dsa"
)

// ─── Configuration ──────────────────────────────────────────────────────────

// Config configures the governance engine.
type Config struct {
	VotingPeriod   time.Duration // deadline offset for new proposals
	QuorumWeight   uint64        // combined weight needed for a valid tally
	MinimumDeposit uint64        // smallest accepted proposal deposit
}

// DefaultConfig returns boot defaults: three-day voting, quorum weight
// 25, minimum deposit 100 credits.
func DefaultConfig() Config {
	return Config{
		VotingPeriod:   72 * time.Hour,
		QuorumWeight:   25,
		MinimumDeposit: 100,
	}
}

// ─── Engine ─────────────────────────────────────────────────────────────────

// Engine runs proposal lifecycles and escrow accounting. Thread-safe.
type Engine struct {
	mu        sync.RWMutex
	config    Config
	credits   domain.CreditLedger
	proposals map[uint64]*domain.Proposal
	votes     map[uint64][]domain.Vote // per proposal, cast order
	voted     map[uint64]map[string]bool
	deadlines *dsa.DeadlineHeap
	propSeq   uint64
}

// NewEngine creates an empty governance engine escrowing through credits.
func NewEngine(cfg Config, credits domain.CreditLedger) *Engine {
	return &Engine{
		config:    cfg,
		credits:   credits,
		proposals: make(map[uint64]*domain.Proposal),
		votes:     make(map[uint64][]domain.Vote),
		voted:     make(map[uint64]map[string]bool),
		deadlines: dsa.NewDeadlineHeap(),
	}
}

// ─── Proposals ──────────────────────────────────────────────────────────────

// Propose opens a parameter-change proposal. The deposit is debited
// before the proposal exists.
func (g *Engine) Propose(proposer string, change domain.ParamChange, memo string, deposit uint64, now time.Time) (domain.Proposal, error) {
	if err := change.Validate(); err != nil {
		return domain.Proposal{}, fmt.Errorf("propose %s=%d: %w", change.Param, change.Value, err)
	}
	return g.open(&domain.Proposal{
		Kind:     domain.ProposalParamChange,
		Proposer: proposer,
		Change:   &change,
		Memo:     memo,
		Deposit:  deposit,
	}, now)
}

// ProposeDispute opens a dispute proposal over a challenged item.
// Passing it upholds the challenge; rejecting it dismisses the
// challenge. The engine wires the verdict back to the verifier.
func (g *Engine) ProposeDispute(proposer string, itemID uint64, memo string, deposit uint64, now time.Time) (domain.Proposal, error) {
	return g.open(&domain.Proposal{
		Kind:     domain.ProposalDispute,
		Proposer: proposer,
		ItemID:   itemID,
		Memo:     memo,
		Deposit:  deposit,
	}, now)
}

// open escrows the deposit and activates the proposal.
func (g *Engine) open(p *domain.Proposal, now time.Time) (domain.Proposal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p.Deposit < g.config.MinimumDeposit {
		return domain.Proposal{}, fmt.Errorf("propose: deposit %d below minimum %d: %w",
			p.Deposit, g.config.MinimumDeposit, domain.ErrDepositTooSmall)
	}
	if err := g.credits.Debit(p.Proposer, p.Deposit, domain.TxDeposit, "proposal deposit"); err != nil {
		return domain.Proposal{}, fmt.Errorf("propose: escrow deposit: %w", err)
	}

	g.propSeq++
	p.ID = g.propSeq
	p.CreatedAt = now
	p.VotingDeadline = now.Add(g.config.VotingPeriod)
	p.State = domain.ProposalActive
	g.proposals[p.ID] = p
	g.voted[p.ID] = make(map[string]bool)
	g.deadlines.Push(p.ID, p.VotingDeadline)
	return snapshot(p), nil
}

// Vote escrows stake and adds isqrt(stake) to the chosen side. One vote
// per voter per proposal, accepted strictly before the deadline.
func (g *Engine) Vote(proposalID uint64, voter string, stake uint64, support bool, now time.Time) (domain.Vote, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.proposals[proposalID]
	if !ok {
		return domain.Vote{}, fmt.Errorf("vote on proposal %d: %w", proposalID, domain.ErrUnknownProposal)
	}
	if p.State != domain.ProposalActive {
		return domain.Vote{}, fmt.Errorf("vote on proposal %d: %w", proposalID, domain.ErrProposalNotActive)
	}
	if !now.Before(p.VotingDeadline) {
		return domain.Vote{}, fmt.Errorf("vote on proposal %d: deadline was %s: %w",
			proposalID, p.VotingDeadline.UTC().Format(time.RFC3339), domain.ErrVotingClosed)
	}
	if stake == 0 {
		return domain.Vote{}, fmt.Errorf("vote on proposal %d: %w", proposalID, domain.ErrZeroAmount)
	}
	if g.voted[proposalID][voter] {
		return domain.Vote{}, fmt.Errorf("vote on proposal %d by %s: %w", proposalID, voter, domain.ErrAlreadyVoted)
	}
	if err := g.credits.Debit(voter, stake, domain.TxStake, fmt.Sprintf("stake on proposal %d", proposalID)); err != nil {
		return domain.Vote{}, fmt.Errorf("vote on proposal %d: escrow stake: %w", proposalID, err)
	}

	vote := domain.Vote{
		ProposalID: proposalID,
		Voter:      voter,
		Stake:      stake,
		Weight:     dsa.Isqrt(stake),
		Support:    support,
		At:         now,
	}
	if support {
		p.YesWeight += vote.Weight
	} else {
		p.NoWeight += vote.Weight
	}
	g.votes[proposalID] = append(g.votes[proposalID], vote)
	g.voted[proposalID][voter] = true
	return vote, nil
}

// Tally resolves an Active proposal once its deadline has passed.
// Rejection refunds all escrow immediately; a pass keeps escrow until
// execution.
func (g *Engine) Tally(proposalID uint64, now time.Time) (domain.Proposal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.proposals[proposalID]
	if !ok {
		return domain.Proposal{}, fmt.Errorf("tally proposal %d: %w", proposalID, domain.ErrUnknownProposal)
	}
	if p.State != domain.ProposalActive {
		return domain.Proposal{}, fmt.Errorf("tally proposal %d: %w", proposalID, domain.ErrProposalNotActive)
	}
	if now.Before(p.VotingDeadline) {
		return domain.Proposal{}, fmt.Errorf("tally proposal %d: voting open until %s: %w",
			proposalID, p.VotingDeadline.UTC().Format(time.RFC3339), domain.ErrVotingOpen)
	}
	g.tallyLocked(p)
	return snapshot(p), nil
}

// TallyDue resolves every Active proposal whose deadline has passed,
// draining the deadline heap. Entries for proposals already resolved by
// an explicit Tally call are skipped. Returns the resolved proposals in
// deadline order.
func (g *Engine) TallyDue(now time.Time) []domain.Proposal {
	g.mu.Lock()
	defer g.mu.Unlock()

	var resolved []domain.Proposal
	for _, entry := range g.deadlines.PopDue(now) {
		p, ok := g.proposals[entry.ID]
		if !ok || p.State != domain.ProposalActive {
			continue
		}
		g.tallyLocked(p)
		resolved = append(resolved, snapshot(p))
	}
	return resolved
}

// tallyLocked must run under g.mu with an Active proposal.
func (g *Engine) tallyLocked(p *domain.Proposal) {
	if p.YesWeight > p.NoWeight && p.YesWeight+p.NoWeight >= g.config.QuorumWeight {
		p.State = domain.ProposalPassed
		return
	}
	p.State = domain.ProposalRejected
	g.refundLocked(p)
}

// Execute finalizes a Passed proposal and releases all escrow. The
// caller applies the carried parameter change or dispute verdict.
func (g *Engine) Execute(proposalID uint64, now time.Time) (domain.Proposal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.proposals[proposalID]
	if !ok {
		return domain.Proposal{}, fmt.Errorf("execute proposal %d: %w", proposalID, domain.ErrUnknownProposal)
	}
	if p.State != domain.ProposalPassed {
		return domain.Proposal{}, fmt.Errorf("execute proposal %d: %w", proposalID, domain.ErrProposalNotPassed)
	}
	p.State = domain.ProposalExecuted
	g.refundLocked(p)
	return snapshot(p), nil
}

// refundLocked must run under g.mu. Returns every vote stake and the
// proposer's deposit. Credit cannot fail, so refunds are total.
func (g *Engine) refundLocked(p *domain.Proposal) {
	for _, vote := range g.votes[p.ID] {
		g.credits.Credit(vote.Voter, vote.Stake, domain.TxRefund, fmt.Sprintf("stake refund, proposal %d", p.ID))
	}
	g.credits.Credit(p.Proposer, p.Deposit, domain.TxRefund, fmt.Sprintf("deposit refund, proposal %d", p.ID))
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// Proposal returns one proposal by ID.
func (g *Engine) Proposal(proposalID uint64) (domain.Proposal, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p, ok := g.proposals[proposalID]
	if !ok {
		return domain.Proposal{}, fmt.Errorf("proposal %d: %w", proposalID, domain.ErrUnknownProposal)
	}
	return snapshot(p), nil
}

// Proposals returns proposals in the given states (all when none
// given), ordered by ID.
func (g *Engine) Proposals(states ...domain.ProposalState) []domain.Proposal {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []domain.Proposal
	for _, p := range g.proposals {
		if len(states) > 0 && !containsState(states, p.State) {
			continue
		}
		out = append(out, snapshot(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Votes returns a proposal's votes in cast order.
func (g *Engine) Votes(proposalID uint64) []domain.Vote {
	g.mu.RLock()
	defer g.mu.RUnlock()

	votes := g.votes[proposalID]
	out := make([]domain.Vote, len(votes))
	copy(out, votes)
	return out
}

// DueProposals returns Active proposals whose deadlines have passed,
// oldest deadline first, without resolving them.
func (g *Engine) DueProposals(now time.Time) []domain.Proposal {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var due []domain.Proposal
	for _, p := range g.proposals {
		if p.State == domain.ProposalActive && !p.VotingDeadline.After(now) {
			due = append(due, snapshot(p))
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].VotingDeadline.Equal(due[j].VotingDeadline) {
			return due[i].VotingDeadline.Before(due[j].VotingDeadline)
		}
		return due[i].ID < due[j].ID
	})
	return due
}

// ProposalCount returns the number of proposals ever opened.
func (g *Engine) ProposalCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.proposals)
}

// CountByState reports how many proposals sit in each state.
func (g *Engine) CountByState() map[domain.ProposalState]int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	counts := make(map[domain.ProposalState]int, 4)
	for _, p := range g.proposals {
		counts[p.State]++
	}
	return counts
}

// ─── Governed Parameters ────────────────────────────────────────────────────

// VotingPeriod returns the current voting period.
func (g *Engine) VotingPeriod() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config.VotingPeriod
}

// SetVotingPeriod replaces the voting period for future proposals.
// Written only by an executed governance proposal.
func (g *Engine) SetVotingPeriod(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config.VotingPeriod = d
}

// QuorumWeight returns the current quorum weight.
func (g *Engine) QuorumWeight() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config.QuorumWeight
}

// SetQuorumWeight replaces the quorum weight. Open proposals are judged
// against the value in force when they tally. Written only by an
// executed governance proposal.
func (g *Engine) SetQuorumWeight(w uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config.QuorumWeight = w
}

// MinimumDeposit returns the current minimum proposal deposit.
func (g *Engine) MinimumDeposit() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config.MinimumDeposit
}

// SetMinimumDeposit replaces the minimum proposal deposit. Written only
// by an executed governance proposal.
func (g *Engine) SetMinimumDeposit(d uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config.MinimumDeposit = d
}

// ─── Internals ──────────────────────────────────────────────────────────────

// snapshot copies a proposal so callers never alias engine state.
func snapshot(p *domain.Proposal) domain.Proposal {
	out := *p
	if p.Change != nil {
		c := *p.Change
		out.Change = &c
	}
	return out
}

func containsState(states []domain.ProposalState, s domain.ProposalState) bool {
	for _, state := range states {
		if state == s {
			return true
		}
	}
	return false
}
