// Package bonding implements the bond ledger: subjects pledge portions of
// their reputation score toward named targets.
//
// The ledger holds no points of its own; the score ledger stays the single
// balance of record and bonding merely partitions it:
//
//	free = score − bonded − locked
//
// Unbonding is two-phase. A request parks the amount in a timed lock, and
// claiming after the lock expires releases it back to free. One pending
// request per (subject, target) at a time.
//
// When a penalty or decay drops a subject's score below its holdings, the
// holdings are clamped on the spot so the partition invariant survives
// shrinkage: bonds shed first, largest first with ties on target name,
// then locked requests the same way. Clamps persist immediately, even on
// read paths.
package bonding

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/curia-network/curia/internal/domain"
)

const defaultTreeDegree = 2

// ─── Configuration ──────────────────────────────────────────────────────────

// Config configures the bond ledger.
type Config struct {
	LockDuration time.Duration // unbond requests unlock this long after the request
}

// DefaultConfig returns boot defaults: a seven-day unbond lock.
func DefaultConfig() Config {
	return Config{
		LockDuration: 7 * 24 * time.Hour,
	}
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// unbondLess orders pending requests by unlock time, then subject and
// target, so equal deadlines iterate deterministically. A (subject, target)
// pair has at most one pending request, which keeps the key unique.
func unbondLess(a, b *domain.UnbondRequest) bool {
	if !a.UnlockTime.Equal(b.UnlockTime) {
		return a.UnlockTime.Before(b.UnlockTime)
	}
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	return a.Target < b.Target
}

var _ btree.LessFunc[*domain.UnbondRequest] = unbondLess

var _ domain.BondSource = (*Ledger)(nil)

// Ledger tracks bonds and pending unbond requests per subject. Thread-safe.
// A plain Mutex guards everything because even reads may persist a clamp.
type Ledger struct {
	mu       sync.Mutex
	config   Config
	scores   domain.ScoreSource
	bonds    map[string]map[string]uint64                // subject → target → amount
	requests map[string]map[string]*domain.UnbondRequest // subject → target → pending request
	queue    *btree.BTreeG[*domain.UnbondRequest]        // ordered by unlock time
	reqSeq   uint64
}

// NewLedger creates an empty bond ledger reading balances from scores.
func NewLedger(cfg Config, scores domain.ScoreSource) *Ledger {
	return &Ledger{
		config:   cfg,
		scores:   scores,
		bonds:    make(map[string]map[string]uint64),
		requests: make(map[string]map[string]*domain.UnbondRequest),
		queue:    btree.NewG(defaultTreeDegree, unbondLess),
	}
}

// LockDuration returns the current unbond lock duration.
func (l *Ledger) LockDuration() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.config.LockDuration
}

// SetLockDuration replaces the unbond lock duration. Pending requests keep
// the unlock time they were issued with. Written only by an executed
// governance proposal.
func (l *Ledger) SetLockDuration(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.LockDuration = d
}

// ─── Mutations ──────────────────────────────────────────────────────────────

// Bond pledges amount of the subject's free score toward target.
func (l *Ledger) Bond(subject, target string, amount uint64, now time.Time) error {
	if amount == 0 {
		return fmt.Errorf("bond %s toward %s: %w", subject, target, domain.ErrZeroAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	score := l.scores.Touch(subject, now)
	l.clamp(subject, score)

	free := score - l.bondedTotal(subject) - l.lockedTotal(subject)
	if amount > free {
		return fmt.Errorf("bond %s toward %s: %d free of %d wanted: %w",
			subject, target, free, amount, domain.ErrInsufficientFreeScore)
	}
	if l.bonds[subject] == nil {
		l.bonds[subject] = make(map[string]uint64)
	}
	l.bonds[subject][target] += amount
	return nil
}

// RequestUnbond moves amount of a bond into the timed unlock queue. The
// amount stays out of free until it is claimed.
func (l *Ledger) RequestUnbond(subject, target string, amount uint64, now time.Time) (domain.UnbondRequest, error) {
	if amount == 0 {
		return domain.UnbondRequest{}, fmt.Errorf("unbond %s from %s: %w", subject, target, domain.ErrZeroAmount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.clamp(subject, l.scores.Touch(subject, now))

	if _, ok := l.requests[subject][target]; ok {
		return domain.UnbondRequest{}, fmt.Errorf("unbond %s from %s: %w", subject, target, domain.ErrRequestAlreadyPending)
	}
	bonded := l.bonds[subject][target]
	if amount > bonded {
		return domain.UnbondRequest{}, fmt.Errorf("unbond %s from %s: %d bonded of %d wanted: %w",
			subject, target, bonded, amount, domain.ErrInsufficientBond)
	}

	l.setBond(subject, target, bonded-amount)

	l.reqSeq++
	req := &domain.UnbondRequest{
		Seq:         l.reqSeq,
		Subject:     subject,
		Target:      target,
		Amount:      amount,
		RequestedAt: now,
		UnlockTime:  now.Add(l.config.LockDuration),
	}
	if l.requests[subject] == nil {
		l.requests[subject] = make(map[string]*domain.UnbondRequest)
	}
	l.requests[subject][target] = req
	l.queue.ReplaceOrInsert(req)
	return *req, nil
}

// ClaimUnbonded releases a matured unbond request back to free score and
// returns the released amount, after any clamp.
func (l *Ledger) ClaimUnbonded(subject, target string, now time.Time) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clamp(subject, l.scores.Touch(subject, now))

	req, ok := l.requests[subject][target]
	if !ok {
		return 0, fmt.Errorf("claim %s from %s: %w", subject, target, domain.ErrNoRequest)
	}
	if now.Before(req.UnlockTime) {
		return 0, fmt.Errorf("claim %s from %s: locked until %s: %w",
			subject, target, req.UnlockTime.UTC().Format(time.RFC3339), domain.ErrLockNotExpired)
	}
	l.dropRequest(req)
	return req.Amount, nil
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// Free returns the subject's unpledged score at now, clamping first.
func (l *Ledger) Free(subject string, now time.Time) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	score := l.scores.GetScore(subject, now)
	l.clamp(subject, score)
	return score - l.bondedTotal(subject) - l.lockedTotal(subject)
}

// BondedTo returns the amount the subject has bonded toward target at
// now, clamping first.
func (l *Ledger) BondedTo(subject, target string, now time.Time) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clamp(subject, l.scores.GetScore(subject, now))
	return l.bonds[subject][target]
}

// BondedTotal returns the subject's total bonded amount at now, clamping
// first.
func (l *Ledger) BondedTotal(subject string, now time.Time) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clamp(subject, l.scores.GetScore(subject, now))
	return l.bondedTotal(subject)
}

// Locked returns the subject's total amount awaiting unbond claims.
func (l *Ledger) Locked(subject string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lockedTotal(subject)
}

// Bonds returns the subject's bonds at now sorted by target.
func (l *Ledger) Bonds(subject string, now time.Time) []domain.BondRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clamp(subject, l.scores.GetScore(subject, now))
	out := make([]domain.BondRecord, 0, len(l.bonds[subject]))
	for target, amount := range l.bonds[subject] {
		out = append(out, domain.BondRecord{Subject: subject, Target: target, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}

// Request returns the pending unbond request for (subject, target).
func (l *Ledger) Request(subject, target string) (domain.UnbondRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[subject][target]
	if !ok {
		return domain.UnbondRequest{}, domain.ErrNoRequest
	}
	return *req, nil
}

// DueRequests returns all pending requests whose locks have expired at
// now, soonest first. Claiming remains the subject's own call; this feeds
// operator dashboards and notifications.
func (l *Ledger) DueRequests(now time.Time) []domain.UnbondRequest {
	l.mu.Lock()
	defer l.mu.Unlock()

	var due []domain.UnbondRequest
	l.queue.Ascend(func(req *domain.UnbondRequest) bool {
		if req.UnlockTime.After(now) {
			return false
		}
		due = append(due, *req)
		return true
	})
	return due
}

// Stats reports ledger-wide totals as persisted, without clamping.
// Feeds gauges and dashboards, not balance decisions.
type Stats struct {
	BondCount       int    `json:"bond_count"`
	BondedAmount    uint64 `json:"bonded_amount"`
	PendingRequests int    `json:"pending_requests"`
	LockedAmount    uint64 `json:"locked_amount"`
}

// Stats returns current ledger-wide totals.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	var s Stats
	for _, targets := range l.bonds {
		s.BondCount += len(targets)
		for _, amount := range targets {
			s.BondedAmount += amount
		}
	}
	for _, reqs := range l.requests {
		s.PendingRequests += len(reqs)
		for _, req := range reqs {
			s.LockedAmount += req.Amount
		}
	}
	return s
}

// ─── Internals ──────────────────────────────────────────────────────────────

func (l *Ledger) bondedTotal(subject string) uint64 {
	var total uint64
	for _, amount := range l.bonds[subject] {
		total += amount
	}
	return total
}

func (l *Ledger) lockedTotal(subject string) uint64 {
	var total uint64
	for _, req := range l.requests[subject] {
		total += req.Amount
	}
	return total
}

// setBond must run under l.mu. Zero bonds are removed outright.
func (l *Ledger) setBond(subject, target string, amount uint64) {
	if amount == 0 {
		delete(l.bonds[subject], target)
		if len(l.bonds[subject]) == 0 {
			delete(l.bonds, subject)
		}
		return
	}
	l.bonds[subject][target] = amount
}

// dropRequest must run under l.mu.
func (l *Ledger) dropRequest(req *domain.UnbondRequest) {
	l.queue.Delete(req)
	delete(l.requests[req.Subject], req.Target)
	if len(l.requests[req.Subject]) == 0 {
		delete(l.requests, req.Subject)
	}
}

// clamp must run under l.mu. Shrinks the subject's holdings until
// bonded + locked fits under score. Bonds shed before locked requests;
// within each group the largest amount goes first and ties break on
// target name. A request clamped to zero is dropped so it cannot block
// a later unbond.
func (l *Ledger) clamp(subject string, score uint64) {
	total := l.bondedTotal(subject) + l.lockedTotal(subject)
	if total <= score {
		return
	}
	excess := total - score

	type holding struct {
		target string
		amount uint64
	}
	bonds := make([]holding, 0, len(l.bonds[subject]))
	for target, amount := range l.bonds[subject] {
		bonds = append(bonds, holding{target, amount})
	}
	sort.Slice(bonds, func(i, j int) bool {
		if bonds[i].amount != bonds[j].amount {
			return bonds[i].amount > bonds[j].amount
		}
		return bonds[i].target < bonds[j].target
	})
	for _, b := range bonds {
		if excess == 0 {
			return
		}
		cut := b.amount
		if cut > excess {
			cut = excess
		}
		l.setBond(subject, b.target, b.amount-cut)
		excess -= cut
	}

	reqs := make([]*domain.UnbondRequest, 0, len(l.requests[subject]))
	for _, req := range l.requests[subject] {
		reqs = append(reqs, req)
	}
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].Amount != reqs[j].Amount {
			return reqs[i].Amount > reqs[j].Amount
		}
		return reqs[i].Target < reqs[j].Target
	})
	for _, req := range reqs {
		if excess == 0 {
			return
		}
		cut := req.Amount
		if cut > excess {
			cut = excess
		}
		req.Amount -= cut
		excess -= cut
		if req.Amount == 0 {
			l.dropRequest(req)
		}
	}
}
