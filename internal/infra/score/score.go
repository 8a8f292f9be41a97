// Package score implements the decaying reputation ledger.
//
// Scores are integer points and are never stored "live": every read and
// every write first evaluates lazy linear decay,
//
//	decay = score × rate × elapsedSeconds / 1e18
//
// floored at zero. The rate is a 1e18-scaled fixed-point fraction of the
// balance per second; rate 0 disables decay. Mutations always touch
// (persist the decayed value) before applying a delta, so a stale balance
// can never absorb a fresh delta in the wrong order.
//
// The ledger also owns the adjustment history and the attestation store:
// attestations are the trusted-recorder path for granting points, and
// revoking one takes its points back through the same adjust path.
package score

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/dsa"
)

// ─── Configuration ──────────────────────────────────────────────────────────

// Config configures the score ledger.
type Config struct {
	DecayRatePerSecond uint64 // 1e18-scaled fraction of balance lost per second
	HistoryLimit       int    // adjustment rows kept per subject (0 = unlimited)
}

// DefaultConfig returns boot defaults: decay disabled, last 1000
// adjustments retained per subject.
func DefaultConfig() Config {
	return Config{
		DecayRatePerSecond: 0,
		HistoryLimit:       1000,
	}
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

// account is a subject's stored state. The score is only meaningful
// together with lastUpdate: readers must decay it to their own now first.
type account struct {
	score      uint64
	lastUpdate time.Time
}

// Ledger tracks every subject's decaying score. Thread-safe via RWMutex.
// All operations take an explicit now; the ledger never reads the system
// clock, so decay stays deterministic under test.
type Ledger struct {
	mu       sync.RWMutex
	config   Config
	accounts map[string]*account
	history  map[string][]domain.ScoreAdjustment
	attests  map[uint64]*domain.Attestation

	// Arena counters owned by this store.
	adjSeq uint64
	attSeq uint64
}

// NewLedger creates an empty score ledger.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{
		config:   cfg,
		accounts: make(map[string]*account),
		history:  make(map[string][]domain.ScoreAdjustment),
		attests:  make(map[uint64]*domain.Attestation),
	}
}

// DecayRate returns the current decay rate.
func (l *Ledger) DecayRate() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.DecayRatePerSecond
}

// SetDecayRate replaces the decay rate. Written only by an executed
// governance proposal.
func (l *Ledger) SetDecayRate(rate uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.DecayRatePerSecond = rate
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// GetScore returns the subject's score decayed to now. Pure read: nothing
// is persisted, unknown subjects read as zero.
func (l *Ledger) GetScore(subject string, now time.Time) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.decayed(l.accounts[subject], now)
}

// Subject returns the decayed read model for one subject.
func (l *Ledger) Subject(subject string, now time.Time) domain.Subject {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := domain.Subject{ID: subject}
	if acct, ok := l.accounts[subject]; ok {
		s.Score = l.decayed(acct, now)
		s.LastUpdate = acct.lastUpdate
	}
	return s
}

// History returns the subject's retained adjustments, oldest first.
func (l *Ledger) History(subject string) []domain.ScoreAdjustment {
	l.mu.RLock()
	defer l.mu.RUnlock()

	h := l.history[subject]
	out := make([]domain.ScoreAdjustment, len(h))
	copy(out, h)
	return out
}

// Attestations returns all attestations granted to a subject, oldest
// first, revoked ones included.
func (l *Ledger) Attestations(subject string) []domain.Attestation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.Attestation
	for _, att := range l.attests {
		if att.Subject == subject {
			out = append(out, *att)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Attestation returns one attestation by ID.
func (l *Ledger) Attestation(id uint64) (domain.Attestation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	att, ok := l.attests[id]
	if !ok {
		return domain.Attestation{}, domain.ErrUnknownAttestation
	}
	return *att, nil
}

// TopSubjects returns up to limit subjects ranked by decayed score,
// highest first. Ties break on subject ID so the ranking is stable.
func (l *Ledger) TopSubjects(limit int, now time.Time) []domain.Standing {
	l.mu.RLock()
	defer l.mu.RUnlock()

	standings := make([]domain.Standing, 0, len(l.accounts))
	for id, acct := range l.accounts {
		standings = append(standings, domain.Standing{Subject: id, Score: l.decayed(acct, now)})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].Subject < standings[j].Subject
	})
	if limit > 0 && limit < len(standings) {
		standings = standings[:limit]
	}
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// SubjectCount returns the number of subjects ever seen.
func (l *Ledger) SubjectCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}

// ─── Mutations ──────────────────────────────────────────────────────────────

// Touch persists the decayed value and moves lastUpdate to now. Returns
// the persisted score. Zero elapsed time applies no decay but still
// refreshes the timestamp, so re-entry at the same instant is idempotent.
func (l *Ledger) Touch(subject string, now time.Time) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.touch(subject, now)
}

// Adjust touches, then applies delta with saturating floor-at-zero
// semantics, persists, records the adjustment, and returns the new score.
func (l *Ledger) Adjust(subject string, delta int64, cause domain.AdjustCause, now time.Time) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.adjust(subject, delta, cause, now)
}

// Grant issues an attestation and applies its points to the subject.
func (l *Ledger) Grant(recorder, subject string, points uint64, note string, now time.Time) (domain.Attestation, error) {
	if points == 0 {
		return domain.Attestation{}, fmt.Errorf("grant to %s: %w", subject, domain.ErrZeroAmount)
	}
	if points > math.MaxInt64 {
		return domain.Attestation{}, fmt.Errorf("grant to %s: %w", subject, domain.ErrInvalidParam)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.attSeq++
	att := &domain.Attestation{
		ID:        l.attSeq,
		Recorder:  recorder,
		Subject:   subject,
		Points:    points,
		Note:      note,
		GrantedAt: now,
	}
	l.attests[att.ID] = att
	l.adjust(subject, int64(points), domain.CauseAttestationGranted, now)
	return *att, nil
}

// Revoke takes a granted attestation's points back. The row stays, marked
// revoked; revoking twice fails.
func (l *Ledger) Revoke(attestationID uint64, now time.Time) (domain.Attestation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	att, ok := l.attests[attestationID]
	if !ok {
		return domain.Attestation{}, domain.ErrUnknownAttestation
	}
	if att.Revoked {
		return *att, domain.ErrAttestationRevoked
	}
	att.Revoked = true
	l.adjust(att.Subject, -int64(att.Points), domain.CauseAttestationRevoked, now)
	return *att, nil
}

// ─── Internals ──────────────────────────────────────────────────────────────

// decayed computes the lazily decayed score at now without persisting.
// Elapsed time at or below zero contributes no decay: the clock never
// moves a balance backward in time.
func (l *Ledger) decayed(acct *account, now time.Time) uint64 {
	if acct == nil {
		return 0
	}
	elapsed := now.Sub(acct.lastUpdate)
	if elapsed <= 0 || l.config.DecayRatePerSecond == 0 {
		return acct.score
	}
	dec := dsa.MulDiv3(acct.score, l.config.DecayRatePerSecond, uint64(elapsed/time.Second), domain.RateScale)
	return dsa.SatSub(acct.score, dec)
}

// touch must run under l.mu. Creates unknown subjects with a zero score.
func (l *Ledger) touch(subject string, now time.Time) uint64 {
	acct, ok := l.accounts[subject]
	if !ok {
		acct = &account{lastUpdate: now}
		l.accounts[subject] = acct
		return 0
	}
	acct.score = l.decayed(acct, now)
	if now.After(acct.lastUpdate) {
		acct.lastUpdate = now
	}
	return acct.score
}

// adjust must run under l.mu.
func (l *Ledger) adjust(subject string, delta int64, cause domain.AdjustCause, now time.Time) uint64 {
	l.touch(subject, now)
	acct := l.accounts[subject]
	acct.score = dsa.ApplyDelta(acct.score, delta)

	l.adjSeq++
	h := append(l.history[subject], domain.ScoreAdjustment{
		Seq:      l.adjSeq,
		Subject:  subject,
		Delta:    delta,
		NewScore: acct.score,
		Cause:    cause,
		At:       now,
	})
	if limit := l.config.HistoryLimit; limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	l.history[subject] = h
	return acct.score
}
