package engine

import (
	"fmt"
	"time"

	"github.com/curia-network/curia/internal/domain"
	"github.com/curia-network/curia/internal/infra/observability"
)

// ─── Score Operations ───────────────────────────────────────────────────────

// Adjust applies a signed score delta and returns the new score.
// Recorder path.
func (e *Engine) Adjust(subject string, delta int64, cause domain.AdjustCause, now time.Time) uint64 {
	done := e.trace("engine.Adjust")
	defer done(nil)

	e.mu.Lock()
	defer e.mu.Unlock()

	newScore := e.adjust(subject, delta, cause, now)
	e.record(EventScoreAdjusted, subject, 0, 0, fmt.Sprintf("%+d -> %d (%s)", delta, newScore, cause), now)
	e.syncScoreMetrics()
	return newScore
}

// GrantAttestation endorses a subject with points carrying provenance.
// Recorder path.
func (e *Engine) GrantAttestation(recorder, subject string, points uint64, note string, now time.Time) (a domain.Attestation, err error) {
	done := e.trace("engine.GrantAttestation")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	a, err = e.scores.Grant(recorder, subject, points, note, now)
	if err != nil {
		return domain.Attestation{}, err
	}
	observability.Adjustments.WithLabelValues(string(domain.CauseAttestationGranted)).Inc()
	e.record(EventAttestationGranted, subject, 0, 0,
		fmt.Sprintf("attestation %d: +%d from %s", a.ID, points, recorder), now)
	e.syncScoreMetrics()
	return a, nil
}

// RevokeAttestation takes an attestation's points back. The row stays,
// marked revoked.
func (e *Engine) RevokeAttestation(attestationID uint64, now time.Time) (a domain.Attestation, err error) {
	done := e.trace("engine.RevokeAttestation")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	a, err = e.scores.Revoke(attestationID, now)
	if err != nil {
		return domain.Attestation{}, err
	}
	observability.Adjustments.WithLabelValues(string(domain.CauseAttestationRevoked)).Inc()
	e.record(EventAttestationRevoked, a.Subject, 0, 0,
		fmt.Sprintf("attestation %d: -%d", a.ID, a.Points), now)
	e.syncScoreMetrics()
	return a, nil
}

// ─── Bonding Operations ─────────────────────────────────────────────────────

// Bond locks free score behind a community. New bonds require an Active
// community; exits never check the gate, so suspended and dissolved
// communities can still be left.
func (e *Engine) Bond(subject, target string, amount uint64, now time.Time) (err error) {
	done := e.trace("engine.Bond")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.communities.ActiveTarget(target) {
		if _, cerr := e.communities.Community(target); cerr != nil {
			return fmt.Errorf("bond %s -> %s: %w", subject, target, domain.ErrUnknownCommunity)
		}
		return fmt.Errorf("bond %s -> %s: %w", subject, target, domain.ErrCommunityNotActive)
	}
	if err = e.bonds.Bond(subject, target, amount, now); err != nil {
		return err
	}
	e.record(EventBondAdded, subject, 0, 0, fmt.Sprintf("%d -> %s", amount, target), now)
	e.syncBondMetrics()
	return nil
}

// RequestUnbond starts the lock clock on part of a bond.
func (e *Engine) RequestUnbond(subject, target string, amount uint64, now time.Time) (req domain.UnbondRequest, err error) {
	done := e.trace("engine.RequestUnbond")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	req, err = e.bonds.RequestUnbond(subject, target, amount, now)
	if err != nil {
		return domain.UnbondRequest{}, err
	}
	e.record(EventUnbondRequested, subject, 0, 0,
		fmt.Sprintf("%d from %s, unlocks %s", req.Amount, target, req.UnlockTime.UTC().Format(time.RFC3339)), now)
	e.syncBondMetrics()
	return req, nil
}

// ClaimUnbonded releases a matured unbond request back to free score.
func (e *Engine) ClaimUnbonded(subject, target string, now time.Time) (amount uint64, err error) {
	done := e.trace("engine.ClaimUnbonded")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	amount, err = e.bonds.ClaimUnbonded(subject, target, now)
	if err != nil {
		return 0, err
	}
	e.record(EventUnbondClaimed, subject, 0, 0, fmt.Sprintf("%d from %s", amount, target), now)
	e.syncBondMetrics()
	return amount, nil
}

// ─── Badge Operations ───────────────────────────────────────────────────────

// ClaimBadge grants a badge to an eligible subject. Claims survive
// later decay.
func (e *Engine) ClaimBadge(subject, ruleID string, now time.Time) (claim domain.BadgeClaim, err error) {
	done := e.trace("engine.ClaimBadge")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	claim, err = e.badges.Claim(subject, ruleID, now)
	if err != nil {
		return domain.BadgeClaim{}, err
	}
	observability.BadgeClaims.Inc()
	e.record(EventBadgeClaimed, subject, 0, 0, ruleID, now)
	return claim, nil
}

// ─── Community Operations ───────────────────────────────────────────────────

// CreateCommunity registers a new bond target. Operator path.
func (e *Engine) CreateCommunity(name, description string, now time.Time) (c domain.Community, err error) {
	done := e.trace("engine.CreateCommunity")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	c, err = e.communities.Create(name, description, now)
	if err != nil {
		return domain.Community{}, err
	}
	e.record(EventCommunityCreated, "", 0, 0, fmt.Sprintf("%s (%s)", c.ID, c.Name), now)
	return c, nil
}

// SuspendCommunity stops a community from accepting new bonds.
// Operator path.
func (e *Engine) SuspendCommunity(id string, now time.Time) (err error) {
	done := e.trace("engine.SuspendCommunity")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.communities.Suspend(id); err != nil {
		return err
	}
	e.record(EventCommunitySuspended, "", 0, 0, id, now)
	return nil
}

// DissolveCommunity retires a community permanently and frees its
// name. Operator path.
func (e *Engine) DissolveCommunity(id string, now time.Time) (err error) {
	done := e.trace("engine.DissolveCommunity")
	defer func() { done(err) }()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err = e.communities.Dissolve(id); err != nil {
		return err
	}
	e.record(EventCommunityDissolved, "", 0, 0, id, now)
	return nil
}
