// Package badge implements threshold badges: named achievements a
// subject claims once its decayed score and bonded holdings clear a
// rule's floors.
//
// Eligibility is a pure read over the score and bonding ledgers at the
// caller's now. Claims are append-only: once granted a badge survives
// any later decay or penalty, so the claim set only grows.
//
// Rules come from a built-in catalog, optionally merged with an
// operator-supplied YAML file; rules sharing an ID replace the
// built-in one.
package badge

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/curia-network/curia/internal/domain"
)

// ─── Evaluator ──────────────────────────────────────────────────────────────

// Evaluator judges and records badge claims. Thread-safe.
type Evaluator struct {
	mu       sync.RWMutex
	scores   domain.ScoreSource
	bonds    domain.BondSource
	rules    map[string]domain.BadgeRule
	claims   map[string][]domain.BadgeClaim // by subject, claim order
	claimed  map[string]map[string]bool     // subject → badge ID
	claimSeq uint64
}

// NewEvaluator creates an evaluator seeded with the built-in catalog.
func NewEvaluator(scores domain.ScoreSource, bonds domain.BondSource) *Evaluator {
	e := &Evaluator{
		scores:  scores,
		bonds:   bonds,
		rules:   make(map[string]domain.BadgeRule),
		claims:  make(map[string][]domain.BadgeClaim),
		claimed: make(map[string]map[string]bool),
	}
	for _, rule := range DefaultRules() {
		e.rules[rule.ID] = rule
	}
	return e
}

// DefaultRules returns the built-in badge catalog.
func DefaultRules() []domain.BadgeRule {
	return []domain.BadgeRule{
		{
			ID:            "seasoned-contributor",
			Name:          "Seasoned Contributor",
			Description:   "Sustained a total score of 500.",
			MinTotalScore: 500,
		},
		{
			ID:              "steward",
			Name:            "Steward",
			Description:     "Keeps at least 250 score bonded across communities.",
			MinTotalScore:   250,
			MinBondedAmount: 250,
		},
	}
}

// ─── Catalog ────────────────────────────────────────────────────────────────

type catalogFile struct {
	Badges []catalogRule `yaml:"badges"`
}

type catalogRule struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	MinTotalScore   uint64 `yaml:"min_total_score"`
	MinBondedAmount uint64 `yaml:"min_bonded_amount"`
	RequiredTarget  string `yaml:"required_target"`
}

// LoadCatalog merges a YAML badge catalog into the rule set. Rules with
// known IDs replace the existing definition.
func (e *Evaluator) LoadCatalog(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read badge catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse badge catalog %s: %w", path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, rule := range file.Badges {
		if rule.ID == "" || rule.Name == "" {
			return fmt.Errorf("badge catalog %s entry %d: id and name required: %w", path, i, domain.ErrInvalidParam)
		}
		e.rules[rule.ID] = domain.BadgeRule{
			ID:              rule.ID,
			Name:            rule.Name,
			Description:     rule.Description,
			MinTotalScore:   rule.MinTotalScore,
			MinBondedAmount: rule.MinBondedAmount,
			RequiredTarget:  rule.RequiredTarget,
		}
	}
	return nil
}

// ─── Operations ─────────────────────────────────────────────────────────────

// IsEligible reports whether the subject clears the rule's floors at now.
func (e *Evaluator) IsEligible(subject, ruleID string, now time.Time) (bool, error) {
	e.mu.RLock()
	rule, ok := e.rules[ruleID]
	e.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("badge %s: %w", ruleID, domain.ErrUnknownBadge)
	}
	return e.eligible(rule, subject, now), nil
}

// Claim grants the badge to an eligible subject. Claims are permanent:
// later decay never revokes one, and a second claim fails.
func (e *Evaluator) Claim(subject, ruleID string, now time.Time) (domain.BadgeClaim, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rule, ok := e.rules[ruleID]
	if !ok {
		return domain.BadgeClaim{}, fmt.Errorf("claim badge %s: %w", ruleID, domain.ErrUnknownBadge)
	}
	if e.claimed[subject][ruleID] {
		return domain.BadgeClaim{}, fmt.Errorf("claim badge %s for %s: %w", ruleID, subject, domain.ErrAlreadyClaimed)
	}
	if !e.eligible(rule, subject, now) {
		return domain.BadgeClaim{}, fmt.Errorf("claim badge %s for %s: %w", ruleID, subject, domain.ErrNotEligible)
	}

	e.claimSeq++
	claim := domain.BadgeClaim{
		Seq:     e.claimSeq,
		Subject: subject,
		BadgeID: ruleID,
		At:      now,
	}
	e.claims[subject] = append(e.claims[subject], claim)
	if e.claimed[subject] == nil {
		e.claimed[subject] = make(map[string]bool)
	}
	e.claimed[subject][ruleID] = true
	return claim, nil
}

// Rules returns the catalog ordered by rule ID.
func (e *Evaluator) Rules() []domain.BadgeRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.BadgeRule, 0, len(e.rules))
	for _, rule := range e.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Rule returns one catalog entry.
func (e *Evaluator) Rule(ruleID string) (domain.BadgeRule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rule, ok := e.rules[ruleID]
	if !ok {
		return domain.BadgeRule{}, fmt.Errorf("badge %s: %w", ruleID, domain.ErrUnknownBadge)
	}
	return rule, nil
}

// Claims returns the subject's badges in claim order.
func (e *Evaluator) Claims(subject string) []domain.BadgeClaim {
	e.mu.RLock()
	defer e.mu.RUnlock()

	claims := e.claims[subject]
	out := make([]domain.BadgeClaim, len(claims))
	copy(out, claims)
	return out
}

// eligible consults the ledgers, which synchronize on their own locks.
func (e *Evaluator) eligible(rule domain.BadgeRule, subject string, now time.Time) bool {
	if e.scores.GetScore(subject, now) < rule.MinTotalScore {
		return false
	}
	if rule.MinBondedAmount == 0 {
		return true
	}
	if rule.RequiredTarget != "" {
		return e.bonds.BondedTo(subject, rule.RequiredTarget, now) >= rule.MinBondedAmount
	}
	return e.bonds.BondedTotal(subject, now) >= rule.MinBondedAmount
}
