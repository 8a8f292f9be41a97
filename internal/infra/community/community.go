// Package community implements the bond-target registry.
//
// A community is a named destination for score bonds. Its lifecycle is
// Active → Suspended/Dissolved; only Active communities accept new bonds,
// while unbonding and claiming keep working in every state so an exit is
// never blocked by an operator action.
package community

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/curia-network/curia/internal/domain"
)

var _ domain.TargetGate = (*Registry)(nil)

const (
	// MinNameLength guards against typo registrations.
	MinNameLength = 3

	// MaxNameLength keeps IDs and display names bounded.
	MaxNameLength = 64
)

// ─── Registry ───────────────────────────────────────────────────────────────

// Registry manages communities. Thread-safe.
type Registry struct {
	mu          sync.RWMutex
	communities map[string]*domain.Community // ID → community
	seq         uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{communities: make(map[string]*domain.Community)}
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// Create registers a new Active community. Names are unique among
// non-dissolved communities, case-insensitively.
func (r *Registry) Create(name, description string, now time.Time) (domain.Community, error) {
	name = strings.TrimSpace(name)
	if len(name) < MinNameLength || len(name) > MaxNameLength {
		return domain.Community{}, fmt.Errorf("create community %q: %w", name, domain.ErrCommunityName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.communities {
		if strings.EqualFold(c.Name, name) && c.State != domain.CommunityDissolved {
			return domain.Community{}, fmt.Errorf("create community %q: %w", name, domain.ErrCommunityExists)
		}
	}

	r.seq++
	c := &domain.Community{
		ID:          fmt.Sprintf("com-%s-%d", slugify(name), r.seq),
		Name:        name,
		Description: description,
		State:       domain.CommunityActive,
		CreatedAt:   now,
	}
	r.communities[c.ID] = c
	return *c, nil
}

// Suspend pauses a community: new bonds are refused while existing
// positions can still exit. Suspending twice is a no-op.
func (r *Registry) Suspend(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.communities[id]
	if !ok {
		return fmt.Errorf("suspend community %s: %w", id, domain.ErrUnknownCommunity)
	}
	if c.State == domain.CommunityDissolved {
		return fmt.Errorf("suspend community %s: %w", id, domain.ErrCommunityNotActive)
	}
	c.State = domain.CommunitySuspended
	return nil
}

// Dissolve retires a community permanently and frees its name for reuse.
func (r *Registry) Dissolve(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.communities[id]
	if !ok {
		return fmt.Errorf("dissolve community %s: %w", id, domain.ErrUnknownCommunity)
	}
	c.State = domain.CommunityDissolved
	return nil
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// ActiveTarget reports whether the community accepts new bonds.
func (r *Registry) ActiveTarget(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.communities[id]
	return ok && c.State == domain.CommunityActive
}

// Community returns one registration by ID.
func (r *Registry) Community(id string) (domain.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.communities[id]
	if !ok {
		return domain.Community{}, fmt.Errorf("community %s: %w", id, domain.ErrUnknownCommunity)
	}
	return *c, nil
}

// Communities returns every registration, dissolved included, ordered by ID.
func (r *Registry) Communities() []domain.Community {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Community, 0, len(r.communities))
	for _, c := range r.communities {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveCount returns the number of Active communities.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, c := range r.communities {
		if c.State == domain.CommunityActive {
			count++
		}
	}
	return count
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// slugify converts a display name to the ID-safe fragment.
func slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")

	var b strings.Builder
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			b.WriteRune(c)
		}
	}
	slug := b.String()
	if len(slug) > 32 {
		slug = slug[:32]
	}
	return slug
}
