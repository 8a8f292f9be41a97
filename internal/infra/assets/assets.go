// Package assets implements the non-fungible asset registry collaborator:
// credential records minted to contributors, transferable and burnable by
// their owner. IDs come from the registry's own counter and are never
// reused, including after a burn.
package assets

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/curia-network/curia/internal/domain"
)

var _ domain.AssetRegistry = (*Registry)(nil)

// ─── Registry ───────────────────────────────────────────────────────────────

// Registry is an in-memory asset store. Thread-safe.
type Registry struct {
	mu      sync.RWMutex
	assets  map[uint64]*domain.Asset
	byOwner map[string]map[uint64]bool
	seq     uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		assets:  make(map[uint64]*domain.Asset),
		byOwner: make(map[string]map[uint64]bool),
	}
}

// ─── Operations ─────────────────────────────────────────────────────────────

// Mint creates an asset owned by owner.
func (r *Registry) Mint(owner string, kind domain.AssetKind, ref string, now time.Time) (domain.Asset, error) {
	if owner == "" {
		return domain.Asset{}, fmt.Errorf("mint: owner required: %w", domain.ErrInvalidParam)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	asset := &domain.Asset{
		ID:       r.seq,
		Owner:    owner,
		Kind:     kind,
		Ref:      ref,
		MintedAt: now,
	}
	r.assets[asset.ID] = asset
	r.index(owner, asset.ID)
	return *asset, nil
}

// Transfer moves an asset between owners. Only the current owner may move
// it, and the claimed owner is checked against the record, not trusted.
func (r *Registry) Transfer(assetID uint64, from, to string) error {
	if to == "" {
		return fmt.Errorf("transfer asset %d: recipient required: %w", assetID, domain.ErrInvalidParam)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[assetID]
	if !ok {
		return fmt.Errorf("transfer asset %d: %w", assetID, domain.ErrUnknownAsset)
	}
	if asset.Owner != from {
		return fmt.Errorf("transfer asset %d from %s: %w", assetID, from, domain.ErrNotOwner)
	}
	delete(r.byOwner[from], assetID)
	asset.Owner = to
	r.index(to, assetID)
	return nil
}

// Burn removes an asset permanently. Its ID is retired.
func (r *Registry) Burn(assetID uint64, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, ok := r.assets[assetID]
	if !ok {
		return fmt.Errorf("burn asset %d: %w", assetID, domain.ErrUnknownAsset)
	}
	if asset.Owner != owner {
		return fmt.Errorf("burn asset %d by %s: %w", assetID, owner, domain.ErrNotOwner)
	}
	delete(r.byOwner[owner], assetID)
	delete(r.assets, assetID)
	return nil
}

// Asset returns one record by ID.
func (r *Registry) Asset(assetID uint64) (domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, ok := r.assets[assetID]
	if !ok {
		return domain.Asset{}, fmt.Errorf("asset %d: %w", assetID, domain.ErrUnknownAsset)
	}
	return *asset, nil
}

// Assets returns the owner's holdings ordered by ID.
func (r *Registry) Assets(owner string) []domain.Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byOwner[owner]
	out := make([]domain.Asset, 0, len(ids))
	for id := range ids {
		out = append(out, *r.assets[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of live assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assets)
}

func (r *Registry) index(owner string, assetID uint64) {
	if r.byOwner[owner] == nil {
		r.byOwner[owner] = make(map[uint64]bool)
	}
	r.byOwner[owner][assetID] = true
}
