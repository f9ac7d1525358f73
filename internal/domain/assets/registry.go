// Package assets holds the B-roll clips known to a single run.
package assets

import (
	"log/slog"
	"sort"

	"github.com/forPelevin/brollcut/internal/types"
)

// Registry maps clip ids to their analyzed metadata. It is filled once before
// planning starts and only read afterwards.
type Registry struct {
	byID map[string]types.BRollAsset
	log  *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Registry{byID: make(map[string]types.BRollAsset), log: log}
}

// Register stores the asset under its id. A later registration of the same
// id replaces the earlier one.
func (r *Registry) Register(a types.BRollAsset) {
	if prev, ok := r.byID[a.ID]; ok {
		r.log.Debug("asset replaced", "broll_id", a.ID, "old_path", prev.Path, "new_path", a.Path)
	}
	r.byID[a.ID] = a
}

func (r *Registry) Lookup(id string) (types.BRollAsset, bool) {
	a, ok := r.byID[id]
	return a, ok
}

func (r *Registry) Len() int { return len(r.byID) }

// Assets returns every registered asset ordered by id.
func (r *Registry) Assets() []types.BRollAsset {
	out := make([]types.BRollAsset, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
