package timeline

import (
	"sort"

	"github.com/forPelevin/brollcut/internal/types"
)

// Compose places the overlays over the base track. Overlays are trusted to be
// non-overlapping already; the only work here is emitting them by start time.
func Compose(base types.Track, overlays []types.Overlay) types.Composition {
	out := make([]types.Overlay, len(overlays))
	copy(out, overlays)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartSec < out[j].StartSec
	})
	return types.Composition{Base: base, Overlays: out}
}
