package schedule

import (
	"sort"

	"github.com/forPelevin/brollcut/internal/types"
)

// Resolve sweeps the candidates in start order and keeps a non-overlapping
// subset. A candidate that overlaps the last accepted insertion replaces it
// only with a strictly higher confidence; otherwise it is dropped. This is a
// single greedy pass, not a global optimum, and it prefers confidence over
// whichever candidate started first.
func Resolve(cands []types.ScheduledInsertion) []types.ScheduledInsertion {
	if len(cands) == 0 {
		return nil
	}
	sorted := make([]types.ScheduledInsertion, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartSec < sorted[j].StartSec
	})

	out := make([]types.ScheduledInsertion, 0, len(sorted))
	for _, c := range sorted {
		if len(out) == 0 {
			out = append(out, c)
			continue
		}
		last := &out[len(out)-1]
		if c.StartSec >= last.EndSec() {
			out = append(out, c)
			continue
		}
		if c.Confidence > last.Confidence {
			*last = c
		}
	}
	return out
}
