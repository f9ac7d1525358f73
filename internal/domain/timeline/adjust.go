// Package timeline maps scheduled insertions onto concrete overlay clips and
// assembles them over the primary track.
package timeline

import (
	"math"

	"github.com/forPelevin/brollcut/internal/types"
)

const (
	DefaultFadeSec = 0.2

	// MinLoopSec is the shortest source clip that can be looped. Anything
	// shorter plays once as-is.
	MinLoopSec = 0.05
)

// Adjust fits the asset to the insertion's duration. Longer clips are cut
// to their first DurationSec seconds, shorter ones are repeated from the start
// and truncated exactly at DurationSec.
func Adjust(ins types.ScheduledInsertion, asset types.BRollAsset, fadeSec float64) types.Overlay {
	want := ins.DurationSec
	have := asset.NativeDuration

	ov := types.Overlay{
		Asset:      asset,
		Insertion:  ins,
		StartSec:   ins.StartSec,
		TargetSize: asset.Canvas,
	}

	switch {
	case !finite(have) || have < MinLoopSec && have < want:
		// Not loopable: play whatever length exists.
		if !finite(have) || have < 0 {
			have = 0
		}
		ov.Mode = types.ModeExact
		ov.DurationSec = have
		if have > 0 {
			ov.Segments = []types.SourceSegment{{SourceStart: 0, Duration: have}}
		}
	case have < want:
		ov.Mode = types.ModeLoop
		ov.DurationSec = want
		ov.Segments = loopSegments(have, want)
	case have > want:
		ov.Mode = types.ModeTrim
		ov.DurationSec = want
		ov.Segments = []types.SourceSegment{{SourceStart: 0, Duration: want}}
	default:
		ov.Mode = types.ModeExact
		ov.DurationSec = want
		ov.Segments = []types.SourceSegment{{SourceStart: 0, Duration: want}}
	}

	fade := fadeSec
	if half := ov.DurationSec / 2; fade > half {
		fade = half
	}
	if fade < 0 {
		fade = 0
	}
	ov.FadeInSec = fade
	ov.FadeOutSec = fade
	return ov
}

// loopSegments lays whole copies of the source end to end with an offset
// cursor and truncates the last one so the total is exactly want.
func loopSegments(have, want float64) []types.SourceSegment {
	n := int(math.Ceil(want / have))
	segs := make([]types.SourceSegment, 0, n)
	cursor := 0.0
	for i := 0; i < n; i++ {
		d := have
		if rest := want - cursor; rest < d {
			d = rest
		}
		if d <= 0 {
			break
		}
		segs = append(segs, types.SourceSegment{SourceStart: 0, Duration: d})
		cursor += d
	}
	// Rounding can leave the cursor a hair off; pin the last cut.
	if len(segs) > 0 {
		last := &segs[len(segs)-1]
		last.Duration = want - (cursor - last.Duration)
	}
	return segs
}

// SegmentsDuration is the playable length of a segment list.
func SegmentsDuration(segs []types.SourceSegment) float64 {
	var total float64
	for _, s := range segs {
		total += s.Duration
	}
	return total
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
