// Package schedule turns untrusted insertion candidates into an ordered,
// non-overlapping schedule.
package schedule

import (
	"log/slog"
	"math"

	"github.com/forPelevin/brollcut/internal/types"
)

const (
	DefaultMinDur = 2.0
	DefaultMaxDur = 5.0
)

// Bounds are the allowed insertion durations in seconds.
type Bounds struct {
	MinDur float64
	MaxDur float64
}

func DefaultBounds() Bounds {
	return Bounds{MinDur: DefaultMinDur, MaxDur: DefaultMaxDur}
}

// Valid reports whether the bounds describe a usable, non-empty range.
func (b Bounds) Valid() bool {
	if !isFinite(b.MinDur) || !isFinite(b.MaxDur) {
		return false
	}
	return b.MinDur > 0 && b.MinDur <= b.MaxDur
}

type AssetLookup interface {
	Lookup(id string) (types.BRollAsset, bool)
}

type RejectReason string

const (
	RejectUnknownAsset    RejectReason = "unknown_asset"
	RejectInvalidStart    RejectReason = "invalid_start"
	RejectInvalidDuration RejectReason = "invalid_duration"
)

// Rejection records a dropped candidate by its index in the raw input.
type Rejection struct {
	Index   int
	BRollID string
	Reason  RejectReason
}

// Validate checks every candidate on its own. Unknown ids and unusable
// timestamps are dropped, durations and confidences are clamped. Survivors
// keep their input order.
func Validate(raw []types.RawCandidate, lookup AssetLookup, b Bounds, log *slog.Logger) ([]types.ScheduledInsertion, []Rejection) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	out := make([]types.ScheduledInsertion, 0, len(raw))
	var rejected []Rejection
	for i, c := range raw {
		reason, ok := check(c, lookup)
		if !ok {
			rejected = append(rejected, Rejection{Index: i, BRollID: c.BRollID, Reason: reason})
			log.Warn("candidate dropped",
				"index", i,
				"broll_id", c.BRollID,
				"reason", string(reason),
				"start_sec", c.StartSec,
				"duration_sec", c.DurationSec,
			)
			continue
		}

		dur := clamp(c.DurationSec, b.MinDur, b.MaxDur)
		if dur != c.DurationSec {
			log.Debug("candidate duration clamped", "index", i, "broll_id", c.BRollID, "from", c.DurationSec, "to", dur)
		}
		out = append(out, types.ScheduledInsertion{
			StartSec:    c.StartSec,
			DurationSec: dur,
			BRollID:     c.BRollID,
			Reason:      c.Reason,
			Confidence:  clampConfidence(c.Confidence),
		})
	}
	return out, rejected
}

func check(c types.RawCandidate, lookup AssetLookup) (RejectReason, bool) {
	if _, ok := lookup.Lookup(c.BRollID); !ok {
		return RejectUnknownAsset, false
	}
	if !isFinite(c.StartSec) || c.StartSec < 0 {
		return RejectInvalidStart, false
	}
	if !isFinite(c.DurationSec) || c.DurationSec < 0 {
		return RejectInvalidDuration, false
	}
	return "", true
}

// clampConfidence maps NaN to 0 since it carries no ranking information.
func clampConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 1)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
