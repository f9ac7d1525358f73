// Package planner is the single entry point that turns raw insertion
// candidates into a render-ready composition.
//
// Plan runs Validate, Resolve, Adjust and Compose in that order. It is pure
// and synchronous: it performs no I/O, holds no state between calls and only
// reads the registry. Bad candidates never make it fail; only a missing
// registry or unusable configuration does.
package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/forPelevin/brollcut/internal/domain/assets"
	"github.com/forPelevin/brollcut/internal/domain/schedule"
	"github.com/forPelevin/brollcut/internal/domain/timeline"
	"github.com/forPelevin/brollcut/internal/types"
)

var (
	ErrNilRegistry   = errors.New("planner: asset registry is nil")
	ErrInvalidConfig = errors.New("planner: invalid config")
)

type Config struct {
	Bounds  schedule.Bounds
	FadeSec float64
	Base    types.Track
	Logger  *slog.Logger
}

func DefaultConfig(base types.Track) Config {
	return Config{
		Bounds:  schedule.DefaultBounds(),
		FadeSec: timeline.DefaultFadeSec,
		Base:    base,
	}
}

func (c Config) Validate() error {
	if !c.Bounds.Valid() {
		return fmt.Errorf("%w: duration bounds [%v, %v]", ErrInvalidConfig, c.Bounds.MinDur, c.Bounds.MaxDur)
	}
	if math.IsNaN(c.FadeSec) || math.IsInf(c.FadeSec, 0) || c.FadeSec < 0 {
		return fmt.Errorf("%w: fade %v", ErrInvalidConfig, c.FadeSec)
	}
	return nil
}

func Plan(raw []types.RawCandidate, reg *assets.Registry, cfg Config) (types.Composition, error) {
	comp, _, err := PlanReport(raw, reg, cfg)
	return comp, err
}

// PlanReport is Plan that also returns the candidates the validator dropped,
// in input order.
func PlanReport(raw []types.RawCandidate, reg *assets.Registry, cfg Config) (types.Composition, []schedule.Rejection, error) {
	if reg == nil {
		return types.Composition{}, nil, ErrNilRegistry
	}
	if err := cfg.Validate(); err != nil {
		return types.Composition{}, nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	valid, rejected := schedule.Validate(raw, reg, cfg.Bounds, log)
	sched := schedule.Resolve(valid)
	if dropped := len(valid) - len(sched); dropped > 0 {
		log.Debug("overlapping candidates resolved", "dropped", dropped)
	}

	overlays := make([]types.Overlay, 0, len(sched))
	for _, ins := range sched {
		// Validate already proved the id resolves.
		a, _ := reg.Lookup(ins.BRollID)
		ov := timeline.Adjust(ins, a, cfg.FadeSec)
		if ov.Mode == types.ModeExact && ov.DurationSec < ins.DurationSec {
			log.Warn("clip too short to loop, using as-is",
				"broll_id", ins.BRollID,
				"native_sec", a.NativeDuration,
				"wanted_sec", ins.DurationSec,
			)
		}
		overlays = append(overlays, ov)
	}
	comp := timeline.Compose(cfg.Base, overlays)

	log.Info("insertion plan built",
		"candidates", len(raw),
		"assets", reg.Len(),
		"rejected", len(rejected),
		"scheduled", len(comp.Overlays),
	)
	if len(comp.Overlays) == 0 {
		log.Info("no insertions planned")
	}
	return comp, rejected, nil
}
