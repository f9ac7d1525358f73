package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/brollcut/internal/types"
)

const (
	defaultFrames      = 3
	defaultConcurrency = 4
)

// FallbackDescription is used when a clip cannot be described.
func FallbackDescription(path string) string {
	return fmt.Sprintf("Visuals related to %s (Analysis Failed)", filepath.Base(path))
}

// ClipID is the registry id of the i-th B-roll argument.
func ClipID(i int) string { return fmt.Sprintf("broll_%d", i) }

// analyzeBRolls describes every clip in parallel. Per-clip failures degrade
// to a fallback description; only cancellation aborts.
func (u Usecase) analyzeBRolls(
	ctx context.Context,
	paths []string,
	canvas types.Size,
	work string,
	frames, concurrency int,
) ([]types.BRollAsset, error) {
	if frames <= 0 {
		frames = defaultFrames
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	out := make([]types.BRollAsset, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range paths {
		g.Go(func() error {
			out[i] = u.analyzeClip(gctx, i, p, canvas, work, frames)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze b-roll: %w", err)
	}
	u.log.Info("analyzed b-roll", "clips", len(out))
	return out, nil
}

func (u Usecase) analyzeClip(ctx context.Context, i int, path string, canvas types.Size, work string, frames int) types.BRollAsset {
	a := types.BRollAsset{ID: ClipID(i), Path: path, Canvas: canvas}
	log := u.log.With("broll_id", a.ID, "path", path)

	d, err := u.d.Video.ProbeDuration(ctx, path)
	if err != nil {
		log.Warn("probe failed, treating clip as zero-length", "error", err)
	} else {
		a.NativeDuration = d.Seconds()
	}

	a.Description = u.describe(ctx, log, i, path, d, work, frames)
	return a
}

func (u Usecase) describe(ctx context.Context, log *slog.Logger, i int, path string, d time.Duration, work string, frames int) string {
	fallback := FallbackDescription(path)
	if u.d.Describer == nil || d <= 0 {
		return fallback
	}

	var jpegs [][]byte
	for j, at := range framePositions(d, frames) {
		jpg := filepath.Join(work, fmt.Sprintf("%s_f%d.jpg", ClipID(i), j))
		if err := u.d.Video.ExtractFrame(ctx, path, at, jpg); err != nil {
			log.Warn("frame extraction failed", "at", at, "error", err)
			continue
		}
		b, err := os.ReadFile(jpg)
		if err != nil || len(b) == 0 {
			continue
		}
		jpegs = append(jpegs, b)
	}
	if len(jpegs) == 0 {
		return fallback
	}

	desc, err := u.d.Describer.Describe(ctx, jpegs)
	if err != nil || strings.TrimSpace(desc) == "" {
		log.Warn("description failed, using fallback", "error", err)
		return fallback
	}
	return strings.TrimSpace(desc)
}

// framePositions spreads n samples between 10% and 90% of d. One sample sits
// in the middle.
func framePositions(d time.Duration, n int) []time.Duration {
	if d <= 0 || n <= 0 {
		return nil
	}
	if n == 1 {
		return []time.Duration{d / 2}
	}
	out := make([]time.Duration, n)
	for k := range n {
		frac := 0.1 + 0.8*float64(k)/float64(n-1)
		out[k] = time.Duration(frac * float64(d))
	}
	return out
}
