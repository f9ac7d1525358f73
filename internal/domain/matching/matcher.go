// Package matching proposes B-roll insertions without a language model by
// matching transcript words against clip descriptions. It is the fallback
// when the model-backed matcher is unavailable.
package matching

import (
	"context"
	"sort"
	"strings"

	"github.com/forPelevin/brollcut/internal/types"
)

const (
	defaultMinScore    = 0.2
	defaultDurationSec = 3.0
)

// Keyword is a deterministic Matcher. Each transcript segment is paired with
// the asset whose description shares the largest fraction of its keywords.
type Keyword struct {
	// MinScore is the smallest overlap ratio worth proposing.
	MinScore float64
}

func NewKeyword() *Keyword {
	return &Keyword{MinScore: defaultMinScore}
}

func (k *Keyword) ProposeInsertions(
	ctx context.Context,
	tr types.Transcript,
	assets []types.BRollAsset,
) ([]types.RawCandidate, error) {
	if len(tr.Segments) == 0 || len(assets) == 0 {
		return nil, nil
	}
	minScore := k.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}

	catalog := make([]map[string]struct{}, len(assets))
	for i, a := range assets {
		catalog[i] = Keywords(a.Description)
	}

	var out []types.RawCandidate
	for _, seg := range tr.Segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		words := Keywords(seg.Text)
		if len(words) == 0 {
			continue
		}

		best, bestShared := -1, 0
		for i, kw := range catalog {
			if n := overlap(words, kw); n > bestShared {
				best, bestShared = i, n
			}
		}
		if best < 0 {
			continue
		}
		score := clamp(float64(bestShared)/float64(len(words)), 0, 1)
		if score < minScore {
			continue
		}

		start := anchorStart(seg, catalog[best])
		dur := seg.End - start
		if dur <= 0 {
			dur = defaultDurationSec
		}
		out = append(out, types.RawCandidate{
			StartSec:    start,
			DurationSec: dur,
			BRollID:     assets[best].ID,
			Reason:      "keywords: " + strings.Join(shared(words, catalog[best]), ", "),
			Confidence:  score,
		})
	}
	return out, nil
}

// anchorStart is the start of the first word in seg that hits a keyword, or
// the segment start when word timings are missing.
func anchorStart(seg types.Segment, kw map[string]struct{}) float64 {
	for _, w := range seg.Words {
		if w.End <= w.Start {
			continue
		}
		for k := range Keywords(w.Word) {
			if _, ok := kw[k]; ok {
				return w.Start
			}
		}
	}
	return seg.Start
}

func shared(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
