package openrouter

import (
	"fmt"
	"strings"

	"github.com/forPelevin/brollcut/internal/types"
)

func systemPrompt(minSec, maxSec float64) string {
	return fmt.Sprintf(`You are an expert video editor. You place B-roll clips over a talking-head A-roll so that each clip illustrates what the speaker is saying at that moment.

Rules:
- Only use clip ids from the provided B-roll list.
- Each insertion lasts between %s and %s seconds.
- Insertions must not overlap each other.
- Leave the first seconds of the video on the speaker.
- Prefer fewer, well-matched insertions over covering everything.
- confidence is a number from 0 to 1 saying how well the clip matches the words.

Return STRICT JSON only, no markdown, with this shape:
{"insertions":[{"start_sec":12.5,"duration_sec":3.0,"broll_id":"broll_0","reason":"speaker mentions coffee","confidence":0.8}]}
Return {"insertions":[]} if nothing fits.`, trimFloat(minSec), trimFloat(maxSec))
}

func userPrompt(transcript, assets string) string {
	var b strings.Builder
	b.WriteString("TRANSCRIPT:\n")
	b.WriteString(transcript)
	b.WriteString("\nAVAILABLE B-ROLL:\n")
	b.WriteString(assets)
	b.WriteString("\nPlan the B-roll insertions.")
	return b.String()
}

// FormatTranscript renders one "[start-end] text" line per segment.
func FormatTranscript(tr types.Transcript) string {
	var b strings.Builder
	for _, s := range tr.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "[%.2f-%.2f] %s\n", s.Start, s.End, text)
	}
	return b.String()
}

// FormatAssets renders the B-roll catalogue the model chooses from.
func FormatAssets(assets []types.BRollAsset) string {
	var b strings.Builder
	for _, a := range assets {
		fmt.Fprintf(&b, "ID: %s\n   Visuals: %s\n", a.ID, oneLine(a.Description))
		if a.NativeDuration > 0 {
			fmt.Fprintf(&b, "   Length: %.1fs\n", a.NativeDuration)
		}
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
