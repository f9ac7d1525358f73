// Package subtitles renders transcript captions as an ASS script sized to the
// composite canvas.
package subtitles

import (
	"fmt"
	"math"
	"strings"

	"github.com/forPelevin/brollcut/internal/types"
)

const (
	styleName  = "Caption"
	charBudget = 42
	wordBudget = 8
)

// RenderASS builds full-timeline captions. Segments with word timings become
// karaoke lines; segments without them are shown whole for their span.
func RenderASS(tr types.Transcript, canvas types.Size) string {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		canvas = types.Size{Width: 1920, Height: 1080}
	}

	var b strings.Builder
	b.WriteString(header(canvas))
	b.WriteString("\n\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, seg := range tr.Segments {
		words := segmentWords(seg)
		if len(words) == 0 {
			text := sanitize(seg.Text)
			if text == "" || seg.End <= seg.Start {
				continue
			}
			writeEvent(&b, seg.Start, seg.End, text)
			continue
		}
		for _, ln := range packLines(words) {
			writeEvent(&b, ln.start, ln.end, karaoke(ln.words))
		}
	}
	return b.String()
}

type word struct {
	start, end float64
	text       string
}

type line struct {
	start, end float64
	words      []word
}

func segmentWords(seg types.Segment) []word {
	var out []word
	for _, w := range seg.Words {
		text := sanitize(w.Word)
		if text == "" || w.End <= w.Start {
			continue
		}
		out = append(out, word{start: w.Start, end: w.End, text: text})
	}
	return out
}

// packLines groups words into lines bounded by charBudget runes and
// wordBudget words.
func packLines(words []word) []line {
	var out []line
	var cur line
	curLen := 0
	for _, w := range words {
		wl := len([]rune(w.text))
		if len(cur.words) > 0 && (len(cur.words) >= wordBudget || curLen+1+wl > charBudget) {
			out = append(out, cur)
			cur, curLen = line{}, 0
		}
		if len(cur.words) == 0 {
			cur.start = w.start
		} else {
			curLen++
		}
		cur.words = append(cur.words, w)
		cur.end = w.end
		curLen += wl
	}
	if len(cur.words) > 0 {
		out = append(out, cur)
	}
	return out
}

func karaoke(words []word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		cs := int(math.Round((w.end - w.start) * 100))
		if cs < 1 {
			cs = 1
		}
		parts[i] = fmt.Sprintf("{\\k%d}%s", cs, w.text)
	}
	return strings.Join(parts, " ")
}

func writeEvent(b *strings.Builder, start, end float64, text string) {
	fmt.Fprintf(b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n", assTime(start), assTime(end), styleName, text)
}

func header(canvas types.Size) string {
	font := int(math.Round(float64(canvas.Height) * 0.055))
	if font < 12 {
		font = 12
	}
	outline := max(1, font/14)
	margin := int(math.Round(float64(canvas.Height) * 0.07))
	side := int(math.Round(float64(canvas.Width) * 0.05))

	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", canvas.Width)
	fmt.Fprintf(&b, "PlayResY: %d\n", canvas.Height)
	b.WriteString("ScaledBorderAndShadow: yes\n\n")
	b.WriteString("[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&b, "Style: %s,Inter,%d,&H00FFFFFF,&H00FFD200,&H00000000,&H64000000,1,0,0,0,100,100,0,0,1,%d,1,2,%d,%d,%d,1",
		styleName, font, outline, side, side, margin)
	return b.String()
}

// assTime formats seconds as H:MM:SS.cc, truncating to centiseconds.
func assTime(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	total := int64(sec*100 + 1e-6)
	cs := total % 100
	s := (total / 100) % 60
	m := (total / 6000) % 60
	h := total / 360000
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
