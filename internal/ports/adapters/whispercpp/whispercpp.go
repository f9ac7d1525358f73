package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/brollcut/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-ojf",
		"-of", outPrefix,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read whisper.cpp output: %w", err)
	}
	return parseOutput(jb)
}

// output is the subset of whisper.cpp's full JSON (-ojf) we read. Offsets are
// milliseconds.
type output struct {
	Transcription []struct {
		Offsets offsets `json:"offsets"`
		Text    string  `json:"text"`
		Tokens  []token `json:"tokens"`
	} `json:"transcription"`
}

type token struct {
	Text    string  `json:"text"`
	Offsets offsets `json:"offsets"`
}

type offsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

func parseOutput(b []byte) (types.Transcript, error) {
	var out output
	if err := json.Unmarshal(b, &out); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper.cpp output: %w", err)
	}

	tr := types.Transcript{Segments: make([]types.Segment, 0, len(out.Transcription))}
	for _, s := range out.Transcription {
		seg := types.Segment{
			Start: ms(s.Offsets.From),
			End:   ms(s.Offsets.To),
			Text:  strings.TrimSpace(s.Text),
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		seg.Words = joinTokens(s.Tokens)
		if seg.Text == "" && len(seg.Words) == 0 {
			continue
		}
		tr.Segments = append(tr.Segments, seg)
	}
	return tr, nil
}

// joinTokens merges sub-word tokens into words. A token that starts with a
// space opens a new word; special tokens like [_BEG_] are skipped.
func joinTokens(tokens []token) []types.Word {
	var words []types.Word
	for _, tok := range tokens {
		if strings.HasPrefix(strings.TrimSpace(tok.Text), "[_") || strings.TrimSpace(tok.Text) == "" {
			continue
		}
		start, end := ms(tok.Offsets.From), ms(tok.Offsets.To)
		if len(words) == 0 || strings.HasPrefix(tok.Text, " ") {
			words = append(words, types.Word{Start: start, End: end, Word: strings.TrimSpace(tok.Text)})
			continue
		}
		last := &words[len(words)-1]
		last.Word += strings.TrimSpace(tok.Text)
		if end > last.End {
			last.End = end
		}
	}
	return words
}

func ms(v int64) float64 { return float64(v) / 1000 }
