package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/brollcut/internal/types"
)

// RenderOptions are the encoder settings for the composite.
type RenderOptions struct {
	VideoCodec       string
	Preset           string
	CRF              int
	AudioCodec       string
	AudioBitrateKbps int
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		VideoCodec:       "libx264",
		Preset:           "veryfast",
		CRF:              18,
		AudioCodec:       "aac",
		AudioBitrateKbps: 192,
	}
}

type Adapter struct {
	ffmpeg  string
	ffprobe string
	render  RenderOptions
}

func New(ffmpegPath, ffprobePath string, opts RenderOptions) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if opts == (RenderOptions{}) {
		opts = DefaultRenderOptions()
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, render: opts}
}

// run executes bin and folds its combined output into the error.
func run(ctx context.Context, op, bin string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, bin, args...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s: %w\n%s", op, err, out)
	}
	return out, nil
}

// ExtractAudioMono16k writes the 16 kHz mono WAV whisper.cpp expects.
func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error {
	_, err := run(ctx, "ffmpeg extract audio", a.ffmpeg,
		"-y", "-i", inMP4, "-vn", "-ac", "1", "-ar", "16000", "-f", "wav", outWav)
	return err
}

func (a *Adapter) ExtractFrame(ctx context.Context, inMP4 string, at time.Duration, outJPG string) error {
	_, err := run(ctx, "ffmpeg extract frame", a.ffmpeg,
		"-y", "-ss", fmtSec(at.Seconds()), "-i", inMP4, "-frames:v", "1", "-q:v", "2", outJPG)
	return err
}

func (a *Adapter) ProbeDuration(ctx context.Context, inMP4 string) (time.Duration, error) {
	out, err := run(ctx, "ffprobe duration", a.ffprobe,
		"-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", inMP4)
	if err != nil {
		return 0, err
	}
	raw := strings.TrimSpace(string(out))
	sec, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func (a *Adapter) ProbeSize(ctx context.Context, inMP4 string) (types.Size, error) {
	out, err := run(ctx, "ffprobe size", a.ffprobe,
		"-v", "error", "-select_streams", "v:0", "-show_entries", "stream=width,height", "-of", "csv=s=x:p=0", inMP4)
	if err != nil {
		return types.Size{}, err
	}
	return parseSize(string(out))
}

// RenderComposite draws every overlay over the base track and keeps the base
// audio. burnASS, when set, is burned in on top of everything.
func (a *Adapter) RenderComposite(ctx context.Context, comp types.Composition, outMP4 string, burnASS string) error {
	args, err := BuildArgs(comp, outMP4, burnASS, a.render)
	if err != nil {
		return err
	}
	_, err = run(ctx, "ffmpeg render composite", a.ffmpeg, args...)
	return err
}

func parseSize(s string) (types.Size, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	w, h, ok := strings.Cut(strings.TrimSuffix(s, "x"), "x")
	if !ok {
		return types.Size{}, fmt.Errorf("parse size %q: missing separator", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return types.Size{}, fmt.Errorf("parse size %q: %w", s, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return types.Size{}, fmt.Errorf("parse size %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return types.Size{}, fmt.Errorf("parse size %q: non-positive dimensions", s)
	}
	return types.Size{Width: width, Height: height}, nil
}

func fmtSec(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}
