package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/brollcut/internal/domain/assets"
	"github.com/forPelevin/brollcut/internal/domain/planner"
	"github.com/forPelevin/brollcut/internal/domain/schedule"
	"github.com/forPelevin/brollcut/internal/domain/subtitles"
	"github.com/forPelevin/brollcut/internal/ports"
	"github.com/forPelevin/brollcut/internal/types"
)

// shortTranscriptChars is the transcript length under which matching is
// unlikely to find anything useful.
const shortTranscriptChars = 100

type Deps struct {
	Video     ports.VideoTool
	ASR       ports.ASR
	Describer ports.Describer
	Matcher   ports.Matcher
	// Fallback runs only when Matcher fails. Optional.
	Fallback ports.Matcher
	Logger   *slog.Logger
}

type Usecase struct {
	d   Deps
	log *slog.Logger
}

func New(d Deps) Usecase {
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return Usecase{d: d, log: log}
}

type Input struct {
	ARoll  string
	BRolls []string

	// WorkDir hosts the per-run scratch directory; empty means os.TempDir.
	WorkDir string
	OutDir  string

	// Bounds falls back to the planner defaults when zero. FadeSec is used
	// as given; zero disables fades.
	Bounds  schedule.Bounds
	FadeSec float64

	Frames      int
	Concurrency int

	BurnSubtitles bool
	Render        bool
}

type Result struct {
	Composition  types.Composition
	Transcript   types.Transcript
	Assets       []types.BRollAsset
	CaptionsPath string
	OutputPath   string
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	if strings.TrimSpace(in.ARoll) == "" {
		return Result{}, errors.New("a-roll path is empty")
	}

	base, err := u.probeBase(ctx, in.ARoll)
	if err != nil {
		return Result{}, err
	}

	work, err := os.MkdirTemp(in.WorkDir, "brollcut-*")
	if err != nil {
		return Result{}, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(work)

	tr := u.transcribe(ctx, in.ARoll, work)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	analyzed, err := u.analyzeBRolls(ctx, in.BRolls, base.Size, work, in.Frames, in.Concurrency)
	if err != nil {
		return Result{}, err
	}
	reg := assets.NewRegistry(u.log)
	for _, a := range analyzed {
		reg.Register(a)
	}
	u.log.Debug("asset registry ready", "ids", reg.IDs())

	raw := u.propose(ctx, tr, reg.Assets())
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	cfg := planner.DefaultConfig(base)
	if in.Bounds != (schedule.Bounds{}) {
		cfg.Bounds = in.Bounds
	}
	cfg.FadeSec = in.FadeSec
	cfg.Logger = u.log
	comp, err := planner.Plan(raw, reg, cfg)
	if err != nil {
		return Result{}, err
	}
	res := Result{Composition: comp, Transcript: tr, Assets: analyzed}

	if in.BurnSubtitles {
		if len(tr.Segments) == 0 {
			u.log.Warn("no transcript to caption, skipping subtitles")
		} else {
			res.CaptionsPath = filepath.Join(in.OutDir, "captions.ass")
			if err := writeFile(res.CaptionsPath, []byte(subtitles.RenderASS(tr, base.Size))); err != nil {
				return res, err
			}
		}
	}

	if !in.Render {
		return res, nil
	}
	out := filepath.Join(in.OutDir, "output.mp4")
	u.log.Info("rendering composite", "overlays", len(comp.Overlays), "output", out)
	if err := u.d.Video.RenderComposite(ctx, comp, out, res.CaptionsPath); err != nil {
		return res, fmt.Errorf("render: %w", err)
	}
	res.OutputPath = out
	return res, nil
}

func (u Usecase) probeBase(ctx context.Context, path string) (types.Track, error) {
	size, err := u.d.Video.ProbeSize(ctx, path)
	if err != nil {
		return types.Track{}, fmt.Errorf("probe a-roll: %w", err)
	}
	d, err := u.d.Video.ProbeDuration(ctx, path)
	if err != nil {
		return types.Track{}, fmt.Errorf("probe a-roll: %w", err)
	}
	return types.Track{Path: path, Size: size, DurationSec: d.Seconds()}, nil
}

// transcribe never fails: without a transcript the matcher simply has
// nothing to anchor insertions to.
func (u Usecase) transcribe(ctx context.Context, aroll, work string) types.Transcript {
	wav := filepath.Join(work, "audio.wav")
	if err := u.d.Video.ExtractAudioMono16k(ctx, aroll, wav); err != nil {
		u.log.Warn("audio extraction failed, continuing without transcript", "error", err)
		return types.Transcript{}
	}
	tr, err := u.d.ASR.Transcribe(ctx, wav, work)
	if err != nil {
		u.log.Warn("transcription failed, continuing without transcript", "error", err)
		return types.Transcript{}
	}

	chars := 0
	for _, s := range tr.Segments {
		chars += len([]rune(strings.TrimSpace(s.Text)))
	}
	if chars < shortTranscriptChars {
		u.log.Warn("transcript is very short, matching may find nothing", "chars", chars)
	}
	u.log.Info("transcribed a-roll", "segments", len(tr.Segments), "chars", chars)
	return tr
}

func (u Usecase) propose(ctx context.Context, tr types.Transcript, catalog []types.BRollAsset) []types.RawCandidate {
	if u.d.Matcher == nil {
		return u.fallback(ctx, tr, catalog, errors.New("no matcher configured"))
	}
	raw, err := u.d.Matcher.ProposeInsertions(ctx, tr, catalog)
	if err != nil {
		return u.fallback(ctx, tr, catalog, err)
	}
	u.log.Info("matcher proposed insertions", "candidates", len(raw))
	return raw
}

func (u Usecase) fallback(ctx context.Context, tr types.Transcript, catalog []types.BRollAsset, cause error) []types.RawCandidate {
	if u.d.Fallback == nil || ctx.Err() != nil {
		u.log.Warn("matching failed, planning without insertions", "error", cause)
		return nil
	}
	u.log.Warn("matching failed, using keyword fallback", "error", cause)
	raw, err := u.d.Fallback.ProposeInsertions(ctx, tr, catalog)
	if err != nil {
		u.log.Warn("keyword fallback failed", "error", err)
		return nil
	}
	return raw
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
