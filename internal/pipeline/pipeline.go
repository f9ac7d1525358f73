package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/forPelevin/brollcut/internal/domain/matching"
	"github.com/forPelevin/brollcut/internal/domain/schedule"
	"github.com/forPelevin/brollcut/internal/planfile"
	"github.com/forPelevin/brollcut/internal/ports"
	"github.com/forPelevin/brollcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/brollcut/internal/ports/adapters/openrouter"
	"github.com/forPelevin/brollcut/internal/ports/adapters/vision"
	"github.com/forPelevin/brollcut/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/brollcut/internal/types"
	"github.com/forPelevin/brollcut/internal/usecase"
)

const renderLockName = ".render.lock"

var ErrOutputBusy = errors.New("another render is writing to the output directory")

type Config struct {
	ARoll         string
	BRolls        []string
	OutDir        string
	Render        bool
	BurnSubtitles bool
	Logger        *slog.Logger

	// CacheDir hosts the per-run scratch workspace. If empty, defaults to ".cache".
	CacheDir string

	Bounds  schedule.Bounds
	FadeSec float64

	FFmpegPath  string
	FFprobePath string
	Encoder     ffmpeg.RenderOptions

	WhisperBin   string
	WhisperModel string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string
	OpenRouterTimeout      time.Duration

	VisionEnabled     bool
	VisionAPIKey      string
	VisionBaseURL     string
	VisionModel       string
	VisionFrames      int
	VisionConcurrency int

	KeywordFallback bool
}

func (c Config) Validate() error {
	if c.ARoll == "" {
		return errors.New("a-roll is empty")
	}
	if _, err := os.Stat(c.ARoll); err != nil {
		return fmt.Errorf("stat a-roll: %w", err)
	}
	if len(c.BRolls) == 0 {
		return errors.New("at least one b-roll clip is required")
	}
	for _, p := range c.BRolls {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("stat b-roll: %w", err)
		}
	}
	if c.Bounds != (schedule.Bounds{}) && !c.Bounds.Valid() {
		return fmt.Errorf("invalid insertion bounds [%v, %v]", c.Bounds.MinDur, c.Bounds.MaxDur)
	}
	if c.FadeSec < 0 {
		return fmt.Errorf("fade must be >= 0")
	}
	if c.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required")
	}
	return openrouter.ValidateBaseURL(
		c.OpenRouterBaseURL,
		c.OpenRouterAllowedHosts,
	)
}

// Result points at what a run left on disk.
type Result struct {
	RunID       string
	RunDir      string
	Plan        types.Plan
	Composition types.Composition
	OutputPath  string
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	runID := uuid.NewString()
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("run_id", runID)

	bounds := cfg.Bounds
	if bounds == (schedule.Bounds{}) {
		bounds = schedule.DefaultBounds()
	}

	// adapters
	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, cfg.Encoder)
	asr := whispercpp.New(cfg.WhisperBin, cfg.WhisperModel)
	matcher := openrouter.New(openrouter.Options{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		BaseURL: cfg.OpenRouterBaseURL,
		Timeout: cfg.OpenRouterTimeout,
		MinSec:  bounds.MinDur,
		MaxSec:  bounds.MaxDur,
	})

	deps := usecase.Deps{
		Video:   v,
		ASR:     asr,
		Matcher: matcher,
		Logger:  log,
	}
	if cfg.VisionEnabled && cfg.VisionAPIKey != "" {
		deps.Describer = vision.New(vision.Options{
			APIKey:  cfg.VisionAPIKey,
			BaseURL: cfg.VisionBaseURL,
			Model:   cfg.VisionModel,
		})
	} else {
		log.Warn("vision disabled, b-roll descriptions fall back to file names")
	}
	if cfg.KeywordFallback {
		deps.Fallback = matching.NewKeyword()
	}

	uc := usecase.New(deps)

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = ".cache"
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Result{}, err
	}

	outRoot := cfg.OutDir
	if outRoot == "" {
		outRoot = "out"
	}
	if err := os.MkdirAll(outRoot, 0o755); err != nil {
		return Result{}, err
	}
	if cfg.Render {
		unlock, err := lockOutput(outRoot)
		if err != nil {
			return Result{}, err
		}
		defer unlock()
	}

	runDir := buildRunOutDir(outRoot, cfg.ARoll, time.Now().UTC())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return Result{}, err
	}
	log.Info("output run dir", "path", runDir)

	res, runErr := uc.Run(ctx, usecase.Input{
		ARoll:         cfg.ARoll,
		BRolls:        cfg.BRolls,
		WorkDir:       cacheDir,
		OutDir:        runDir,
		Bounds:        bounds,
		FadeSec:       cfg.FadeSec,
		Frames:        cfg.VisionFrames,
		Concurrency:   cfg.VisionConcurrency,
		BurnSubtitles: cfg.BurnSubtitles,
		Render:        cfg.Render,
	})
	if runErr != nil && res.Composition.Base.Path == "" {
		return Result{}, runErr
	}

	out := Result{
		RunID:       runID,
		RunDir:      runDir,
		Plan:        res.Composition.Plan(),
		Composition: res.Composition,
		OutputPath:  res.OutputPath,
	}
	if err := writeArtifacts(runDir, out); err != nil {
		return out, err
	}
	log.Info("plan written", "insertions", len(out.Plan.Insertions), "path", filepath.Join(runDir, "plan.json"))
	return out, runErr
}

func writeArtifacts(runDir string, res Result) error {
	if err := planfile.WriteJSON(filepath.Join(runDir, "plan.json"), res.Plan); err != nil {
		return err
	}
	return planfile.WriteJSON(filepath.Join(runDir, "composition.json"), res.Composition)
}

// lockOutput keeps two renders from competing for the same output root.
func lockOutput(outRoot string) (func(), error) {
	lock := flock.New(filepath.Join(outRoot, renderLockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire render lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputBusy, outRoot)
	}
	return func() { _ = lock.Unlock() }, nil
}

func buildRunOutDir(outRoot, inputMP4 string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(inputMP4), filepath.Ext(inputMP4))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", inputMP4, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.Matcher = (*openrouter.Adapter)(nil)
var _ ports.Matcher = (*matching.Keyword)(nil)
var _ ports.Describer = (*vision.Adapter)(nil)
