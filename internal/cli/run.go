package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/brollcut/internal/config"
	"github.com/forPelevin/brollcut/internal/domain/schedule"
	"github.com/forPelevin/brollcut/internal/logging"
	"github.com/forPelevin/brollcut/internal/pipeline"
	"github.com/forPelevin/brollcut/internal/ports/adapters/ffmpeg"
)

func run(cmd *cobra.Command, aroll string, brolls []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Paths.OutDir = out
	}
	if v, _ := cmd.Flags().GetFloat64("min-dur"); v > 0 {
		cfg.Planning.MinDurationSec = v
	}
	if v, _ := cmd.Flags().GetFloat64("max-dur"); v > 0 {
		cfg.Planning.MaxDurationSec = v
	}
	renderOut, _ := cmd.Flags().GetBool("render")
	burn, _ := cmd.Flags().GetBool("burn-subtitles")

	if cfg.LLM.APIKey == "" {
		return errors.New("OPENROUTER_API_KEY is required (set it in .env or [llm] api_key)")
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	absA, err := filepath.Abs(aroll)
	if err != nil {
		return err
	}
	absB := make([]string, 0, len(brolls))
	for _, p := range brolls {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		absB = append(absB, abs)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Hour)
	defer cancel()

	pcfg := pipeline.Config{
		ARoll:         absA,
		BRolls:        absB,
		OutDir:        cfg.Paths.OutDir,
		CacheDir:      cfg.Paths.CacheDir,
		Render:        renderOut,
		BurnSubtitles: burn,
		Logger:        log,

		Bounds:  schedule.Bounds{MinDur: cfg.Planning.MinDurationSec, MaxDur: cfg.Planning.MaxDurationSec},
		FadeSec: cfg.Planning.FadeSec,

		FFmpegPath:  cfg.Tools.FFmpeg,
		FFprobePath: cfg.Tools.FFprobe,
		Encoder: ffmpeg.RenderOptions{
			VideoCodec:       cfg.Render.VideoCodec,
			Preset:           cfg.Render.Preset,
			CRF:              cfg.Render.CRF,
			AudioCodec:       cfg.Render.AudioCodec,
			AudioBitrateKbps: cfg.Render.AudioBitrateKbps,
		},

		WhisperBin:   cfg.Tools.WhisperBin,
		WhisperModel: cfg.Tools.WhisperModel,

		OpenRouterAPIKey:       cfg.LLM.APIKey,
		OpenRouterModel:        cfg.LLM.Model,
		OpenRouterBaseURL:      cfg.LLM.BaseURL,
		OpenRouterAllowedHosts: cfg.LLM.AllowedHosts,
		OpenRouterTimeout:      time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,

		VisionEnabled:     cfg.Vision.Enabled,
		VisionAPIKey:      cfg.Vision.APIKey,
		VisionBaseURL:     cfg.Vision.BaseURL,
		VisionModel:       cfg.Vision.Model,
		VisionFrames:      cfg.Vision.Frames,
		VisionConcurrency: cfg.Vision.Concurrency,

		KeywordFallback: cfg.Matching.KeywordFallback,
	}
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	res, err := pipeline.Run(ctx, pcfg)
	if res.RunDir != "" {
		if perr := printPlan(cmd.OutOrStdout(), format, res.Composition, nil); perr != nil {
			return perr
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "run dir: %s\n", res.RunDir)
	}
	if err != nil {
		return err
	}
	if res.OutputPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "rendered: %s\n", res.OutputPath)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
}
