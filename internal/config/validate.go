package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	p := c.Planning
	if !finite(p.MinDurationSec) || !finite(p.MaxDurationSec) {
		return errors.New("planning: durations must be finite")
	}
	if p.MinDurationSec <= 0 {
		return fmt.Errorf("planning: min_duration_sec must be > 0, got %v", p.MinDurationSec)
	}
	if p.MinDurationSec > p.MaxDurationSec {
		return fmt.Errorf("planning: min_duration_sec (%v) must be <= max_duration_sec (%v)", p.MinDurationSec, p.MaxDurationSec)
	}
	if !finite(p.FadeSec) || p.FadeSec < 0 {
		return fmt.Errorf("planning: fade_sec must be >= 0, got %v", p.FadeSec)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm: timeout_seconds must be > 0, got %d", c.LLM.TimeoutSeconds)
	}
	if c.Vision.Frames < 1 || c.Vision.Frames > 10 {
		return fmt.Errorf("vision: frames must be within 1-10, got %d", c.Vision.Frames)
	}
	if c.Vision.Concurrency < 1 {
		return fmt.Errorf("vision: concurrency must be >= 1, got %d", c.Vision.Concurrency)
	}
	if c.Render.CRF < -1 || c.Render.CRF > 51 {
		return fmt.Errorf("render: crf must be within -1..51, got %d", c.Render.CRF)
	}
	if c.Render.AudioBitrateKbps < 0 {
		return fmt.Errorf("render: audio_bitrate_kbps must be >= 0, got %d", c.Render.AudioBitrateKbps)
	}
	switch c.Logging.Format {
	case "auto", "text", "console", "json":
	default:
		return fmt.Errorf("logging: unsupported format %q", c.Logging.Format)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
