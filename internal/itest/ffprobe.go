//go:build integration

package itest

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"testing"
)

type probeResult struct {
	DurationSec float64
	Width       int
	Height      int
}

func probe(path string) (probeResult, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "format=duration:stream=width,height",
		"-of", "json",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return probeResult{}, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	var raw struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return probeResult{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	sec, err := strconv.ParseFloat(raw.Format.Duration, 64)
	if err != nil {
		return probeResult{}, fmt.Errorf("parse duration %q: %w", raw.Format.Duration, err)
	}
	res := probeResult{DurationSec: sec}
	if len(raw.Streams) > 0 {
		res.Width, res.Height = raw.Streams[0].Width, raw.Streams[0].Height
	}
	return res, nil
}

// makeClip renders a lavfi test source to path. withTone adds a sine audio
// track of the same length.
func makeClip(t *testing.T, path, source string, durSec float64, size string, withTone bool) {
	t.Helper()
	d := strconv.FormatFloat(durSec, 'f', 2, 64)
	args := []string{"-y", "-f", "lavfi", "-i", fmt.Sprintf("%s=s=%s:d=%s", source, size, d)}
	if withTone {
		args = append(args, "-f", "lavfi", "-i", "sine=frequency=440:duration="+d, "-c:a", "aac", "-shortest")
	}
	args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p", path)
	if b, err := exec.Command("ffmpeg", args...).CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture %s failed: %v\n%s", path, err, string(b))
	}
}
