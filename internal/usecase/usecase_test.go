package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/forPelevin/brollcut/internal/types"
)

func TestRun_BurnSubtitlesToggle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		burnSubtitles bool
	}{
		{name: "disabled", burnSubtitles: false},
		{name: "enabled", burnSubtitles: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tmp := t.TempDir()
			outDir := filepath.Join(tmp, "out")
			video := newFakeVideo()
			uc := New(Deps{
				Video:     video,
				ASR:       fakeASR{tr: testTranscript()},
				Describer: &fakeDescriber{},
				Matcher:   fakeMatcher{raw: testCandidates()},
			})

			res, err := uc.Run(context.Background(), Input{
				ARoll:         "/in/aroll.mp4",
				BRolls:        []string{"/in/cup.mp4", "/in/street.mp4"},
				WorkDir:       tmp,
				OutDir:        outDir,
				BurnSubtitles: tc.burnSubtitles,
				Render:        true,
			})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(video.renders) != 1 {
				t.Fatalf("expected 1 render, got %d", len(video.renders))
			}
			if res.OutputPath != filepath.Join(outDir, "output.mp4") {
				t.Fatalf("unexpected output path: %q", res.OutputPath)
			}

			subtitlesPath := filepath.Join(outDir, "captions.ass")
			if tc.burnSubtitles {
				if video.renders[0].burnASS != subtitlesPath || res.CaptionsPath != subtitlesPath {
					t.Fatalf("expected captions to be burned from %s, got %q", subtitlesPath, video.renders[0].burnASS)
				}
				b, err := os.ReadFile(subtitlesPath)
				if err != nil {
					t.Fatalf("read subtitles: %v", err)
				}
				if !strings.Contains(string(b), "{\\k") || !strings.Contains(string(b), "PlayResX: 1920") {
					t.Fatalf("unexpected subtitles:\n%s", b)
				}
				return
			}

			if video.renders[0].burnASS != "" {
				t.Fatalf("expected empty burnASS path, got %q", video.renders[0].burnASS)
			}
			if _, err := os.Stat(subtitlesPath); !os.IsNotExist(err) {
				t.Fatalf("expected no subtitle file, stat err=%v", err)
			}
		})
	}
}

func TestRun_PlansCompositionFromCandidates(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	uc := New(Deps{
		Video:     newFakeVideo(),
		ASR:       fakeASR{tr: testTranscript()},
		Describer: &fakeDescriber{},
		Matcher:   fakeMatcher{raw: testCandidates()},
	})
	res, err := uc.Run(context.Background(), Input{
		ARoll:   "/in/aroll.mp4",
		BRolls:  []string{"/in/cup.mp4", "/in/street.mp4"},
		WorkDir: tmp,
		OutDir:  filepath.Join(tmp, "out"),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	comp := res.Composition
	if comp.Base.Size != (types.Size{Width: 1920, Height: 1080}) || comp.Base.DurationSec != 60 {
		t.Fatalf("unexpected base track: %+v", comp.Base)
	}
	if len(comp.Overlays) != 2 {
		t.Fatalf("expected 2 overlays, got %d: %+v", len(comp.Overlays), comp.Schedule())
	}
	first, second := comp.Overlays[0], comp.Overlays[1]
	if first.Asset.ID != "broll_0" || first.Mode != types.ModeLoop || first.DurationSec != 4 {
		t.Fatalf("expected looped cup clip first, got %+v", first)
	}
	if second.Asset.ID != "broll_1" || second.Mode != types.ModeTrim || second.DurationSec != 5 {
		t.Fatalf("expected trimmed street clip second, got %+v", second)
	}
	if first.TargetSize != comp.Base.Size {
		t.Fatalf("expected overlay to target the base canvas, got %+v", first.TargetSize)
	}
	if len(res.Assets) != 2 || res.Assets[0].Description != "described 3 frames" {
		t.Fatalf("unexpected assets: %+v", res.Assets)
	}
	if res.OutputPath != "" {
		t.Fatalf("expected no render without Render, got %q", res.OutputPath)
	}
}

func TestRun_FadeIsPassedThrough(t *testing.T) {
	t.Parallel()

	for _, fade := range []float64{0, 0.5} {
		tmp := t.TempDir()
		uc := New(Deps{
			Video:   newFakeVideo(),
			ASR:     fakeASR{tr: testTranscript()},
			Matcher: fakeMatcher{raw: testCandidates()},
		})
		res, err := uc.Run(context.Background(), Input{
			ARoll:   "/in/aroll.mp4",
			BRolls:  []string{"/in/cup.mp4", "/in/street.mp4"},
			WorkDir: tmp,
			OutDir:  filepath.Join(tmp, "out"),
			FadeSec: fade,
		})
		if err != nil {
			t.Fatalf("fade %v: run: %v", fade, err)
		}
		if len(res.Composition.Overlays) == 0 {
			t.Fatalf("fade %v: expected overlays", fade)
		}
		for _, ov := range res.Composition.Overlays {
			if ov.FadeInSec != fade || ov.FadeOutSec != fade {
				t.Fatalf("fade %v: overlay %s got fades %v/%v", fade, ov.Asset.ID, ov.FadeInSec, ov.FadeOutSec)
			}
		}
	}
}

func TestRun_DegradesWhenCollaboratorsFail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		fallback  fakeMatcher
		useFB     bool
		wantCount int
	}{
		{name: "no fallback", wantCount: 0},
		{name: "keyword fallback", useFB: true, fallback: fakeMatcher{raw: []types.RawCandidate{
			{StartSec: 3, DurationSec: 3, BRollID: "broll_1", Confidence: 0.4},
		}}, wantCount: 1},
		{name: "fallback fails too", useFB: true, fallback: fakeMatcher{err: errors.New("boom")}, wantCount: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := Deps{
				Video:     newFakeVideo(),
				ASR:       fakeASR{err: errors.New("whisper crashed")},
				Describer: &fakeDescriber{err: errors.New("quota")},
				Matcher:   fakeMatcher{err: errors.New("openrouter status 500")},
			}
			if tc.useFB {
				d.Fallback = tc.fallback
			}
			tmp := t.TempDir()
			res, err := New(d).Run(context.Background(), Input{
				ARoll:   "/in/aroll.mp4",
				BRolls:  []string{"/in/cup.mp4", "/in/street.mp4"},
				WorkDir: tmp,
				OutDir:  filepath.Join(tmp, "out"),
			})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(res.Transcript.Segments) != 0 {
				t.Fatalf("expected empty transcript, got %+v", res.Transcript)
			}
			if res.Assets[1].Description != "Visuals related to street.mp4 (Analysis Failed)" {
				t.Fatalf("unexpected fallback description: %q", res.Assets[1].Description)
			}
			if len(res.Composition.Overlays) != tc.wantCount {
				t.Fatalf("expected %d overlays, got %d", tc.wantCount, len(res.Composition.Overlays))
			}
		})
	}
}

func TestRun_ARollProbeFailureIsFatal(t *testing.T) {
	t.Parallel()

	video := newFakeVideo()
	video.sizeErr = errors.New("no video stream")
	_, err := New(Deps{Video: video, ASR: fakeASR{}, Matcher: fakeMatcher{}}).Run(context.Background(), Input{
		ARoll:   "/in/aroll.mp4",
		WorkDir: t.TempDir(),
	})
	if err == nil || !strings.Contains(err.Error(), "probe a-roll") {
		t.Fatalf("expected probe error, got %v", err)
	}
}

func TestRun_RenderErrorIsReturned(t *testing.T) {
	t.Parallel()

	video := newFakeVideo()
	video.renderErr = errors.New("ffmpeg exploded")
	tmp := t.TempDir()
	res, err := New(Deps{Video: video, ASR: fakeASR{tr: testTranscript()}, Matcher: fakeMatcher{raw: testCandidates()}}).Run(context.Background(), Input{
		ARoll:   "/in/aroll.mp4",
		BRolls:  []string{"/in/cup.mp4", "/in/street.mp4"},
		WorkDir: tmp,
		OutDir:  filepath.Join(tmp, "out"),
		Render:  true,
	})
	if err == nil || !errors.Is(err, video.renderErr) {
		t.Fatalf("expected render error, got %v", err)
	}
	if len(res.Composition.Overlays) == 0 {
		t.Fatalf("expected the plan to survive a failed render")
	}
}

func TestRun_RemovesWorkspace(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	_, err := New(Deps{
		Video:     newFakeVideo(),
		ASR:       fakeASR{tr: testTranscript()},
		Describer: &fakeDescriber{},
		Matcher:   fakeMatcher{},
	}).Run(context.Background(), Input{
		ARoll:   "/in/aroll.mp4",
		BRolls:  []string{"/in/cup.mp4"},
		WorkDir: work,
		OutDir:  filepath.Join(t.TempDir(), "out"),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, err := os.ReadDir(work)
	if err != nil {
		t.Fatalf("read workdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected workspace to be removed, found %d entries", len(entries))
	}
}

func TestAnalyzeBRolls_IDsFollowArgumentOrder(t *testing.T) {
	t.Parallel()

	video := newFakeVideo()
	video.durations["/in/broken.mp4"] = -1
	uc := New(Deps{Video: video, Describer: &fakeDescriber{}})

	paths := []string{"/in/street.mp4", "/in/broken.mp4", "/in/cup.mp4"}
	got, err := uc.analyzeBRolls(context.Background(), paths, types.Size{Width: 640, Height: 360}, t.TempDir(), 3, 2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for i, a := range got {
		if a.ID != ClipID(i) || a.Path != paths[i] {
			t.Fatalf("asset %d out of order: %+v", i, a)
		}
		if a.Canvas != (types.Size{Width: 640, Height: 360}) {
			t.Fatalf("asset %d has wrong canvas: %+v", i, a.Canvas)
		}
	}
	if got[1].NativeDuration != 0 || got[1].Description != FallbackDescription("/in/broken.mp4") {
		t.Fatalf("expected probe failure to degrade, got %+v", got[1])
	}
	if got[2].NativeDuration != 1.5 {
		t.Fatalf("unexpected duration: %v", got[2].NativeDuration)
	}
}

func TestAnalyzeBRolls_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Deps{Video: newFakeVideo()}).analyzeBRolls(ctx, []string{"/in/cup.mp4"}, types.Size{}, t.TempDir(), 3, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestFramePositions(t *testing.T) {
	got := framePositions(10*time.Second, 3)
	want := []time.Duration{time.Second, 5 * time.Second, 9 * time.Second}
	if len(got) != len(want) {
		t.Fatalf("expected %d positions, got %v", len(want), got)
	}
	for i := range want {
		if d := got[i] - want[i]; d < -time.Millisecond || d > time.Millisecond {
			t.Fatalf("position %d: got %v want %v", i, got[i], want[i])
		}
	}
	if one := framePositions(10*time.Second, 1); len(one) != 1 || one[0] != 5*time.Second {
		t.Fatalf("single frame should sit in the middle, got %v", one)
	}
	if framePositions(0, 3) != nil {
		t.Fatalf("expected no positions for empty clip")
	}
}

type renderCall struct {
	comp    types.Composition
	out     string
	burnASS string
}

type fakeVideo struct {
	mu        sync.Mutex
	durations map[string]time.Duration
	sizeErr   error
	renderErr error
	renders   []renderCall
}

func newFakeVideo() *fakeVideo {
	return &fakeVideo{durations: map[string]time.Duration{
		"/in/aroll.mp4":  60 * time.Second,
		"/in/cup.mp4":    1500 * time.Millisecond,
		"/in/street.mp4": 10 * time.Second,
	}}
}

func (f *fakeVideo) ExtractAudioMono16k(_ context.Context, _, outWav string) error {
	return os.WriteFile(outWav, []byte("RIFF"), 0o644)
}

func (f *fakeVideo) ExtractFrame(_ context.Context, _ string, _ time.Duration, outJPG string) error {
	return os.WriteFile(outJPG, []byte{0xff, 0xd8, 0xff}, 0o644)
}

func (f *fakeVideo) ProbeDuration(_ context.Context, in string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.durations[in]
	if !ok || d < 0 {
		return 0, errors.New("ffprobe duration: no such file")
	}
	return d, nil
}

func (f *fakeVideo) ProbeSize(_ context.Context, _ string) (types.Size, error) {
	if f.sizeErr != nil {
		return types.Size{}, f.sizeErr
	}
	return types.Size{Width: 1920, Height: 1080}, nil
}

func (f *fakeVideo) RenderComposite(_ context.Context, comp types.Composition, out string, burnASS string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders = append(f.renders, renderCall{comp: comp, out: out, burnASS: burnASS})
	return f.renderErr
}

type fakeASR struct {
	tr  types.Transcript
	err error
}

func (f fakeASR) Transcribe(_ context.Context, _, _ string) (types.Transcript, error) {
	return f.tr, f.err
}

type fakeDescriber struct {
	err error
}

func (f *fakeDescriber) Describe(_ context.Context, frames [][]byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "described " + string(rune('0'+len(frames))) + " frames", nil
}

type fakeMatcher struct {
	raw []types.RawCandidate
	err error
}

func (f fakeMatcher) ProposeInsertions(_ context.Context, _ types.Transcript, _ []types.BRollAsset) ([]types.RawCandidate, error) {
	return f.raw, f.err
}

func testCandidates() []types.RawCandidate {
	return []types.RawCandidate{
		{StartSec: 5, DurationSec: 4, BRollID: "broll_0", Reason: "coffee", Confidence: 0.9},
		{StartSec: 7, DurationSec: 3, BRollID: "broll_1", Reason: "street", Confidence: 0.5},
		{StartSec: 20, DurationSec: 10, BRollID: "broll_1", Reason: "commute", Confidence: 0.8},
		{StartSec: 30, DurationSec: 3, BRollID: "broll_9", Reason: "hallucinated", Confidence: 1},
	}
}

func testTranscript() types.Transcript {
	return types.Transcript{
		Segments: []types.Segment{
			{
				Start: 0,
				End:   5,
				Text:  "hello world",
				Words: []types.Word{
					{Start: 0.1, End: 0.7, Word: "hello"},
					{Start: 0.8, End: 1.4, Word: "world"},
				},
			},
		},
	}
}
