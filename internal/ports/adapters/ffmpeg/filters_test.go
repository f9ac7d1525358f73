package ffmpeg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/brollcut/internal/types"
)

var canvas = types.Size{Width: 1080, Height: 1920}

func baseComp(overlays ...types.Overlay) types.Composition {
	return types.Composition{
		Base:     types.Track{Path: "/in/a.mp4", Size: canvas, DurationSec: 30},
		Overlays: overlays,
	}
}

func TestBuildFilterGraph_BaseOnly(t *testing.T) {
	graph, inputs, err := BuildFilterGraph(baseComp(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/a.mp4"}, inputs)
	assert.Equal(t, "[0:v]null[vout]", graph)
}

func TestBuildFilterGraph_TrimOverlay(t *testing.T) {
	ov := types.Overlay{
		Asset:       types.BRollAsset{ID: "broll_0", Path: "/clips/coffee.mp4"},
		StartSec:    1,
		DurationSec: 3,
		Mode:        types.ModeTrim,
		Segments:    []types.SourceSegment{{SourceStart: 0, Duration: 3}},
		FadeInSec:   0.2,
		FadeOutSec:  0.2,
		TargetSize:  canvas,
	}
	graph, inputs, err := BuildFilterGraph(baseComp(ov), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/a.mp4", "/clips/coffee.mp4"}, inputs)

	chains := strings.Split(graph, ";")
	require.Len(t, chains, 4)
	assert.Equal(t, "[1:v]trim=start=0.000:duration=3.000,setpts=PTS-STARTPTS[o0c]", chains[0])
	assert.Equal(t,
		"[o0c]scale=w=1080:h=1920,setsar=1,format=yuva420p,fade=t=in:st=0:d=0.200:alpha=1,fade=t=out:st=2.800:d=0.200:alpha=1,setpts=PTS+1.000/TB[o0]",
		chains[1])
	assert.Equal(t, "[0:v][o0]overlay=eof_action=pass:enable='between(t,1.000,4.000)'[v0]", chains[2])
	assert.Equal(t, "[v0]null[vout]", chains[3])
}

func TestBuildFilterGraph_LoopOverlayConcatenatesSegments(t *testing.T) {
	ov := types.Overlay{
		Asset:       types.BRollAsset{ID: "broll_1", Path: "/clips/short.mp4"},
		StartSec:    5,
		DurationSec: 4,
		Mode:        types.ModeLoop,
		Segments: []types.SourceSegment{
			{SourceStart: 0, Duration: 1.5},
			{SourceStart: 0, Duration: 1.5},
			{SourceStart: 0, Duration: 1},
		},
		FadeInSec:  0.2,
		FadeOutSec: 0.2,
	}
	graph, _, err := BuildFilterGraph(baseComp(ov), "")
	require.NoError(t, err)
	assert.Contains(t, graph, "[1:v]split=3[o0s0][o0s1][o0s2]")
	assert.Contains(t, graph, "[o0s2]trim=start=0.000:duration=1.000,setpts=PTS-STARTPTS[o0p2]")
	assert.Contains(t, graph, "[o0p0][o0p1][o0p2]concat=n=3:v=1:a=0[o0c]")
	assert.Contains(t, graph, "enable='between(t,5.000,9.000)'")
}

func TestBuildFilterGraph_SkipsEmptyOverlayAndChains(t *testing.T) {
	empty := types.Overlay{Asset: types.BRollAsset{Path: "/clips/zero.mp4"}, StartSec: 0, Mode: types.ModeExact}
	a := types.Overlay{
		Asset: types.BRollAsset{Path: "/clips/a.mp4"}, StartSec: 2, DurationSec: 2,
		Segments: []types.SourceSegment{{Duration: 2}},
	}
	b := types.Overlay{
		Asset: types.BRollAsset{Path: "/clips/b.mp4"}, StartSec: 6, DurationSec: 2,
		Segments: []types.SourceSegment{{Duration: 2}},
	}
	graph, inputs, err := BuildFilterGraph(baseComp(empty, a, b), "/tmp/run/captions.ass")
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/a.mp4", "/clips/a.mp4", "/clips/b.mp4"}, inputs)
	assert.Contains(t, graph, "[0:v][o1]overlay")
	assert.Contains(t, graph, "[v1][o2]overlay")
	assert.Contains(t, graph, "[2:v]trim")
	assert.True(t, strings.HasSuffix(graph, "[v2]subtitles=/tmp/run/captions.ass[vout]"))
	assert.NotContains(t, graph, "fade=")
}

func TestBuildFilterGraph_Errors(t *testing.T) {
	_, _, err := BuildFilterGraph(types.Composition{Base: types.Track{Size: canvas}}, "")
	assert.ErrorContains(t, err, "base track path")

	_, _, err = BuildFilterGraph(types.Composition{Base: types.Track{Path: "/in/a.mp4"}}, "")
	assert.ErrorContains(t, err, "dimensions")
}

func TestBuildArgs(t *testing.T) {
	args, err := BuildArgs(baseComp(), "/out/final.mp4", "", DefaultRenderOptions())
	require.NoError(t, err)
	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-i /in/a.mp4 -filter_complex [0:v]null[vout] -map [vout] -map 0:a?")
	assert.Contains(t, joined, "-c:v libx264 -preset veryfast -crf 18 -pix_fmt yuv420p -c:a aac -b:a 192k")
	assert.Equal(t, "/out/final.mp4", args[len(args)-1])

	_, err = BuildArgs(baseComp(), " ", "", DefaultRenderOptions())
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	got, err := parseSize("1920x1080\n")
	require.NoError(t, err)
	assert.Equal(t, types.Size{Width: 1920, Height: 1080}, got)

	got, err = parseSize("720x1280x\n")
	require.NoError(t, err)
	assert.Equal(t, types.Size{Width: 720, Height: 1280}, got)

	for _, bad := range []string{"", "1920", "axb", "0x100"} {
		_, err := parseSize(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestFmtSec(t *testing.T) {
	assert.Equal(t, "1.500", fmtSec((1500 * time.Millisecond).Seconds()))
	assert.Equal(t, "0.000", fmtSec(0))
}

func TestEscapeFilterPath(t *testing.T) {
	assert.Equal(t, `C\:\\subs\\a.ass`, escapeFilterPath(`C:\subs\a.ass`))
}
