package ffmpeg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/forPelevin/brollcut/internal/types"
)

const outLabel = "vout"

// BuildFilterGraph returns the -filter_complex graph for the composition and
// the input paths it refers to. Input 0 is always the base track; overlays
// with nothing to play are skipped.
func BuildFilterGraph(comp types.Composition, burnASS string) (string, []string, error) {
	if strings.TrimSpace(comp.Base.Path) == "" {
		return "", nil, errors.New("base track path is empty")
	}
	size := comp.Base.Size
	if size.Width <= 0 || size.Height <= 0 {
		return "", nil, errors.New("invalid base track dimensions")
	}

	inputs := []string{comp.Base.Path}
	var chains []string
	current := "0:v"

	for i, ov := range comp.Overlays {
		if ov.DurationSec <= 0 || len(ov.Segments) == 0 {
			continue
		}
		if strings.TrimSpace(ov.Asset.Path) == "" {
			return "", nil, fmt.Errorf("overlay %d (%s): source path is empty", i, ov.Insertion.BRollID)
		}
		inputs = append(inputs, ov.Asset.Path)
		in := len(inputs) - 1

		chains = append(chains, overlaySourceChain(i, in, ov, size)...)

		next := "v" + strconv.Itoa(i)
		chains = append(chains, fmt.Sprintf(
			"[%s][o%d]overlay=eof_action=pass:enable='between(t,%s,%s)'[%s]",
			current, i, fmtSec(ov.StartSec), fmtSec(ov.EndSec()), next,
		))
		current = next
	}

	if burnASS != "" {
		chains = append(chains, fmt.Sprintf("[%s]subtitles=%s[%s]", current, escapeFilterPath(burnASS), outLabel))
	} else {
		chains = append(chains, fmt.Sprintf("[%s]null[%s]", current, outLabel))
	}
	return strings.Join(chains, ";"), inputs, nil
}

// overlaySourceChain cuts the overlay's segments out of input in, joins them
// and shifts the result to the overlay's start on the timeline as [o<i>].
func overlaySourceChain(i, in int, ov types.Overlay, size types.Size) []string {
	var chains []string
	joined := fmt.Sprintf("o%dc", i)

	if len(ov.Segments) == 1 {
		s := ov.Segments[0]
		chains = append(chains, fmt.Sprintf("[%d:v]%s[%s]", in, trimFilter(s), joined))
	} else {
		split := make([]string, len(ov.Segments))
		parts := make([]string, len(ov.Segments))
		for j := range ov.Segments {
			split[j] = fmt.Sprintf("[o%ds%d]", i, j)
			parts[j] = fmt.Sprintf("[o%dp%d]", i, j)
		}
		chains = append(chains, fmt.Sprintf("[%d:v]split=%d%s", in, len(ov.Segments), strings.Join(split, "")))
		for j, s := range ov.Segments {
			chains = append(chains, fmt.Sprintf("%s%s%s", split[j], trimFilter(s), parts[j]))
		}
		chains = append(chains, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[%s]", strings.Join(parts, ""), len(ov.Segments), joined))
	}

	filters := []string{
		fmt.Sprintf("scale=w=%d:h=%d", size.Width, size.Height),
		"setsar=1",
		"format=yuva420p",
	}
	if ov.FadeInSec > 0 {
		filters = append(filters, fmt.Sprintf("fade=t=in:st=0:d=%s:alpha=1", fmtSec(ov.FadeInSec)))
	}
	if ov.FadeOutSec > 0 {
		start := ov.DurationSec - ov.FadeOutSec
		if start < 0 {
			start = 0
		}
		filters = append(filters, fmt.Sprintf("fade=t=out:st=%s:d=%s:alpha=1", fmtSec(start), fmtSec(ov.FadeOutSec)))
	}
	filters = append(filters, fmt.Sprintf("setpts=PTS+%s/TB", fmtSec(ov.StartSec)))

	chains = append(chains, fmt.Sprintf("[%s]%s[o%d]", joined, strings.Join(filters, ","), i))
	return chains
}

func trimFilter(s types.SourceSegment) string {
	return fmt.Sprintf("trim=start=%s:duration=%s,setpts=PTS-STARTPTS", fmtSec(s.SourceStart), fmtSec(s.Duration))
}

// BuildArgs assembles the ffmpeg CLI arguments for the composite render.
func BuildArgs(comp types.Composition, outMP4, burnASS string, opts RenderOptions) ([]string, error) {
	if strings.TrimSpace(outMP4) == "" {
		return nil, errors.New("output path is empty")
	}
	graph, inputs, err := BuildFilterGraph(comp, burnASS)
	if err != nil {
		return nil, err
	}

	args := []string{"-hide_banner", "-y"}
	for _, in := range inputs {
		args = append(args, "-i", in)
	}
	args = append(args,
		"-filter_complex", graph,
		"-map", "["+outLabel+"]",
		"-map", "0:a?",
	)

	codec := strings.TrimSpace(opts.VideoCodec)
	if codec == "" {
		codec = "libx264"
	}
	args = append(args, "-c:v", codec)
	if preset := strings.TrimSpace(opts.Preset); preset != "" {
		args = append(args, "-preset", preset)
	}
	if opts.CRF >= 0 {
		args = append(args, "-crf", strconv.Itoa(opts.CRF))
	}
	args = append(args, "-pix_fmt", "yuv420p")

	if acodec := strings.TrimSpace(opts.AudioCodec); acodec != "" {
		args = append(args, "-c:a", acodec)
	}
	if opts.AudioBitrateKbps > 0 {
		args = append(args, "-b:a", fmt.Sprintf("%dk", opts.AudioBitrateKbps))
	}
	args = append(args, outMP4)
	return args, nil
}
