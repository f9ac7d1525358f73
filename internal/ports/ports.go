package ports

import (
	"context"
	"time"

	"github.com/forPelevin/brollcut/internal/types"
)

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
	ExtractFrame(ctx context.Context, inMP4 string, at time.Duration, outJPG string) error
	ProbeDuration(ctx context.Context, inMP4 string) (time.Duration, error)
	ProbeSize(ctx context.Context, inMP4 string) (types.Size, error)
	RenderComposite(ctx context.Context, comp types.Composition, outMP4 string, burnASS string) error
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

// Describer turns a few JPEG frames of one clip into a short visual
// description.
type Describer interface {
	Describe(ctx context.Context, framesJPEG [][]byte) (string, error)
}

// Matcher proposes insertion candidates. Its output is untrusted.
type Matcher interface {
	ProposeInsertions(
		ctx context.Context,
		tr types.Transcript,
		assets []types.BRollAsset,
	) ([]types.RawCandidate, error)
}
