package types

type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// BRollAsset is one analyzed B-roll clip. Canvas is the primary track's
// frame size the clip gets stretched to.
type BRollAsset struct {
	ID             string  `json:"id" yaml:"id"`
	Path           string  `json:"path" yaml:"path"`
	Description    string  `json:"description" yaml:"description"`
	NativeDuration float64 `json:"native_duration" yaml:"native_duration"`
	Canvas         Size    `json:"canvas" yaml:"canvas"`
}

// RawCandidate is an insertion proposed by the matching oracle. Nothing about
// it is trusted.
type RawCandidate struct {
	StartSec    float64 `json:"start_sec" yaml:"start_sec"`
	DurationSec float64 `json:"duration_sec" yaml:"duration_sec"`
	BRollID     string  `json:"broll_id" yaml:"broll_id"`
	Reason      string  `json:"reason" yaml:"reason"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
}

// ScheduledInsertion is a validated candidate holding a final window
// [StartSec, StartSec+DurationSec).
type ScheduledInsertion struct {
	StartSec    float64 `json:"start_sec" yaml:"start_sec"`
	DurationSec float64 `json:"duration_sec" yaml:"duration_sec"`
	BRollID     string  `json:"broll_id" yaml:"broll_id"`
	Reason      string  `json:"reason" yaml:"reason"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
}

func (s ScheduledInsertion) EndSec() float64 { return s.StartSec + s.DurationSec }

// Raw converts the insertion back into candidate form.
func (s ScheduledInsertion) Raw() RawCandidate {
	return RawCandidate(s)
}

// Plan is the serializable insertion list, shaped like the oracle response.
type Plan struct {
	Insertions []ScheduledInsertion `json:"insertions" yaml:"insertions"`
}

type AdjustMode string

const (
	ModeExact AdjustMode = "exact"
	ModeTrim  AdjustMode = "trim"
	ModeLoop  AdjustMode = "loop"
)

// SourceSegment is one cut [SourceStart, SourceStart+Duration) of a source
// clip. Overlays play their segments back to back.
type SourceSegment struct {
	SourceStart float64 `json:"source_start"`
	Duration    float64 `json:"duration"`
}

type Overlay struct {
	Asset       BRollAsset         `json:"asset"`
	Insertion   ScheduledInsertion `json:"insertion"`
	StartSec    float64            `json:"start_sec"`
	DurationSec float64            `json:"duration_sec"`
	Mode        AdjustMode         `json:"mode"`
	Segments    []SourceSegment    `json:"segments"`
	FadeInSec   float64            `json:"fade_in_sec"`
	FadeOutSec  float64            `json:"fade_out_sec"`
	TargetSize  Size               `json:"target_size"`
}

func (o Overlay) EndSec() float64 { return o.StartSec + o.DurationSec }

type Track struct {
	Path        string  `json:"path"`
	Size        Size    `json:"size"`
	DurationSec float64 `json:"duration_sec"`
}

// Composition is the renderer-ready descriptor: the base track followed by
// overlays in ascending start order.
type Composition struct {
	Base     Track     `json:"base"`
	Overlays []Overlay `json:"overlays"`
}

// Schedule returns the insertions behind the overlays, in overlay order.
func (c Composition) Schedule() []ScheduledInsertion {
	out := make([]ScheduledInsertion, 0, len(c.Overlays))
	for _, o := range c.Overlays {
		out = append(out, o.Insertion)
	}
	return out
}

// Plan returns the serializable form of the schedule.
func (c Composition) Plan() Plan {
	return Plan{Insertions: c.Schedule()}
}
