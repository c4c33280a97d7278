package reconcile

// Utterance is one speech span as reported by the diarizer.
type Utterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	StartMs    int64   `json:"start"`
	EndMs      int64   `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Segment is an optimized diarizer span. Merges produce new values; a
// Segment is never modified once it has been handed downstream.
type Segment struct {
	Speaker               string  `json:"speaker"`
	Text                  string  `json:"text"`
	StartMs               int64   `json:"start"`
	EndMs                 int64   `json:"end"`
	Confidence            float64 `json:"confidence"`
	Merged                bool    `json:"merged,omitempty"`
	Fallback              bool    `json:"fallback,omitempty"`
	SingleSpeakerDetected bool    `json:"singleSpeakerDetected,omitempty"`
}

func (s Segment) duration() int64 {
	if s.EndMs <= s.StartMs {
		return 0
	}
	return s.EndMs - s.StartMs
}

// MappingMethod records which strategy produced an aligned span.
type MappingMethod string

const (
	MethodSingleSegment       MappingMethod = "single-segment"
	MethodOneToOne            MappingMethod = "one-to-one"
	MethodGroupedSentences    MappingMethod = "grouped-sentences"
	MethodContentProportional MappingMethod = "content-proportional"
	MethodMonologue           MappingMethod = "monologue"
	MethodFallbackSingle      MappingMethod = "fallback-single"
	MethodFallbackAlternating MappingMethod = "fallback-alternating"
	MethodDiarizerOnly        MappingMethod = "diarizer-only"
)

// AlignedSegment is the final, speaker-labelled output unit.
type AlignedSegment struct {
	Speaker       string        `json:"speaker"`
	Text          string        `json:"text"`
	StartMs       int64         `json:"start"`
	EndMs         int64         `json:"end"`
	Confidence    float64       `json:"confidence"`
	WhisperBased  bool          `json:"whisperBased"`
	AssemblyAI    bool          `json:"assemblyAI"`
	MappingMethod MappingMethod `json:"mappingMethod"`
	Fallback      bool          `json:"fallback,omitempty"`
}

// FromUtterances converts raw utterances to segments, clamping confidence to
// [0,1] and end times so that EndMs >= StartMs.
func FromUtterances(utts []Utterance) []Segment {
	out := make([]Segment, 0, len(utts))
	for _, u := range utts {
		end := u.EndMs
		if end < u.StartMs {
			end = u.StartMs
		}
		out = append(out, Segment{
			Speaker:    u.Speaker,
			Text:       u.Text,
			StartMs:    u.StartMs,
			EndMs:      end,
			Confidence: clamp01(u.Confidence),
		})
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
