package reconcile

import (
	"strings"
	"unicode/utf8"
)

// Synthesize approximates a two-speaker transcript from the translator's
// text alone, for runs where the diarizer produced nothing usable.
// Timings come from a synthetic clock driven by text length.
func Synthesize(text string, t Tuning) []AlignedSegment {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	sentences := splitSentences(text, t.MinSentenceChars)
	if len(sentences) <= 1 {
		return []AlignedSegment{{
			Speaker:       "A",
			Text:          text,
			StartMs:       0,
			EndMs:         int64(utf8.RuneCountInString(text)) * t.FallbackMsPerChar,
			Confidence:    t.FallbackSingleConfidence,
			WhisperBased:  true,
			MappingMethod: MethodFallbackSingle,
			Fallback:      true,
		}}
	}

	speakers := [2]string{"A", "B"}
	out := make([]AlignedSegment, 0, len(sentences))
	var clock int64
	for i, s := range sentences {
		end := clock + int64(utf8.RuneCountInString(s))*t.FallbackMsPerChar
		out = append(out, AlignedSegment{
			Speaker:       speakers[i%2],
			Text:          s,
			StartMs:       clock,
			EndMs:         end,
			Confidence:    t.FallbackConfidence,
			WhisperBased:  true,
			MappingMethod: MethodFallbackAlternating,
			Fallback:      true,
		})
		clock = end + t.FallbackGapMs
	}
	return out
}

// FromDiarizer exposes optimized diarizer segments directly, for runs
// where the translator failed.
func FromDiarizer(segs []Segment) []AlignedSegment {
	out := make([]AlignedSegment, 0, len(segs))
	for _, s := range segs {
		out = append(out, AlignedSegment{
			Speaker:       s.Speaker,
			Text:          strings.TrimSpace(s.Text),
			StartMs:       s.StartMs,
			EndMs:         s.EndMs,
			Confidence:    s.Confidence,
			AssemblyAI:    true,
			MappingMethod: MethodDiarizerOnly,
		})
	}
	return out
}
