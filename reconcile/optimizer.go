package reconcile

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Optimized is the outcome of Optimize.
type Optimized struct {
	Segments []Segment      `json:"segments"`
	Before   QualityMetrics `json:"before"`
	After    QualityMetrics `json:"after"`
	// Verdict is nil when the detector did not run.
	Verdict *SpeakerVerdict `json:"verdict,omitempty"`
}

// Optimize cleans the diarizer output: noise removal, merging of
// fragmented turns, label canonicalization and, for trustworthy data,
// collapsing to a single speaker when the detector fires. The input slice
// is left untouched.
func Optimize(raw []Segment, t Tuning) Optimized {
	res := Optimized{Before: Assess(raw, t)}
	if len(raw) == 0 {
		return res
	}

	segs := make([]Segment, len(raw))
	copy(segs, raw)
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].StartMs < segs[j].StartMs })

	segs = dropNoise(segs, t)
	if Assess(segs, t).HasHighConfidenceSegments {
		segs = dropLowConfidence(segs, t)
	}
	segs = mergeAdjacent(segs, t)
	for i := range segs {
		segs[i].Speaker = CanonicalSpeaker(segs[i].Speaker)
	}

	res.After = Assess(segs, t)
	if len(segs) > 0 && res.After.AverageConfidence > t.TrustConfidence {
		v := DetectSingleSpeaker(segs, t)
		res.Verdict = &v
		if v.SingleSpeaker {
			for i := range segs {
				segs[i].Speaker = v.PrimarySpeaker
				segs[i].SingleSpeakerDetected = true
			}
			res.After = Assess(segs, t)
		}
	}
	res.Segments = segs
	return res
}

func dropNoise(segs []Segment, t Tuning) []Segment {
	out := segs[:0:0]
	for _, s := range segs {
		if utf8.RuneCountInString(strings.TrimSpace(s.Text)) < t.MinTextChars {
			continue
		}
		out = append(out, s)
	}
	return out
}

func dropLowConfidence(segs []Segment, t Tuning) []Segment {
	out := segs[:0:0]
	for _, s := range segs {
		if s.Confidence < t.LowConfidence {
			continue
		}
		out = append(out, s)
	}
	return out
}

// shouldMerge reports whether next continues prev's turn. The second
// clause absorbs diarizer speaker flips at utterance boundaries.
func shouldMerge(prev, next Segment, t Tuning) bool {
	gap := next.StartMs - prev.EndMs
	if prev.Speaker == next.Speaker {
		return gap < t.MergeGapMs &&
			prev.Confidence > t.ReasonableConfidence &&
			next.Confidence > t.ReasonableConfidence
	}
	return gap < t.SamePersonGapMs &&
		prev.Confidence > t.SamePersonConfidence &&
		next.Confidence > t.SamePersonConfidence
}

func mergeAdjacent(segs []Segment, t Tuning) []Segment {
	if len(segs) == 0 {
		return nil
	}
	out := []Segment{segs[0]}
	for _, next := range segs[1:] {
		prev := out[len(out)-1]
		if !shouldMerge(prev, next, t) {
			out = append(out, next)
			continue
		}
		merged := prev
		merged.Text = strings.TrimSpace(prev.Text) + " " + strings.TrimSpace(next.Text)
		if next.EndMs > merged.EndMs {
			merged.EndMs = next.EndMs
		}
		if next.Confidence > merged.Confidence {
			merged.Confidence = next.Confidence
		}
		merged.Merged = true
		out[len(out)-1] = merged
	}
	return out
}
