package reconcile

import (
	"math"
	"strings"
)

// Fusion describes how Fuse produced its output.
type Fusion struct {
	Method    MappingMethod    `json:"method"`
	Sentences int              `json:"sentences"`
	Segments  int              `json:"segments"`
	Monologue MonologueVerdict `json:"monologue"`
}

// Fuse combines the translator's full text with the optimized diarizer
// segments. A detected monologue short-circuits into a single patient
// segment; otherwise the text is distributed by Align.
func Fuse(text string, segs []Segment, t Tuning) ([]AlignedSegment, Fusion) {
	text = strings.TrimSpace(text)
	f := Fusion{Segments: len(segs)}
	if text == "" || len(segs) == 0 {
		return nil, f
	}
	f.Sentences = len(splitSentences(text, t.MinSentenceChars))
	f.Monologue = DetectMonologue(text, len(segs), t)
	if f.Monologue.Monologue {
		f.Method = MethodMonologue
		return []AlignedSegment{monologueSegment(text, segs, t)}, f
	}
	out := Align(text, segs, t)
	if len(out) > 0 {
		f.Method = out[0].MappingMethod
	}
	return out, f
}

// Align redistributes text across segs. The strategy depends on how the
// sentence count S compares to the segment count N:
//
//	N == 1  whole text to the one segment
//	S == N  sentence i to segment i
//	S >  N  contiguous sentence groups, one per segment
//	S <  N  words allocated by each segment's share of the time span
//
// Every word of text ends up in exactly one output segment.
func Align(text string, segs []Segment, t Tuning) []AlignedSegment {
	text = strings.TrimSpace(text)
	if text == "" || len(segs) == 0 {
		return nil
	}
	if len(segs) == 1 {
		return []AlignedSegment{aligned(segs[0], text, MethodSingleSegment)}
	}

	sentences := splitSentences(text, t.MinSentenceChars)
	switch s, n := len(sentences), len(segs); {
	case s == n:
		out := make([]AlignedSegment, n)
		for i, seg := range segs {
			out[i] = aligned(seg, sentences[i], MethodOneToOne)
		}
		return out
	case s > n:
		return groupSentences(sentences, segs)
	default:
		return proportionalWords(text, segs)
	}
}

func aligned(seg Segment, text string, method MappingMethod) AlignedSegment {
	return AlignedSegment{
		Speaker:       seg.Speaker,
		Text:          text,
		StartMs:       seg.StartMs,
		EndMs:         seg.EndMs,
		Confidence:    seg.Confidence,
		WhisperBased:  true,
		AssemblyAI:    true,
		MappingMethod: method,
	}
}

// groupSentences gives every segment a contiguous, non-empty run of
// sentences; the first S mod N segments take one extra. This departs from
// fixed ceil(S/N) groups, which can leave trailing segments empty.
func groupSentences(sentences []string, segs []Segment) []AlignedSegment {
	n := len(segs)
	base, extra := len(sentences)/n, len(sentences)%n
	out := make([]AlignedSegment, 0, n)
	pos := 0
	for i, seg := range segs {
		size := base
		if i < extra {
			size++
		}
		group := make([]string, size)
		for k, s := range sentences[pos : pos+size] {
			group[k] = ensureTerminal(s)
		}
		pos += size
		out = append(out, aligned(seg, strings.Join(group, " "), MethodGroupedSentences))
	}
	return out
}

// proportionalWords hands each segment max(1, round(W*share)) words in
// order, where share is the segment's fraction of total duration. The
// last segment absorbs the remainder. Segments left without words are
// omitted.
func proportionalWords(text string, segs []Segment) []AlignedSegment {
	words := strings.Fields(text)
	n := len(segs)

	var total int64
	for _, s := range segs {
		total += s.duration()
	}

	out := make([]AlignedSegment, 0, n)
	pos := 0
	for i, seg := range segs {
		remaining := len(words) - pos
		if remaining <= 0 {
			break
		}
		var count int
		if i == n-1 {
			count = remaining
		} else {
			share := 1.0 / float64(n)
			if total > 0 {
				share = float64(seg.duration()) / float64(total)
			}
			count = int(math.Round(float64(len(words)) * share))
			if count < 1 {
				count = 1
			}
			// keep a word for each later segment while words last
			if limit := remaining - (n - i - 1); count > limit {
				count = limit
			}
			if count < 1 {
				count = 1
			}
		}
		out = append(out, aligned(seg, strings.Join(words[pos:pos+count], " "), MethodContentProportional))
		pos += count
	}
	return out
}
