package reconcile

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SpeakerVerdict is the outcome of the single-speaker detector.
type SpeakerVerdict struct {
	SingleSpeaker  bool   `json:"singleSpeaker"`
	PrimarySpeaker string `json:"primarySpeaker"`
	Test           string `json:"test,omitempty"`
	Reason         string `json:"reason"`
}

// speakerTest reports whether segs look like one speaker, naming the
// primary speaker and a human-readable reason when it fires.
type speakerTest struct {
	name  string
	check func(segs []Segment, t Tuning) (primary, reason string, ok bool)
}

// Order matters: the first test to fire decides.
var speakerTests = []speakerTest{
	{name: "dominance", check: dominanceTest},
	{name: "rapid-alternation", check: rapidAlternationTest},
	{name: "confidence-disparity", check: confidenceDisparityTest},
	{name: "short-segments", check: shortSegmentTest},
}

// DetectSingleSpeaker decides whether the diarizer split one real speaker
// into several apparent ones.
func DetectSingleSpeaker(segs []Segment, t Tuning) SpeakerVerdict {
	if len(segs) < 2 {
		v := SpeakerVerdict{Reason: "insufficient data"}
		if len(segs) == 1 {
			v.PrimarySpeaker = segs[0].Speaker
		}
		return v
	}
	for _, test := range speakerTests {
		if primary, reason, ok := test.check(segs, t); ok {
			return SpeakerVerdict{
				SingleSpeaker:  true,
				PrimarySpeaker: primary,
				Test:           test.name,
				Reason:         reason,
			}
		}
	}
	return SpeakerVerdict{
		PrimarySpeaker: segs[0].Speaker,
		Reason:         "multiple speakers",
	}
}

type speakerStat struct {
	count      int
	confidence float64
	durationMs int64
	firstIndex int
}

func speakerStats(segs []Segment) (map[string]*speakerStat, []string) {
	stats := map[string]*speakerStat{}
	var order []string
	for i, s := range segs {
		st, ok := stats[s.Speaker]
		if !ok {
			st = &speakerStat{firstIndex: i}
			stats[s.Speaker] = st
			order = append(order, s.Speaker)
		}
		st.count++
		st.confidence += s.Confidence
		st.durationMs += s.duration()
	}
	return stats, order
}

// dominantSpeaker picks the speaker with the most segments; ties go to
// longer total duration, then to first appearance.
func dominantSpeaker(segs []Segment) (string, int) {
	stats, order := speakerStats(segs)
	best := order[0]
	for _, sp := range order[1:] {
		a, b := stats[sp], stats[best]
		if a.count > b.count || (a.count == b.count && a.durationMs > b.durationMs) {
			best = sp
		}
	}
	return best, stats[best].count
}

func dominanceTest(segs []Segment, t Tuning) (string, string, bool) {
	speaker, count := dominantSpeaker(segs)
	ratio := float64(count) / float64(len(segs))
	if ratio > t.DominanceRatio {
		return speaker, fmt.Sprintf("speaker %s holds %.0f%% of segments", speaker, ratio*100), true
	}
	return "", "", false
}

func rapidAlternationTest(segs []Segment, t Tuning) (string, string, bool) {
	changes, rapid := 0, 0
	for i := 1; i < len(segs); i++ {
		if segs[i].Speaker == segs[i-1].Speaker {
			continue
		}
		changes++
		if segs[i].StartMs-segs[i-1].EndMs < t.RapidGapMs {
			rapid++
		}
	}
	if changes == 0 || changes < t.MinAlternations {
		return "", "", false
	}
	ratio := float64(rapid) / float64(changes)
	if ratio > t.RapidAlternationRatio {
		speaker, _ := dominantSpeaker(segs)
		return speaker, fmt.Sprintf("%d of %d speaker changes within %dms", rapid, changes, t.RapidGapMs), true
	}
	return "", "", false
}

func confidenceDisparityTest(segs []Segment, t Tuning) (string, string, bool) {
	stats, order := speakerStats(segs)
	if len(order) != 2 {
		return "", "", false
	}
	a, b := order[0], order[1]
	meanA := stats[a].confidence / float64(stats[a].count)
	meanB := stats[b].confidence / float64(stats[b].count)
	diff := meanA - meanB
	if diff < 0 {
		diff = -diff
	}
	if diff <= t.ConfidenceDisparity {
		return "", "", false
	}
	primary, spurious := a, b
	if meanB > meanA {
		primary, spurious = b, a
	}
	return primary, fmt.Sprintf("speaker %s confidence trails %s by %.2f", spurious, primary, diff), true
}

func shortSegmentTest(segs []Segment, t Tuning) (string, string, bool) {
	short := 0
	for _, s := range segs {
		if utf8.RuneCountInString(strings.TrimSpace(s.Text)) < t.ShortTextChars {
			short++
		}
	}
	ratio := float64(short) / float64(len(segs))
	if ratio > t.ShortSegmentRatio {
		speaker, _ := dominantSpeaker(segs)
		return speaker, fmt.Sprintf("%.0f%% of segments shorter than %d characters", ratio*100, t.ShortTextChars), true
	}
	return "", "", false
}
