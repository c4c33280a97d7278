package reconcile

// QualityMetrics is a snapshot of how trustworthy a segment list looks.
type QualityMetrics struct {
	AverageConfidence         float64 `json:"averageConfidence"`
	HasHighConfidenceSegments bool    `json:"hasHighConfidenceSegments"`
	SpeakerCount              int     `json:"speakerCount"`
	HighConfidenceCount       int     `json:"highConfidenceCount"`
	LowConfidenceCount        int     `json:"lowConfidenceCount"`
}

// Assess computes quality metrics over segs. It is the single source of
// truth for confidence-based decisions; callers must not re-derive these
// numbers themselves.
func Assess(segs []Segment, t Tuning) QualityMetrics {
	var m QualityMetrics
	if len(segs) == 0 {
		return m
	}
	speakers := map[string]struct{}{}
	total := 0.0
	for _, s := range segs {
		total += s.Confidence
		speakers[s.Speaker] = struct{}{}
		if s.Confidence >= t.HighConfidence {
			m.HighConfidenceCount++
		}
		if s.Confidence < t.LowConfidence {
			m.LowConfidenceCount++
		}
	}
	m.AverageConfidence = total / float64(len(segs))
	m.HasHighConfidenceSegments = m.HighConfidenceCount > 0
	m.SpeakerCount = len(speakers)
	return m
}
