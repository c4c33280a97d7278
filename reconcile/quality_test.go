package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssess(t *testing.T) {
	tun := DefaultTuning()
	segs := []Segment{
		{Speaker: "A", Text: "hello", Confidence: 0.9},
		{Speaker: "B", Text: "hi", Confidence: 0.4},
		{Speaker: "A", Text: "how are you", Confidence: 0.7},
	}

	m := Assess(segs, tun)
	assert.InDelta(t, 2.0/3.0, m.AverageConfidence, 1e-9)
	assert.True(t, m.HasHighConfidenceSegments)
	assert.Equal(t, 2, m.SpeakerCount)
	assert.Equal(t, 1, m.HighConfidenceCount)
	assert.Equal(t, 1, m.LowConfidenceCount)
}

func TestAssessEmpty(t *testing.T) {
	assert.Equal(t, QualityMetrics{}, Assess(nil, DefaultTuning()))
}

func TestAssessNoHighConfidence(t *testing.T) {
	m := Assess([]Segment{{Speaker: "A", Confidence: 0.6}, {Speaker: "A", Confidence: 0.79}}, DefaultTuning())
	assert.False(t, m.HasHighConfidenceSegments)
	assert.Equal(t, 1, m.SpeakerCount)
	assert.Zero(t, m.LowConfidenceCount)
}
