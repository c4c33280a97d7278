package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gopal-prakash-codes/ai-diagnosis/reconcile"
)

func TestSpeakingShare(t *testing.T) {
	share := speakingShare([]reconcile.AlignedSegment{
		{Speaker: "A", StartMs: 0, EndMs: 3000},
		{Speaker: "B", StartMs: 3000, EndMs: 4000},
		{Speaker: "A", StartMs: 4000, EndMs: 4000},
	})
	assert.InDelta(t, 0.75, share["A"], 1e-9)
	assert.InDelta(t, 0.25, share["B"], 1e-9)

	assert.Nil(t, speakingShare(nil))
	assert.Nil(t, speakingShare([]reconcile.AlignedSegment{{Speaker: "A", StartMs: 5, EndMs: 5}}))
}

func TestJoinText(t *testing.T) {
	got := joinText([]reconcile.Segment{{Text: " hello "}, {Text: ""}, {Text: "there"}})
	assert.Equal(t, "hello there", got)
}
