package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stomachMonologue = "Doctor, I am having stomach pain since last night. It gets worse after I eat and I feel nauseous."

func fourSegments() []Segment {
	return []Segment{
		seg("A", "doctor i am having", 0, 1000, 0.8),
		seg("B", "stomach pain since last night", 1000, 2000, 0.7),
		seg("A", "it gets worse after i eat", 2000, 3500, 0.9),
		seg("B", "and i feel nauseous", 3500, 5000, 0.8),
	}
}

func TestDetectMonologue(t *testing.T) {
	tun := DefaultTuning()

	v := DetectMonologue(stomachMonologue, 4, tun)
	assert.True(t, v.Monologue)
	assert.True(t, v.PatientOpening)
	assert.Zero(t, v.DoctorScore)
	assert.GreaterOrEqual(t, v.PatientScore, 2)

	v = DetectMonologue(stomachMonologue, 3, tun)
	assert.False(t, v.Monologue, "too few segments to call it over-segmented")
}

func TestDetectMonologueRejectsDialogue(t *testing.T) {
	text := "Can you describe the pain? How long have you had it? I have a headache since Monday."
	v := DetectMonologue(text, 6, DefaultTuning())
	assert.False(t, v.Monologue)
	assert.False(t, v.PatientOpening)
	assert.Positive(t, v.DoctorScore)
}

func TestDetectMonologueNeedsPatientVocabulary(t *testing.T) {
	v := DetectMonologue("I went to the market and bought some apples.", 5, DefaultTuning())
	assert.True(t, v.PatientOpening)
	assert.False(t, v.Monologue)
}

func TestFuseMonologue(t *testing.T) {
	out, f := Fuse(stomachMonologue, fourSegments(), DefaultTuning())
	require.Len(t, out, 1)
	assert.Equal(t, MethodMonologue, f.Method)
	assert.Equal(t, stomachMonologue, out[0].Text)
	assert.Equal(t, "A", out[0].Speaker)
	assert.Equal(t, int64(0), out[0].StartMs)
	assert.Equal(t, int64(5000), out[0].EndMs)
	assert.Equal(t, MethodMonologue, out[0].MappingMethod)
	assert.InDelta(t, 0.8, out[0].Confidence, 1e-9)
}
