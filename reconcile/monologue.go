package reconcile

import (
	"regexp"
	"strings"
)

var patientPhrases = []string{
	"hello doctor", "hi doctor", "good morning doctor", "doctor",
	"i am having", "i'm having", "i have been", "i've been", "i have",
	"i am feeling", "i'm feeling", "i feel", "it hurts",
	"pain", "ache", "aches", "headache", "fever", "cough", "nausea", "vomiting",
	"dizzy", "dizziness", "stomach", "sore", "tired", "since", "started",
}

var doctorPhrases = []string{
	"can you", "could you", "please describe", "describe", "how long", "how often",
	"do you", "have you", "did you", "are you", "when did", "where does",
	"any other", "tell me", "let me", "what brings you", "i recommend",
	"prescribe", "you should", "take this",
}

var (
	patientRe = phraseRegexp(patientPhrases)
	doctorRe  = phraseRegexp(doctorPhrases)

	patientOpeningRe = regexp.MustCompile(
		`^\s*(?:(?:hello|hi|hey|good\s+(?:morning|afternoon|evening))[\s,.!]*)?` +
			`(?:(?:doctor|doc|dr\.?)[\s,.!]*)?(?:i|my)\b`)
)

func phraseRegexp(phrases []string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// MonologueVerdict explains the lexical monologue decision.
type MonologueVerdict struct {
	Monologue      bool `json:"monologue"`
	PatientScore   int  `json:"patientScore"`
	DoctorScore    int  `json:"doctorScore"`
	PatientOpening bool `json:"patientOpening"`
	Segments       int  `json:"segments"`
}

// DetectMonologue reports whether text reads as one continuous patient
// statement that the diarizer split into segmentCount pieces.
func DetectMonologue(text string, segmentCount int, t Tuning) MonologueVerdict {
	lower := strings.ToLower(text)
	v := MonologueVerdict{
		PatientScore:   len(patientRe.FindAllStringIndex(lower, -1)),
		DoctorScore:    len(doctorRe.FindAllStringIndex(lower, -1)),
		PatientOpening: patientOpeningRe.MatchString(lower),
		Segments:       segmentCount,
	}
	v.Monologue = v.PatientScore >= t.MinPatientScore &&
		v.PatientScore > v.DoctorScore &&
		v.PatientOpening &&
		segmentCount > t.MinMonologueSegments
	return v
}

// monologueSegment spans every diarized segment with the full text.
func monologueSegment(text string, segs []Segment, t Tuning) AlignedSegment {
	start, end := segs[0].StartMs, segs[0].EndMs
	total := 0.0
	for _, s := range segs {
		if s.StartMs < start {
			start = s.StartMs
		}
		if s.EndMs > end {
			end = s.EndMs
		}
		total += s.Confidence
	}
	return AlignedSegment{
		Speaker:       t.PatientSpeaker,
		Text:          text,
		StartMs:       start,
		EndMs:         end,
		Confidence:    total / float64(len(segs)),
		WhisperBased:  true,
		AssemblyAI:    true,
		MappingMethod: MethodMonologue,
	}
}
