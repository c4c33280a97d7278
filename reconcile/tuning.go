package reconcile

// Tuning holds every threshold used by the reconciliation heuristics.
// Values are empirical and expected to be recalibrated against labelled
// transcripts; nothing in this package hardcodes them elsewhere.
type Tuning struct {
	// Optimizer noise filter: segments with fewer trimmed characters are dropped.
	MinTextChars int `mapstructure:"min_text_chars" yaml:"min_text_chars" json:"min_text_chars"`
	// Below this a segment counts as low confidence; dropped when high-confidence data exists.
	LowConfidence float64 `mapstructure:"low_confidence" yaml:"low_confidence" json:"low_confidence"`
	// At or above this a segment counts as high confidence.
	HighConfidence float64 `mapstructure:"high_confidence" yaml:"high_confidence" json:"high_confidence"`

	// Same-speaker merge: gap below MergeGapMs, both confidences above ReasonableConfidence.
	MergeGapMs           int64   `mapstructure:"merge_gap_ms" yaml:"merge_gap_ms" json:"merge_gap_ms"`
	ReasonableConfidence float64 `mapstructure:"reasonable_confidence" yaml:"reasonable_confidence" json:"reasonable_confidence"`
	// Speaker-flip merge: different labels, tiny gap, both confidences above SamePersonConfidence.
	SamePersonGapMs      int64   `mapstructure:"same_person_gap_ms" yaml:"same_person_gap_ms" json:"same_person_gap_ms"`
	SamePersonConfidence float64 `mapstructure:"same_person_confidence" yaml:"same_person_confidence" json:"same_person_confidence"`

	// The single-speaker detector only runs when mean confidence exceeds this.
	TrustConfidence float64 `mapstructure:"trust_confidence" yaml:"trust_confidence" json:"trust_confidence"`

	DominanceRatio        float64 `mapstructure:"dominance_ratio" yaml:"dominance_ratio" json:"dominance_ratio"`
	RapidGapMs            int64   `mapstructure:"rapid_gap_ms" yaml:"rapid_gap_ms" json:"rapid_gap_ms"`
	RapidAlternationRatio float64 `mapstructure:"rapid_alternation_ratio" yaml:"rapid_alternation_ratio" json:"rapid_alternation_ratio"`
	// Rapid alternation needs at least this many speaker changes to be meaningful.
	MinAlternations     int     `mapstructure:"min_alternations" yaml:"min_alternations" json:"min_alternations"`
	ConfidenceDisparity float64 `mapstructure:"confidence_disparity" yaml:"confidence_disparity" json:"confidence_disparity"`
	ShortTextChars      int     `mapstructure:"short_text_chars" yaml:"short_text_chars" json:"short_text_chars"`
	ShortSegmentRatio   float64 `mapstructure:"short_segment_ratio" yaml:"short_segment_ratio" json:"short_segment_ratio"`

	// Monologue: more than MinMonologueSegments diarized segments and a
	// patient-phrase score of at least MinPatientScore.
	MinMonologueSegments int    `mapstructure:"min_monologue_segments" yaml:"min_monologue_segments" json:"min_monologue_segments"`
	MinPatientScore      int    `mapstructure:"min_patient_score" yaml:"min_patient_score" json:"min_patient_score"`
	PatientSpeaker       string `mapstructure:"patient_speaker" yaml:"patient_speaker" json:"patient_speaker"`

	// Sentences shorter than this are folded into a neighbour instead of standing alone.
	MinSentenceChars int `mapstructure:"min_sentence_chars" yaml:"min_sentence_chars" json:"min_sentence_chars"`

	FallbackMsPerChar        int64   `mapstructure:"fallback_ms_per_char" yaml:"fallback_ms_per_char" json:"fallback_ms_per_char"`
	FallbackGapMs            int64   `mapstructure:"fallback_gap_ms" yaml:"fallback_gap_ms" json:"fallback_gap_ms"`
	FallbackConfidence       float64 `mapstructure:"fallback_confidence" yaml:"fallback_confidence" json:"fallback_confidence"`
	FallbackSingleConfidence float64 `mapstructure:"fallback_single_confidence" yaml:"fallback_single_confidence" json:"fallback_single_confidence"`
}

// DefaultTuning returns the thresholds the service ships with.
func DefaultTuning() Tuning {
	return Tuning{
		MinTextChars:   2,
		LowConfidence:  0.5,
		HighConfidence: 0.8,

		MergeGapMs:           1500,
		ReasonableConfidence: 0.6,
		SamePersonGapMs:      300,
		SamePersonConfidence: 0.9,

		TrustConfidence: 0.7,

		DominanceRatio:        0.85,
		RapidGapMs:            1500,
		RapidAlternationRatio: 0.7,
		MinAlternations:       3,
		ConfidenceDisparity:   0.2,
		ShortTextChars:        10,
		ShortSegmentRatio:     0.5,

		MinMonologueSegments: 3,
		MinPatientScore:      2,
		PatientSpeaker:       "A",

		MinSentenceChars: 3,

		FallbackMsPerChar:        60,
		FallbackGapMs:            500,
		FallbackConfidence:       0.5,
		FallbackSingleConfidence: 0.3,
	}
}
