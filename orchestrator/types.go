package orchestrator

import (
	"errors"
	"fmt"

	"github.com/gopal-prakash-codes/ai-diagnosis/reconcile"
)

// Outcome names which combination of sources settled successfully.
type Outcome string

const (
	OutcomeBothSucceeded  Outcome = "both_succeeded"
	OutcomeTranslatorOnly Outcome = "translator_only"
	OutcomeDiarizerOnly   Outcome = "diarizer_only"
	OutcomeBothFailed     Outcome = "both_failed"
)

// Response is what callers of the pipeline receive.
type Response struct {
	Success       bool                       `json:"success"`
	Text          string                     `json:"text,omitempty"`
	Speakers      []reconcile.AlignedSegment `json:"speakers,omitempty"`
	Message       string                     `json:"message,omitempty"`
	Error         string                     `json:"error,omitempty"`
	Outcome       Outcome                    `json:"outcome"`
	RunID         string                     `json:"runId"`
	SpeakingShare map[string]float64         `json:"speakingShare,omitempty"`
}

// Report keeps the intermediate decisions of a run for logs and persisted
// bundles. It is not part of the caller-facing response.
type Report struct {
	TranslatorError string               `json:"translatorError,omitempty"`
	DiarizerError   string               `json:"diarizerError,omitempty"`
	Utterances      int                  `json:"utterances"`
	Optimized       *reconcile.Optimized `json:"optimized,omitempty"`
	Fusion          *reconcile.Fusion    `json:"fusion,omitempty"`
}

// settled is the success-or-failure value of one source call.
type settled[T any] struct {
	value T
	err   error
}

func (s settled[T]) ok() bool { return s.err == nil }

var ErrBothSourcesFailed = errors.New("both transcription sources failed")

// FailureError carries both sources' reasons when neither succeeded.
type FailureError struct {
	Translator error
	Diarizer   error
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: translator: %v; diarizer: %v", ErrBothSourcesFailed, e.Translator, e.Diarizer)
}

func (e *FailureError) Unwrap() []error {
	return []error{ErrBothSourcesFailed, e.Translator, e.Diarizer}
}
