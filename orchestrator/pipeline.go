package orchestrator

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gopal-prakash-codes/ai-diagnosis/clients"
	cfg "github.com/gopal-prakash-codes/ai-diagnosis/config"
	"github.com/gopal-prakash-codes/ai-diagnosis/intake"
	"github.com/gopal-prakash-codes/ai-diagnosis/metrics"
	"github.com/gopal-prakash-codes/ai-diagnosis/reconcile"
)

// Translator produces speaker-blind translated text for an audio file.
type Translator interface {
	Translate(ctx context.Context, path string) (string, error)
}

// Diarizer produces speaker-labelled utterances for an audio file.
type Diarizer interface {
	Diarize(ctx context.Context, path string) (*clients.Transcript, error)
}

const (
	msgBoth           = "Transcription and speaker detection completed"
	msgTranslatorOnly = "Speaker detection unavailable; speaker labels are estimated from the transcript"
	msgDiarizerOnly   = "Translation unavailable; transcript uses diarization text, quality may be reduced"
	msgNoSegments     = "Speaker detection returned no usable segments; speaker labels are estimated from the transcript"
)

var errNoUtterances = errors.New("diarizer returned neither utterances nor text")

type Pipeline struct {
	cfg        *cfg.Root
	translator Translator
	diarizer   Diarizer
	log        *logrus.Entry
}

// NewPipeline wires the HTTP-backed sources from configuration.
func NewPipeline(c *cfg.Root) *Pipeline {
	h := clients.NewHTTP(c.Retry)
	return New(c, clients.NewTranslator(h, c.Translator), clients.NewDiarizer(h, c.Diarizer))
}

func New(c *cfg.Root, t Translator, d Diarizer) *Pipeline {
	return &Pipeline{cfg: c, translator: t, diarizer: d, log: logrus.WithField("component", "pipeline")}
}

// Process validates and stages the upload, runs the pipeline on it and
// removes the staged file on every exit path. Validation failures return
// an *intake.ValidationError and no response; a run where both sources
// failed returns the failure response together with a *FailureError.
func (p *Pipeline) Process(ctx context.Context, r io.Reader, name string) (*Response, error) {
	audio, err := intake.Accept(r, name, p.cfg.Intake.MinBytes, p.cfg.Intake.TempDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := audio.Close(); err != nil {
			p.log.WithError(err).Warn("Failed to remove staged audio")
		}
	}()

	p.log.WithFields(logrus.Fields{
		"file":  audio.Name(),
		"bytes": audio.Size(),
	}).Info("Audio accepted")
	return p.Run(ctx, audio.Path())
}

// Run dispatches both sources concurrently, waits for both to settle and
// reconciles whatever succeeded.
func (p *Pipeline) Run(ctx context.Context, path string) (*Response, error) {
	runID := uuid.NewString()
	log := p.log.WithField("run_id", runID)

	a, b := p.dispatch(ctx, path)
	report := &Report{TranslatorError: errString(a.err), DiarizerError: errString(b.err)}
	if b.ok() {
		report.Utterances = len(b.value.Utterances)
	}

	var resp *Response
	var runErr error
	switch {
	case a.ok() && b.ok() && len(b.value.Utterances) > 0:
		resp = p.both(a.value, b.value, report, log)
	case a.ok():
		resp = p.translatorOnly(a.value, msgTranslatorOnly)
	case b.ok():
		resp = p.diarizerOnly(b.value, report)
	default:
		fe := &FailureError{Translator: a.err, Diarizer: b.err}
		resp = &Response{Success: false, Error: fe.Error(), Outcome: OutcomeBothFailed}
		runErr = fe
	}
	resp.RunID = runID
	resp.SpeakingShare = speakingShare(resp.Speakers)
	metrics.RecordRun(string(resp.Outcome))

	entry := log.WithFields(logrus.Fields{
		"outcome":  resp.Outcome,
		"segments": len(resp.Speakers),
	})
	if a.err != nil {
		entry = entry.WithField("translator_error", a.err.Error())
	}
	if b.err != nil {
		entry = entry.WithField("diarizer_error", b.err.Error())
	}
	if runErr != nil {
		entry.Error("Transcript reconciliation failed")
	} else {
		entry.Info("Transcript reconciled")
	}

	if p.cfg.Paths.Outputs != "" {
		if out, err := persist(p.cfg.Paths.Outputs, resp, report); err != nil {
			log.WithError(err).Warn("Failed to persist run bundle")
		} else {
			log.WithField("path", out).Debug("Run bundle written")
		}
	}
	return resp, runErr
}

// dispatch runs both sources to completion. Neither result cancels the
// other: both goroutines always return nil to the group.
func (p *Pipeline) dispatch(ctx context.Context, path string) (settled[string], settled[*clients.Transcript]) {
	var a settled[string]
	var b settled[*clients.Transcript]

	var g errgroup.Group
	g.Go(func() error {
		a.value, a.err = p.translator.Translate(ctx, path)
		return nil
	})
	g.Go(func() error {
		b.value, b.err = p.diarizer.Diarize(ctx, path)
		if b.err == nil && (b.value == nil || (len(b.value.Utterances) == 0 && strings.TrimSpace(b.value.Text) == "")) {
			b.err = errNoUtterances
		}
		return nil
	})
	_ = g.Wait()
	return a, b
}

func (p *Pipeline) both(text string, tr *clients.Transcript, report *Report, log *logrus.Entry) *Response {
	t := p.cfg.Reconcile
	opt := reconcile.Optimize(reconcile.FromUtterances(toUtterances(tr.Utterances)), t)
	report.Optimized = &opt
	if len(opt.Segments) == 0 {
		log.Warn("Optimizer removed every diarized segment, synthesizing speakers")
		resp := p.translatorOnly(text, msgNoSegments)
		resp.Outcome = OutcomeBothSucceeded
		return resp
	}

	speakers, fusion := reconcile.Fuse(text, opt.Segments, t)
	report.Fusion = &fusion

	fields := logrus.Fields{
		"raw_segments":       len(tr.Utterances),
		"optimized_segments": len(opt.Segments),
		"avg_confidence":     opt.After.AverageConfidence,
		"method":             fusion.Method,
		"sentences":          fusion.Sentences,
	}
	if opt.Verdict != nil {
		fields["single_speaker"] = opt.Verdict.SingleSpeaker
		fields["verdict"] = opt.Verdict.Reason
	}
	log.WithFields(fields).Debug("Segments fused")

	msg := msgBoth
	switch {
	case fusion.Monologue.Monologue:
		msg += " (patient monologue detected)"
	case opt.Verdict != nil && opt.Verdict.SingleSpeaker:
		msg += " (single speaker detected: " + opt.Verdict.Reason + ")"
	}
	return &Response{
		Success:  true,
		Text:     text,
		Speakers: speakers,
		Message:  msg,
		Outcome:  OutcomeBothSucceeded,
	}
}

func (p *Pipeline) translatorOnly(text, msg string) *Response {
	return &Response{
		Success:  true,
		Text:     text,
		Speakers: reconcile.Synthesize(text, p.cfg.Reconcile),
		Message:  msg,
		Outcome:  OutcomeTranslatorOnly,
	}
}

// diarizerOnly answers from the diarizer alone. A job that completed with
// text but no utterances yields the text without speaker segments.
func (p *Pipeline) diarizerOnly(tr *clients.Transcript, report *Report) *Response {
	if len(tr.Utterances) == 0 {
		return &Response{
			Success: true,
			Text:    strings.TrimSpace(tr.Text),
			Message: msgDiarizerOnly,
			Outcome: OutcomeDiarizerOnly,
		}
	}

	raw := reconcile.FromUtterances(toUtterances(tr.Utterances))
	opt := reconcile.Optimize(raw, p.cfg.Reconcile)
	report.Optimized = &opt

	segs := opt.Segments
	if len(segs) == 0 {
		// everything looked like noise; better to show it than nothing
		segs = raw
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].StartMs < segs[j].StartMs })
		for i := range segs {
			segs[i].Speaker = reconcile.CanonicalSpeaker(segs[i].Speaker)
		}
	}
	text := strings.TrimSpace(tr.Text)
	if text == "" {
		text = joinText(segs)
	}
	return &Response{
		Success:  true,
		Text:     text,
		Speakers: reconcile.FromDiarizer(segs),
		Message:  msgDiarizerOnly,
		Outcome:  OutcomeDiarizerOnly,
	}
}
