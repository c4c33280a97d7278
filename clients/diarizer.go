package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gopal-prakash-codes/ai-diagnosis/config"
)

// Utterance is one speaker turn as returned by the diarization API.
// Times are milliseconds from the start of the audio.
type Utterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Transcript is the diarization job as reported by the API.
type Transcript struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Text       string      `json:"text"`
	Utterances []Utterance `json:"utterances"`
	Error      string      `json:"error,omitempty"`
}

type uploadResp struct {
	UploadURL string `json:"upload_url"`
}

type transcriptReq struct {
	AudioURL      string `json:"audio_url"`
	SpeakerLabels bool   `json:"speaker_labels"`
	Punctuate     bool   `json:"punctuate"`
	FormatText    bool   `json:"format_text"`
}

const (
	statusCompleted = "completed"
	statusError     = "error"
)

// Diarizer uploads audio to a diarization API, submits a transcription job
// with speaker labels and polls it to completion. It does not ask for
// translation; its text is only trusted when the translator fails.
type Diarizer struct {
	h   *HTTP
	cfg config.Diarizer
	log *logrus.Entry
}

func NewDiarizer(h *HTTP, cfg config.Diarizer) *Diarizer {
	return &Diarizer{h: h, cfg: cfg, log: logrus.WithField("component", SourceDiarizer)}
}

// Diarize runs the full upload → submit → poll cycle for the audio at path.
// The whole cycle, polling included, is bounded by the configured timeout
// per step.
func (d *Diarizer) Diarize(ctx context.Context, path string) (tr *Transcript, err error) {
	start := time.Now()
	defer func() { observe(SourceDiarizer, start, err) }()

	if d.cfg.APIKey == "" || d.cfg.URL == "" {
		return nil, &SourceError{Source: SourceDiarizer, Kind: KindConfig, Reason: "diarizer url or api key not configured"}
	}

	var audioURL string
	err = d.h.do(ctx, SourceDiarizer, d.cfg.Timeout, func(ctx context.Context) error {
		var callErr error
		audioURL, callErr = d.upload(ctx, path)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	var job Transcript
	err = d.h.do(ctx, SourceDiarizer, d.cfg.Timeout, func(ctx context.Context) error {
		return d.call(ctx, http.MethodPost, "/v2/transcript", transcriptReq{
			AudioURL:      audioURL,
			SpeakerLabels: true,
			Punctuate:     true,
			FormatText:    true,
		}, &job)
	})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	d.log.WithField("job_id", job.ID).Debug("Diarization job submitted")

	tr, err = d.poll(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	d.log.WithFields(logrus.Fields{
		"job_id":     tr.ID,
		"utterances": len(tr.Utterances),
		"elapsed":    time.Since(start),
	}).Debug("Diarization complete")
	return tr, nil
}

func (d *Diarizer) poll(ctx context.Context, id string) (*Transcript, error) {
	pctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	for {
		var tr Transcript
		err := d.h.do(pctx, SourceDiarizer, d.cfg.Timeout, func(ctx context.Context) error {
			return d.call(ctx, http.MethodGet, "/v2/transcript/"+id, nil, &tr)
		})
		if err != nil {
			return nil, fmt.Errorf("poll: %w", err)
		}

		switch tr.Status {
		case statusCompleted:
			return &tr, nil
		case statusError:
			return nil, &SourceError{Source: SourceDiarizer, Kind: KindRejection, Reason: "job failed: " + tr.Error}
		}

		select {
		case <-time.After(d.cfg.PollInterval):
		case <-pctx.Done():
			return nil, &SourceError{
				Source: SourceDiarizer,
				Kind:   KindUnavailable,
				Reason: fmt.Sprintf("job %s still %q after %s", id, tr.Status, d.cfg.Timeout),
				Err:    pctx.Err(),
			}
		}
	}
}

func (d *Diarizer) upload(ctx context.Context, path string) (string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer fd.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint("/v2/upload"), fd)
	if err != nil {
		return "", &SourceError{Source: SourceDiarizer, Kind: KindConfig, Reason: "bad diarizer url", Err: err}
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResp
	if err := d.send(req, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", &SourceError{Source: SourceDiarizer, Kind: KindTransient, Reason: "upload returned no url"}
	}
	return out.UploadURL, nil
}

func (d *Diarizer) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, d.endpoint(path), body)
	if err != nil {
		return &SourceError{Source: SourceDiarizer, Kind: KindConfig, Reason: "bad diarizer url", Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return d.send(req, out)
}

func (d *Diarizer) send(req *http.Request, out any) error {
	req.Header.Set("Authorization", d.cfg.APIKey)

	resp, err := d.h.c.Do(req)
	if err != nil {
		return classifyTransport(SourceDiarizer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return classifyStatus(SourceDiarizer, resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SourceError{Source: SourceDiarizer, Kind: KindTransient, Reason: "decode response", Err: err}
	}
	return nil
}

func (d *Diarizer) endpoint(path string) string {
	return strings.TrimRight(d.cfg.URL, "/") + path
}
