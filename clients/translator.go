package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gopal-prakash-codes/ai-diagnosis/config"
)

// Translator calls a speech translation endpoint that accepts audio in any
// spoken language and answers with plain English text, no speaker info.
type Translator struct {
	h   *HTTP
	cfg config.Translator
	log *logrus.Entry
}

func NewTranslator(h *HTTP, cfg config.Translator) *Translator {
	return &Translator{h: h, cfg: cfg, log: logrus.WithField("component", SourceTranslator)}
}

// Translate returns the translated transcript of the audio file at path.
func (t *Translator) Translate(ctx context.Context, path string) (text string, err error) {
	start := time.Now()
	defer func() { observe(SourceTranslator, start, err) }()

	if t.cfg.APIKey == "" || t.cfg.URL == "" {
		return "", &SourceError{Source: SourceTranslator, Kind: KindConfig, Reason: "translator url or api key not configured"}
	}

	err = t.h.do(ctx, SourceTranslator, t.cfg.Timeout, func(ctx context.Context) error {
		var callErr error
		text, callErr = t.translateOnce(ctx, path)
		return callErr
	})
	if err != nil {
		return "", err
	}

	text = strings.ToValidUTF8(strings.TrimSpace(text), "\uFFFD")
	if text == "" {
		return "", &SourceError{Source: SourceTranslator, Kind: KindRejection, Reason: "empty transcript"}
	}
	t.log.WithFields(logrus.Fields{
		"chars":   len(text),
		"elapsed": time.Since(start),
	}).Debug("Translation complete")
	return text, nil
}

func (t *Translator) translateOnce(ctx context.Context, path string) (string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	fd, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	_ = w.WriteField("model", t.cfg.Model)
	_ = w.WriteField("response_format", "text")
	if err = w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(t.cfg.URL, "/")+"/audio/translations", &b)
	if err != nil {
		return "", &SourceError{Source: SourceTranslator, Kind: KindConfig, Reason: "bad translator url", Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)

	resp, err := t.h.c.Do(req)
	if err != nil {
		return "", classifyTransport(SourceTranslator, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(SourceTranslator, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(SourceTranslator, resp.StatusCode, string(body))
	}
	return string(body), nil
}
