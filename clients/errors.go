package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	SourceTranslator = "translator"
	SourceDiarizer   = "diarizer"
)

// Kind classifies a source failure for retry and status decisions.
type Kind string

const (
	KindTransient   Kind = "transient"    // network, 5xx, timeout: retried
	KindRateLimited Kind = "rate_limited" // 429: retried
	KindRejection   Kind = "rejection"    // content refused: not retried
	KindAuth        Kind = "auth"         // 401/403: not retried
	KindConfig      Kind = "config"       // missing key or URL: not retried
	KindUnavailable Kind = "unavailable"  // retries exhausted
)

// SourceError is the settled failure of one upstream source.
type SourceError struct {
	Source     string
	Kind       Kind
	StatusCode int
	Reason     string
	Err        error
}

func (e *SourceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Source)
	b.WriteString(" ")
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SourceError) Unwrap() error { return e.Err }

// Retryable reports whether err is worth another attempt.
func Retryable(err error) bool {
	var se *SourceError
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == KindTransient || se.Kind == KindRateLimited
}

// HasKind reports whether any SourceError in err's chain has kind k.
func HasKind(err error, k Kind) bool {
	for err != nil {
		var se *SourceError
		if !errors.As(err, &se) {
			return false
		}
		if se.Kind == k {
			return true
		}
		err = se.Err
	}
	return false
}

// KindOf returns the outermost SourceError kind, or "" if err has none.
func KindOf(err error) Kind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func classifyStatus(source string, status int, body string) *SourceError {
	e := &SourceError{Source: source, StatusCode: status, Reason: truncate(strings.TrimSpace(body), 300)}
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindAuth
	case status == http.StatusRequestTimeout || status >= 500:
		e.Kind = KindTransient
	default:
		// 400 unsupported modality, 413 too large, 415/422 unusable content
		e.Kind = KindRejection
	}
	return e
}

func classifyTransport(source string, err error) *SourceError {
	reason := "request failed"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "request timed out"
	}
	return &SourceError{Source: source, Kind: KindTransient, Reason: reason, Err: err}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
