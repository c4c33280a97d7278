package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gopal-prakash-codes/ai-diagnosis/config"
	"github.com/gopal-prakash-codes/ai-diagnosis/metrics"
)

// HTTP is shared by the source clients. Timeouts are applied per attempt
// through the request context rather than on the client.
type HTTP struct {
	c     *http.Client
	retry config.Retry
}

func NewHTTP(retry config.Retry) *HTTP {
	return &HTTP{c: &http.Client{}, retry: retry}
}

// do runs fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. Each attempt gets its own timeout; a timed out
// attempt is abandoned and counts as a transient failure. Backoff doubles
// from BaseDelay up to MaxDelay.
func (h *HTTP) do(ctx context.Context, source string, timeout time.Duration, fn func(ctx context.Context) error) error {
	log := logrus.WithField("source", source)
	delay := h.retry.BaseDelay
	attempts := h.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return &SourceError{Source: source, Kind: KindUnavailable, Reason: "cancelled", Err: err}
		}

		actx, cancel := context.WithTimeout(ctx, timeout)
		err := fn(actx)
		cancel()
		if err == nil {
			return nil
		}
		last = err
		if !Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"backoff": delay,
		}).Warn("Source call failed, retrying")
		metrics.RecordRetry(source)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &SourceError{Source: source, Kind: KindUnavailable, Reason: "cancelled during backoff", Err: last}
		}
		delay *= 2
		if delay > h.retry.MaxDelay {
			delay = h.retry.MaxDelay
		}
	}

	log.WithError(last).WithField("attempts", attempts).Error("Source call failed after all retries")
	return &SourceError{
		Source: source,
		Kind:   KindUnavailable,
		Reason: fmt.Sprintf("gave up after %d attempts", attempts),
		Err:    last,
	}
}

func observe(source string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = string(KindOf(err))
		if status == "" {
			status = "error"
		}
	}
	metrics.RecordSourceCall(source, status, time.Since(start).Seconds())
}
