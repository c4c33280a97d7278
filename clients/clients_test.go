package clients

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopal-prakash-codes/ai-diagnosis/config"
)

func fastRetry(attempts int) config.Retry {
	return config.Retry{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visit.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3 fake mp3 payload"), 0o600))
	return path
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	h := NewHTTP(fastRetry(5))
	calls := 0
	err := h.do(context.Background(), "test", time.Second, func(ctx context.Context) error {
		calls++
		return &SourceError{Source: "test", Kind: KindAuth}
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, KindAuth, KindOf(err))
}

func TestRetryExhaustion(t *testing.T) {
	h := NewHTTP(fastRetry(3))
	calls := 0
	err := h.do(context.Background(), "test", time.Second, func(ctx context.Context) error {
		calls++
		return &SourceError{Source: "test", Kind: KindTransient, Reason: "boom"}
	})
	assert.Equal(t, 3, calls)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.True(t, HasKind(err, KindTransient))
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
}

func TestRetryPerAttemptTimeout(t *testing.T) {
	h := NewHTTP(fastRetry(2))
	calls := 0
	err := h.do(context.Background(), "test", 10*time.Millisecond, func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return classifyTransport("test", ctx.Err())
	})
	assert.Equal(t, 2, calls)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRetryCancelledContext(t *testing.T) {
	h := NewHTTP(fastRetry(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := h.do(ctx, "test", time.Second, func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.Zero(t, calls)
	assert.Equal(t, KindUnavailable, KindOf(err))
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{429, KindRateLimited},
		{401, KindAuth},
		{403, KindAuth},
		{408, KindTransient},
		{500, KindTransient},
		{503, KindTransient},
		{400, KindRejection},
		{413, KindRejection},
		{415, KindRejection},
	}
	for _, tt := range tests {
		e := classifyStatus("translator", tt.status, "body")
		assert.Equal(t, tt.want, e.Kind, "status %d", tt.status)
	}
	assert.True(t, Retryable(classifyStatus("x", 429, "")))
	assert.False(t, Retryable(classifyStatus("x", 413, "")))
	assert.False(t, Retryable(errors.New("plain")))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc…", truncate("abcdef", 3))

	// "é" is two bytes; cutting at 4 would land inside the second one.
	got := truncate("caféé", 4)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "caf…", got)
}
