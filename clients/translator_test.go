package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopal-prakash-codes/ai-diagnosis/config"
)

func newTranslator(url string, attempts int, timeout time.Duration) *Translator {
	return NewTranslator(NewHTTP(fastRetry(attempts)), config.Translator{
		URL:     url,
		APIKey:  "sk-test",
		Model:   "whisper-1",
		Timeout: timeout,
	})
}

func TestTranslateRetriesTransientFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/v1/audio/translations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			b, _ := io.ReadAll(file)
			assert.Equal(t, "ID3 fake mp3 payload", string(b))
			assert.Equal(t, "visit.mp3", header.Filename)
		}
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "text", r.FormValue("response_format"))

		if n == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, "  I have a headache. It started yesterday.\n")
	}))
	defer srv.Close()

	text, err := newTranslator(srv.URL+"/v1", 3, time.Second).Translate(context.Background(), writeAudio(t))
	require.NoError(t, err)
	assert.Equal(t, "I have a headache. It started yesterday.", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestTranslateRejectionIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, `{"error":"unsupported file format"}`, http.StatusUnsupportedMediaType)
	}))
	defer srv.Close()

	_, err := newTranslator(srv.URL, 3, time.Second).Translate(context.Background(), writeAudio(t))
	require.Error(t, err)
	assert.Equal(t, KindRejection, KindOf(err))
	assert.Contains(t, err.Error(), "unsupported file format")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestTranslateRateLimitExhaustsRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTranslator(srv.URL, 3, time.Second).Translate(context.Background(), writeAudio(t))
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.True(t, HasKind(err, KindRateLimited))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestTranslateTimeout(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTranslator(srv.URL, 2, 20*time.Millisecond).Translate(context.Background(), writeAudio(t))
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.True(t, HasKind(err, KindTransient))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestTranslateEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "   ")
	}))
	defer srv.Close()

	_, err := newTranslator(srv.URL, 3, time.Second).Translate(context.Background(), writeAudio(t))
	assert.Equal(t, KindRejection, KindOf(err))
}

func TestTranslateWithoutKey(t *testing.T) {
	tr := NewTranslator(NewHTTP(fastRetry(3)), config.Translator{URL: "http://unused", Timeout: time.Second})
	_, err := tr.Translate(context.Background(), "missing.mp3")
	assert.Equal(t, KindConfig, KindOf(err))
}

func TestTranslateRepairsInvalidUTF8(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("caf\xe9 ok. Then more."))
	}))
	defer srv.Close()

	text, err := newTranslator(srv.URL, 1, time.Second).Translate(context.Background(), writeAudio(t))
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, "caf\uFFFD ok. Then more.", text)
}
