package intake

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "diag-audio-*"))
	require.NoError(t, err)
	return matches
}

func TestAcceptValid(t *testing.T) {
	dir := t.TempDir()
	payload := bytes.Repeat([]byte{0x42}, 2048)

	a, err := Accept(bytes.NewReader(payload), "Visit Recording.MP3", 1000, dir)
	require.NoError(t, err)
	assert.Equal(t, "mp3", a.Ext())
	assert.Equal(t, "Visit Recording.MP3", a.Name())
	assert.Equal(t, int64(2048), a.Size())

	b, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	assert.Equal(t, payload, b)

	require.NoError(t, a.Close())
	assert.Empty(t, stagedFiles(t, dir))
}

func TestAcceptRejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     []byte
		reason   Reason
	}{
		{"empty", "a.wav", nil, ReasonEmpty},
		{"too small", "a.wav", []byte("tiny"), ReasonTooSmall},
		{"unsupported", "notes.txt", bytes.Repeat([]byte("x"), 2000), ReasonUnsupported},
		{"no extension", "recording", bytes.Repeat([]byte("x"), 2000), ReasonUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			a, err := Accept(bytes.NewReader(tt.body), tt.filename, 100, dir)
			assert.Nil(t, a)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.reason, ve.Reason)
			assert.Empty(t, stagedFiles(t, dir))
		})
	}
}

func TestAcceptAllSupportedExtensions(t *testing.T) {
	for ext := range SupportedExtensions {
		dir := t.TempDir()
		a, err := Accept(strings.NewReader(strings.Repeat("x", 200)), "clip."+ext, 100, dir)
		require.NoError(t, err, ext)
		require.NoError(t, a.Close())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a, err := Accept(strings.NewReader(strings.Repeat("x", 200)), "clip.ogg", 100, dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Close())
		}()
	}
	wg.Wait()
	assert.NoError(t, a.Close())
	assert.Empty(t, stagedFiles(t, dir))
}
