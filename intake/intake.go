// Package intake validates uploaded audio and stages it in a temporary
// file that both transcription sources read from.
package intake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// SupportedExtensions lists the container formats the sources accept.
var SupportedExtensions = map[string]struct{}{
	"flac": {}, "m4a": {}, "mp3": {}, "mp4": {}, "mpeg": {},
	"mpga": {}, "oga": {}, "ogg": {}, "wav": {}, "webm": {},
}

type Reason string

const (
	ReasonEmpty       Reason = "empty"
	ReasonTooSmall    Reason = "too_small"
	ReasonUnsupported Reason = "unsupported_format"
)

// ValidationError rejects an upload before any source is called.
type ValidationError struct {
	Reason Reason
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid audio (%s): %s", e.Reason, e.Detail)
}

// Audio is a validated upload staged on disk. Close removes the file; it
// is safe to call more than once and from several goroutines.
type Audio struct {
	path string
	name string
	ext  string
	size int64

	once sync.Once
	err  error
}

func (a *Audio) Path() string { return a.path }
func (a *Audio) Name() string { return a.name }
func (a *Audio) Ext() string  { return a.ext }
func (a *Audio) Size() int64  { return a.size }

func (a *Audio) Close() error {
	a.once.Do(func() {
		if err := os.Remove(a.path); err != nil && !os.IsNotExist(err) {
			a.err = err
		}
		logrus.WithField("path", a.path).Debug("Removed staged audio")
	})
	return a.err
}

// Ext returns the lowercased extension of name without the dot.
func Ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Accept validates r as audio named name and stages it under tempDir
// (os.TempDir when empty). On error nothing is left on disk.
func Accept(r io.Reader, name string, minBytes int64, tempDir string) (*Audio, error) {
	ext := Ext(name)
	if _, ok := SupportedExtensions[ext]; !ok {
		return nil, &ValidationError{Reason: ReasonUnsupported, Detail: fmt.Sprintf("extension %q is not supported", ext)}
	}

	f, err := os.CreateTemp(tempDir, "diag-audio-*."+ext)
	if err != nil {
		return nil, fmt.Errorf("stage audio: %w", err)
	}
	a := &Audio{path: f.Name(), name: filepath.Base(name), ext: ext}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("stage audio: %w", err)
	}
	a.size = n

	switch {
	case n == 0:
		_ = a.Close()
		return nil, &ValidationError{Reason: ReasonEmpty, Detail: "file is empty"}
	case n < minBytes:
		_ = a.Close()
		return nil, &ValidationError{Reason: ReasonTooSmall, Detail: fmt.Sprintf("%d bytes is below the %d byte minimum", n, minBytes)}
	}
	return a, nil
}
