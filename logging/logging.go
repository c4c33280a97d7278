// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	cfg "github.com/gopal-prakash-codes/ai-diagnosis/config"
)

// Setup applies level and format to the standard logger. When a file is
// configured, output goes to stderr and to a size-rotated file. The
// returned closer releases the file and is safe to call when none is open.
func Setup(c cfg.Logging) (io.Closer, error) {
	return configure(logrus.StandardLogger(), c, os.Stderr)
}

func configure(l *logrus.Logger, c cfg.Logging, console io.Writer) (io.Closer, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nopCloser{}, err
	}
	l.SetLevel(level)

	switch strings.ToLower(c.Format) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nopCloser{}, fmt.Errorf("unknown log format %q", c.Format)
	}

	if c.File == "" {
		l.SetOutput(console)
		return nopCloser{}, nil
	}
	file := &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
		Compress:   true,
	}
	l.SetOutput(io.MultiWriter(console, file))
	return file, nil
}

func parseLevel(s string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return logrus.InfoLevel, nil
	case "warning":
		return logrus.WarnLevel, nil
	}
	return logrus.ParseLevel(s)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
