package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())
	assert.Equal(t, 3, c.Retry.MaxAttempts)
	assert.Equal(t, 0.85, c.Reconcile.DominanceRatio)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
intake:
  min_bytes: 250
translator:
  url: http://translator.local/v1
  timeout: 45s
retry:
  max_attempts: 5
  base_delay: 10ms
  max_delay: 100ms
reconcile:
  dominance_ratio: 0.95
  rapid_alternation_ratio: 0.85
paths:
  outputs: /tmp/runs
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(250), c.Intake.MinBytes)
	assert.Equal(t, "http://translator.local/v1", c.Translator.URL)
	assert.Equal(t, 45*time.Second, c.Translator.Timeout)
	assert.Equal(t, 5, c.Retry.MaxAttempts)
	assert.Equal(t, 10*time.Millisecond, c.Retry.BaseDelay)
	assert.Equal(t, 0.95, c.Reconcile.DominanceRatio)
	assert.Equal(t, 0.85, c.Reconcile.RapidAlternationRatio)
	assert.Equal(t, "/tmp/runs", c.Paths.Outputs)

	// untouched keys keep their defaults
	assert.Equal(t, "https://api.assemblyai.com", c.Diarizer.URL)
	assert.Equal(t, 0.2, c.Reconcile.ConfidenceDisparity)
	assert.Equal(t, "A", c.Reconcile.PatientSpeaker)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DIAG_TRANSLATOR_URL", "http://env-translator")
	t.Setenv("ASSEMBLYAI_API_KEY", "assembly-secret")
	t.Setenv("DIAG_RETRY_MAX_ATTEMPTS", "2")

	c, err := Load(writeConfig(t, "pipeline:\n  name: test\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://env-translator", c.Translator.URL)
	assert.Equal(t, "assembly-secret", c.Diarizer.APIKey)
	assert.Equal(t, 2, c.Retry.MaxAttempts)
	assert.Equal(t, "test", c.Pipeline.Name)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "retry:\n  max_attempts: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_attempts")

	_, err = Load(writeConfig(t, "reconcile:\n  dominance_ratio: 1.5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dominance_ratio")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDumpRedactsKeys(t *testing.T) {
	c := Default()
	c.Translator.APIKey = "sk-secret"
	out, err := Dump(c)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-secret")
	assert.Contains(t, string(out), "<redacted>")
	assert.Contains(t, string(out), "dominance_ratio: 0.85")
	assert.Equal(t, "sk-secret", c.Translator.APIKey)
}
