package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gopal-prakash-codes/ai-diagnosis/reconcile"
)

type Logging struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"` // text | json
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

type Intake struct {
	MinBytes int64  `mapstructure:"min_bytes" yaml:"min_bytes"`
	TempDir  string `mapstructure:"temp_dir" yaml:"temp_dir"`
}

// Translator is the speaker-blind speech translation service.
type Translator struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	Model   string        `mapstructure:"model" yaml:"model"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Diarizer is the upload + transcribe-with-speaker-labels service.
type Diarizer struct {
	URL          string        `mapstructure:"url" yaml:"url"`
	APIKey       string        `mapstructure:"api_key" yaml:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay" yaml:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
}

type Server struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type Root struct {
	Pipeline struct {
		Name    string `mapstructure:"name" yaml:"name"`
		Version string `mapstructure:"version" yaml:"version"`
	} `mapstructure:"pipeline" yaml:"pipeline"`
	Logging    Logging          `mapstructure:"logging" yaml:"logging"`
	Intake     Intake           `mapstructure:"intake" yaml:"intake"`
	Translator Translator       `mapstructure:"translator" yaml:"translator"`
	Diarizer   Diarizer         `mapstructure:"diarizer" yaml:"diarizer"`
	Retry      Retry            `mapstructure:"retry" yaml:"retry"`
	Reconcile  reconcile.Tuning `mapstructure:"reconcile" yaml:"reconcile"`
	Server     Server           `mapstructure:"server" yaml:"server"`
	Paths      struct {
		Outputs string `mapstructure:"outputs" yaml:"outputs"`
	} `mapstructure:"paths" yaml:"paths"`
}

// Default returns a configuration that works against the public
// translation and diarization APIs once keys are provided.
func Default() Root {
	var c Root
	c.Pipeline.Name = "ai-diagnosis-transcripts"
	c.Pipeline.Version = "dev"
	c.Logging = Logging{Level: "info", Format: "text", MaxSizeMB: 100, MaxBackups: 10, MaxAgeDays: 30}
	c.Intake = Intake{MinBytes: 1000}
	c.Translator = Translator{
		URL:     "https://api.openai.com/v1",
		Model:   "whisper-1",
		Timeout: 120 * time.Second,
	}
	c.Diarizer = Diarizer{
		URL:          "https://api.assemblyai.com",
		Timeout:      120 * time.Second,
		PollInterval: 3 * time.Second,
	}
	c.Retry = Retry{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 8 * time.Second}
	c.Reconcile = reconcile.DefaultTuning()
	c.Server.Addr = ":8080"
	return c
}

// Validate rejects settings the pipeline cannot run with. Missing API keys
// are not an error here; the affected source fails at call time instead.
func (c *Root) Validate() error {
	var errs []error
	if c.Intake.MinBytes < 0 {
		errs = append(errs, errors.New("intake.min_bytes must not be negative"))
	}
	if c.Translator.URL == "" {
		errs = append(errs, errors.New("translator.url is required"))
	}
	if c.Diarizer.URL == "" {
		errs = append(errs, errors.New("diarizer.url is required"))
	}
	if c.Translator.Timeout <= 0 || c.Diarizer.Timeout <= 0 {
		errs = append(errs, errors.New("source timeouts must be positive"))
	}
	if c.Diarizer.PollInterval <= 0 {
		errs = append(errs, errors.New("diarizer.poll_interval must be positive"))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry.max_attempts must be at least 1"))
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		errs = append(errs, errors.New("retry delays must satisfy 0 <= base_delay <= max_delay"))
	}
	t := c.Reconcile
	for name, v := range map[string]float64{
		"low_confidence":          t.LowConfidence,
		"high_confidence":         t.HighConfidence,
		"reasonable_confidence":   t.ReasonableConfidence,
		"same_person_confidence":  t.SamePersonConfidence,
		"trust_confidence":        t.TrustConfidence,
		"dominance_ratio":         t.DominanceRatio,
		"rapid_alternation_ratio": t.RapidAlternationRatio,
		"short_segment_ratio":     t.ShortSegmentRatio,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("reconcile.%s must be within [0,1], got %v", name, v))
		}
	}
	return errors.Join(errs...)
}

// Load reads configuration from path, or from config/<CONFIG_ENV>/config.yaml
// when path is empty. A missing file is not an error: defaults plus
// environment overrides (DIAG_SECTION_KEY) are used instead.
func Load(path string) (*Root, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}

	v := viper.New()
	v.SetEnvPrefix("DIAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join("config", env))
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// bindEnv registers the keys that are commonly set from the environment.
// AutomaticEnv alone only resolves keys viper already knows about.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("translator.api_key", "DIAG_TRANSLATOR_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("diarizer.api_key", "DIAG_DIARIZER_API_KEY", "ASSEMBLYAI_API_KEY")
	for _, key := range []string{
		"logging.level", "logging.format", "logging.file",
		"intake.min_bytes", "intake.temp_dir",
		"translator.url", "translator.model", "translator.timeout",
		"diarizer.url", "diarizer.timeout", "diarizer.poll_interval",
		"retry.max_attempts", "retry.base_delay", "retry.max_delay",
		"server.addr", "paths.outputs",
	} {
		_ = v.BindEnv(key)
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		v.SetDefault("logging.level", lvl)
	}
}

// Dump renders c as YAML with API keys redacted.
func Dump(c Root) ([]byte, error) {
	if c.Translator.APIKey != "" {
		c.Translator.APIKey = "<redacted>"
	}
	if c.Diarizer.APIKey != "" {
		c.Diarizer.APIKey = "<redacted>"
	}
	return yaml.Marshal(c)
}
