package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	// DefaultBaseURL is the OpenAI chat completions endpoint.
	DefaultBaseURL = "https://api.openai.com/v1/chat/completions"

	EnvAPIKey          = "OPENCHAT_API_KEY"
	EnvAPIKeyFallback  = "OPENAI_API_KEY"
	EnvBaseURL         = "OPENCHAT_BASE_URL"
	EnvModel           = "OPENCHAT_MODEL"
	EnvSystemMessage   = "OPENCHAT_SYSTEM_MESSAGE"
	EnvTimeout         = "OPENCHAT_TIMEOUT"
	EnvStreamQueueSize = "OPENCHAT_STREAM_QUEUE_SIZE"
	EnvAllowTruncated  = "OPENCHAT_ALLOW_TRUNCATED"
	EnvConfigFile      = "OPENCHAT_CONFIG_FILE"
)

var (
	ErrMissingAPIKey  = errors.New("config: API key is not set")
	ErrMissingBaseURL = errors.New("config: base URL is not set")
	ErrMissingModel   = errors.New("config: model is not set")
)

// Config holds everything needed to open chat sessions.
type Config struct {
	BaseURL         string         `toml:"base_url"`
	APIKey          string         `toml:"api_key"`
	Model           string         `toml:"model"`
	SystemMessage   string         `toml:"system_message"`
	Timeout         Duration       `toml:"timeout"`
	StreamQueueSize int            `toml:"stream_queue_size"`
	AllowTruncated  bool           `toml:"allow_truncated"`
	Params          map[string]any `toml:"params"`
}

// Duration is a time.Duration read from strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	file     string
	envFiles []string
}

// WithFile reads the given TOML file. It overrides OPENCHAT_CONFIG_FILE.
func WithFile(path string) Option {
	return func(o *loadOptions) {
		o.file = path
	}
}

// WithEnvFiles replaces the default ".env" with the given dotenv files.
// Missing files are skipped.
func WithEnvFiles(paths ...string) Option {
	return func(o *loadOptions) {
		o.envFiles = paths
	}
}

// Load builds a Config from defaults, dotenv files, the TOML file and the
// environment. Variables already set in the process are never overwritten
// by dotenv files. Load does not validate; call Validate when the result
// must be usable as is.
func Load(opts ...Option) (*Config, error) {
	o := &loadOptions{envFiles: []string{".env"}}
	for _, opt := range opts {
		opt(o)
	}

	for _, path := range o.envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	cfg := &Config{BaseURL: DefaultBaseURL}

	file := o.file
	if file == "" {
		file = os.Getenv(EnvConfigFile)
	}
	if file != "" {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", file, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.APIKey = key
	} else if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAPIKeyFallback)
	}
	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		c.BaseURL = baseURL
	}
	if model := os.Getenv(EnvModel); model != "" {
		c.Model = model
	}
	if system := os.Getenv(EnvSystemMessage); system != "" {
		c.SystemMessage = system
	}
	if timeout := os.Getenv(EnvTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = Duration{d}
	}
	if size := os.Getenv(EnvStreamQueueSize); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvStreamQueueSize, err)
		}
		c.StreamQueueSize = n
	}
	if allow := os.Getenv(EnvAllowTruncated); allow != "" {
		b, err := strconv.ParseBool(allow)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAllowTruncated, err)
		}
		c.AllowTruncated = b
	}
	return nil
}

// Validate reports every missing required setting.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.BaseURL == "" {
		errs = append(errs, ErrMissingBaseURL)
	}
	if c.Model == "" {
		errs = append(errs, ErrMissingModel)
	}
	if c.StreamQueueSize < 0 {
		errs = append(errs, fmt.Errorf("config: stream_queue_size must not be negative, got %d", c.StreamQueueSize))
	}
	return errors.Join(errs...)
}

// SessionConfig returns the generation parameters with the model set. The
// "model" key of Params is overridden by Model when both are present.
func (c *Config) SessionConfig() map[string]any {
	out := make(map[string]any, len(c.Params)+1)
	maps.Copy(out, c.Params)
	if c.Model != "" {
		out["model"] = c.Model
	}
	return out
}
