// Package config loads and writes the per-repository .gitalong.json
// document that pins a managed repository's store locator and tracking
// policy.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gitalong/gitalong/internal/errors"
	"github.com/spf13/viper"
)

// Basename is the config file's name at the managed repository root.
const Basename = ".gitalong.json"

const (
	// DefaultPullThreshold is the debounce window, in seconds, before the
	// store is pulled again.
	DefaultPullThreshold = 60.0

	// DefaultRetryAttempts is the store commit retry budget.
	DefaultRetryAttempts = 5

	// DefaultRetryBaseDelayMS is the first retry backoff delay.
	DefaultRetryBaseDelayMS = 100

	// DefaultRetryMaxDelayMS caps the exponential backoff delay.
	DefaultRetryMaxDelayMS = 2000

	// DefaultHTTPTimeoutSeconds bounds JSON-store HTTP calls.
	DefaultHTTPTimeoutSeconds = 30
)

// Config is the content of .gitalong.json.
type Config struct {
	StoreURL          string            `json:"store_url" mapstructure:"store_url"`
	StoreHeaders      map[string]string `json:"store_headers,omitempty" mapstructure:"store_headers"`
	ModifyPermissions bool              `json:"modify_permissions" mapstructure:"modify_permissions"`
	TrackedExtensions []string          `json:"tracked_extensions,omitempty" mapstructure:"tracked_extensions"`
	TrackUncommitted  bool              `json:"track_uncommitted" mapstructure:"track_uncommitted"`
	PullThreshold     float64           `json:"pull_threshold" mapstructure:"pull_threshold"`

	// Retry policy overrides. Zero means "use the compiled default".
	RetryAttempts    int `json:"retry_attempts,omitempty" mapstructure:"retry_attempts"`
	RetryBaseDelayMS int `json:"retry_base_delay_ms,omitempty" mapstructure:"retry_base_delay_ms"`
	RetryMaxDelayMS  int `json:"retry_max_delay_ms,omitempty" mapstructure:"retry_max_delay_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		PullThreshold: DefaultPullThreshold,
	}
}

// PullThresholdDuration returns PullThreshold as a time.Duration.
func (c *Config) PullThresholdDuration() time.Duration {
	return time.Duration(c.PullThreshold * float64(time.Second))
}

// RetryAttemptsOrDefault returns the configured retry attempt budget or the
// compiled default.
func (c *Config) RetryAttemptsOrDefault() int {
	if c.RetryAttempts > 0 {
		return c.RetryAttempts
	}
	return DefaultRetryAttempts
}

// RetryBaseDelayOrDefault returns the first backoff delay.
func (c *Config) RetryBaseDelayOrDefault() time.Duration {
	if c.RetryBaseDelayMS > 0 {
		return time.Duration(c.RetryBaseDelayMS) * time.Millisecond
	}
	return DefaultRetryBaseDelayMS * time.Millisecond
}

// RetryMaxDelayOrDefault returns the backoff cap.
func (c *Config) RetryMaxDelayOrDefault() time.Duration {
	if c.RetryMaxDelayMS > 0 {
		return time.Duration(c.RetryMaxDelayMS) * time.Millisecond
	}
	return DefaultRetryMaxDelayMS * time.Millisecond
}

// Path returns the absolute path to .gitalong.json under repoRoot.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, Basename)
}

// Load reads and validates the config at repoRoot. It returns
// errors.ErrNotSetUp if no config file exists.
func Load(repoRoot string) (*Config, error) {
	path := Path(repoRoot)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotSetUp
		}
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewConfigError("file", path, err)
	}

	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("file", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.StoreURL == "" {
		return errors.NewConfigError("store_url", c.StoreURL, errors.New("store_url is required"))
	}
	if c.PullThreshold < 0 {
		return errors.NewConfigError("pull_threshold", c.PullThreshold, errors.New("must be >= 0"))
	}
	return nil
}

// Save writes c to repoRoot's .gitalong.json, failing with
// errors.ErrAlreadySetUp if a config file already exists and overwrite is
// false.
func Save(repoRoot string, c *Config, overwrite bool) error {
	path := Path(repoRoot)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.ErrAlreadySetUp
		}
	}

	if err := c.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(path, data, 0644)
}

// Exists reports whether repoRoot has been set up.
func Exists(repoRoot string) bool {
	_, err := os.Stat(Path(repoRoot))
	return err == nil
}
