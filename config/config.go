// Package config loads client settings from a TOML file and the
// environment.
//
// Environment variables take precedence over the file and use the
// REQFLOW_ prefix, e.g. REQFLOW_BASE_URL or REQFLOW_THROTTLE_RPS.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/adamwoolhether/reqflow/client"
	"github.com/adamwoolhether/reqflow/fsys"
	"github.com/adamwoolhether/reqflow/internal/validate"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "REQFLOW"

const defaultTimeout = "30s"

// Config captures the settings needed to build a client.
type Config struct {
	BaseURL           string            `toml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	Headers           map[string]string `toml:"headers" envconfig:"HEADERS"`
	Timeout           string            `toml:"timeout" envconfig:"TIMEOUT"`
	UserAgent         string            `toml:"user_agent" envconfig:"USER_AGENT"`
	ThrottleRPS       int               `toml:"throttle_rps" envconfig:"THROTTLE_RPS" validate:"gte=0"`
	ThrottleBurst     int               `toml:"throttle_burst" envconfig:"THROTTLE_BURST" validate:"gte=0"`
	NoFollowRedirects bool              `toml:"no_follow_redirects" envconfig:"NO_FOLLOW_REDIRECTS"`
	Debug             bool              `toml:"debug" envconfig:"DEBUG"`
	DownloadRoot      string            `toml:"download_root" envconfig:"DOWNLOAD_ROOT"`
}

// Default returns the settings used when neither file nor environment
// sets a value.
func Default() Config {
	return Config{Timeout: defaultTimeout}
}

// Override adjusts a Config after file and environment are applied.
type Override func(*Config)

// WithBaseURL replaces the base URL; an empty url leaves it unchanged.
func WithBaseURL(url string) Override {
	return func(c *Config) {
		if url != "" {
			c.BaseURL = url
		}
	}
}

// Load reads path from the OS filesystem. See LoadFS.
func Load(path string, overrides ...Override) (Config, error) {
	return LoadFS(afero.NewOsFs(), path, overrides...)
}

// LoadFS parses the TOML file at path on fs, applies environment
// overrides, then overrides, and validates the result. An empty path or a
// missing file leaves the defaults in place.
func LoadFS(fs afero.Fs, path string, overrides ...Override) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		b, err := afero.ReadFile(fs, path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	for _, override := range overrides {
		override(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field constraints and that Timeout parses.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if _, err := c.timeout(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}

// Options converts c into client options.
func (c Config) Options() ([]client.Option, error) {
	var opts []client.Option

	timeout, err := c.timeout()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, client.WithTimeout(timeout))
	}

	if len(c.Headers) > 0 {
		h := make(http.Header, len(c.Headers))
		for k, v := range c.Headers {
			h.Add(k, v)
		}
		opts = append(opts, client.WithHeaders(h))
	}

	if c.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(c.UserAgent))
	}

	if c.ThrottleRPS > 0 {
		burst := c.ThrottleBurst
		if burst == 0 {
			burst = c.ThrottleRPS
		}
		opts = append(opts, client.WithThrottle(c.ThrottleRPS, burst))
	}

	if c.NoFollowRedirects {
		opts = append(opts, client.WithNoFollowRedirects())
	}

	if c.Debug {
		opts = append(opts, client.WithDebug())
	}

	if c.DownloadRoot != "" {
		m, err := fsys.New(afero.NewOsFs(), fsys.WithRoot(fsys.Documents, c.DownloadRoot))
		if err != nil {
			return nil, fmt.Errorf("download root: %w", err)
		}
		opts = append(opts, client.WithFileManager(m))
	}

	return opts, nil
}

func (c Config) timeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}

	return d, nil
}
