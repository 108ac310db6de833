// Package config holds the runtime settings for network lookups.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Conservative fixed defaults. The upstream services document no contract
// for these, so they stay small and are overridable via file or environment.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultRetries   = 3
	DefaultBackoff   = 500 * time.Millisecond
	DefaultRateLimit = 1.0 // requests per second, per provider

	DefaultDOIBaseURL   = "https://doi.org"
	DefaultArxivBaseURL = "https://export.arxiv.org/api/query"
)

// UserAgent identifies the tool to upstream services.
const UserAgent = "pybib/1.0 (+https://github.com/pybib/pybib)"

// Config carries the settings for provider clients and the lookup cache.
type Config struct {
	Timeout   time.Duration `yaml:"-"`
	Retries   int           `yaml:"retries"`
	Backoff   time.Duration `yaml:"-"`
	RateLimit float64       `yaml:"rate_limit"`

	DOIBaseURL   string `yaml:"doi_url"`
	ArxivBaseURL string `yaml:"arxiv_url"`

	CacheDir string `yaml:"cache_dir"`
	NoCache  bool   `yaml:"no_cache"`

	// Duration fields round-trip through strings in YAML.
	TimeoutStr string `yaml:"timeout"`
	BackoffStr string `yaml:"backoff"`
}

// Default returns a config with the fixed defaults.
func Default() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		Retries:      DefaultRetries,
		Backoff:      DefaultBackoff,
		RateLimit:    DefaultRateLimit,
		DOIBaseURL:   DefaultDOIBaseURL,
		ArxivBaseURL: DefaultArxivBaseURL,
		CacheDir:     defaultCacheDir(),
	}
}

// Load builds the effective config: defaults, then the optional YAML file at
// ~/.config/pybib/config.yaml, then PYBIB_* environment variables. A .env
// file in the working directory is loaded first so the variables it sets are
// visible to the environment pass.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := configFilePath(); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configFilePath() string {
	if p := os.Getenv("PYBIB_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pybib", "config.yaml")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pybib")
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if c.TimeoutStr != "" {
		d, err := time.ParseDuration(c.TimeoutStr)
		if err != nil {
			return fmt.Errorf("parsing %s: timeout: %w", path, err)
		}
		c.Timeout = d
	}
	if c.BackoffStr != "" {
		d, err := time.ParseDuration(c.BackoffStr)
		if err != nil {
			return fmt.Errorf("parsing %s: backoff: %w", path, err)
		}
		c.Backoff = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PYBIB_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PYBIB_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("PYBIB_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PYBIB_RETRIES: %w", err)
		}
		c.Retries = n
	}
	if v := os.Getenv("PYBIB_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PYBIB_BACKOFF: %w", err)
		}
		c.Backoff = d
	}
	if v := os.Getenv("PYBIB_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PYBIB_RATE_LIMIT: %w", err)
		}
		c.RateLimit = f
	}
	if v := os.Getenv("PYBIB_DOI_URL"); v != "" {
		c.DOIBaseURL = v
	}
	if v := os.Getenv("PYBIB_ARXIV_URL"); v != "" {
		c.ArxivBaseURL = v
	}
	if v := os.Getenv("PYBIB_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("PYBIB_NO_CACHE"); v != "" {
		c.NoCache = v != "0" && v != "false"
	}
	return nil
}
