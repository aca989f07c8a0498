package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	envConfigPath = "KENERCTL_CONFIG"
	envAPIURL     = "KENER_API_URL"
	envAPIKey     = "KENER_API_KEY"

	DefaultTimeoutSec = 30
)

// Config carries the connection settings for a Kener instance. Values come
// from a YAML file, the KENER_* environment, and command-line flags, in
// ascending precedence.
type Config struct {
	APIURL        string `yaml:"api_url"`
	APIKey        string `yaml:"api_key"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	ValidateCerts *bool  `yaml:"validate_certs"`
}

func Load(ctx context.Context, path string) (Config, error) {
	var cfg Config

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	return cfg, nil
}

// FromEnv loads the file named by KENERCTL_CONFIG. The file is optional:
// without the variable the zero config is returned.
func FromEnv(ctx context.Context) (Config, error) {
	path := os.Getenv(envConfigPath)
	if path == "" {
		return Config{}, nil
	}
	return Load(ctx, path)
}

// ApplyEnv layers the connection environment variables over the config.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(envAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(envAPIKey); v != "" {
		c.APIKey = v
	}
}

// Validate reports whether the config is complete enough to reach an API.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url is required (flag --api-url, env KENER_API_URL, or config file)")
	}
	if c.APIKey == "" {
		return errors.New("api_key is required (flag --api-key, env KENER_API_KEY, or config file)")
	}
	return nil
}

// Timeout returns the request timeout, falling back to the default.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return DefaultTimeoutSec * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// TLSVerify reports whether server certificates should be verified.
// Unset means verify.
func (c Config) TLSVerify() bool {
	return c.ValidateCerts == nil || *c.ValidateCerts
}
