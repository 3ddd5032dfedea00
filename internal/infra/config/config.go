// Package config provides configuration loading from YAML files and the
// mutable runtime state persisted between runs.
package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultClientID is the Spotify application used when no custom client is
// configured. PKCE login works with it out of the box.
const DefaultClientID = "65b708073fc0480ea92a077233ca87bd"

// Config represents the application configuration.
type Config struct {
	Credentials CredentialsConfig `yaml:"credentials"`
	Audio       AudioConfig       `yaml:"audio"`
	IPC         IPCConfig         `yaml:"ipc"`
	Log         LogConfig         `yaml:"log"`
}

// CredentialsConfig represents OAuth client configuration. A configured
// client secret selects the Authorization-Code flow; without one the PKCE
// flow is used.
type CredentialsConfig struct {
	ClientID     string `yaml:"client_id" default:"65b708073fc0480ea92a077233ca87bd" validate:"required"`
	ClientSecret string `yaml:"client_secret"`
	CachePath    string `yaml:"cache_path"`
}

// AudioConfig represents audio output configuration.
type AudioConfig struct {
	// Device is the preferred output device name; empty means system default.
	Device  string        `yaml:"device"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// MonitorConfig represents the output-device monitor configuration. The
// monitor is on by default; Disabled opts out. Settings is free-form and
// decoded by the platform prober.
type MonitorConfig struct {
	Disabled bool           `yaml:"disabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// IPCConfig represents the inter-process control channel configuration.
type IPCConfig struct {
	Socket string `yaml:"socket"`
}

// LogConfig represents logging configuration. Output defaults to a file
// because the terminal surface belongs to the UI once it starts.
type LogConfig struct {
	Level string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"`
}

// Load loads configuration from a YAML file. A missing file yields the
// default configuration. Environment variables take precedence over file
// values for credentials.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		// First run, defaults only.
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.ClientSecret = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// CredentialsCachePath returns the configured credential cache location, or
// the default under the user config directory.
func (c *Config) CredentialsCachePath() (string, error) {
	if c.Credentials.CachePath != "" {
		return c.Credentials.CachePath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user config directory")
	}
	return filepath.Join(dir, "strum", "credentials.json"), nil
}

// SocketPath returns the configured IPC socket path, or the default under
// the user cache directory.
func (c *Config) SocketPath() (string, error) {
	if c.IPC.Socket != "" {
		return c.IPC.Socket, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user cache directory")
	}
	return filepath.Join(dir, "strum", "strum.sock"), nil
}
