// Package config loads the daemon configuration from padctl.json with
// environment-variable overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"unicode"

	"github.com/padctl/padctl/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "padctl.json"

	// DefaultPort is the default websocket/HTTP port.
	DefaultPort = 17815

	// DefaultHost is the default bind address.
	DefaultHost = "0.0.0.0"
)

// Config represents the complete padctl.json configuration.
type Config struct {
	// Name is the daemon name advertised to discovery.
	Name string `json:"name,omitempty"`

	// Host is the bind address.
	Host string `json:"host,omitempty"`

	// Port is the listen port.
	Port int `json:"port,omitempty"`

	// PIN is the pairing secret peers must present. Required.
	PIN string `json:"pin,omitempty"`

	// MaxPeers caps concurrent controlling peers.
	MaxPeers int `json:"maxPeers,omitempty"`

	// Sensitivity is the initial pointer sensitivity, [0.1, 5.0].
	Sensitivity float64 `json:"sensitivity,omitempty"`

	// ScrollSpeed is the initial scroll speed, [0.1, 5.0].
	ScrollSpeed float64 `json:"scrollSpeed,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// Default returns a Config with the documented defaults. The PIN is
// empty and must come from the file, the environment or a flag.
func Default() *Config {
	host, _ := os.Hostname()
	if host == "" {
		host = "padctl"
	}
	return &Config{
		Name:        host,
		Host:        DefaultHost,
		Port:        DefaultPort,
		MaxPeers:    5,
		Sensitivity: 1.0,
		ScrollSpeed: 1.0,
		Log:         LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads padctl.json from dir (or the defaults when the file does
// not exist) and applies PADCTL_* environment overrides.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return nil, errors.Newf(errors.CategoryConfig, "reading %s", path).Wrap(err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.Newf(errors.CategoryConfig, "parsing %s", path).
				Wrap(err).
				WithSuggestion("check the file for trailing commas or unquoted keys")
		}
		cfg.configPath = path
	}

	cfg.applyEnv()
	return cfg, nil
}

// Path returns where the config was loaded from, or "" for defaults.
func (c *Config) Path() string { return c.configPath }

// applyEnv overrides fields from PADCTL_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("PADCTL_PIN"); v != "" {
		c.PIN = v
	}
	if v := os.Getenv("PADCTL_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PADCTL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("PADCTL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration for use by the daemon.
func (c *Config) Validate() error {
	if c.PIN == "" {
		return errors.Newf(errors.CategoryConfig, "no PIN configured").
			WithSuggestion("set \"pin\" in padctl.json or export PADCTL_PIN")
	}
	if len(c.PIN) < 4 || len(c.PIN) > 8 {
		return errors.Newf(errors.CategoryConfig, "PIN must be 4-8 digits")
	}
	for _, r := range c.PIN {
		if !unicode.IsDigit(r) {
			return errors.Newf(errors.CategoryConfig, "PIN must be 4-8 digits")
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Newf(errors.CategoryConfig, "invalid port %d", c.Port)
	}
	if c.MaxPeers <= 0 {
		return errors.Newf(errors.CategoryConfig, "maxPeers must be positive")
	}
	return nil
}

// Save writes the configuration to its path, or to dir/padctl.json for
// a fresh config.
func (c *Config) Save(dir string) error {
	path := c.configPath
	if path == "" {
		path = filepath.Join(dir, ConfigFileName)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Newf(errors.CategoryConfig, "encoding config").Wrap(err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Newf(errors.CategoryConfig, "writing %s", path).Wrap(err)
	}
	c.configPath = path
	return nil
}
