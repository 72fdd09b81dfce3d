// Package config handles application configuration
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config.sample.yaml
var sampleConfig string

// GetSampleConfig returns the embedded sample configuration content
func GetSampleConfig() string {
	return sampleConfig
}

// Config represents the application configuration
type Config struct {
	Backends       BackendsConfig `yaml:"backends"`
	DefaultBackend string         `yaml:"default_backend"`
	DefaultUnit    string         `yaml:"default_unit"`
	NoPrompt       bool           `yaml:"no_prompt"`
	OutputFormat   string         `yaml:"output_format"`
	Share          ShareConfig    `yaml:"share"`
	Voice          VoiceConfig    `yaml:"voice"`
	Suggest        SuggestConfig  `yaml:"suggest"`
}

// BackendsConfig holds configuration for all backends
type BackendsConfig struct {
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	JSONFile JSONFileConfig `yaml:"jsonfile"`
}

// SQLiteConfig holds SQLite backend configuration
type SQLiteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// JSONFileConfig holds JSON file backend configuration
type JSONFileConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// ShareConfig holds share delivery settings
type ShareConfig struct {
	Endpoint string `yaml:"endpoint"` // HTTP endpoint; empty means clipboard only
	Account  string `yaml:"account"`  // Credentials account for the endpoint token
}

// VoiceConfig holds voice parser vocabulary overrides
type VoiceConfig struct {
	Units       map[string]string `yaml:"units"`      // spoken word -> canonical unit
	Connectors  []string          `yaml:"connectors"` // filler words dropped from names
	Placeholder string            `yaml:"placeholder"`
}

// SuggestConfig holds suggestion settings
type SuggestConfig struct {
	Limit int `yaml:"limit"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backends: BackendsConfig{
			SQLite: SQLiteConfig{
				Enabled: true,
				Path:    filepath.Join(GetDataDir(), "shoplist.db"),
			},
			JSONFile: JSONFileConfig{
				Enabled: true,
				Dir:     filepath.Join(GetDataDir(), "lists"),
			},
		},
		DefaultBackend: "sqlite",
		DefaultUnit:    "un",
		NoPrompt:       false,
		OutputFormat:   "text",
	}
}

// Load loads configuration from the specified path, or the default XDG path if empty.
// If the config file doesn't exist, it creates one with defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = filepath.Join(GetConfigDir(), "config.yaml")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file: %w", err)
	}

	// Apply defaults for unset fields (but not backends - those must be explicit)
	if cfg.DefaultBackend == "" {
		cfg.DefaultBackend = "sqlite"
	}
	if cfg.DefaultUnit == "" {
		cfg.DefaultUnit = "un"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "text"
	}

	if cfg.Backends.SQLite.Path != "" {
		cfg.Backends.SQLite.Path = ExpandPath(cfg.Backends.SQLite.Path)
	}
	if cfg.Backends.JSONFile.Dir != "" {
		cfg.Backends.JSONFile.Dir = ExpandPath(cfg.Backends.JSONFile.Dir)
	}

	return cfg, nil
}

// save writes the configuration to the specified path
func (c *Config) save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use the embedded sample config which includes all documentation and comments
	content := GetSampleConfig()

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OutputFormat != "text" && c.OutputFormat != "json" {
		return fmt.Errorf("invalid output_format: %q (must be 'text' or 'json')", c.OutputFormat)
	}

	validBackends := map[string]bool{"sqlite": true, "jsonfile": true}
	if !validBackends[c.DefaultBackend] {
		return fmt.Errorf("unknown default_backend: %q", c.DefaultBackend)
	}

	switch c.DefaultBackend {
	case "sqlite":
		if !c.Backends.SQLite.Enabled {
			return errors.New("default backend 'sqlite' is not enabled in backends configuration")
		}
	case "jsonfile":
		if !c.Backends.JSONFile.Enabled {
			return errors.New("default backend 'jsonfile' is not enabled in backends configuration")
		}
	}

	if c.Suggest.Limit < 0 {
		return fmt.Errorf("suggest.limit cannot be negative: %d", c.Suggest.Limit)
	}

	return nil
}

// ApplyFlags applies CLI flag overrides to the configuration
func (c *Config) ApplyFlags(noPrompt bool, outputFormat string) {
	if noPrompt {
		c.NoPrompt = true
	}
	if outputFormat != "" {
		c.OutputFormat = outputFormat
	}
}

// GetDatabasePath returns the path to the SQLite database
func (c *Config) GetDatabasePath() string {
	return c.Backends.SQLite.Path
}

// GetJSONFileDir returns the directory used by the JSON file backend
func (c *Config) GetJSONFileDir() string {
	return c.Backends.JSONFile.Dir
}

// GetShareEndpoint returns the configured share endpoint, or empty.
func (c *Config) GetShareEndpoint() string {
	return c.Share.Endpoint
}

// GetShareAccount returns the credentials account for the share endpoint.
// Returns "default" if not configured.
func (c *Config) GetShareAccount() string {
	if c.Share.Account == "" {
		return "default"
	}
	return c.Share.Account
}

// GetSuggestLimit returns the maximum number of suggestions.
// Returns 6 (default) if not configured.
func (c *Config) GetSuggestLimit() int {
	if c.Suggest.Limit <= 0 {
		return 6
	}
	return c.Suggest.Limit
}

// LoadFromPath loads configuration from a specific path without creating defaults
func LoadFromPath(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config path is required")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // File doesn't exist, return nil config
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file: %w", err)
	}

	return cfg, nil
}

// getXDGDir returns a directory path following XDG spec.
// envVar is the XDG environment variable (e.g., "XDG_CONFIG_HOME").
// fallbackPath is the relative path from home (e.g., ".config").
func getXDGDir(envVar, fallbackPath string) string {
	if xdgDir := os.Getenv(envVar); xdgDir != "" {
		return filepath.Join(xdgDir, "shoplist")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", fallbackPath, "shoplist")
	}
	return filepath.Join(home, fallbackPath, "shoplist")
}

// GetConfigDir returns the configuration directory following XDG spec
func GetConfigDir() string {
	return getXDGDir("XDG_CONFIG_HOME", ".config")
}

// GetDataDir returns the data directory following XDG spec
func GetDataDir() string {
	return getXDGDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	path = os.ExpandEnv(path)

	return path
}
