package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the restcheck project configuration.
type Config struct {
	DefaultEnvironment string                    `yaml:"defaultEnvironment,omitempty"`
	Timeout            int                       `yaml:"timeout,omitempty"` // milliseconds
	FollowRedirects    *bool                     `yaml:"followRedirects,omitempty"`
	MaxRedirects       int                       `yaml:"maxRedirects,omitempty"`
	ValidateSSL        *bool                     `yaml:"validateSSL,omitempty"`
	Proxy              string                    `yaml:"proxy,omitempty"`
	Headers            map[string]string         `yaml:"headers,omitempty"` // Default headers for all requests
	RPS                float64                   `yaml:"rps,omitempty"`     // Request pacing, 0 = unlimited
	HistoryDB          string                    `yaml:"historyDb,omitempty"`
	Bail               *bool                     `yaml:"bail,omitempty"`
	Verbose            *bool                     `yaml:"verbose,omitempty"`
	NoColor            *bool                     `yaml:"noColor,omitempty"`
	Environments       map[string]map[string]any `yaml:"environments,omitempty"`
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".restcheck.yaml",
	"restcheck.yaml",
	"restcheck.yml",
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetBail returns the bail setting, defaulting to false
func (c *Config) GetBail() bool {
	return getBool(c.Bail, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// EnvironmentVars returns the variable set for a named environment, falling
// back to the default environment when name is empty.
func (c *Config) EnvironmentVars(name string) (map[string]any, error) {
	if name == "" {
		name = c.DefaultEnvironment
	}
	if name == "" {
		return nil, nil
	}
	vars, ok := c.Environments[name]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q", name)
	}
	return vars, nil
}

func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from the specified path or searches for
// config files in the current directory.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	return DefaultConfig(), nil
}

func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return config, nil
}
