package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/atbphosting/clumsyloader/internal/version"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const DefaultPanelURL = "https://panel.atbphosting.com"

type Config struct {
	path      string `yaml:"-"` // not serialized
	PanelURL  string `yaml:"panel_url"`
	OutputDir string `yaml:"output_dir,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty"`
	CopyTo    string `yaml:"copy_to,omitempty"`   // rclone destination, e.g. "s3:bucket/backups"
	LogLevel  string `yaml:"log_level,omitempty"` // zerolog level name
	LogFile   string `yaml:"log_file,omitempty"`  // empty logs to stderr
}

// Load reads and parses the config file at path. ${VAR} references are
// expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return parse(path, data)
}

// LoadOrDefault loads config from path, or returns the defaults if the file doesn't exist
func LoadOrDefault(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := &Config{path: path}
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.path = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PanelURL == "" {
		c.PanelURL = DefaultPanelURL
	}
	c.PanelURL = strings.TrimRight(c.PanelURL, "/")
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
	if c.LogLevel == "" {
		c.LogLevel = zerolog.LevelWarnValue
	}
}

// Save writes the config to its file path
func (c *Config) Save() error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(c.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.path
}

// Validate checks panel_url, output_dir and log_level. copy_to is left to
// rclone, which reports a bad remote when the copy is attempted.
func (c *Config) Validate() error {
	u, err := url.Parse(c.PanelURL)
	if err != nil {
		return fmt.Errorf("panel_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("panel_url %q: scheme must be http or https", c.PanelURL)
	}
	if u.Host == "" {
		return fmt.Errorf("panel_url %q: host is required", c.PanelURL)
	}

	if info, err := os.Stat(c.OutputDir); err != nil {
		return fmt.Errorf("output_dir %q: %w", c.OutputDir, err)
	} else if !info.IsDir() {
		return fmt.Errorf("output_dir %q: not a directory", c.OutputDir)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: unknown level", c.LogLevel)
	}

	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}
