package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_PANEL", "https://panel.example.com")
	t.Setenv("TEST_DIR", "/srv/backups")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single variable",
			input:    "panel_url: ${TEST_PANEL}",
			expected: "panel_url: https://panel.example.com",
		},
		{
			name:     "multiple variables",
			input:    "panel_url: ${TEST_PANEL}\noutput_dir: ${TEST_DIR}",
			expected: "panel_url: https://panel.example.com\noutput_dir: /srv/backups",
		},
		{
			name:     "no variables",
			input:    "output_dir: .",
			expected: "output_dir: .",
		},
		{
			name:     "undefined variable stays unchanged",
			input:    "copy_to: ${UNDEFINED_VAR}",
			expected: "copy_to: ${UNDEFINED_VAR}",
		},
		{
			name:     "variable in middle of string",
			input:    "copy_to: s3:${TEST_DIR}/archive",
			expected: "copy_to: s3:/srv/backups/archive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	valid := func() Config {
		return Config{PanelURL: DefaultPanelURL, OutputDir: dir, LogLevel: "warn"}
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{
			name:    "defaults are valid",
			modify:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "plain http allowed",
			modify:  func(c *Config) { c.PanelURL = "http://localhost:8080" },
			wantErr: "",
		},
		{
			name:    "ftp scheme rejected",
			modify:  func(c *Config) { c.PanelURL = "ftp://panel.example.com" },
			wantErr: "scheme must be http or https",
		},
		{
			name:    "missing host",
			modify:  func(c *Config) { c.PanelURL = "https://" },
			wantErr: "host is required",
		},
		{
			name:    "missing output dir",
			modify:  func(c *Config) { c.OutputDir = filepath.Join(dir, "missing") },
			wantErr: "output_dir",
		},
		{
			name:    "output dir is a file",
			modify:  func(c *Config) { c.OutputDir = file },
			wantErr: "not a directory",
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: "unknown level",
		},
		{
			name:    "rclone remote accepted",
			modify:  func(c *Config) { c.CopyTo = "s3:bucket/backups" },
			wantErr: "",
		},
		{
			name:    "absolute local path accepted",
			modify:  func(c *Config) { c.CopyTo = "/mnt/offsite" },
			wantErr: "",
		},
		{
			name:    "home relative path accepted",
			modify:  func(c *Config) { c.CopyTo = "~/offsite" },
			wantErr: "",
		},
		{
			name:    "relative copy_to accepted",
			modify:  func(c *Config) { c.CopyTo = "offsite" },
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() error = nil, want error containing %q", tt.wantErr)
				} else if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name      string
		input     Config
		wantURL   string
		wantDir   string
		wantLevel string
	}{
		{
			name:      "empty config gets defaults",
			input:     Config{},
			wantURL:   DefaultPanelURL,
			wantDir:   ".",
			wantLevel: "warn",
		},
		{
			name:      "trailing slash trimmed",
			input:     Config{PanelURL: "https://panel.example.com/"},
			wantURL:   "https://panel.example.com",
			wantDir:   ".",
			wantLevel: "warn",
		},
		{
			name:      "custom values not overwritten",
			input:     Config{PanelURL: "http://localhost", OutputDir: "/tmp", LogLevel: "debug"},
			wantURL:   "http://localhost",
			wantDir:   "/tmp",
			wantLevel: "debug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			cfg.applyDefaults()
			if cfg.PanelURL != tt.wantURL {
				t.Errorf("PanelURL = %q, want %q", cfg.PanelURL, tt.wantURL)
			}
			if cfg.OutputDir != tt.wantDir {
				t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, tt.wantDir)
			}
			if cfg.LogLevel != tt.wantLevel {
				t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, tt.wantLevel)
			}
			if cfg.UserAgent == "" {
				t.Error("UserAgent is empty, want default")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("nonexistent file returns defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault("/nonexistent/path/clumsyloader.yaml")
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v, want nil", err)
		}
		if cfg.PanelURL != DefaultPanelURL {
			t.Errorf("PanelURL = %q, want %q", cfg.PanelURL, DefaultPanelURL)
		}
		if cfg.Path() != "/nonexistent/path/clumsyloader.yaml" {
			t.Errorf("Path() = %q", cfg.Path())
		}
	})

	t.Run("valid file loads correctly", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := filepath.Join(tmpDir, "clumsyloader.yaml")
		content := "panel_url: https://panel.example.com\noutput_dir: " + tmpDir + "\ncopy_to: s3:archive\n"
		if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing test config: %v", err)
		}

		cfg, err := LoadOrDefault(cfgPath)
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v", err)
		}
		if cfg.PanelURL != "https://panel.example.com" {
			t.Errorf("PanelURL = %q", cfg.PanelURL)
		}
		if cfg.OutputDir != tmpDir {
			t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, tmpDir)
		}
		if cfg.CopyTo != "s3:archive" {
			t.Errorf("CopyTo = %q, want %q", cfg.CopyTo, "s3:archive")
		}
	})

	t.Run("env vars expanded", func(t *testing.T) {
		t.Setenv("TEST_PANEL_URL", "http://127.0.0.1:9000")

		tmpDir := t.TempDir()
		cfgPath := filepath.Join(tmpDir, "clumsyloader.yaml")
		content := "panel_url: ${TEST_PANEL_URL}\noutput_dir: " + tmpDir + "\n"
		if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing test config: %v", err)
		}

		cfg, err := LoadOrDefault(cfgPath)
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v", err)
		}
		if cfg.PanelURL != "http://127.0.0.1:9000" {
			t.Errorf("PanelURL = %q, want %q", cfg.PanelURL, "http://127.0.0.1:9000")
		}
	})

	t.Run("invalid file is an error", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfgPath := filepath.Join(tmpDir, "clumsyloader.yaml")
		if err := os.WriteFile(cfgPath, []byte("panel_url: [unclosed"), 0644); err != nil {
			t.Fatalf("writing test config: %v", err)
		}

		if _, err := LoadOrDefault(cfgPath); err == nil {
			t.Error("LoadOrDefault() error = nil, want parse error")
		}
	})
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "clumsyloader.yaml")

	cfg := &Config{
		path:      cfgPath,
		PanelURL:  "https://panel.example.com",
		OutputDir: tmpDir,
		CopyTo:    "b2:offsite",
	}
	cfg.applyDefaults()

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if !strings.Contains(string(data), "b2:offsite") {
		t.Errorf("saved content missing copy_to: %s", data)
	}

	loaded, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.PanelURL != cfg.PanelURL {
		t.Errorf("loaded PanelURL = %q, want %q", loaded.PanelURL, cfg.PanelURL)
	}
	if loaded.CopyTo != "b2:offsite" {
		t.Errorf("loaded CopyTo = %q, want %q", loaded.CopyTo, "b2:offsite")
	}
}
