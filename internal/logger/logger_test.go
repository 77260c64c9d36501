package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clumsyloader.log")

	closer, err := Init("info", path)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Str("path", "904df120.tar.gz").Msg("download finished")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"message":"download finished"`) || !strings.Contains(got, `"path":"904df120.tar.gz"`) {
		t.Errorf("log file missing JSON entry:\n%s", got)
	}
	if strings.Contains(got, "hidden") {
		t.Errorf("debug entry written at info level:\n%s", got)
	}
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("GlobalLevel() = %v, want info", zerolog.GlobalLevel())
	}
}

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name  string
		level string
		file  string
	}{
		{"unknown level", "loud", ""},
		{"unwritable file", "warn", filepath.Join(t.TempDir(), "missing", "x.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Init(tt.level, tt.file); err == nil {
				t.Errorf("Init(%q, %q) error = nil, want error", tt.level, tt.file)
			}
		})
	}
}

func TestInitConsole(t *testing.T) {
	closer, err := Init("warn", "")
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
