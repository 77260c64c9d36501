package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestMain(m *testing.M) {
	Init("")
	os.Exit(m.Run())
}

func TestExpandDest(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"tilde with path", "~/backups", filepath.Join(home, "backups")},
		{"tilde only", "~", home},
		{"rclone s3 remote unchanged", "s3:mybucket/path", "s3:mybucket/path"},
		{"rclone b2 remote unchanged", "b2:mybucket", "b2:mybucket"},
		{"absolute path unchanged", "/tmp/backups", "/tmp/backups"},
		{"relative path becomes absolute", "backups", filepath.Join(cwd, "backups")},
		{"parent relative becomes absolute", "../backups", filepath.Join(filepath.Dir(cwd), "backups")},
	}

	if runtime.GOOS == "windows" {
		tests = append(tests, struct {
			name     string
			input    string
			expected string
		}{"drive path is local", `C:\backups`, `C:\backups`})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExpandDest(tt.input)
			if result != tt.expected {
				t.Errorf("ExpandDest(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCheckDestination(t *testing.T) {
	ctx := context.Background()

	t.Run("local directory succeeds", func(t *testing.T) {
		if err := CheckDestination(ctx, t.TempDir()); err != nil {
			t.Errorf("CheckDestination() error = %v", err)
		}
	})

	t.Run("nonexistent directory fails", func(t *testing.T) {
		if err := CheckDestination(ctx, "/nonexistent/path/that/does/not/exist"); err == nil {
			t.Error("expected failure for nonexistent directory")
		}
	})

	t.Run("unknown remote fails", func(t *testing.T) {
		if err := CheckDestination(ctx, "clumsyloader-missing-remote:bucket"); err == nil {
			t.Error("expected failure for unconfigured remote")
		}
	})
}

func TestCopyArchive(t *testing.T) {
	ctx := context.Background()
	srcDir := t.TempDir()
	destDir := t.TempDir()

	payload := bytes.Repeat([]byte{0x1f, 0x8b}, 2048)
	src := filepath.Join(srcDir, "904df120-a66d-4c61-a3a7-6c7b3b2a7d4e.tar.gz")
	if err := os.WriteFile(src, payload, 0644); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	remote, err := CopyArchive(ctx, src, destDir)
	if err != nil {
		t.Fatalf("CopyArchive() error = %v", err)
	}
	if remote.Name != filepath.Base(src) {
		t.Errorf("Name = %q, want %q", remote.Name, filepath.Base(src))
	}
	if remote.Size != int64(len(payload)) {
		t.Errorf("Size = %d, want %d", remote.Size, len(payload))
	}

	got, err := os.ReadFile(filepath.Join(destDir, filepath.Base(src)))
	if err != nil {
		t.Fatalf("reading copy: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("copied archive differs from source")
	}
}

func TestCopyArchiveMissingSource(t *testing.T) {
	_, err := CopyArchive(context.Background(), filepath.Join(t.TempDir(), "missing.tar.gz"), t.TempDir())
	if err == nil {
		t.Error("expected error for missing source file")
	}
}
