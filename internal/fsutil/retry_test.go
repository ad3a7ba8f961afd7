package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", config.MaxBackoff)
	}
}

func TestIsStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"ESTALE error", syscall.ESTALE, true},
		{"wrapped ESTALE", fmt.Errorf("stat: %w", syscall.ESTALE), true},
		{"ENOENT error", syscall.ENOENT, false},
		{"generic error", os.ErrNotExist, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isStaleError(tt.err); got != tt.want {
				t.Errorf("isStaleError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithRetryReturnsNonStaleImmediately(t *testing.T) {
	attempts := 0
	sentinel := errors.New("disk on fire")

	err := withRetry("stat", "/some/path", DefaultRetryConfig(), func() error {
		attempts++
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Errorf("Expected sentinel error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for non-stale error, got %d", attempts)
	}
}

func TestWithRetryRecoversFromStaleError(t *testing.T) {
	attempts := 0
	config := RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}

	err := withRetry("readdir", "/some/path", config, func() error {
		attempts++
		if attempts < 3 {
			return syscall.ESTALE
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected retry to succeed, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetryGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	config := RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}

	err := withRetry("stat", "/some/path", config, func() error {
		attempts++
		return syscall.ESTALE
	})

	if !errors.Is(err, syscall.ESTALE) {
		t.Errorf("Expected ESTALE after exhausted retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected initial attempt plus 2 retries, got %d", attempts)
	}
}

func TestStatAndReadDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "title.jpg")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	info, err := Stat(file, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Name() != "title.jpg" {
		t.Errorf("Unexpected file name %s", info.Name())
	}

	entries, err := ReadDir(dir, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(entries))
	}

	if _, err := Stat(filepath.Join(dir, "missing"), DefaultRetryConfig()); err == nil {
		t.Error("Expected stat of missing file to fail")
	}
}
