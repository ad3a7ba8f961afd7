package main

import (
	"testing"
)

func resetFlags() {
	flagRoot = ""
	flagAscending = false
	flagRecursive = false
	flagNoThumbs = false
	flagOpen = false
	flagPort = ""
	flagQuiet = false
}

func TestLoadConfigPositionalRoot(t *testing.T) {
	resetFlags()
	root := t.TempDir()

	cfg, err := loadConfig([]string{root})
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Root != root {
		t.Errorf("Expected root %s, got %s", root, cfg.Root)
	}
	if !cfg.SortDescending {
		t.Error("Expected descending sort by default")
	}
	if !cfg.OnlyImmediateChildren {
		t.Error("Expected immediate-children scan by default")
	}
}

func TestLoadConfigRootFlag(t *testing.T) {
	resetFlags()
	root := t.TempDir()
	flagRoot = root

	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Root != root {
		t.Errorf("Expected root %s, got %s", root, cfg.Root)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	resetFlags()
	root := t.TempDir()
	flagAscending = true
	flagRecursive = true
	flagNoThumbs = true
	flagOpen = true
	flagPort = "9999"

	cfg, err := loadConfig([]string{root})
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.SortDescending {
		t.Error("Expected --ascending to disable descending sort")
	}
	if cfg.OnlyImmediateChildren {
		t.Error("Expected --recursive to enable nested scanning")
	}
	if cfg.ThumbnailsEnabled {
		t.Error("Expected --no-thumbnails to disable thumbnails")
	}
	if !cfg.AutoOpen {
		t.Error("Expected --open to enable auto-open")
	}
	if cfg.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", cfg.Port)
	}
}

func TestLoadConfigMissingRoot(t *testing.T) {
	resetFlags()
	flagRoot = "/nonexistent/gallery/root"

	if _, err := loadConfig(nil); err == nil {
		t.Error("Expected missing root to fail")
	}
}

func TestCommandWiring(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"build", "serve", "version"} {
		if !names[want] {
			t.Errorf("Expected %s subcommand to be registered", want)
		}
	}
}
