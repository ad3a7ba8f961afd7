package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gallery-builder/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Default values for the gallery scan. These mirror the behavior users rely
// on when the tool is run with no configuration at all: scan the working
// directory's immediate children for a "title" image, newest album first.
const (
	DefaultImageBasename = "title"
	DefaultOutputJSON    = "data.json"
	DefaultOutputHTML    = "index.html"
	DefaultPageTitle     = "Gallery"
	DefaultSiteHeader    = "\U0001F4F8 Gallery"
	DefaultSiteSubtitle  = "Click a thumbnail to open the album"
	DefaultPort          = "8080"
	DefaultThumbnailSize = 480
)

// DefaultImageExtensions is the cover image extension priority order. The
// order matters: when a folder carries several title images, the earliest
// listed extension wins.
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// DefaultExcludePrefixes lists folder name prefixes that never become gallery
// entries (version control, asset folders, generated output).
var DefaultExcludePrefixes = []string{".", "_"}

// Config holds all gallery builder configuration.
type Config struct {
	// Root is the directory being indexed; origin for all relative paths.
	Root string

	// Scan settings
	ImageBasename         string
	ImageExtensions       []string
	ExcludePrefixes       []string
	OnlyImmediateChildren bool
	SortDescending        bool

	// Output artifacts
	OutputJSON     string
	OutputHTML     string
	CreateNoJekyll bool
	AutoOpen       bool

	// Page template values
	PageTitle    string
	SiteHeader   string
	SiteSubtitle string

	// Thumbnail generation
	CacheDir          string
	ThumbnailsEnabled bool
	ThumbnailSize     int

	// Preview server
	Port           string
	MetricsEnabled bool
	WatchDebounce  time.Duration

	// Derived paths
	ThumbnailDir string
	CacheDBPath  string
}

// Default returns the built-in configuration rooted at dir. It performs no
// filesystem checks; use Load for the full startup path.
func Default(dir string) *Config {
	return &Config{
		Root:                  dir,
		ImageBasename:         DefaultImageBasename,
		ImageExtensions:       append([]string(nil), DefaultImageExtensions...),
		ExcludePrefixes:       append([]string(nil), DefaultExcludePrefixes...),
		OnlyImmediateChildren: true,
		SortDescending:        true,
		OutputJSON:            DefaultOutputJSON,
		OutputHTML:            DefaultOutputHTML,
		CreateNoJekyll:        true,
		AutoOpen:              false,
		PageTitle:             DefaultPageTitle,
		SiteHeader:            DefaultSiteHeader,
		SiteSubtitle:          DefaultSiteSubtitle,
		ThumbnailSize:         DefaultThumbnailSize,
		Port:                  DefaultPort,
		MetricsEnabled:        true,
		WatchDebounce:         500 * time.Millisecond,
	}
}

// Load builds the configuration from defaults and environment overrides,
// resolves the root directory, and probes the cache directory to decide
// whether thumbnail generation is available.
func Load() (*Config, error) {
	root := getEnv("GALLERY_ROOT", "")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		root = wd
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory path: %w", err)
	}

	cfg := Default(root)
	cfg.ImageBasename = strings.ToLower(getEnv("IMAGE_BASENAME", cfg.ImageBasename))
	cfg.ImageExtensions = getEnvList("IMAGE_EXTENSIONS", cfg.ImageExtensions)
	cfg.ExcludePrefixes = getEnvList("EXCLUDE_PREFIXES", cfg.ExcludePrefixes)
	cfg.OnlyImmediateChildren = getEnvBool("ONLY_IMMEDIATE_CHILDREN", cfg.OnlyImmediateChildren)
	cfg.SortDescending = getEnvBool("SORT_DESC", cfg.SortDescending)
	cfg.OutputJSON = getEnv("OUTPUT_JSON", cfg.OutputJSON)
	cfg.OutputHTML = getEnv("OUTPUT_HTML", cfg.OutputHTML)
	cfg.CreateNoJekyll = getEnvBool("CREATE_NOJEKYLL", cfg.CreateNoJekyll)
	cfg.AutoOpen = getEnvBool("AUTO_OPEN", cfg.AutoOpen)
	cfg.PageTitle = getEnv("PAGE_TITLE", cfg.PageTitle)
	cfg.SiteHeader = getEnv("SITE_HEADER", cfg.SiteHeader)
	cfg.SiteSubtitle = getEnv("SITE_SUB", cfg.SiteSubtitle)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.ThumbnailSize = getEnvInt("THUMBNAIL_SIZE", cfg.ThumbnailSize)

	cacheDir := getEnv("CACHE_DIR", filepath.Join(root, ".gallery-cache"))
	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}
	cfg.CacheDir = cacheDir
	cfg.ThumbnailDir = filepath.Join(root, "_thumbs")
	cfg.CacheDBPath = filepath.Join(cacheDir, "thumbs.db")

	logging.Info("Configuration:")
	logging.Info("  GALLERY_ROOT:    %s", cfg.Root)
	logging.Info("  IMAGE_BASENAME:  %s", cfg.ImageBasename)
	logging.Info("  EXTENSIONS:      %s", strings.Join(cfg.ImageExtensions, " "))
	logging.Info("  SORT_DESC:       %v", cfg.SortDescending)
	logging.Info("  OUTPUT:          %s, %s", cfg.OutputJSON, cfg.OutputHTML)
	logging.Info("  LOG_LEVEL:       %s", logging.GetLevel())

	if err := checkRoot(cfg.Root); err != nil {
		return nil, err
	}

	if err := testWriteAccess(cfg.Root); err != nil {
		return nil, fmt.Errorf("root directory is not writable (required for output artifacts): %w", err)
	}

	wantThumbs := getEnvBool("THUMBNAILS_ENABLED", false)
	if wantThumbs {
		cfg.ThumbnailsEnabled = setupOptionalDir(cfg.CacheDir, "cache") &&
			setupOptionalDir(cfg.ThumbnailDir, "thumbnail")
	}
	logging.Info("  Thumbnails:      %s", enabledString(cfg.ThumbnailsEnabled))

	return cfg, nil
}

// checkRoot verifies the root exists and is a directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot access root directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path %s is not a directory", root)
	}
	return nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("Failed to create %s directory: %v", name, err)
		logging.Warn("%s support will be disabled", name)
		return false
	}

	if err := testWriteAccess(path); err != nil {
		logging.Warn("%s directory is not writable: %v", name, err)
		logging.Warn("%s support will be disabled", name)
		return false
	}

	logging.Debug("[OK] %s directory ready", name)
	return true
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Write access was confirmed regardless
	}
	return nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvList parses a comma-separated environment variable. Entries are
// trimmed and lowercased; empty entries are dropped.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// BuildInfo returns a human-readable version string.
func BuildInfo() string {
	return fmt.Sprintf("gallery-builder %s (commit %s, built %s)", Version, Commit, BuildTime)
}

// PageFilePath returns the absolute path of the generated index page.
func (c *Config) PageFilePath() string {
	return filepath.Join(c.Root, c.OutputHTML)
}
