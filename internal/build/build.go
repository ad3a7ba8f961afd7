package build

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"gallery-builder/internal/cache"
	"gallery-builder/internal/config"
	"gallery-builder/internal/gallery"
	"gallery-builder/internal/logging"
	"gallery-builder/internal/manifest"
	"gallery-builder/internal/metrics"
	"gallery-builder/internal/site"
	"gallery-builder/internal/thumbs"
)

// Builder runs gallery builds: collect entries, optionally thumbnail them,
// and write the manifest, page, and hosting marker. A Builder is safe for
// use from the serve-mode watcher; concurrent runs are serialized.
type Builder struct {
	cfg *config.Config
	ix  *gallery.Indexer

	runMu sync.Mutex

	stateMu   sync.RWMutex
	lastBuild time.Time
	lastCount int
	lastErr   error
	built     bool

	cacheDB *cache.DB
	gen     *thumbs.Generator
}

// Result summarizes one completed build.
type Result struct {
	Entries  int
	Duration time.Duration
}

// New creates a Builder. When thumbnails are enabled the cache database is
// opened here; call Close when done.
func New(ctx context.Context, cfg *config.Config) (*Builder, error) {
	b := &Builder{
		cfg: cfg,
		ix:  gallery.New(cfg),
	}

	if cfg.ThumbnailsEnabled {
		db, err := cache.Open(ctx, cfg.CacheDBPath)
		if err != nil {
			// Thumbnails are optional; a broken cache downgrades the
			// build instead of failing it
			logging.Warn("Thumbnail cache unavailable, disabling thumbnails: %v", err)
		} else {
			b.cacheDB = db
			b.gen = thumbs.NewGenerator(cfg, db)
		}
	}

	return b, nil
}

// Close releases the thumbnail cache, if open.
func (b *Builder) Close() error {
	if b.cacheDB != nil {
		return b.cacheDB.Close()
	}
	return nil
}

// Run performs one full build. The scan is a single synchronous pass; the
// only side effects are the output artifacts under the root.
func (b *Builder) Run(ctx context.Context) (Result, error) {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	metrics.BuildRunsTotal.Inc()

	result, err := b.run(ctx)

	b.stateMu.Lock()
	b.lastBuild = time.Now()
	b.lastCount = result.Entries
	b.lastErr = err
	b.built = err == nil || b.built
	b.stateMu.Unlock()

	if err != nil {
		metrics.BuildErrors.Inc()
		return result, err
	}

	metrics.BuildLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.BuildLastRunDuration.Set(result.Duration.Seconds())
	metrics.BuildEntries.Set(float64(result.Entries))

	logging.Info("Build complete: %d entries in %v", result.Entries, result.Duration)
	return result, nil
}

func (b *Builder) run(ctx context.Context) (Result, error) {
	start := time.Now()

	entries, err := b.ix.CollectEntries()
	if err != nil {
		return Result{}, fmt.Errorf("entry collection failed: %w", err)
	}

	if b.gen != nil {
		entries = b.gen.Apply(ctx, entries)
	}

	manifestPath := filepath.Join(b.cfg.Root, b.cfg.OutputJSON)
	if err := manifest.Write(manifestPath, entries); err != nil {
		return Result{}, err
	}

	if err := site.WritePage(b.cfg); err != nil {
		return Result{}, err
	}

	if b.cfg.CreateNoJekyll {
		if err := site.EnsureNoJekyll(b.cfg.Root); err != nil {
			return Result{}, err
		}
	}

	return Result{
		Entries:  len(entries),
		Duration: time.Since(start),
	}, nil
}

// Status reports the last build outcome for the preview server's health
// endpoints.
type Status struct {
	Built     bool      `json:"built"`
	LastBuild time.Time `json:"lastBuild,omitempty"`
	Entries   int       `json:"entries"`
	LastError string    `json:"lastError,omitempty"`
}

// Status returns the current build status.
func (b *Builder) Status() Status {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()

	s := Status{
		Built:     b.built,
		LastBuild: b.lastBuild,
		Entries:   b.lastCount,
	}
	if b.lastErr != nil {
		s.LastError = b.lastErr.Error()
	}
	return s
}

// Ready reports whether at least one build has succeeded.
func (b *Builder) Ready() bool {
	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	return b.built
}
