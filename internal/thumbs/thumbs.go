package thumbs

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"gallery-builder/internal/cache"
	"gallery-builder/internal/config"
	"gallery-builder/internal/gallery"
	"gallery-builder/internal/logging"
	"gallery-builder/internal/metrics"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 80

// Generator produces downscaled card thumbnails for gallery covers. It is
// strictly best-effort: any failure leaves the entry's Thumb empty and the
// page falls back to the full cover image.
type Generator struct {
	cfg *config.Config
	db  *cache.DB
}

// NewGenerator creates a thumbnail generator backed by the given cache.
func NewGenerator(cfg *config.Config, db *cache.DB) *Generator {
	return &Generator{cfg: cfg, db: db}
}

// Apply fills the Thumb field of each entry, generating or reusing cached
// thumbnails, then prunes cache records and files for covers that no longer
// exist. The entries slice is modified in place and returned.
func (g *Generator) Apply(ctx context.Context, entries []gallery.Entry) []gallery.Entry {
	keep := make(map[string]bool, len(entries))

	for i := range entries {
		keep[entries[i].Img] = true

		thumb, err := g.thumbnailFor(ctx, entries[i].Img)
		if err != nil {
			logging.Warn("Thumbnail for %s skipped: %v", entries[i].Img, err)
			continue
		}
		entries[i].Thumb = thumb
	}

	g.prune(ctx, keep)
	return entries
}

// thumbnailFor returns the root-relative path of the thumbnail for a cover
// image, generating it on cache miss.
func (g *Generator) thumbnailFor(ctx context.Context, img string) (string, error) {
	source := filepath.Join(g.cfg.Root, filepath.FromSlash(img))

	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("source not accessible: %w", err)
	}

	if name, ok, err := g.db.Lookup(ctx, img, info.Size(), info.ModTime()); err == nil && ok {
		thumbPath := filepath.Join(g.cfg.ThumbnailDir, name)
		if _, statErr := os.Stat(thumbPath); statErr == nil {
			metrics.ThumbnailCacheHits.Inc()
			logging.Debug("Thumbnail cache hit: %s", img)
			return g.relThumb(name), nil
		}
		// Record exists but the file was deleted; regenerate
	} else if err != nil {
		logging.Warn("Thumbnail cache lookup failed for %s: %v", img, err)
	}

	metrics.ThumbnailCacheMisses.Inc()

	start := time.Now()
	name, err := g.generate(source, img)
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())

	rec := cache.ThumbRecord{
		Path:      img,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		ThumbName: name,
	}
	if err := g.db.Store(ctx, rec); err != nil {
		logging.Warn("Failed to record thumbnail for %s: %v", img, err)
	}

	return g.relThumb(name), nil
}

// generate decodes the source image, downscales it, and writes the JPEG
// thumbnail. Returns the thumbnail file name.
func (g *Generator) generate(source, img string) (string, error) {
	logging.Debug("Generating thumbnail: %s", img)

	decoded, err := imaging.Open(source, imaging.AutoOrientation(true))
	if err != nil {
		// imaging.Open covers the common formats; fall back to the
		// registered stdlib/x-image decoders for the rest (webp, gif)
		decoded, err = decodeImageFile(source)
		if err != nil {
			return "", fmt.Errorf("failed to decode %s: %w", img, err)
		}
	}

	size := g.cfg.ThumbnailSize
	fitted := imaging.Fit(decoded, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fitted, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail for %s: %w", img, err)
	}

	name := fmt.Sprintf("%x.jpg", md5.Sum([]byte(img)))
	path := filepath.Join(g.cfg.ThumbnailDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write thumbnail %s: %w", path, err)
	}

	return name, nil
}

func decodeImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logging.Warn("failed to close %s: %v", path, closeErr)
		}
	}()

	decoded, format, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	logging.Debug("Decoded %s as %s", path, format)
	return decoded, nil
}

// prune drops cache records for covers that disappeared and deletes their
// thumbnail files. Failures here never affect the build.
func (g *Generator) prune(ctx context.Context, keep map[string]bool) {
	orphans, err := g.db.Prune(ctx, keep)
	if err != nil {
		logging.Warn("Thumbnail cache prune failed: %v", err)
		return
	}

	for _, name := range orphans {
		path := filepath.Join(g.cfg.ThumbnailDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("Failed to remove orphaned thumbnail %s: %v", path, err)
		}
	}

	if len(orphans) > 0 {
		logging.Info("Removed %d orphaned thumbnails", len(orphans))
	}
}

// relThumb converts a thumbnail file name into the root-relative path used
// in the manifest.
func (g *Generator) relThumb(name string) string {
	rel, err := filepath.Rel(g.cfg.Root, filepath.Join(g.cfg.ThumbnailDir, name))
	if err != nil {
		// ThumbnailDir lives under Root, so this should not happen
		return ""
	}
	return filepath.ToSlash(rel)
}
