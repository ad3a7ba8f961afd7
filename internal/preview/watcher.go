package preview

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gallery-builder/internal/build"
	"gallery-builder/internal/config"
	"gallery-builder/internal/logging"
	"gallery-builder/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// watcher rebuilds the gallery when the root changes on disk. Events are
// debounced so a burst of writes (copying an album in) triggers one rebuild.
type watcher struct {
	cfg     *config.Config
	builder *build.Builder
	fsw     *fsnotify.Watcher
}

func newWatcher(cfg *config.Config, builder *build.Builder) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		cfg:     cfg,
		builder: builder,
		fsw:     fsw,
	}

	if err := w.addRecursive(cfg.Root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// addRecursive watches dir and every non-excluded subdirectory under it.
// fsnotify does not recurse on its own.
func (w *watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.excluded(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *watcher) excluded(name string) bool {
	for _, prefix := range w.cfg.ExcludePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// generated reports whether path is one of the artifacts the build itself
// writes. Rebuilding on those would loop forever.
func (w *watcher) generated(path string) bool {
	rel, err := filepath.Rel(w.cfg.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	switch rel {
	case w.cfg.OutputJSON, w.cfg.OutputHTML, ".nojekyll":
		return true
	}
	return strings.HasPrefix(rel, "_thumbs/")
}

func (w *watcher) run(ctx context.Context) {
	var debounce *time.Timer
	rebuild := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.generated(event.Name) {
				continue
			}

			metrics.WatcherEventsTotal.WithLabelValues(event.Op.String()).Inc()
			logging.Debug("Watcher event: %s %s", event.Op, event.Name)

			// New directories need their own watch to pick up the
			// cover image copied in after mkdir.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.excluded(filepath.Base(event.Name)) {
						if err := w.addRecursive(event.Name); err != nil {
							logging.Warn("Failed to watch %s: %v", event.Name, err)
						}
					}
				}
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.cfg.WatchDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			metrics.WatcherErrors.Inc()
			logging.Warn("Watcher error: %v", err)

		case <-rebuild:
			metrics.WatcherRebuildsTotal.Inc()
			result, err := w.builder.Run(ctx)
			if err != nil {
				logging.Error("Rebuild failed: %v", err)
				continue
			}
			logging.Info("Rebuilt gallery: %d entries in %s", result.Entries, result.Duration.Round(time.Millisecond))
		}
	}
}

func (w *watcher) close() {
	if err := w.fsw.Close(); err != nil {
		logging.Warn("Watcher close error: %v", err)
	}
}
