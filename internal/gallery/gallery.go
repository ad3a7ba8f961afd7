package gallery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gallery-builder/internal/config"
	"gallery-builder/internal/fsutil"
	"gallery-builder/internal/logging"
	"gallery-builder/internal/metrics"
)

// IndexFileName is the per-album index page a card links to when present.
const IndexFileName = "_index.html"

// undatedKey is the sort date assigned to folders without a parseable
// YYYYMMDD prefix. It predates any real album, so undated folders always
// land after dated ones.
var undatedKey = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// Entry is one gallery card: a folder paired with its cover image and
// navigation target. Img and Href are root-relative, forward-slash paths.
type Entry struct {
	Name  string `json:"name"`
	Img   string `json:"img"`
	Href  string `json:"href"`
	Thumb string `json:"thumb,omitempty"`
}

// Indexer discovers gallery entries beneath a root directory.
type Indexer struct {
	cfg   *config.Config
	retry fsutil.RetryConfig
}

// New creates an Indexer for the given configuration.
func New(cfg *config.Config) *Indexer {
	return &Indexer{
		cfg:   cfg,
		retry: fsutil.DefaultRetryConfig(),
	}
}

// FindCoverImage locates the cover image inside dir. It probes the exact
// basename+extension combinations first, in extension-priority order, then
// falls back to a single case-insensitive directory scan. When the scan turns
// up several case variants, extension priority picks the winner rather than
// directory iteration order. Returns the absolute path of the match, or
// ok=false when the folder has no cover (not an error).
func (ix *Indexer) FindCoverImage(dir string) (string, bool) {
	for _, ext := range ix.cfg.ImageExtensions {
		candidate := filepath.Join(dir, ix.cfg.ImageBasename+ext)
		if info, err := fsutil.Stat(candidate, ix.retry); err == nil && !info.IsDir() {
			metrics.CoverLookupsTotal.WithLabelValues("exact").Inc()
			return candidate, true
		}
	}

	entries, err := fsutil.ReadDir(dir, ix.retry)
	if err != nil {
		logging.Warn("Cannot scan folder %s for cover image: %v", dir, err)
		metrics.CoverLookupsTotal.WithLabelValues("miss").Inc()
		return "", false
	}

	// One pass over the listing, then resolve precedence by extension order.
	byExt := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		stem := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		if stem != ix.cfg.ImageBasename {
			continue
		}
		if _, seen := byExt[ext]; !seen {
			byExt[ext] = name
		}
	}

	for _, ext := range ix.cfg.ImageExtensions {
		if name, ok := byExt[ext]; ok {
			metrics.CoverLookupsTotal.WithLabelValues("scan").Inc()
			return filepath.Join(dir, name), true
		}
	}

	metrics.CoverLookupsTotal.WithLabelValues("miss").Inc()
	return "", false
}

// LinkTarget resolves a card's navigation target: the folder's _index.html
// when it exists, otherwise the folder itself. isFolder reports which case
// applied so callers can append the trailing slash folders need for stable
// relative links.
func (ix *Indexer) LinkTarget(dir string) (path string, isFolder bool) {
	idx := filepath.Join(dir, IndexFileName)
	if info, err := fsutil.Stat(idx, ix.retry); err == nil && !info.IsDir() {
		return idx, false
	}
	return dir, true
}

// SortKey derives the ordering key for a folder name. Names beginning with a
// valid YYYYMMDD date sort by that date; anything else (including impossible
// dates like month 13) gets a fixed early date so it trails the dated albums.
// Pure function, no filesystem access.
func SortKey(name string) (time.Time, string) {
	if len(name) >= 8 && allDigits(name[:8]) {
		if date, err := time.Parse("20060102", name[:8]); err == nil {
			return date, name
		}
	}
	return undatedKey, name
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CollectEntries walks the configured root, filters excluded folders,
// discovers covers, and returns the ordered gallery entries. The result is
// fully materialized and the operation has no side effects beyond reads, so
// repeated runs over an unchanged tree return identical slices.
func (ix *Indexer) CollectEntries() ([]Entry, error) {
	candidates, err := ix.candidateDirs()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(candidates))
	for _, dir := range candidates {
		metrics.BuildFoldersScanned.Inc()

		name := filepath.Base(dir)
		if ix.excluded(name) {
			metrics.BuildFoldersSkipped.WithLabelValues("excluded_prefix").Inc()
			logging.Debug("Skipping excluded folder: %s", name)
			continue
		}

		cover, ok := ix.FindCoverImage(dir)
		if !ok {
			metrics.BuildFoldersSkipped.WithLabelValues("no_cover").Inc()
			logging.Debug("Skipping folder without cover image: %s", name)
			continue
		}

		img, err := ix.relPath(cover)
		if err != nil {
			return nil, err
		}

		target, isFolder := ix.LinkTarget(dir)
		href, err := ix.relPath(target)
		if err != nil {
			return nil, err
		}
		if isFolder && !strings.HasSuffix(href, "/") {
			href += "/"
		}

		entries = append(entries, Entry{
			Name: name,
			Img:  img,
			Href: href,
		})
	}

	ix.sortEntries(entries)
	return entries, nil
}

// candidateDirs enumerates the directories considered for gallery entries:
// the root's direct children, or every directory under the root (excluding
// the root itself) in recursive mode.
func (ix *Indexer) candidateDirs() ([]string, error) {
	if ix.cfg.OnlyImmediateChildren {
		listing, err := fsutil.ReadDir(ix.cfg.Root, ix.retry)
		if err != nil {
			return nil, fmt.Errorf("failed to read root directory %s: %w", ix.cfg.Root, err)
		}

		var dirs []string
		for _, entry := range listing {
			if entry.IsDir() {
				dirs = append(dirs, filepath.Join(ix.cfg.Root, entry.Name()))
			}
		}
		return dirs, nil
	}

	var dirs []string
	err := filepath.WalkDir(ix.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}
		if !d.IsDir() || path == ix.cfg.Root {
			return nil
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk root directory %s: %w", ix.cfg.Root, err)
	}
	return dirs, nil
}

// excluded reports whether a folder name starts with any excluded prefix.
func (ix *Indexer) excluded(name string) bool {
	for _, prefix := range ix.cfg.ExcludePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// sortEntries orders entries by their derived sort key. The sort direction
// applies to the dated albums only: undated folders always trail, and name
// ties always break ascending, so output stays deterministic either way.
func (ix *Indexer) sortEntries(entries []Entry) {
	desc := ix.cfg.SortDescending
	sort.SliceStable(entries, func(i, j int) bool {
		di, ni := SortKey(entries[i].Name)
		dj, nj := SortKey(entries[j].Name)

		iDated := !di.Equal(undatedKey)
		jDated := !dj.Equal(undatedKey)

		if iDated != jDated {
			return iDated
		}
		if iDated && !di.Equal(dj) {
			if desc {
				return di.After(dj)
			}
			return di.Before(dj)
		}
		return ni < nj
	})
}

// relPath converts an absolute path under the root into the root-relative,
// forward-slash form used in the manifest and page.
func (ix *Indexer) relPath(path string) (string, error) {
	rel, err := filepath.Rel(ix.cfg.Root, path)
	if err != nil {
		return "", fmt.Errorf("failed to relativize path %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}
