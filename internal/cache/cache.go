package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"gallery-builder/internal/logging"
)

// Default timeout for cache operations
const defaultTimeout = 5 * time.Second

// DB is the thumbnail cache index. It records which source image each
// generated thumbnail came from, keyed by size and modification time, so an
// unchanged cover is never re-encoded. Gallery entries are never stored
// here; only thumbnail bookkeeping is.
type DB struct {
	db     *sql.DB
	dbPath string
}

// ThumbRecord describes one cached thumbnail.
type ThumbRecord struct {
	Path      string // source image path, relative to the gallery root
	Size      int64
	ModTime   time.Time
	ThumbName string // file name inside the thumbnail directory
}

// Open opens (or creates) the cache database at dbPath. The parent directory
// must already exist; config.Load validates that before thumbnails are
// enabled.
func Open(ctx context.Context, dbPath string) (*DB, error) {
	// busy_timeout guards against "database is locked" when a rebuild
	// overlaps a manual run
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cache database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	d := &DB{db: db, dbPath: dbPath}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cache database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	logging.Debug("Thumbnail cache database ready at %s", dbPath)
	return d, nil
}

func (d *DB) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS thumbnails (
		path TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		thumb_name TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_thumbnails_thumb_name ON thumbnails(thumb_name);
	`

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the cache database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Lookup returns the cached thumbnail name for a source image, if the cached
// record matches the image's current size and modification time. A stale
// record counts as a miss.
func (d *DB) Lookup(ctx context.Context, path string, size int64, modTime time.Time) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		cachedSize int64
		cachedMod  int64
		thumbName  string
	)
	err := d.db.QueryRowContext(ctx,
		"SELECT size, mod_time, thumb_name FROM thumbnails WHERE path = ?",
		path,
	).Scan(&cachedSize, &cachedMod, &thumbName)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup failed for %s: %w", path, err)
	}

	if cachedSize != size || cachedMod != modTime.Unix() {
		return "", false, nil
	}
	return thumbName, true, nil
}

// Store records a generated thumbnail, replacing any previous record for the
// same source image.
func (d *DB) Store(ctx context.Context, rec ThumbRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
	INSERT INTO thumbnails (path, size, mod_time, thumb_name)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		size = excluded.size,
		mod_time = excluded.mod_time,
		thumb_name = excluded.thumb_name,
		created_at = strftime('%s', 'now')
	`, rec.Path, rec.Size, rec.ModTime.Unix(), rec.ThumbName)
	if err != nil {
		return fmt.Errorf("cache store failed for %s: %w", rec.Path, err)
	}
	return nil
}

// Prune removes records whose source path is not in keep, returning the
// names of the orphaned thumbnail files so the caller can delete them.
func (d *DB) Prune(ctx context.Context, keep map[string]bool) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT path, thumb_name FROM thumbnails")
	if err != nil {
		return nil, fmt.Errorf("cache prune query failed: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Warn("failed to close prune rows: %v", closeErr)
		}
	}()

	var stalePaths []string
	var staleThumbs []string
	for rows.Next() {
		var path, thumbName string
		if err := rows.Scan(&path, &thumbName); err != nil {
			return nil, fmt.Errorf("cache prune scan failed: %w", err)
		}
		if !keep[path] {
			stalePaths = append(stalePaths, path)
			staleThumbs = append(staleThumbs, thumbName)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache prune iteration failed: %w", err)
	}

	if len(stalePaths) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(stalePaths)), ",")
	args := make([]interface{}, len(stalePaths))
	for i, p := range stalePaths {
		args[i] = p
	}

	if _, err := d.db.ExecContext(ctx,
		"DELETE FROM thumbnails WHERE path IN ("+placeholders+")", args...); err != nil {
		return nil, fmt.Errorf("cache prune delete failed: %w", err)
	}

	logging.Debug("Pruned %d stale thumbnail records", len(stalePaths))
	return staleThumbs, nil
}

// Count returns the number of cached thumbnail records.
func (d *DB) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM thumbnails").Scan(&n); err != nil {
		return 0, fmt.Errorf("cache count failed: %w", err)
	}
	return n, nil
}
