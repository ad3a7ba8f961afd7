// Package cache provides the SQLite-backed thumbnail cache index.
//
// The cache only accelerates thumbnail generation; gallery entries are
// recomputed from the filesystem on every run and never persisted. Deleting
// the cache directory is always safe and merely forces re-encoding.
package cache
