// Package gallery implements deterministic folder discovery and ranking for
// the gallery builder.
//
// An Entry is produced for a folder exactly when all three hold:
//   - it is a candidate directory under the root (direct child by default)
//   - its name starts with no excluded prefix
//   - it contains a cover image: a file whose stem case-insensitively equals
//     the configured basename and whose extension is in the allowed set
//
// Entries are ordered by a key derived from an optional YYYYMMDD prefix in
// the folder name, newest first by default, with undated folders always last.
// Entries are recomputed from scratch on every run; nothing is persisted and
// the collection pass performs no writes.
package gallery
