// Package thumbs generates downscaled JPEG thumbnails for gallery covers.
//
// Thumbnails land in the _thumbs directory under the root (the underscore
// keeps it out of the gallery scan) and are indexed in the SQLite cache so
// unchanged covers are never re-encoded. Generation is entirely optional and
// best-effort; when it fails or is disabled, cards render the full cover
// image instead.
//
// Supported cover formats: everything disintegration/imaging decodes, plus
// webp via golang.org/x/image.
package thumbs
