// Package main provides the newalbum scaffolding tool.
//
// newalbum creates a dated album folder under the gallery root with an
// _index.html stub, ready to receive photos and a title image:
//
//	newalbum <name> [date]
//
// The folder is named YYYYMMDD_name; the date defaults to today. The
// gallery root is taken from GALLERY_ROOT, falling back to the working
// directory.
package main
