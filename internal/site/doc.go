// Package site renders the static gallery page and hosting markers.
//
// The page is plain templating over configuration values; the gallery itself
// is rendered client-side from the manifest, so rebuilding entries never
// requires touching the page.
package site
