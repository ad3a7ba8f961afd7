// Package build orchestrates a full gallery build: entry collection,
// optional thumbnail generation, and emission of the manifest, page, and
// .nojekyll marker.
//
// Each run is a fresh single pass with no persisted entry state; running the
// builder twice over an unchanged tree produces byte-identical artifacts.
package build
