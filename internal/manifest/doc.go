// Package manifest serializes gallery entries to the data.json artifact
// consumed by the gallery page's client-side renderer.
package manifest
