// Package preview serves the generated gallery over HTTP for local review.
// It wires a gorilla/mux router over the gallery root, watches the root for
// filesystem changes via fsnotify, and rebuilds the manifest and index page
// when the contents change. Health and readiness endpoints and an optional
// Prometheus metrics endpoint are exposed alongside the static files.
package preview
