package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gallery-builder/internal/build"
	"gallery-builder/internal/config"
)

func writeCover(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	// Content does not matter here, the scanner only checks names.
	if err := os.WriteFile(filepath.Join(dir, "title.jpg"), []byte("jpg"), 0o644); err != nil {
		t.Fatalf("Failed to write cover: %v", err)
	}
}

func newTestServer(t *testing.T) (*Server, *build.Builder, string) {
	t.Helper()
	root := t.TempDir()
	writeCover(t, filepath.Join(root, "20250101_first"))

	cfg := config.Default(root)
	cfg.ThumbnailsEnabled = false
	cfg.MetricsEnabled = false

	builder, err := build.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create builder: %v", err)
	}
	t.Cleanup(func() { builder.Close() })

	return New(cfg, builder), builder, root
}

func TestReadinessBeforeAndAfterBuild(t *testing.T) {
	srv, builder, _ := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before first build, got %d", rec.Code)
	}

	if _, err := builder.Run(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 after build, got %d", rec.Code)
	}
}

func TestHealthCheckReportsBuildState(t *testing.T) {
	srv, builder, _ := newTestServer(t)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var health HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if health.Status != statusStarting {
		t.Errorf("Expected status %q before build, got %q", statusStarting, health.Status)
	}
	if health.Ready {
		t.Error("Expected not ready before build")
	}

	if _, err := builder.Run(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if health.Status != statusHealthy {
		t.Errorf("Expected status %q after build, got %q", statusHealthy, health.Status)
	}
	if health.Entries != 1 {
		t.Errorf("Expected 1 entry, got %d", health.Entries)
	}
}

func TestHealthCheckDegradedAfterFailedBuild(t *testing.T) {
	srv, builder, root := newTestServer(t)

	if _, err := builder.Run(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("Failed to remove root: %v", err)
	}
	if _, err := builder.Run(context.Background()); err == nil {
		t.Fatal("Expected build against removed root to fail")
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var health HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if health.Status != statusDegraded {
		t.Errorf("Expected status %q, got %q", statusDegraded, health.Status)
	}
	if health.LastError == "" {
		t.Error("Expected lastError to be set")
	}
}

func TestLivenessAlwaysOK(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestVersionEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var info map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode version response: %v", err)
	}
	if _, ok := info["version"]; !ok {
		t.Error("Expected version field in response")
	}
}

func TestStaticFilesServedFromRoot(t *testing.T) {
	srv, builder, _ := newTestServer(t)

	if _, err := builder.Run(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data.json", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for manifest, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/20250101_first/title.jpg", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for cover image, got %d", rec.Code)
	}
}

func TestMetricsEndpointGatedByConfig(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code == http.StatusOK {
		body := rec.Body.String()
		if len(body) > 0 && body[0] == '#' {
			t.Error("Expected metrics endpoint to be disabled")
		}
	}

	srv.cfg.MetricsEnabled = true
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from metrics endpoint, got %d", rec.Code)
	}
}

func TestWatcherIgnoresGeneratedArtifacts(t *testing.T) {
	srv, builder, root := newTestServer(t)

	w, err := newWatcher(srv.cfg, builder)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.close()

	generated := []string{
		filepath.Join(root, "data.json"),
		filepath.Join(root, "index.html"),
		filepath.Join(root, ".nojekyll"),
		filepath.Join(root, "_thumbs", "abc.jpg"),
	}
	for _, path := range generated {
		if !w.generated(path) {
			t.Errorf("Expected %s to be treated as a build artifact", path)
		}
	}

	source := []string{
		filepath.Join(root, "20250101_first", "title.jpg"),
		filepath.Join(root, "20250202_second"),
	}
	for _, path := range source {
		if w.generated(path) {
			t.Errorf("Expected %s to trigger rebuilds", path)
		}
	}
}

func TestWatcherExcludedDirs(t *testing.T) {
	srv, builder, _ := newTestServer(t)

	w, err := newWatcher(srv.cfg, builder)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer w.close()

	if !w.excluded("_drafts") || !w.excluded(".git") {
		t.Error("Expected underscore and dot prefixes to be excluded")
	}
	if w.excluded("20250101_trip") {
		t.Error("Expected album folders not to be excluded")
	}
}
