package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gallery-builder/internal/build"
	"gallery-builder/internal/config"
	"gallery-builder/internal/logging"
	"gallery-builder/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// Server serves the gallery root over HTTP and rebuilds it on change.
type Server struct {
	cfg     *config.Config
	builder *build.Builder
	start   time.Time
}

// New creates a preview server around an existing builder.
func New(cfg *config.Config, builder *build.Builder) *Server {
	return &Server{
		cfg:     cfg,
		builder: builder,
		start:   time.Now(),
	}
}

// HealthResponse contains the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Ready        bool   `json:"ready"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	Entries      int    `json:"entries"`
	LastBuild    string `json:"lastBuild,omitempty"`
	LastError    string `json:"lastError,omitempty"`
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (s *Server) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	status := s.builder.Status()

	response := HealthResponse{
		Ready:        status.Built,
		Version:      config.Version,
		Uptime:       time.Since(s.start).Round(time.Second).String(),
		Entries:      status.Entries,
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if status.Built {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if !status.LastBuild.IsZero() {
		response.LastBuild = status.LastBuild.Format(time.RFC3339)
	}

	if status.LastError != "" {
		response.LastError = status.LastError
		response.Status = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Error("Failed to encode health response: %v", err)
	}
}

// LivenessCheck returns 200 as long as the process is serving requests.
func (s *Server) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok\n")); err != nil {
		logging.Error("Failed to write liveness response: %v", err)
	}
}

// ReadinessCheck returns 200 once the first build has completed.
func (s *Server) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if !s.builder.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		if _, err := w.Write([]byte("building\n")); err != nil {
			logging.Error("Failed to write readiness response: %v", err)
		}
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready\n")); err != nil {
		logging.Error("Failed to write readiness response: %v", err)
	}
}

// VersionResponse contains build version information.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
}

// GetVersion returns build version information.
func (s *Server) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	response := VersionResponse{
		Version:   config.Version,
		Commit:    config.Commit,
		BuildTime: config.BuildTime,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.Error("Failed to encode version response: %v", err)
	}
}

// Router builds the HTTP route table for the preview server.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", s.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", s.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", s.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", s.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", s.GetVersion).Methods("GET")

	if s.cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	// Static files: the gallery root itself, including the generated
	// index page, manifest, and thumbnails.
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.Root)))

	return r
}

// Handler returns the router wrapped in the logging and metrics middleware.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.Router()

	if s.cfg.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}
	handler = middleware.Logger(middleware.DefaultLoggingConfig())(handler)

	return handler
}

// Serve runs the HTTP server and the filesystem watcher until ctx is
// cancelled or SIGINT/SIGTERM is received.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	watcher, err := newWatcher(s.cfg, s.builder)
	if err != nil {
		return err
	}
	go watcher.run(ctx)

	go s.handleShutdown(ctx, srv, watcher)

	logging.Info("Preview server listening on :%s (root %s)", s.cfg.Port, s.cfg.Root)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleShutdown(ctx context.Context, srv *http.Server, w *watcher) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logging.Info("Received %s, shutting down", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logging.Info("Stopping watcher")
	w.close()

	logging.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}
}
