package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build metrics
var (
	BuildRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_builder_runs_total",
			Help: "Total number of gallery build runs",
		},
	)

	BuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_builder_errors_total",
			Help: "Total number of failed gallery build runs",
		},
	)

	BuildLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_builder_last_run_timestamp",
			Help: "Timestamp of the last gallery build",
		},
	)

	BuildLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_builder_last_run_duration_seconds",
			Help: "Duration of the last gallery build in seconds",
		},
	)

	BuildEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_builder_entries",
			Help: "Number of gallery entries emitted by the last build",
		},
	)

	BuildFoldersScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_builder_folders_scanned_total",
			Help: "Total number of candidate folders examined",
		},
	)

	BuildFoldersSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_builder_folders_skipped_total",
			Help: "Total number of folders excluded from the gallery",
		},
		[]string{"reason"}, // "excluded_prefix" or "no_cover"
	)
)

// Cover lookup metrics
var (
	CoverLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_builder_cover_lookups_total",
			Help: "Total number of cover image lookups by outcome",
		},
		[]string{"outcome"}, // "exact", "scan", "miss"
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_builder_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"}, // "success" or "error"
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_builder_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_builder_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_builder_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_builder_fs_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_builder_fs_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_builder_fs_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)
)

// Watcher metrics (serve mode)
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_builder_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_builder_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	WatcherRebuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_builder_watcher_rebuilds_total",
			Help: "Total number of rebuilds triggered by filesystem changes",
		},
	)
)

// HTTP metrics (serve mode)
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_builder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_builder_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_builder_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_builder_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit string) {
	AppInfo.WithLabelValues(version, commit).Set(1)
}
