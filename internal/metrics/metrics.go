package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_ingest_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_ingest_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog store metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_db_queries_total",
			Help: "Total number of catalog store queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_ingest_db_query_duration_seconds",
			Help:    "Catalog store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_ingest_db_connections_open",
			Help: "Number of open catalog store connections",
		},
	)
)

// Upload metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_uploads_total",
			Help: "Total number of upload requests by content type and outcome",
		},
		[]string{"type", "status"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_ingest_upload_bytes_total",
			Help: "Total number of uploaded bytes persisted to disk",
		},
	)

	UploadValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_upload_validation_failures_total",
			Help: "Total number of rejected uploads by reason",
		},
		[]string{"reason"},
	)
)

// Transcode metrics
var (
	TranscodeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_transcode_jobs_total",
			Help: "Total number of transcode jobs by final status",
		},
		[]string{"status"},
	)

	TranscodeJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_ingest_transcode_job_duration_seconds",
			Help:    "Transcode job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	TranscodeJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_ingest_transcode_jobs_in_progress",
			Help: "Number of transcode jobs currently running",
		},
	)

	TranscodeQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_ingest_transcode_queue_depth",
			Help: "Number of transcode jobs waiting in the queue",
		},
	)

	TranscodeSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_ingest_transcode_skipped_total",
			Help: "Total number of dispatches resolved without launching an encode (artifact already on disk or in flight)",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_ingest_thumbnail_extractions_total",
			Help: "Total number of thumbnail extractions",
		},
		[]string{"status"},
	)

	ThumbnailExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_ingest_thumbnail_extraction_duration_seconds",
			Help:    "Thumbnail extraction duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Probe metrics
var (
	ProbeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_ingest_probe_failures_total",
			Help: "Total number of duration probes that fell back to the 0.0 sentinel",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_ingest_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
