// Package metrics provides Prometheus instrumentation for the ingest
// service. All metrics are prefixed with "media_ingest_" to avoid naming
// collisions with other applications.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Catalog Store Metrics
//
// Monitor catalog query performance:
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBConnectionsOpen: Gauge of open database connections
//
// ## Upload Metrics
//
// Track ingestion volume and rejections:
//   - UploadsTotal: Counter of upload requests by content type and outcome
//   - UploadBytesTotal: Counter of bytes persisted to the upload root
//   - UploadValidationFailures: Counter of rejected uploads by reason
//
// ## Transcode Metrics
//
// Monitor the encode pipeline:
//   - TranscodeJobsTotal: Counter of finished jobs by status
//   - TranscodeJobDuration: Histogram of job duration
//   - TranscodeJobsInProgress: Gauge of running jobs
//   - TranscodeQueueDepth: Gauge of queued jobs
//   - TranscodeSkippedTotal: Counter of dispatches resolved without a
//     new encode (artifact already on disk or one already in flight)
//
// ## Thumbnail and Probe Metrics
//
//   - ThumbnailExtractionsTotal / ThumbnailExtractionDuration
//   - ProbeFailuresTotal: probes that fell back to the 0.0 sentinel
//
// # Usage
//
// Metrics are registered with the default Prometheus registry via promauto.
// To expose them, mount promhttp.Handler() on the metrics listener:
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// Example PromQL for the encode error rate:
//
//	rate(media_ingest_transcode_jobs_total{status="failed"}[5m]) /
//	rate(media_ingest_transcode_jobs_total[5m])
package metrics
