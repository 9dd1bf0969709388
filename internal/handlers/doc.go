// Package handlers implements the HTTP API surface: media upload and
// ingestion, catalog listings and details, artifact streaming, and
// health probes.
package handlers
