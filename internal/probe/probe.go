// Package probe queries media files for format metadata via ffprobe.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"time"

	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
)

// DurationProber reports a media file's duration in seconds.
type DurationProber interface {
	Duration(ctx context.Context, path string) float64
}

// FFprobe queries format metadata by shelling out to ffprobe.
type FFprobe struct {
	// Timeout bounds a single probe invocation.
	Timeout time.Duration
}

// NewFFprobe returns an FFprobe with the default timeout.
func NewFFprobe() *FFprobe {
	return &FFprobe{Timeout: 15 * time.Second}
}

type formatInfo struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the duration of the media file at path in seconds.
// Any failure (missing file, unreadable container, ffprobe error)
// yields 0.0 and never an error, so 0.0 is ambiguous between "probe
// failed" and "not yet probed"; callers must not treat it as a valid
// playable duration.
func (p *FFprobe) Duration(ctx context.Context, path string) float64 {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Error("ffprobe failed for %s: %v - %s", path, err, stderr.String())
		metrics.ProbeFailuresTotal.Inc()
		return 0.0
	}

	var info formatInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		logging.Error("failed to decode ffprobe output for %s: %v", path, err)
		metrics.ProbeFailuresTotal.Inc()
		return 0.0
	}

	duration, err := strconv.ParseFloat(info.Format.Duration, 64)
	if err != nil {
		logging.Error("ffprobe returned no usable duration for %s: %v", path, err)
		metrics.ProbeFailuresTotal.Inc()
		return 0.0
	}

	return duration
}
