// Package thumbnail captures single-frame preview images from video
// files. Extraction is best-effort: failures are logged and absorbed,
// never surfaced to the upload pipeline.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"time"

	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	_ "image/gif"
	_ "image/png"
)

// frameOffset is where the preview frame is captured from.
const frameOffset = "00:00:05"

// Extractor captures preview frames with ffmpeg.
type Extractor struct {
	// MaxWidth/MaxHeight bound the stored thumbnail.
	MaxWidth  int
	MaxHeight int
	// Quality is the JPEG encode quality.
	Quality int
	// Timeout bounds a single extraction.
	Timeout time.Duration
}

// NewExtractor returns an Extractor with the default bounds.
func NewExtractor() *Extractor {
	return &Extractor{
		MaxWidth:  640,
		MaxHeight: 360,
		Quality:   80,
		Timeout:   30 * time.Second,
	}
}

// Extract captures one frame at a fixed offset from videoPath and
// writes it to outputPath as a JPEG. It returns true on success. All
// failures are silent (logged at debug/warn, never returned) and never
// block or reverse the surrounding upload.
func (e *Extractor) Extract(ctx context.Context, videoPath, outputPath string) bool {
	start := time.Now()
	ok := e.extract(ctx, videoPath, outputPath)

	status := "success"
	if !ok {
		status = "error"
	}
	metrics.ThumbnailExtractionsTotal.WithLabelValues(status).Inc()
	metrics.ThumbnailExtractionDuration.Observe(time.Since(start).Seconds())
	return ok
}

func (e *Extractor) extract(ctx context.Context, videoPath, outputPath string) bool {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	frame, err := captureFrame(ctx, videoPath, frameOffset)
	if err != nil {
		logging.Debug("Frame capture at %s failed for %s: %v, retrying from start", frameOffset, videoPath, err)
		// Clips shorter than the offset have no frame there; retry from
		// the first frame before giving up.
		frame, err = captureFrame(ctx, videoPath, "")
	}
	if err != nil {
		logging.Warn("Thumbnail extraction failed for %s: %v", videoPath, err)
		return false
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		logging.Warn("Failed to decode captured frame for %s: %v", videoPath, err)
		return false
	}

	thumb := imaging.Fit(img, e.MaxWidth, e.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: e.Quality}); err != nil {
		logging.Warn("Failed to encode thumbnail for %s: %v", videoPath, err)
		return false
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		logging.Warn("Failed to write thumbnail %s: %v", outputPath, err)
		return false
	}

	logging.Debug("Thumbnail written: %s", outputPath)
	return true
}

// captureFrame runs ffmpeg to grab a single frame as PNG on stdout.
// An empty offset captures the first frame.
func captureFrame(ctx context.Context, videoPath, offset string) ([]byte, error) {
	args := []string{}
	if offset != "" {
		args = append(args, "-ss", offset)
	}
	args = append(args,
		"-i", videoPath,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w - %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, errors.New("ffmpeg produced no output")
	}
	return stdout.Bytes(), nil
}
