package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"media-ingest/internal/logging"
)

// Encoder is the external encode capability: source file in, segmented
// playlist artifact out. Failure is a single error with diagnostic
// text; there is no partial-progress reporting.
type Encoder interface {
	Encode(ctx context.Context, sourcePath, outputPath string, params Params) error
}

// FFmpegEncoder invokes ffmpeg to produce the playlist artifact.
type FFmpegEncoder struct{}

// Encode runs ffmpeg with the fixed parameter set. It blocks until the
// encode finishes or the context is cancelled.
func (FFmpegEncoder) Encode(ctx context.Context, sourcePath, outputPath string, params Params) error {
	args := params.args(sourcePath, outputPath)
	logging.Debug("Starting encode: ffmpeg %v", args)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("encode failed: %w - %s", err, stderr.String())
	}
	return nil
}
