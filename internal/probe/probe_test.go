package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDurationNeverErrors(t *testing.T) {
	p := NewFFprobe()

	// A path that does not exist must yield the 0.0 sentinel, not a
	// panic or error.
	if got := p.Duration(context.Background(), "/nonexistent/video.mp4"); got != 0.0 {
		t.Errorf("Duration(missing file) = %v, expected 0.0", got)
	}
}

func TestDurationOnGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.mp4")
	if err := os.WriteFile(path, []byte("this is not a video"), 0o644); err != nil {
		t.Fatalf("failed to write garbage file: %v", err)
	}

	p := &FFprobe{Timeout: 5 * time.Second}
	if got := p.Duration(context.Background(), path); got != 0.0 {
		t.Errorf("Duration(garbage file) = %v, expected 0.0", got)
	}
}

func TestDurationZeroTimeoutFallsBack(t *testing.T) {
	// A zero Timeout must not produce an already-expired context.
	p := &FFprobe{}
	if got := p.Duration(context.Background(), "/nonexistent/video.mp4"); got != 0.0 {
		t.Errorf("Duration() = %v, expected 0.0", got)
	}
}
