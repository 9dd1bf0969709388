package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"media-ingest/internal/catalog"
	"media-ingest/internal/startup"
	"media-ingest/internal/thumbnail"
	"media-ingest/internal/transcode"
)

// fakeEncoder writes a playlist stub instead of invoking ffmpeg. The
// gate holds every encode until released, so tests can guarantee the
// catalog insert lands before any worker reports completion. When fail
// is set every encode errors instead.
type fakeEncoder struct {
	fail bool
	gate chan struct{}

	mu    sync.Mutex
	calls int
}

func (e *fakeEncoder) Encode(_ context.Context, _, outputPath string, _ transcode.Params) error {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.gate != nil {
		<-e.gate
	}
	if e.fail {
		return errors.New("encode blew up")
	}
	return os.WriteFile(outputPath, []byte("#EXTM3U\n"), 0o644)
}

func (e *fakeEncoder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// fixedProber reports the same duration for every file.
type fixedProber struct {
	duration float64
}

func (p fixedProber) Duration(context.Context, string) float64 {
	return p.duration
}

type testEnv struct {
	handlers *Handlers
	store    *catalog.Store
	pool     *transcode.Pool
	config   *startup.Config
	encoder  *fakeEncoder

	releaseOnce sync.Once
}

// release unblocks gated encodes. Safe to call more than once.
func (e *testEnv) release() {
	e.releaseOnce.Do(func() { close(e.encoder.gate) })
}

// drain releases the encoder gate and waits for all queued work.
func (e *testEnv) drain() {
	e.release()
	e.pool.Close()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, &fakeEncoder{gate: make(chan struct{})})
}

func newFailingEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, &fakeEncoder{fail: true, gate: make(chan struct{})})
}

func newTestEnvWith(t *testing.T, encoder *fakeEncoder) *testEnv {
	t.Helper()

	uploadDir := t.TempDir()
	dbDir := t.TempDir()

	config := &startup.Config{
		UploadDir:          uploadDir,
		QuarantineDir:      filepath.Join(uploadDir, ".quarantine"),
		DatabaseDir:        dbDir,
		Port:               "8080",
		MetricsPort:        "9090",
		MaxUploadSize:      1 << 20,
		HLSSegmentTime:     10,
		HLSListSize:        0,
		HLSSegmentType:     "fmp4",
		TranscodeQueueSize: 8,
		DatabasePath:       filepath.Join(dbDir, "catalog.db"),
	}

	store, err := catalog.NewStore(context.Background(), config.DatabasePath)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})

	pool := transcode.NewPool(encoder, store, config.QuarantineDir, 1, config.TranscodeQueueSize)

	extractor := thumbnail.NewExtractor()
	// The fake sources here are not real video; keep the doomed ffmpeg
	// attempts short.
	extractor.Timeout = 2 * time.Second

	dispatcher := transcode.NewDispatcher(pool, extractor, fixedProber{duration: 99.5})

	return &testEnv{
		handlers: New(store, dispatcher, config),
		store:    store,
		pool:     pool,
		config:   config,
		encoder:  encoder,
	}
}

// uploadRequest builds a multipart upload request body.
type uploadRequest struct {
	vtype    string
	values   string
	files    []uploadFile
	metadata []string
}

type uploadFile struct {
	name    string
	content string
}

func (u uploadRequest) build(t *testing.T) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if u.vtype != "" {
		if err := w.WriteField("type", u.vtype); err != nil {
			t.Fatalf("WriteField(type) failed: %v", err)
		}
	}
	if u.values != "" {
		if err := w.WriteField("values", u.values); err != nil {
			t.Fatalf("WriteField(values) failed: %v", err)
		}
	}
	for _, m := range u.metadata {
		if err := w.WriteField("metadata", m); err != nil {
			t.Fatalf("WriteField(metadata) failed: %v", err)
		}
	}
	for _, f := range u.files {
		part, err := w.CreateFormFile("file", f.name)
		if err != nil {
			t.Fatalf("CreateFormFile() failed: %v", err)
		}
		if _, err := io.WriteString(part, f.content); err != nil {
			t.Fatalf("writing file part failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, "/v1/api/videos/upload", &body)
	if err != nil {
		t.Fatalf("NewRequest() failed: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response body %q: %v", body.String(), err)
	}
	return decoded
}
