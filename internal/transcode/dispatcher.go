package transcode

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
	"media-ingest/internal/probe"
	"media-ingest/internal/thumbnail"
)

// Outcome classifies a dispatch decision.
type Outcome string

const (
	// OutcomeStarted means an encode job was queued for this output path.
	OutcomeStarted Outcome = "started"
	// OutcomeSkipped means the output artifact already exists on disk;
	// nothing was written and the existing artifact path is returned.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeInFlight means another submission holds the claim for this
	// output path: its encode is still running and will decide whether
	// the artifact ever appears. Nothing was written for this one.
	OutcomeInFlight Outcome = "in_flight"
	// OutcomeFailed means the dispatch itself failed before any encode
	// was launched.
	OutcomeFailed Outcome = "failed"
)

// Result is the resolution of one dispatch.
type Result struct {
	Outcome    Outcome
	OutputPath string
	// Duration is the probed duration in seconds of the persisted
	// source (or of the existing artifact when skipped); 0.0 when the
	// probe failed.
	Duration float64
	// Reason carries diagnostic text when Outcome is OutcomeFailed.
	Reason string
}

// Dispatcher decides whether an upload needs a transcode and launches
// it. At most one transcode is started per output path: the existence
// check and job handoff happen under a per-output-path claim (an
// in-process keyed mutex plus an on-disk lock file, so the guarantee
// holds across processes sharing the upload root).
type Dispatcher struct {
	pool   *Pool
	thumbs *thumbnail.Extractor
	prober probe.DurationProber

	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// NewDispatcher wires a dispatcher to its pool and the thumbnail/probe
// capabilities invoked on the request path before handoff.
func NewDispatcher(pool *Pool, thumbs *thumbnail.Extractor, prober probe.DurationProber) *Dispatcher {
	return &Dispatcher{
		pool:   pool,
		thumbs: thumbs,
		prober: prober,
		locks:  make(map[string]*pathLock),
	}
}

// Dispatch resolves one upload: skip if the output artifact exists,
// otherwise persist the uploaded stream, extract a best-effort
// thumbnail, probe the duration, and queue the encode. The request
// returns once the job is queued, not once encoding finishes.
//
// In the skipped path the source stream is not written and nothing is
// cleaned up: the submission is a duplicate or a resume, and
// destructive cleanup is deliberately avoided.
func (d *Dispatcher) Dispatch(ctx context.Context, uuid string, source io.Reader, sourcePath, outputPath string, params Params) Result {
	unlock := d.lockPath(outputPath)
	defer unlock()

	claim := flock.New(outputPath + ".claim")
	held, err := claim.TryLock()
	if err != nil {
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to acquire claim: %v", err)}
	}
	if !held {
		// Another submission holds the claim: an encode for this output
		// is already in flight, and the artifact does not exist yet.
		// Callers must not record this path as playable.
		logging.Info("Dispatch deferred, claim held elsewhere: %s", outputPath)
		metrics.TranscodeSkippedTotal.Inc()
		return Result{Outcome: OutcomeInFlight, OutputPath: outputPath}
	}

	if _, statErr := os.Stat(outputPath); statErr == nil {
		releaseClaim(claim)
		logging.Info("Dispatch skipped, artifact exists: %s", outputPath)
		metrics.TranscodeSkippedTotal.Inc()
		return Result{
			Outcome:    OutcomeSkipped,
			OutputPath: outputPath,
			Duration:   d.prober.Duration(ctx, outputPath),
		}
	}

	written, err := persistSource(source, sourcePath)
	if err != nil {
		releaseClaim(claim)
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("failed to persist upload: %v", err)}
	}
	metrics.UploadBytesTotal.Add(float64(written))

	// Best-effort: a missing thumbnail never aborts the upload.
	thumbPath := filepath.Join(filepath.Dir(sourcePath), "thumbnail.jpg")
	d.thumbs.Extract(ctx, sourcePath, thumbPath)

	// Probe before handoff; the worker may delete the source as soon as
	// the encode completes.
	duration := d.prober.Duration(ctx, sourcePath)

	job := Job{
		UUID:       uuid,
		SourcePath: sourcePath,
		OutputPath: outputPath,
		Params:     params,
		claim:      claim,
	}
	if !d.pool.Enqueue(job) {
		removeSource(sourcePath)
		releaseClaim(claim)
		return Result{Outcome: OutcomeFailed, Reason: "transcode queue is full"}
	}

	logging.Info("Transcode started for %s: %s -> %s", uuid, sourcePath, outputPath)
	return Result{Outcome: OutcomeStarted, OutputPath: outputPath, Duration: duration}
}

// lockPath serializes dispatches for one output path within this
// process. The returned func releases the lock.
func (d *Dispatcher) lockPath(path string) func() {
	d.mu.Lock()
	entry, ok := d.locks[path]
	if !ok {
		entry = &pathLock{}
		d.locks[path] = entry
	}
	entry.refs++
	d.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		d.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(d.locks, path)
		}
		d.mu.Unlock()
	}
}

// persistSource streams the upload to sourcePath, returning the number
// of bytes written.
func persistSource(source io.Reader, sourcePath string) (int64, error) {
	f, err := os.Create(sourcePath)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(f, source)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// A half-written source is useless; remove it so a retry
		// starts clean.
		if rmErr := os.Remove(sourcePath); rmErr != nil {
			logging.Warn("Failed to remove partial source %s: %v", sourcePath, rmErr)
		}
		return written, err
	}
	return written, nil
}
