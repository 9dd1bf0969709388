package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"media-ingest/internal/catalog"
	"media-ingest/internal/logging"
	"media-ingest/internal/metrics"
)

// StatusWriter is the slice of the catalog writer the pool needs:
// idempotent status updates keyed by content uuid. Implementations
// report a missing document as catalog.ErrNotFound and an
// already-terminal one as matched=false with a nil error.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, uuid string, status catalog.Status) (bool, error)
}

// Job is one queued encode, bound to the content document it belongs
// to. The claim is held from dispatch until the job completes.
type Job struct {
	UUID       string
	SourcePath string
	OutputPath string
	Params     Params

	claim *flock.Flock
}

// Pool runs encodes on a bounded set of workers consuming a job queue.
// Jobs outlive the upload request that enqueued them; the request
// returns once the job is queued, and completion is observable only
// through the content's status field.
type Pool struct {
	encoder       Encoder
	writer        StatusWriter
	quarantineDir string

	jobs chan Job
	g    *errgroup.Group
}

// NewPool creates a pool with the given number of workers and queue
// capacity. quarantineDir receives source files whose encode failed;
// if empty, failed sources are deleted instead.
func NewPool(encoder Encoder, writer StatusWriter, quarantineDir string, workerCount, queueSize int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < workerCount {
		queueSize = workerCount
	}

	p := &Pool{
		encoder:       encoder,
		writer:        writer,
		quarantineDir: quarantineDir,
		jobs:          make(chan Job, queueSize),
		g:             &errgroup.Group{},
	}

	for i := 0; i < workerCount; i++ {
		p.g.Go(p.work)
	}

	logging.Info("Transcode pool started: %d workers, queue capacity %d", workerCount, queueSize)
	return p
}

// Enqueue adds a job to the queue without blocking. It returns false
// when the queue is full; the caller owns cleanup in that case.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.jobs <- job:
		metrics.TranscodeQueueDepth.Set(float64(len(p.jobs)))
		return true
	default:
		return false
	}
}

// Close stops accepting jobs and waits for queued work to drain.
// Running encodes are never cancelled; they run to completion or
// failure autonomously.
func (p *Pool) Close() {
	close(p.jobs)
	if err := p.g.Wait(); err != nil {
		logging.Warn("Transcode pool shut down with error: %v", err)
	}
}

func (p *Pool) work() error {
	for job := range p.jobs {
		metrics.TranscodeQueueDepth.Set(float64(len(p.jobs)))
		p.run(job)
	}
	return nil
}

// run executes one encode and performs the lifecycle bookkeeping:
// status to ready on success, to failed on error, source cleanup
// either way, claim released last. No retries are attempted.
func (p *Pool) run(job Job) {
	metrics.TranscodeJobsInProgress.Inc()
	start := time.Now()

	// Jobs are deliberately detached from any request context.
	err := p.encoder.Encode(context.Background(), job.SourcePath, job.OutputPath, job.Params)

	duration := time.Since(start)
	metrics.TranscodeJobsInProgress.Dec()
	metrics.TranscodeJobDuration.Observe(duration.Seconds())

	if err != nil {
		metrics.TranscodeJobsTotal.WithLabelValues("failed").Inc()
		logging.Error("Encode failed for %s (%s): %v", job.UUID, job.SourcePath, err)
		p.finishFailed(job)
	} else {
		metrics.TranscodeJobsTotal.WithLabelValues("success").Inc()
		logging.Info("Encode finished for %s in %v: %s", job.UUID, duration.Round(time.Millisecond), job.OutputPath)
		p.finishReady(job)
	}

	releaseClaim(job.claim)
}

func (p *Pool) finishReady(job Job) {
	// The converted artifact replaces the source.
	removeSource(job.SourcePath)
	p.updateStatus(job.UUID, catalog.StatusReady)
}

func (p *Pool) finishFailed(job Job) {
	// A failed encode must not destroy the only copy of the upload;
	// the source moves to quarantine for a later re-run or inspection.
	if p.quarantineDir == "" {
		removeSource(job.SourcePath)
	} else if err := p.quarantine(job.SourcePath); err != nil {
		logging.Error("Failed to quarantine %s: %v", job.SourcePath, err)
		removeSource(job.SourcePath)
	}
	p.updateStatus(job.UUID, catalog.StatusFailed)
}

func (p *Pool) quarantine(sourcePath string) error {
	if _, err := os.Stat(sourcePath); err != nil {
		return nil // already gone
	}
	if err := os.MkdirAll(p.quarantineDir, 0o755); err != nil {
		return err
	}

	dest := filepath.Join(p.quarantineDir, filepath.Base(sourcePath))
	if _, err := os.Stat(dest); err == nil {
		dest = filepath.Join(p.quarantineDir,
			fmt.Sprintf("%d-%s", time.Now().Unix(), filepath.Base(sourcePath)))
	}

	if err := os.Rename(sourcePath, dest); err != nil {
		return err
	}
	logging.Warn("Quarantined failed upload source: %s", dest)
	return nil
}

func (p *Pool) updateStatus(uuid string, status catalog.Status) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	matched, err := p.writer.UpdateStatus(ctx, uuid, status)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		// The document may not have been persisted yet; the insert
		// happens on the request path after dispatch.
		logging.Warn("No content found with uuid %s to update status to %s", uuid, status)
	case err != nil:
		logging.Error("Failed to update status for %s: %v", uuid, err)
	case !matched:
		logging.Info("Content %s already terminal, status %s not applied", uuid, status)
	default:
		logging.Info("Content %s status set to %s", uuid, status)
	}
}

func removeSource(sourcePath string) {
	if _, err := os.Stat(sourcePath); err != nil {
		return
	}
	if err := os.Remove(sourcePath); err != nil {
		logging.Warn("Failed to remove source file %s: %v", sourcePath, err)
		return
	}
	logging.Debug("Removed source file: %s", sourcePath)
}

func releaseClaim(claim *flock.Flock) {
	if claim == nil {
		return
	}
	if err := claim.Unlock(); err != nil {
		logging.Warn("Failed to release claim %s: %v", claim.Path(), err)
	}
	if err := os.Remove(claim.Path()); err != nil && !os.IsNotExist(err) {
		logging.Debug("Failed to remove claim file %s: %v", claim.Path(), err)
	}
}
