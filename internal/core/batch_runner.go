package core

// batch_runner.go renders one PDF per facility in the background and
// bundles them into a ZIP archive.
//
// A facility that fails to load or render is recorded in the job's error
// list and processing moves on; the batch still completes. A batch only
// fails when nothing could be produced, the work directory is unusable, or
// it is cancelled or times out. With Workers > 1 facilities render on a
// bounded errgroup pool; results are still collected by selection position
// so error order and archive contents do not depend on completion order.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mholt/archiver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/facility-export/internal/logging"
)

// ProgressMirror publishes batch progress outside the process so other
// instances can answer progress polls.
type ProgressMirror interface {
	Publish(ctx context.Context, owner int64, p BatchProgress) error
	Lookup(ctx context.Context, batchID string) (p BatchProgress, owner int64, found bool, err error)
}

// BatchRunnerOptions configures a BatchRunner.
type BatchRunnerOptions struct {
	WorkDir   string        // Parent directory for per-batch output
	Workers   int           // Facilities rendered in parallel within a batch (default: 1)
	Timeout   time.Duration // Upper bound for one batch (default: 30m)
	Retention time.Duration // How long finished batches stay downloadable (default: 1h)
	Limiter   *BatchLimiter // Bounds concurrent batches
	Mirror    ProgressMirror
	Now       func() time.Time
}

// BatchRunner owns in-memory batch jobs.
type BatchRunner struct {
	svc     *Service
	opts    BatchRunnerOptions
	limiter *BatchLimiter

	mu   sync.RWMutex
	jobs map[string]*BatchJob

	wg sync.WaitGroup
}

// NewBatchRunner creates a runner rendering through svc.
func NewBatchRunner(svc *Service, opts BatchRunnerOptions) (*BatchRunner, error) {
	if svc.renderer == nil {
		return nil, fmt.Errorf("batch runner requires a document renderer")
	}
	if opts.WorkDir == "" {
		opts.WorkDir = filepath.Join(os.TempDir(), "facility-export-batches")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Minute
	}
	if opts.Retention <= 0 {
		opts.Retention = time.Hour
	}
	if opts.Limiter == nil {
		opts.Limiter = NewBatchLimiter(DefaultMaxConcurrentBatches, DefaultBatchWaitTime)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := os.MkdirAll(opts.WorkDir, 0o750); err != nil {
		return nil, fmt.Errorf("create batch work dir: %w", err)
	}

	return &BatchRunner{
		svc:     svc,
		opts:    opts,
		limiter: opts.Limiter,
		jobs:    make(map[string]*BatchJob),
	}, nil
}

// Start accepts a batch for sel and begins processing in the background.
// Returns ErrTooManyBatches when no slot frees up in time.
func (r *BatchRunner) Start(ctx context.Context, sel ExportSelection, secure bool) (BatchProgress, error) {
	if len(sel.FacilityIDs) == 0 {
		return BatchProgress{}, ErrNoFacilities
	}
	id := uuid.NewString()
	if err := r.limiter.Acquire(ctx, id); err != nil {
		return BatchProgress{}, err
	}

	job := newBatchJob(id, sel.OwnerUserID, len(sel.FacilityIDs), secure, r.opts.Now())

	// The batch outlives the request; keep its values, drop its deadline.
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.Timeout)
	job.cancel = cancel

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	entry := newActivityEntry(ctx, ActionBatchStart, sel.OwnerUserID)
	entry.BatchID = job.ID
	entry.FacilityCount = job.TotalCount
	entry.FieldCount = len(sel.FieldKeys)
	entry.Secure = secure
	r.svc.recordActivity(ctx, entry)

	r.publish(jobCtx, job)

	r.wg.Add(1)
	go r.run(jobCtx, job, sel)

	return job.Progress(), nil
}

type facilityOutcome struct {
	path string
	name string
	err  error
}

func (r *BatchRunner) run(ctx context.Context, job *BatchJob, sel ExportSelection) {
	defer r.wg.Done()
	defer r.limiter.Release(job.ID)
	defer close(job.done)
	defer job.cancel()

	logger := logging.ForBatch(ctx, job.ID)
	start := time.Now()

	if err := job.transition(BatchProcessing); err != nil {
		logger.Error("batch could not start", "error", err)
		return
	}
	r.publish(ctx, job)
	logger.Info("batch started", "facilities", job.TotalCount, "workers", r.opts.Workers)

	dir := filepath.Join(r.opts.WorkDir, job.ID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		r.finishFailed(ctx, job, fmt.Sprintf("create work dir: %v", err), nil)
		return
	}
	job.setWorkDir(dir)

	outcomes := make([]facilityOutcome, len(sel.FacilityIDs))
	base := 0
	err := r.svc.loadGraphs(ctx, sel.FacilityIDs, func(chunk []int64, graphs map[int64]*FacilityGraph) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.opts.Workers)

		for i, id := range chunk {
			if gctx.Err() != nil {
				break
			}
			pos := base + i
			graph := graphs[id]
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				outcomes[pos] = r.renderOne(dir, id, graph, sel.FieldKeys, job.Secure)
				job.markProcessed()
				r.publish(ctx, job)
				return nil
			})
		}
		base += len(chunk)

		if err := g.Wait(); err != nil {
			return err
		}
		return ctx.Err()
	})

	var errs []FacilityError
	var docs []facilityOutcome
	for i, o := range outcomes {
		switch {
		case o.err != nil:
			errs = append(errs, FacilityError{FacilityID: sel.FacilityIDs[i], Message: o.err.Error()})
		case o.path != "":
			docs = append(docs, o)
		}
	}

	if err != nil {
		r.finishFailed(ctx, job, failureReason(err), errs)
		return
	}
	if len(docs) == 0 {
		r.finishFailed(ctx, job, ErrNoDocumentRendered.Error(), errs)
		return
	}

	var archivePath, singlePath, singleName string
	if job.TotalCount == 1 {
		singlePath, singleName = docs[0].path, docs[0].name
	} else {
		archivePath = filepath.Join(dir, "batch_"+job.ID+".zip")
		paths := make([]string, len(docs))
		for i, d := range docs {
			paths[i] = d.path
		}
		if err := archiver.Archive(paths, archivePath); err != nil {
			r.finishFailed(ctx, job, fmt.Sprintf("write archive: %v", err), errs)
			return
		}
	}

	if err := job.complete(errs, archivePath, singlePath, singleName, r.opts.Now()); err != nil {
		logger.Error("batch completion rejected", "error", err)
		return
	}
	r.publish(ctx, job)

	logger.Info("batch completed",
		"documents", len(docs),
		"errors", len(errs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "batch cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "batch timed out"
	default:
		return err.Error()
	}
}

func (r *BatchRunner) finishFailed(ctx context.Context, job *BatchJob, reason string, errs []FacilityError) {
	logger := logging.ForBatch(ctx, job.ID)
	if err := job.fail(reason, errs, r.opts.Now()); err != nil {
		logger.Error("batch failure rejected", "error", err)
		return
	}
	r.publish(ctx, job)
	logger.Warn("batch failed", "reason", reason, "errors", len(errs))
}

// renderOne writes one facility document into dir. Panics in rendering are
// contained to the facility.
func (r *BatchRunner) renderOne(dir string, id int64, g *FacilityGraph, keys []string, secure bool) (out facilityOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = facilityOutcome{err: fmt.Errorf("render panic: %v", rec)}
		}
	}()

	if g == nil {
		return facilityOutcome{err: ErrFacilityNotFound}
	}

	name := DocumentFileName(g.OfficeCode(), id, secure)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return facilityOutcome{err: fmt.Errorf("create document: %w", err)}
	}

	doc := r.svc.builder.BuildDocument(g, keys, r.opts.Now())
	if err := r.svc.renderer.Render(f, doc); err != nil {
		f.Close()
		os.Remove(path)
		return facilityOutcome{err: fmt.Errorf("render: %w", err)}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return facilityOutcome{err: fmt.Errorf("close document: %w", err)}
	}

	return facilityOutcome{path: path, name: name}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SafeFileCode strips an office code down to filename-safe characters.
func SafeFileCode(officeCode string) string {
	code := unsafeFileChars.ReplaceAllString(officeCode, "")
	if code == "" {
		return "unknown"
	}
	return code
}

// DocumentFileName names a facility document inside a batch.
func DocumentFileName(officeCode string, facilityID int64, secure bool) string {
	code := SafeFileCode(officeCode)
	prefix := "facility_report_"
	if secure {
		prefix = "secure_facility_report_"
	}
	return fmt.Sprintf("%s%s_%d.pdf", prefix, code, facilityID)
}

// publish mirrors the job's progress. Mirror failures are logged only.
func (r *BatchRunner) publish(ctx context.Context, job *BatchJob) {
	if r.opts.Mirror == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := r.opts.Mirror.Publish(pctx, job.OwnerUserID, job.Progress()); err != nil {
		logging.ForBatch(ctx, job.ID).Debug("progress mirror publish failed", "error", err)
	}
}

func (r *BatchRunner) lookup(owner int64, batchID string) (*BatchJob, bool) {
	r.mu.RLock()
	job, ok := r.jobs[batchID]
	r.mu.RUnlock()
	if !ok || job.OwnerUserID != owner {
		return nil, false
	}
	return job, true
}

// Progress returns the progress of one of owner's batches. Batches started
// by another instance are answered from the mirror when one is configured.
func (r *BatchRunner) Progress(ctx context.Context, owner int64, batchID string) (BatchProgress, error) {
	if job, ok := r.lookup(owner, batchID); ok {
		return job.Progress(), nil
	}

	if r.opts.Mirror != nil {
		p, mirrorOwner, found, err := r.opts.Mirror.Lookup(ctx, batchID)
		if err != nil {
			logging.ForBatch(ctx, batchID).Warn("progress mirror lookup failed", "error", err)
		} else if found && mirrorOwner == owner {
			return p, nil
		}
	}
	return BatchProgress{}, ErrBatchNotFound
}

// Result returns the current outcome of one of owner's batches.
func (r *BatchRunner) Result(owner int64, batchID string) (BatchResult, error) {
	job, ok := r.lookup(owner, batchID)
	if !ok {
		return BatchResult{}, ErrBatchNotFound
	}
	return job.Result(), nil
}

// Download returns the finished result to serve for one of owner's
// batches.
func (r *BatchRunner) Download(ctx context.Context, owner int64, batchID string) (BatchResult, error) {
	job, ok := r.lookup(owner, batchID)
	if !ok {
		return BatchResult{}, ErrBatchNotFound
	}

	res := job.Result()
	switch res.Status {
	case BatchCompleted:
	case BatchFailed:
		return res, fmt.Errorf("%w: %s", ErrBatchFailed, res.FailureReason)
	default:
		return res, ErrBatchNotFinished
	}

	entry := newActivityEntry(ctx, ActionBatchDownload, owner)
	entry.BatchID = batchID
	entry.FacilityCount = res.TotalCount - len(res.Errors)
	entry.Secure = res.Secure
	r.svc.recordActivity(ctx, entry)

	return res, nil
}

// Wait blocks until one of owner's batches finishes or ctx is done.
func (r *BatchRunner) Wait(ctx context.Context, owner int64, batchID string) (BatchResult, error) {
	job, ok := r.lookup(owner, batchID)
	if !ok {
		return BatchResult{}, ErrBatchNotFound
	}
	select {
	case <-job.done:
		return job.Result(), nil
	case <-ctx.Done():
		return BatchResult{}, ctx.Err()
	}
}

// Cancel asks one of owner's batches to stop. Facilities already rendering
// finish; no new ones start. Cancelling a finished batch is a no-op.
func (r *BatchRunner) Cancel(owner int64, batchID string) error {
	job, ok := r.lookup(owner, batchID)
	if !ok {
		return ErrBatchNotFound
	}
	if !job.Status().Terminal() {
		job.cancel()
	}
	return nil
}

// Remove deletes a finished batch and its files.
func (r *BatchRunner) Remove(batchID string) error {
	r.mu.Lock()
	job, ok := r.jobs[batchID]
	if !ok {
		r.mu.Unlock()
		return ErrBatchNotFound
	}
	if !job.Status().Terminal() {
		r.mu.Unlock()
		return ErrBatchNotFinished
	}
	delete(r.jobs, batchID)
	r.mu.Unlock()

	if dir := job.dir(); dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove batch files: %w", err)
		}
	}
	return nil
}

// ActiveCount returns the number of batches currently holding a slot.
func (r *BatchRunner) ActiveCount() int {
	return r.limiter.Running()
}

// Slots reports batch slot usage.
func (r *BatchRunner) Slots() BatchSlots {
	return r.limiter.Slots()
}

// WaitForDrain blocks until running batches finish or ctx is done.
func (r *BatchRunner) WaitForDrain(ctx context.Context) error {
	return r.limiter.WaitForDrain(ctx)
}
