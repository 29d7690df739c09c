package core

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// BatchStatus is the lifecycle state of a batch job.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchFailed
}

// canTransition allows pending → processing → completed|failed only.
func canTransition(from, to BatchStatus) bool {
	switch from {
	case BatchPending:
		return to == BatchProcessing
	case BatchProcessing:
		return to == BatchCompleted || to == BatchFailed
	default:
		return false
	}
}

// BatchProgress is a point-in-time view of a batch.
type BatchProgress struct {
	BatchID        string      `json:"batch_id"`
	Status         BatchStatus `json:"status"`
	ProcessedCount int         `json:"processed_count"`
	TotalCount     int         `json:"total_count"`
	Percentage     int         `json:"percentage"`
}

// progressPercentage is round(processed/total*100) clamped to [0, 100].
func progressPercentage(processed, total int) int {
	if total <= 0 || processed <= 0 {
		return 0
	}
	p := int(math.Round(float64(processed) / float64(total) * 100))
	return min(p, 100)
}

// BatchResult is the outcome of a batch. Errors are ordered by the
// facility's position in the selection.
type BatchResult struct {
	BatchID        string          `json:"batch_id"`
	Status         BatchStatus     `json:"status"`
	Success        bool            `json:"success"`
	TotalCount     int             `json:"total_count"`
	ProcessedCount int             `json:"processed_count"`
	Errors         []FacilityError `json:"errors"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	Secure         bool            `json:"secure"`
	CreatedAt      time.Time       `json:"created_at"`
	FinishedAt     time.Time       `json:"finished_at,omitzero"`

	ArchivePath string `json:"-"`
	SinglePath  string `json:"-"`
	SingleName  string `json:"-"`
}

// DownloadPath returns the file to serve: the single document for
// one-facility batches, the archive otherwise.
func (r BatchResult) DownloadPath() string {
	if r.SinglePath != "" {
		return r.SinglePath
	}
	return r.ArchivePath
}

// DownloadName returns the attachment filename for the download.
func (r BatchResult) DownloadName() string {
	if r.SinglePath != "" {
		return r.SingleName
	}
	if r.Secure {
		return "secure_batch_" + r.BatchID + ".zip"
	}
	return "batch_" + r.BatchID + ".zip"
}

// BatchJob tracks one batch. All mutable state is guarded by mu so pollers
// and the worker never observe torn numeric fields.
type BatchJob struct {
	ID          string
	OwnerUserID int64
	Secure      bool
	TotalCount  int
	CreatedAt   time.Time

	mu            sync.RWMutex
	status        BatchStatus
	processed     int
	errors        []FacilityError
	failureReason string
	workDir       string
	archivePath   string
	singlePath    string
	singleName    string
	finishedAt    time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func newBatchJob(id string, owner int64, total int, secure bool, now time.Time) *BatchJob {
	return &BatchJob{
		ID:          id,
		OwnerUserID: owner,
		Secure:      secure,
		TotalCount:  total,
		CreatedAt:   now,
		status:      BatchPending,
		cancel:      func() {},
		done:        make(chan struct{}),
	}
}

// Status returns the current status.
func (j *BatchJob) Status() BatchStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Done is closed when the job reaches a terminal status.
func (j *BatchJob) Done() <-chan struct{} {
	return j.done
}

func (j *BatchJob) transition(to BatchStatus) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.transitionLocked(to)
}

func (j *BatchJob) transitionLocked(to BatchStatus) error {
	if !canTransition(j.status, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, j.status, to)
	}
	j.status = to
	return nil
}

// markProcessed counts one attempted facility. The count never exceeds the
// total.
func (j *BatchJob) markProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.processed < j.TotalCount {
		j.processed++
	}
}

func (j *BatchJob) setWorkDir(dir string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.workDir = dir
}

func (j *BatchJob) complete(errs []FacilityError, archivePath, singlePath, singleName string, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(BatchCompleted); err != nil {
		return err
	}
	j.errors = errs
	j.archivePath = archivePath
	j.singlePath = singlePath
	j.singleName = singleName
	j.finishedAt = at
	return nil
}

func (j *BatchJob) fail(reason string, errs []FacilityError, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(BatchFailed); err != nil {
		return err
	}
	j.failureReason = reason
	j.errors = errs
	j.finishedAt = at
	return nil
}

// Progress returns a snapshot of the job's progress.
func (j *BatchJob) Progress() BatchProgress {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return BatchProgress{
		BatchID:        j.ID,
		Status:         j.status,
		ProcessedCount: j.processed,
		TotalCount:     j.TotalCount,
		Percentage:     progressPercentage(j.processed, j.TotalCount),
	}
}

// Result returns a snapshot of the job's outcome so far.
func (j *BatchJob) Result() BatchResult {
	j.mu.RLock()
	defer j.mu.RUnlock()

	errs := make([]FacilityError, len(j.errors))
	copy(errs, j.errors)

	return BatchResult{
		BatchID:        j.ID,
		Status:         j.status,
		Success:        j.status == BatchCompleted,
		TotalCount:     j.TotalCount,
		ProcessedCount: j.processed,
		Errors:         errs,
		FailureReason:  j.failureReason,
		Secure:         j.Secure,
		CreatedAt:      j.CreatedAt,
		FinishedAt:     j.finishedAt,
		ArchivePath:    j.archivePath,
		SinglePath:     j.singlePath,
		SingleName:     j.singleName,
	}
}

// expired reports whether a finished job is older than retention.
func (j *BatchJob) expired(now time.Time, retention time.Duration) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status.Terminal() && !j.finishedAt.IsZero() && now.Sub(j.finishedAt) > retention
}

func (j *BatchJob) dir() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.workDir
}
