package core

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mirrorEntry struct {
	owner    int64
	progress BatchProgress
}

type fakeMirror struct {
	mu      sync.Mutex
	latest  map[string]mirrorEntry
	history []BatchProgress
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{latest: make(map[string]mirrorEntry)}
}

func (m *fakeMirror) Publish(ctx context.Context, owner int64, p BatchProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[p.BatchID] = mirrorEntry{owner: owner, progress: p}
	m.history = append(m.history, p)
	return nil
}

func (m *fakeMirror) Lookup(ctx context.Context, batchID string) (BatchProgress, int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.latest[batchID]
	return e.progress, e.owner, ok, nil
}

func newTestRunner(t *testing.T, fx *serviceFixture, opts BatchRunnerOptions) *BatchRunner {
	t.Helper()
	if opts.WorkDir == "" {
		opts.WorkDir = t.TempDir()
	}
	if opts.Limiter == nil {
		opts.Limiter = NewBatchLimiter(2, time.Second)
	}
	r, err := NewBatchRunner(fx.svc, opts)
	if err != nil {
		t.Fatalf("NewBatchRunner() error = %v", err)
	}
	return r
}

func waitBatch(t *testing.T, r *BatchRunner, owner int64, id string) BatchResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := r.Wait(ctx, owner, id)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	return res
}

func zipEntries(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestProgressPercentage(t *testing.T) {
	tests := []struct {
		processed, total, want int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{5, 3, 100},
		{-1, 3, 0},
	}
	for _, tt := range tests {
		if got := progressPercentage(tt.processed, tt.total); got != tt.want {
			t.Errorf("progressPercentage(%d, %d) = %d, want %d", tt.processed, tt.total, got, tt.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to BatchStatus
		want     bool
	}{
		{BatchPending, BatchProcessing, true},
		{BatchPending, BatchCompleted, false},
		{BatchProcessing, BatchCompleted, true},
		{BatchProcessing, BatchFailed, true},
		{BatchProcessing, BatchPending, false},
		{BatchCompleted, BatchFailed, false},
		{BatchFailed, BatchProcessing, false},
	}
	for _, tt := range tests {
		if got := canTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("canTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBatchJob_ProcessedNeverExceedsTotal(t *testing.T) {
	job := newBatchJob("b1", 1, 2, false, time.Now())
	for range 5 {
		job.markProcessed()
	}
	p := job.Progress()
	if p.ProcessedCount != 2 || p.Percentage != 100 {
		t.Errorf("Progress() = %+v, want processed 2 at 100%%", p)
	}
	if err := job.complete(nil, "", "", "", time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("complete from pending error = %v, want ErrInvalidTransition", err)
	}
}

func TestDocumentFileName(t *testing.T) {
	tests := []struct {
		code   string
		id     int64
		secure bool
		want   string
	}{
		{"1370001234", 5, false, "facility_report_1370001234_5.pdf"},
		{"1370001234", 5, true, "secure_facility_report_1370001234_5.pdf"},
		{"../13/70", 9, false, "facility_report_1370_9.pdf"},
		{"", 2, false, "facility_report_unknown_2.pdf"},
	}
	for _, tt := range tests {
		if got := DocumentFileName(tt.code, tt.id, tt.secure); got != tt.want {
			t.Errorf("DocumentFileName(%q, %d, %v) = %q, want %q", tt.code, tt.id, tt.secure, got, tt.want)
		}
	}
}

func TestBatch_PartialFailureCompletes(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{ChunkSize: 2},
		facilityGraph(1, "A"), facilityGraph(2, "B"), facilityGraph(3, "C"), facilityGraph(4, "D"))
	fx.renderer.failFor = map[int64]bool{3: true}
	fx.renderer.panicFor = map[int64]bool{4: true}
	r := newTestRunner(t, fx, BatchRunnerOptions{Workers: 3})

	sel, err := fx.svc.NewSelection(1, []int64{4, 1, 99, 3, 2}, []string{"facility_name"})
	if err != nil {
		t.Fatalf("NewSelection() error = %v", err)
	}
	started, err := r.Start(context.Background(), sel, false)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if started.TotalCount != 5 {
		t.Errorf("TotalCount = %d, want 5", started.TotalCount)
	}

	res := waitBatch(t, r, 1, started.BatchID)

	if res.Status != BatchCompleted || !res.Success {
		t.Fatalf("Status = %s, reason %q", res.Status, res.FailureReason)
	}
	if res.ProcessedCount != 5 {
		t.Errorf("ProcessedCount = %d, want 5", res.ProcessedCount)
	}
	var failedIDs []int64
	for _, e := range res.Errors {
		failedIDs = append(failedIDs, e.FacilityID)
	}
	if !reflect.DeepEqual(failedIDs, []int64{4, 99, 3}) {
		t.Errorf("error facility ids = %v, want selection order [4 99 3]", failedIDs)
	}

	want := []string{"facility_report_1370000001_1.pdf", "facility_report_1370000002_2.pdf"}
	if got := zipEntries(t, res.ArchivePath); !reflect.DeepEqual(got, want) {
		t.Errorf("archive entries = %v, want %v", got, want)
	}
	if res.DownloadPath() != res.ArchivePath || res.DownloadName() != "batch_"+res.BatchID+".zip" {
		t.Errorf("download = %s as %s", res.DownloadPath(), res.DownloadName())
	}
}

func TestBatch_SingleFacilityServesDocument(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{}, facilityGraph(7, "Solo"))
	r := newTestRunner(t, fx, BatchRunnerOptions{})

	sel, _ := fx.svc.NewSelection(1, []int64{7}, []string{"facility_name"})
	started, err := r.Start(context.Background(), sel, true)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitBatch(t, r, 1, started.BatchID)

	res, err := r.Download(context.Background(), 1, started.BatchID)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if res.ArchivePath != "" {
		t.Errorf("ArchivePath = %q, want none for single facility", res.ArchivePath)
	}
	if res.DownloadName() != "secure_facility_report_1370000007_7.pdf" {
		t.Errorf("DownloadName() = %q", res.DownloadName())
	}
	if _, err := os.Stat(res.DownloadPath()); err != nil {
		t.Errorf("document missing: %v", err)
	}

	want := []ActivityAction{ActionBatchStart, ActionBatchDownload}
	if got := fx.activity.actions(); !reflect.DeepEqual(got, want) {
		t.Errorf("activity = %v, want %v", got, want)
	}
}

func TestBatch_NothingRenderedFails(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{}, facilityGraph(1, "A"), facilityGraph(2, "B"))
	fx.renderer.failFor = map[int64]bool{1: true}
	fx.renderer.panicFor = map[int64]bool{2: true}
	r := newTestRunner(t, fx, BatchRunnerOptions{Workers: 2})

	sel, _ := fx.svc.NewSelection(1, []int64{1, 2}, []string{"facility_name"})
	started, err := r.Start(context.Background(), sel, false)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	res := waitBatch(t, r, 1, started.BatchID)

	if res.Status != BatchFailed || res.Success {
		t.Fatalf("Status = %s, want failed", res.Status)
	}
	if res.FailureReason != ErrNoDocumentRendered.Error() {
		t.Errorf("FailureReason = %q", res.FailureReason)
	}
	if len(res.Errors) != 2 {
		t.Errorf("Errors = %v, want 2", res.Errors)
	}
	if _, err := r.Download(context.Background(), 1, started.BatchID); !errors.Is(err, ErrBatchFailed) {
		t.Errorf("Download() error = %v, want ErrBatchFailed", err)
	}
}

func TestBatch_CancelAndBusyLimiter(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{},
		facilityGraph(1, "A"), facilityGraph(2, "B"), facilityGraph(3, "C"))
	gate := make(chan struct{})
	fx.renderer.gate = gate
	r := newTestRunner(t, fx, BatchRunnerOptions{Limiter: NewBatchLimiter(1, 20*time.Millisecond)})
	ctx := context.Background()

	sel, _ := fx.svc.NewSelection(1, []int64{1, 2, 3}, []string{"facility_name"})
	started, err := r.Start(ctx, sel, false)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := r.Start(ctx, sel, false); !errors.Is(err, ErrTooManyBatches) {
		t.Errorf("second Start() error = %v, want ErrTooManyBatches", err)
	}
	if _, err := r.Download(ctx, 1, started.BatchID); !errors.Is(err, ErrBatchNotFinished) {
		t.Errorf("Download() while running error = %v, want ErrBatchNotFinished", err)
	}
	if err := r.Remove(started.BatchID); !errors.Is(err, ErrBatchNotFinished) {
		t.Errorf("Remove() while running error = %v, want ErrBatchNotFinished", err)
	}
	if err := r.Cancel(2, started.BatchID); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("Cancel() by other owner error = %v, want ErrBatchNotFound", err)
	}

	if err := r.Cancel(1, started.BatchID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	close(gate)

	res := waitBatch(t, r, 1, started.BatchID)
	if res.Status != BatchFailed || res.FailureReason != "batch cancelled" {
		t.Errorf("result = %s %q, want failed batch cancelled", res.Status, res.FailureReason)
	}
	if res.ProcessedCount > res.TotalCount {
		t.Errorf("ProcessedCount %d exceeds total %d", res.ProcessedCount, res.TotalCount)
	}

	drainCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := r.WaitForDrain(drainCtx); err != nil {
		t.Fatalf("WaitForDrain() error = %v", err)
	}
	if err := r.Cancel(1, started.BatchID); err != nil {
		t.Errorf("Cancel() after finish error = %v, want no-op", err)
	}
}

func TestBatch_OwnerScopingAndMirror(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{},
		facilityGraph(1, "A"), facilityGraph(2, "B"), facilityGraph(3, "C"))
	mirror := newFakeMirror()
	r := newTestRunner(t, fx, BatchRunnerOptions{Workers: 1, Mirror: mirror})
	ctx := context.Background()

	sel, _ := fx.svc.NewSelection(1, []int64{1, 2, 3}, []string{"facility_name"})
	started, err := r.Start(ctx, sel, false)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitBatch(t, r, 1, started.BatchID)

	if _, err := r.Progress(ctx, 2, started.BatchID); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("Progress() by other owner error = %v, want ErrBatchNotFound", err)
	}
	if _, err := r.Result(2, started.BatchID); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("Result() by other owner error = %v, want ErrBatchNotFound", err)
	}

	mirror.mu.Lock()
	history := append([]BatchProgress(nil), mirror.history...)
	mirror.mu.Unlock()
	last := -1
	for _, p := range history {
		if p.ProcessedCount < last {
			t.Fatalf("processed count went backwards: %v", history)
		}
		last = p.ProcessedCount
	}
	if final := history[len(history)-1]; final.Status != BatchCompleted || final.Percentage != 100 {
		t.Errorf("final mirrored progress = %+v", final)
	}

	// A batch started elsewhere is answered from the mirror.
	remote := BatchProgress{BatchID: "remote-1", Status: BatchProcessing, ProcessedCount: 1, TotalCount: 4, Percentage: 25}
	_ = mirror.Publish(ctx, 1, remote)
	got, err := r.Progress(ctx, 1, "remote-1")
	if err != nil || got != remote {
		t.Errorf("Progress(remote) = %+v, %v", got, err)
	}
	if _, err := r.Progress(ctx, 9, "remote-1"); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("Progress(remote) by other owner error = %v", err)
	}
}

func TestBatch_JanitorPurgesExpired(t *testing.T) {
	fx := newServiceFixture(t, ServiceOptions{}, facilityGraph(1, "A"), facilityGraph(2, "B"))
	clock := &fakeClock{now: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
	r := newTestRunner(t, fx, BatchRunnerOptions{Retention: time.Hour, Now: clock.Now})
	ctx := context.Background()

	sel, _ := fx.svc.NewSelection(1, []int64{1, 2}, []string{"facility_name"})
	started, err := r.Start(ctx, sel, false)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	res := waitBatch(t, r, 1, started.BatchID)

	if n := r.purgeExpired(ctx); n != 0 {
		t.Errorf("purged %d before retention", n)
	}

	clock.Advance(2 * time.Hour)
	if n := r.purgeExpired(ctx); n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
	if _, err := os.Stat(res.ArchivePath); !os.IsNotExist(err) {
		t.Errorf("archive still present: %v", err)
	}
	if _, err := r.Result(1, started.BatchID); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("Result() after purge error = %v, want ErrBatchNotFound", err)
	}
}
