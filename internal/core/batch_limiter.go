package core

// batch_limiter.go caps the number of batch PDF jobs rendering at once.
//
// A batch takes a slot under its own id when it is accepted and gives it
// back when its archive is written or it fails. Holding slots by id makes
// Release safe to call from every exit path of a batch.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrTooManyBatches is returned when no batch slot frees up within the
// limiter's wait time.
var ErrTooManyBatches = errors.New("too many batches running, please try again later")

// DefaultMaxConcurrentBatches is the default number of batch slots.
const DefaultMaxConcurrentBatches = 3

// DefaultBatchWaitTime is how long Start waits for a slot before rejecting.
const DefaultBatchWaitTime = 10 * time.Second

// BatchLimiter hands out a fixed number of slots to batches by id.
type BatchLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu      sync.Mutex
	running map[string]time.Time // batch id -> slot taken at
	idle    chan struct{}        // closed while no batch holds a slot
}

// NewBatchLimiter creates a limiter with maxConcurrent slots. Zero values
// select the defaults.
func NewBatchLimiter(maxConcurrent int, maxWait time.Duration) *BatchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentBatches
	}
	if maxWait <= 0 {
		maxWait = DefaultBatchWaitTime
	}

	idle := make(chan struct{})
	close(idle)
	return &BatchLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		running: make(map[string]time.Time),
		idle:    idle,
	}
}

// Acquire takes a slot for batchID, waiting up to the limiter's wait time.
// A batch that already holds a slot keeps it. The wait ends early with
// ctx's error when ctx is done.
func (l *BatchLimiter) Acquire(ctx context.Context, batchID string) error {
	l.mu.Lock()
	_, held := l.running[batchID]
	l.mu.Unlock()
	if held {
		return nil
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: all %d slots busy for %s", ErrTooManyBatches, cap(l.slots), l.maxWait)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.running[batchID]; held {
		<-l.slots
		return nil
	}
	if len(l.running) == 0 {
		l.idle = make(chan struct{})
	}
	l.running[batchID] = time.Now()
	return nil
}

// Release gives back batchID's slot. Releasing a batch that holds no slot
// is a no-op.
func (l *BatchLimiter) Release(batchID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.running[batchID]; !held {
		return
	}
	delete(l.running, batchID)
	<-l.slots
	if len(l.running) == 0 {
		close(l.idle)
	}
}

// Running returns how many batches hold a slot.
func (l *BatchLimiter) Running() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.running)
}

// WaitForDrain blocks until no batch holds a slot or ctx is done.
func (l *BatchLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BatchSlots is a snapshot of slot usage, reported by the health check.
type BatchSlots struct {
	Running  int       `json:"running"`
	Free     int       `json:"free"`
	Capacity int       `json:"capacity"`
	Oldest   time.Time `json:"oldest_started_at,omitzero"`
}

// Slots returns the current slot usage.
func (l *BatchLimiter) Slots() BatchSlots {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := BatchSlots{
		Running:  len(l.running),
		Free:     cap(l.slots) - len(l.running),
		Capacity: cap(l.slots),
	}
	for _, at := range l.running {
		if s.Oldest.IsZero() || at.Before(s.Oldest) {
			s.Oldest = at
		}
	}
	return s
}
