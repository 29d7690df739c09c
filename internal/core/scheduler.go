package core

// scheduler.go runs background maintenance for batch jobs.
//
// The janitor removes finished batches, and their files on disk, once they
// are older than the configured retention. It is long-running and stops
// when its context is cancelled. Individual removal failures are logged and
// retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultJanitorInterval is how often expired batches are purged.
const DefaultJanitorInterval = 5 * time.Minute

// StartJanitor purges expired batches every interval until ctx is done.
// It runs once immediately.
func (r *BatchRunner) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	slog.Info("batch janitor started",
		"interval", interval.String(),
		"retention", r.opts.Retention.String(),
	)

	r.purgeExpired(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("batch janitor stopped")
			return
		case <-ticker.C:
			r.purgeExpired(ctx)
		}
	}
}

// purgeExpired removes every finished batch past retention and returns how
// many were removed.
func (r *BatchRunner) purgeExpired(ctx context.Context) int {
	now := r.opts.Now()

	r.mu.RLock()
	var expired []string
	for id, job := range r.jobs {
		if job.expired(now, r.opts.Retention) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range expired {
		if err := r.Remove(id); err != nil {
			slog.ErrorContext(ctx, "batch purge failed", "batch_id", id, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("purged expired batches", "removed", removed)
	}
	return removed
}
