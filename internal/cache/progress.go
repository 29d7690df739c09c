package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/facility-export/internal/core"
)

// DefaultProgressTTL bounds how long a mirrored progress entry lives.
const DefaultProgressTTL = 2 * time.Hour

// kv is the subset of the Redis client the mirror uses.
type kv interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// progressEnvelope is the stored value; the owner travels with the
// progress so lookups stay owner scoped.
type progressEnvelope struct {
	Owner    int64              `json:"owner"`
	Progress core.BatchProgress `json:"progress"`
}

// ProgressMirror stores batch progress in Redis. It implements
// core.ProgressMirror.
type ProgressMirror struct {
	rc     kv
	prefix string
	ttl    time.Duration
}

// NewProgressMirror creates a mirror writing keys under prefix.
func NewProgressMirror(rc kv, prefix string, ttl time.Duration) *ProgressMirror {
	if ttl <= 0 {
		ttl = DefaultProgressTTL
	}
	return &ProgressMirror{rc: rc, prefix: prefix, ttl: ttl}
}

// Key returns the Redis key for a batch.
func (m *ProgressMirror) Key(batchID string) string {
	if m.prefix == "" {
		return fmt.Sprintf("batch:%s:progress", batchID)
	}
	return fmt.Sprintf("%s:batch:%s:progress", m.prefix, batchID)
}

// Publish stores p for owner, refreshing the TTL.
func (m *ProgressMirror) Publish(ctx context.Context, owner int64, p core.BatchProgress) error {
	data, err := json.Marshal(progressEnvelope{Owner: owner, Progress: p})
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	if err := m.rc.Set(ctx, m.Key(p.BatchID), data, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set progress: %w", err)
	}
	return nil
}

// Lookup returns the mirrored progress of batchID. A missing key is
// reported with found == false and no error.
func (m *ProgressMirror) Lookup(ctx context.Context, batchID string) (core.BatchProgress, int64, bool, error) {
	raw, err := m.rc.Get(ctx, m.Key(batchID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.BatchProgress{}, 0, false, nil
		}
		return core.BatchProgress{}, 0, false, fmt.Errorf("failed to get progress: %w", err)
	}

	var env progressEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return core.BatchProgress{}, 0, false, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	return env.Progress, env.Owner, true, nil
}
