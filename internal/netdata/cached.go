package netdata

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unlock-blocks/solmine/internal/model"
)

// snapshotKey is where the latest snapshot lives in Redis.
const snapshotKey = "solmine:snapshot:latest"

// CachedSource wraps a primary Source with a Redis read-through cache.
// A cache hit returns the stored snapshot unchanged; a miss fetches from
// the primary and stores the result with the configured TTL. Upstream
// rate limits stay respected across repeated runs.
type CachedSource struct {
	primary Source
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedSource creates a cached wrapper around a primary source.
func NewCachedSource(primary Source, rdb *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// Fetch checks the cache first, then falls back to the primary source.
// Cache errors degrade to a primary fetch rather than failing the refresh.
func (s *CachedSource) Fetch(ctx context.Context) (*model.NetworkSnapshot, error) {
	data, err := s.rdb.Get(ctx, snapshotKey).Bytes()
	if err == nil {
		var snap model.NetworkSnapshot
		if json.Unmarshal(data, &snap) == nil {
			slog.Debug("snapshot cache hit", "id", snap.ID, "fetched_at", snap.FetchedAt)
			return &snap, nil
		}
	} else if err != redis.Nil {
		slog.Warn("snapshot cache read failed", "err", err)
	}

	snap, err := s.primary.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := s.rdb.Set(ctx, snapshotKey, data, s.ttl).Err(); err != nil {
			slog.Warn("snapshot cache write failed", "err", err)
		}
	}
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Fetch hits upstream.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.rdb.Del(ctx, snapshotKey).Err()
}
