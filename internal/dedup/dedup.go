// Package dedup remembers which listing URLs were already reported so
// repeat runs only notify about new matches. Backed by Redis when
// configured; otherwise every listing counts as fresh.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix  = "listing-scout:seen:"
	defaultTTL = 30 * 24 * time.Hour
)

type Store struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewStore accepts a nil client; the store then reports everything as fresh.
func NewStore(client *redis.Client, logger *zap.SugaredLogger) *Store {
	return &Store{client: client, ttl: defaultTTL, logger: logger}
}

// MarkSeen records the URL and reports whether it was fresh. The first call
// for a URL returns true, later calls false until the TTL lapses. Redis
// errors are logged and treated as fresh so a cache outage never hides a
// match.
func (s *Store) MarkSeen(ctx context.Context, url string) bool {
	if s.client == nil {
		return true
	}

	fresh, err := s.client.SetNX(ctx, keyPrefix+url, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		s.logger.Warnw("dedup_mark_seen_failed", "url", url, "err", err)
		return true
	}
	return fresh
}

// Forget drops a URL from the seen set, so the next run reports it again.
func (s *Store) Forget(ctx context.Context, url string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+url).Err(); err != nil {
		return fmt.Errorf("dedup forget %q: %w", url, err)
	}
	return nil
}
