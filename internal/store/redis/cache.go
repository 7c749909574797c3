package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/domon/internal/gateway"
)

// DefaultCheckTTL is how long a health-check report is reused
const DefaultCheckTTL = 5 * time.Minute

// CheckCache stores health-check reports so repeated checks of the same
// domain don't hit the backend.
type CheckCache struct {
	store *Store
	ttl   time.Duration
}

// NewCheckCache creates a cache on top of s
func NewCheckCache(s *Store, ttl time.Duration) *CheckCache {
	if ttl <= 0 {
		ttl = DefaultCheckTTL
	}
	return &CheckCache{store: s, ttl: ttl}
}

// Put caches report under its domain
func (c *CheckCache) Put(ctx context.Context, report gateway.CheckReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal check report: %w", err)
	}
	if err := c.store.client.Set(ctx, CheckKey(report.Domain), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache check report: %w", err)
	}
	return nil
}

// Get returns a cached report. ok is false on a cache miss.
func (c *CheckCache) Get(ctx context.Context, name string) (gateway.CheckReport, bool, error) {
	data, err := c.store.client.Get(ctx, CheckKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return gateway.CheckReport{}, false, nil
		}
		return gateway.CheckReport{}, false, fmt.Errorf("failed to get cached check: %w", err)
	}

	var report gateway.CheckReport
	if err := json.Unmarshal(data, &report); err != nil {
		return gateway.CheckReport{}, false, fmt.Errorf("failed to unmarshal check report: %w", err)
	}
	if f, ok := report.StatusCode.(float64); ok {
		report.StatusCode = int(f)
	}
	return report, true, nil
}

// Invalidate drops the cached report of name
func (c *CheckCache) Invalidate(ctx context.Context, name string) error {
	if err := c.store.client.Del(ctx, CheckKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate check: %w", err)
	}
	return nil
}

// Flush removes every cached report
func (c *CheckCache) Flush(ctx context.Context) error {
	iter := c.store.client.Scan(ctx, 0, KeyPrefixCheck+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.store.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete check key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush checks: %w", err)
	}
	return nil
}
