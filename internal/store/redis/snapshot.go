package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/domon/internal/domain"
)

// DefaultSnapshotTTL is used when the store is created without a TTL
const DefaultSnapshotTTL = 72 * time.Hour

// ErrNoSnapshot is returned by LoadSnapshot when nothing was saved yet
// or the saved snapshot expired.
var ErrNoSnapshot = errors.New("no domain snapshot in redis")

// Store keeps the last-known-good domain list so a restart can show data
// before the backend answers.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// SaveSnapshot replaces the stored snapshot with records in one
// MULTI/EXEC so a reader never sees a half-written order list.
func (s *Store) SaveSnapshot(ctx context.Context, records []domain.Record, savedAt time.Time) error {
	payloads := make([][]byte, len(records))
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal domain %s: %w", r.Domain, err)
		}
		payloads[i] = data
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, KeyDomainOrder)
		for i, r := range records {
			pipe.Set(ctx, DomainKey(r.Domain), payloads[i], s.ttl)
			pipe.RPush(ctx, KeyDomainOrder, r.Domain)
		}
		pipe.Expire(ctx, KeyDomainOrder, s.ttl)
		pipe.Set(ctx, KeySnapshotSavedAt, savedAt.UTC().Format(time.RFC3339), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the saved records in their saved order and the
// time they were written. Records whose key expired on their own are skipped.
func (s *Store) LoadSnapshot(ctx context.Context) ([]domain.Record, time.Time, error) {
	names, err := s.client.LRange(ctx, KeyDomainOrder, 0, -1).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read snapshot order: %w", err)
	}
	if len(names) == 0 {
		return nil, time.Time{}, ErrNoSnapshot
	}

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = DomainKey(n)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read snapshot records: %w", err)
	}

	records := make([]domain.Record, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var r domain.Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to unmarshal domain %s: %w", names[i], err)
		}
		records = append(records, r)
	}

	var savedAt time.Time
	raw, err := s.client.Get(ctx, KeySnapshotSavedAt).Result()
	switch {
	case err == nil:
		savedAt, _ = time.Parse(time.RFC3339, raw)
	case !errors.Is(err, redis.Nil):
		return nil, time.Time{}, fmt.Errorf("failed to read snapshot time: %w", err)
	}

	return records, savedAt, nil
}

// DeleteDomain removes one record from the snapshot
func (s *Store) DeleteDomain(ctx context.Context, name string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, DomainKey(name))
		pipe.LRem(ctx, KeyDomainOrder, 0, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete domain: %w", err)
	}
	return nil
}

// PruneDomains deletes record keys for domains not in keep. SaveSnapshot
// overwrites the order list but leaves keys of removed domains until their
// TTL runs out.
func (s *Store) PruneDomains(ctx context.Context, keep []string) (int, error) {
	wanted := make(map[string]struct{}, len(keep))
	for _, n := range keep {
		wanted[n] = struct{}{}
	}

	deleted := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixDomain+"*", 0).Iterator()
	for iter.Next(ctx) {
		name, err := ExtractDomain(iter.Val())
		if err != nil {
			continue
		}
		if _, ok := wanted[name]; ok {
			continue
		}
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete domain key: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan domain keys: %w", err)
	}
	return deleted, nil
}

// Ping reports whether redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
