package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/gateway"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, ttl), mr
}

func ptr(f float64) *float64 { return &f }

func sampleRecords() []domain.Record {
	return []domain.Record{
		{Domain: "example.com", Status: domain.StatusUp, SSLExpiration: "2025-12-01", SSLIssuer: "Let's Encrypt", Uptime: ptr(99.98), Tags: []string{"prod"}},
		{Domain: "lab.local", Status: domain.StatusDown, SSLExpiration: "N/A", SSLIssuer: "N/A"},
		{Domain: "api.domainmonitor.io", Status: domain.StatusUp, SSLExpiration: "2025-09-20", DNSRecords: []string{"203.0.113.10"}},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	savedAt := time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveSnapshot(ctx, sampleRecords(), savedAt))

	got, when, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
	assert.True(t, when.Equal(savedAt))
}

func TestSnapshotOverwriteKeepsNewOrder(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, sampleRecords(), time.Now()))
	next := []domain.Record{
		{Domain: "new.com", Status: domain.StatusUp},
		{Domain: "example.com", Status: domain.StatusDown},
	}
	require.NoError(t, s.SaveSnapshot(ctx, next, time.Now()))

	got, _, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new.com", got[0].Domain)
	assert.Equal(t, domain.StatusDown, got[1].Status)
}

func TestLoadSnapshotEmpty(t *testing.T) {
	s, _ := newTestStore(t, time.Hour)
	_, _, err := s.LoadSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshotExpires(t *testing.T) {
	s, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, sampleRecords(), time.Now()))
	mr.FastForward(2 * time.Minute)

	_, _, err := s.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestDeleteDomain(t *testing.T) {
	s, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, sampleRecords(), time.Now()))
	require.NoError(t, s.DeleteDomain(ctx, "lab.local"))

	assert.False(t, mr.Exists(DomainKey("lab.local")))
	got, _, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "api.domainmonitor.io", got[1].Domain)
}

func TestPruneDomains(t *testing.T) {
	s, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, sampleRecords(), time.Now()))
	require.NoError(t, s.SaveSnapshot(ctx, sampleRecords()[:1], time.Now()))

	// keys of the two dropped domains survive the overwrite
	assert.True(t, mr.Exists(DomainKey("lab.local")))

	n, err := s.PruneDomains(ctx, []string{"example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, mr.Exists(DomainKey("lab.local")))
	assert.False(t, mr.Exists(DomainKey("api.domainmonitor.io")))
	assert.True(t, mr.Exists(DomainKey("example.com")))
}

func TestExtractDomain(t *testing.T) {
	got, err := ExtractDomain(DomainKey("example.com"))
	require.NoError(t, err)
	assert.Equal(t, "example.com", got)

	_, err = ExtractDomain(KeyPrefixDomain)
	assert.Error(t, err)
	_, err = ExtractDomain("other:example.com")
	assert.Error(t, err)
}

func TestCheckCache(t *testing.T) {
	s, mr := newTestStore(t, time.Hour)
	c := NewCheckCache(s, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	report := gateway.CheckReport{Domain: "example.com", StatusCode: 200, CertificateStatus: "valid", Healthy: true}
	require.NoError(t, c.Put(ctx, report))

	got, ok, err := c.Get(ctx, "example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, report, got)

	na := gateway.CheckReport{Domain: "lab.com", StatusCode: "N/A", Error: "timeout"}
	require.NoError(t, c.Put(ctx, na))
	got, _, err = c.Get(ctx, "lab.com")
	require.NoError(t, err)
	assert.Equal(t, "N/A", got.StatusCode)

	require.NoError(t, c.Invalidate(ctx, "lab.com"))
	_, ok, _ = c.Get(ctx, "lab.com")
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok, _ = c.Get(ctx, "example.com")
	assert.False(t, ok)
}

func TestCheckCacheFlush(t *testing.T) {
	s, mr := newTestStore(t, time.Hour)
	c := NewCheckCache(s, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, sampleRecords(), time.Now()))
	require.NoError(t, c.Put(ctx, gateway.CheckReport{Domain: "a.com"}))
	require.NoError(t, c.Put(ctx, gateway.CheckReport{Domain: "b.com"}))

	require.NoError(t, c.Flush(ctx))
	assert.False(t, mr.Exists(CheckKey("a.com")))
	assert.False(t, mr.Exists(CheckKey("b.com")))
	assert.True(t, mr.Exists(DomainKey("example.com")), "flush only touches check keys")
}
