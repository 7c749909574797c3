package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/index"
	"github.com/MrSnakeDoc/domon/internal/logger"
	redisstore "github.com/MrSnakeDoc/domon/internal/store/redis"
)

func TestGarbageCollector_Collect(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	old := []domain.Record{
		{Domain: "example.com", Status: domain.StatusUp},
		{Domain: "removed.com", Status: domain.StatusDown},
		{Domain: "lab.local", Status: domain.StatusDown},
	}
	if err := store.SaveSnapshot(ctx, old, time.Now()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	mem := index.NewStore()
	mem.Replace([]domain.Record{
		{Domain: "example.com", Status: domain.StatusUp},
		{Domain: "lab.local", Status: domain.StatusDown},
	})

	gc := NewGarbageCollector(store, mem, logger.New(logger.Options{Level: "error"}), time.Hour)

	deleted, err := gc.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 record pruned, got %d", deleted)
	}
	if mr.Exists(redisstore.DomainKey("removed.com")) {
		t.Error("removed.com should have been pruned")
	}
	if !mr.Exists(redisstore.DomainKey("example.com")) {
		t.Error("example.com should still exist")
	}
}

func TestGarbageCollector_EmptyStoreSkips(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.SaveSnapshot(ctx, []domain.Record{{Domain: "example.com"}}, time.Now()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	gc := NewGarbageCollector(store, index.NewStore(), logger.NewNop(), 0)
	deleted, err := gc.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected nothing pruned, got %d", deleted)
	}
	if !mr.Exists(redisstore.DomainKey("example.com")) {
		t.Error("snapshot must survive an empty store")
	}
	if gc.interval != DefaultGCInterval {
		t.Errorf("expected default interval, got %v", gc.interval)
	}
}

func TestGarbageCollector_StopIsIdempotent(t *testing.T) {
	store, _ := newRedisStore(t)
	gc := NewGarbageCollector(store, index.NewStore(), logger.NewNop(), time.Millisecond)
	gc.Start(context.Background())
	gc.Stop()
	gc.Stop()
}
