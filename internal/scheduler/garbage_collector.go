package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/logger"
)

// DefaultGCInterval is how often stale snapshot keys are pruned
const DefaultGCInterval = time.Hour

// Pruner deletes snapshot records of domains no longer monitored
type Pruner interface {
	PruneDomains(ctx context.Context, keep []string) (int, error)
}

// Lister returns the current store contents
type Lister interface {
	All() []domain.Record
}

// GarbageCollector removes snapshot records of domains that left the
// store, so a restart never restores a domain the backend dropped.
type GarbageCollector struct {
	pruner   Pruner
	store    Lister
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(pruner Pruner, store Lister, log logger.Logger, interval time.Duration) *GarbageCollector {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	return &GarbageCollector{
		pruner:   pruner,
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start prunes on every tick until Stop or ctx is done
func (gc *GarbageCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := gc.Collect(ctx); err != nil {
					gc.logger.Error("snapshot garbage collection failed", logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	gc.stopOnce.Do(func() { close(gc.stopCh) })
}

// Collect prunes once. An empty store is skipped: it usually means the
// first load has not completed, not that every domain was removed.
func (gc *GarbageCollector) Collect(ctx context.Context) (int, error) {
	records := gc.store.All()
	if len(records) == 0 {
		gc.logger.Debug("store empty, skipping snapshot garbage collection")
		return 0, nil
	}

	keep := make([]string, len(records))
	for i, r := range records {
		keep[i] = r.Domain
	}

	deleted, err := gc.pruner.PruneDomains(ctx, keep)
	if err != nil {
		return deleted, err
	}
	if deleted > 0 {
		gc.logger.Info("pruned stale snapshot records", logger.Int("deleted", deleted))
	} else {
		gc.logger.Debug("no stale snapshot records")
	}
	return deleted, nil
}
