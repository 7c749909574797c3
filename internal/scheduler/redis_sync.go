package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/logger"
	redisstore "github.com/MrSnakeDoc/domon/internal/store/redis"
)

// SnapshotLoader reads the saved domain list
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) ([]domain.Record, time.Time, error)
}

// Restorer seeds the store without contacting the data source
type Restorer interface {
	Restore(records []domain.Record)
}

// SnapshotSyncer restores the last saved domain list at startup so the
// dashboard has data before the backend answers.
type SnapshotSyncer struct {
	snapshot SnapshotLoader
	target   Restorer
	logger   logger.Logger
}

// NewSnapshotSyncer creates a new snapshot syncer
func NewSnapshotSyncer(snapshot SnapshotLoader, target Restorer, log logger.Logger) *SnapshotSyncer {
	return &SnapshotSyncer{
		snapshot: snapshot,
		target:   target,
		logger:   log,
	}
}

// Sync restores the snapshot. A missing snapshot is not an error.
func (s *SnapshotSyncer) Sync(ctx context.Context) (int, error) {
	records, savedAt, err := s.snapshot.LoadSnapshot(ctx)
	if errors.Is(err, redisstore.ErrNoSnapshot) {
		s.logger.Info("no domain snapshot in redis")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	s.target.Restore(records)
	s.logger.Info("restored domain snapshot from redis",
		logger.Int("count", len(records)),
		logger.String("saved_at", savedAt.Format(time.RFC3339)))
	return len(records), nil
}
