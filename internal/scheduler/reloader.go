// Package scheduler runs the background jobs: periodic and manual
// reloads, the startup snapshot restore and snapshot pruning.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/logger"
)

// Loader reloads the domain store from the data source. The dashboard
// saves the snapshot of every successful load itself.
type Loader interface {
	Load(ctx context.Context) ([]domain.Record, error)
}

// Reloader reloads the dashboard on a ticker and on demand
type Reloader struct {
	loader   Loader
	logger   logger.Logger
	interval time.Duration
	trigger  chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
	done     chan struct{}
}

// NewReloader creates a reloader. interval <= 0 disables the ticker;
// manual triggers still work.
func NewReloader(loader Loader, log logger.Logger, interval time.Duration) *Reloader {
	return &Reloader{
		loader:   loader,
		logger:   log,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one reload, then keeps reloading in the background until
// Stop or ctx is done. A failed first reload is logged and not fatal: the
// store keeps whatever a snapshot restore put in it.
func (r *Reloader) Start(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	if err := r.Reload(ctx); err != nil {
		r.logger.Warn("initial reload failed", logger.Error(err))
	}

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		tick = ticker.C
		go func() {
			<-r.done
			ticker.Stop()
		}()
	}

	go func() {
		defer close(r.done)
		for {
			select {
			case <-tick:
				r.reloadAndLog(ctx, "periodic")
			case <-r.trigger:
				r.reloadAndLog(ctx, "manual")
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Trigger asks for a reload without waiting for it. Triggers that arrive
// while one is pending are coalesced.
func (r *Reloader) Trigger() bool {
	select {
	case r.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Stop ends the background loop and waits for it to exit
func (r *Reloader) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	if r.started.Load() {
		<-r.done
	}
}

// Reload loads the store once
func (r *Reloader) Reload(ctx context.Context) error {
	records, err := r.loader.Load(ctx)
	if err != nil {
		return err
	}
	r.logger.Debug("domains reloaded", logger.Int("count", len(records)))
	return nil
}

func (r *Reloader) reloadAndLog(ctx context.Context, reason string) {
	r.logger.Debug("reloading domains", logger.String("reason", reason))
	if err := r.Reload(ctx); err != nil {
		r.logger.Error("failed to reload domains",
			logger.String("reason", reason),
			logger.Error(err))
	}
}
