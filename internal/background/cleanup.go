package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper deletes expired rows or entries and reports how many went.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// SweepFunc adapts a function to Sweeper
type SweepFunc func(ctx context.Context) (int64, error)

func (f SweepFunc) Sweep(ctx context.Context) (int64, error) { return f(ctx) }

// CleanupManager periodically purges expired session revocations and, when
// the in-memory store is in use, its expired entries.
type CleanupManager struct {
	sweepers map[string]Sweeper
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager. sweepers is keyed by the
// name used in logs.
func NewCleanupManager(sweepers map[string]Sweeper, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		sweepers: sweepers,
		logger:   logger,
		interval: interval,
		timeout:  30 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task and blocks until Stop is called or
// ctx is cancelled.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			cm.RunOnce(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// RunOnce runs every sweeper once. A failing sweeper does not stop the rest.
func (cm *CleanupManager) RunOnce(ctx context.Context) {
	for name, sweeper := range cm.sweepers {
		cleanupCtx, cancel := context.WithTimeout(ctx, cm.timeout)
		removed, err := sweeper.Sweep(cleanupCtx)
		cancel()

		if err != nil {
			cm.logger.Error("cleanup failed", slog.String("target", name), slog.Any("error", err))
			continue
		}
		if removed > 0 {
			cm.logger.Info("cleanup completed", slog.String("target", name), slog.Int64("removed", removed))
		}
	}
}

// Stop signals the cleanup manager to stop. It is safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
