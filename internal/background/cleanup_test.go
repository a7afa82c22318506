package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRunOnce_RunsEverySweeper(t *testing.T) {
	var revocations, store int32
	manager := NewCleanupManager(map[string]Sweeper{
		"revoked_sessions": SweepFunc(func(ctx context.Context) (int64, error) {
			atomic.AddInt32(&revocations, 1)
			return 0, errors.New("database unavailable")
		}),
		"memory_store": SweepFunc(func(ctx context.Context) (int64, error) {
			atomic.AddInt32(&store, 1)
			return 3, nil
		}),
	}, discardLogger(), time.Hour)

	manager.RunOnce(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&revocations))
	assert.Equal(t, int32(1), atomic.LoadInt32(&store))
}

func TestStart_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	ran := make(chan struct{}, 10)
	manager := NewCleanupManager(map[string]Sweeper{
		"revoked_sessions": SweepFunc(func(ctx context.Context) (int64, error) {
			ran <- struct{}{}
			return 0, nil
		}),
	}, discardLogger(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(done)
	}()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not run on start")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestStop_IsIdempotent(t *testing.T) {
	manager := NewCleanupManager(map[string]Sweeper{}, discardLogger(), time.Hour)

	done := make(chan struct{})
	go func() {
		manager.Start(context.Background())
		close(done)
	}()

	manager.Stop()
	require.NotPanics(t, manager.Stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}
