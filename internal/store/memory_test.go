package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/srm/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemoryStore_SetGetExpire(t *testing.T) {
	clock := newClock()
	s := store.NewMemoryStoreWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))

	value, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	clock.Advance(time.Minute)

	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire exactly at its ttl")
}

func TestMemoryStore_TTL(t *testing.T) {
	clock := newClock()
	s := store.NewMemoryStoreWithClock(clock.Now)
	ctx := context.Background()

	_, ok, err := s.TTL(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v", 30*time.Minute))
	clock.Advance(10 * time.Minute)

	ttl, ok, err := s.TTL(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20*time.Minute, ttl)
}

func TestMemoryStore_IncrRefreshesTTL(t *testing.T) {
	clock := newClock()
	s := store.NewMemoryStoreWithClock(clock.Now)
	ctx := context.Background()

	n, err := s.Incr(ctx, "c", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	clock.Advance(50 * time.Minute)
	n, err = s.Incr(ctx, "c", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	clock.Advance(50 * time.Minute)
	value, ok, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok, "second increment should have refreshed the ttl")
	assert.Equal(t, "2", value)
}

func TestMemoryStore_IncrRejectsNonInteger(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "abc", time.Minute))

	_, err := s.Incr(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, store.ErrNotInteger)
}

func TestMemoryStore_IncrIsAtomic(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Incr(ctx, "c", time.Minute)
		}()
	}
	wg.Wait()

	value, _, _ := s.Get(ctx, "c")
	assert.Equal(t, "50", value)
}

func TestMemoryStore_DeleteAndSweep(t *testing.T) {
	clock := newClock()
	s := store.NewMemoryStoreWithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "absent"))

	require.NoError(t, s.Set(ctx, "short", "1", time.Minute))
	require.NoError(t, s.Set(ctx, "long", "2", time.Hour))
	require.NoError(t, s.Set(ctx, "gone", "3", time.Hour))
	require.NoError(t, s.Delete(ctx, "gone"))

	clock.Advance(2 * time.Minute)

	removed, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 1, s.Len())
}
