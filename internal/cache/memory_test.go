package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 5, 8, 4, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	_, ok, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_ExpiresWithoutSweep(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(time.Minute, WithClock(clock.Now))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))

	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok, "retrievable immediately")

	clock.Advance(1100 * time.Millisecond)

	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok, "absent after expiry even before a sweep")

	n, _ := c.Len(ctx)
	assert.Equal(t, 1, n, "physically present until swept")
}

func TestMemoryCache_ExpiryBoundaryIsExclusive(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(time.Minute, WithClock(clock.Now))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	clock.Advance(time.Second)

	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(300*time.Second, WithClock(clock.Now))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	clock.Advance(299 * time.Second)
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_LastWriteWins(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(time.Minute, WithClock(clock.Now))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("first"), time.Second))
	require.NoError(t, c.Set(ctx, "k", []byte("second"), time.Hour))

	clock.Advance(2 * time.Second)
	got, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestMemoryCache_Sweep(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(time.Minute, WithClock(clock.Now))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "long", []byte("2"), time.Hour))

	clock.Advance(time.Minute)
	assert.Equal(t, 1, c.Sweep())

	n, _ := c.Len(ctx)
	assert.Equal(t, 1, n)
}

func TestMemoryCache_BackgroundSweep(t *testing.T) {
	c := NewMemoryCache(time.Minute, WithSweepInterval(10*time.Millisecond))
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ttl", []byte("v"), 20*time.Millisecond))

	assert.Eventually(t, func() bool {
		n, _ := c.Len(ctx)
		return n == 0
	}, 500*time.Millisecond, 5*time.Millisecond)
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", in, 0))
	in[0] = 'x'

	out, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), out)
	out[0] = 'y'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	c := NewMemoryCache(time.Minute, WithSweepInterval(time.Millisecond))

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Set(context.Background(), "k", []byte("v"), 0), ErrClosed)
}

func TestMemoryCache_ConcurrentDistinctKeys(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			for j := 0; j < 50; j++ {
				_ = c.Set(ctx, key, []byte(key), 0)
				got, ok, _ := c.Get(ctx, key)
				if assert.True(t, ok) {
					assert.Equal(t, key, string(got))
				}
			}
		}(i)
	}
	wg.Wait()

	n, _ := c.Len(ctx)
	assert.Equal(t, 32, n)
}

func TestJSONHelpers_DecodeFailure(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("not json"), 0))

	_, ok, err := GetJSON[map[string]int](ctx, c, "k")
	assert.Error(t, err)
	assert.False(t, ok)

	_, ok, err = GetJSON[map[string]int](ctx, c, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSetJSON_EncodeFailure(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	defer c.Close()

	err := SetJSON(context.Background(), c, "k", make(chan int), 0)
	assert.Error(t, err)
}
