package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a concurrency-safe in-memory Store. Expired entries are hidden on
// read and reclaimed by a periodic sweep.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]memoryEntry
	defaultTTL time.Duration
	now        func() time.Time
	logger     *logrus.Logger

	sweepEvery time.Duration
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

// WithSweepInterval sets how often expired entries are reclaimed. Zero disables the
// background sweep; reads still hide expired entries.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(c *MemoryCache) { c.sweepEvery = d }
}

// WithLogger attaches a logger for sweep reports.
func WithLogger(logger *logrus.Logger) MemoryOption {
	return func(c *MemoryCache) { c.logger = logger }
}

// NewMemoryCache creates the cache and starts the sweep goroutine if enabled. Call
// Close to stop it.
func NewMemoryCache(defaultTTL time.Duration, opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		items:      make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	if c.sweepEvery > 0 {
		c.wg.Add(1)
		go c.sweepLoop(ctx)
	}
	return c
}

// Get returns a copy of the value stored under key if it has not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return cloneBytes(e.value), true, nil
}

// Set stores value under key, replacing any previous entry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.items[key] = memoryEntry{
		value:     cloneBytes(value),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Delete removes key if present.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// Len counts stored entries, including expired ones not yet swept.
func (c *MemoryCache) Len(context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items), nil
}

// Sweep removes every expired entry and returns how many were removed.
func (c *MemoryCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Close stops the sweep goroutine. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

func (c *MemoryCache) sweepLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 && c.logger != nil {
				c.logger.WithField("removed", removed).Debug("Swept expired cache entries")
			}
		}
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
