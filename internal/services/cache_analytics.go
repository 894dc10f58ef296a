package services

import (
	"context"
	"sync"
	"time"

	"github.com/irfndi/statspulse-go/internal/cache"
)

const overallCategory = "overall"

// CacheStats represents cache statistics
type CacheStats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	HitRate     float64   `json:"hit_rate"`
	TotalOps    int64     `json:"total_ops"`
	LastUpdated time.Time `json:"last_updated"`
}

func (s *CacheStats) record(hit bool, at time.Time) {
	if hit {
		s.Hits++
	} else {
		s.Misses++
	}
	s.TotalOps++
	s.HitRate = float64(s.Hits) / float64(s.TotalOps)
	s.LastUpdated = at
}

// CacheMetrics is the payload of the cache stats endpoint.
type CacheMetrics struct {
	Overall    CacheStats            `json:"overall"`
	ByCategory map[string]CacheStats `json:"by_category"`
	Backend    string                `json:"backend"`
	KeyCount   int                   `json:"key_count"`
}

// CacheAnalyticsService tracks cache performance metrics
type CacheAnalyticsService struct {
	store   cache.Store
	backend string
	stats   map[string]*CacheStats
	now     func() time.Time
	mu      sync.RWMutex
}

// NewCacheAnalyticsService creates a new cache analytics service. store may be nil,
// in which case the key count is reported as zero.
func NewCacheAnalyticsService(store cache.Store, backend string) *CacheAnalyticsService {
	return &CacheAnalyticsService{
		store:   store,
		backend: backend,
		stats:   make(map[string]*CacheStats),
		now:     time.Now,
	}
}

// RecordHit records a cache hit for the given category
func (c *CacheAnalyticsService) RecordHit(category string) {
	c.record(category, true)
}

// RecordMiss records a cache miss for the given category
func (c *CacheAnalyticsService) RecordMiss(category string) {
	c.record(category, false)
}

func (c *CacheAnalyticsService) record(category string, hit bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for _, name := range []string{category, overallCategory} {
		if c.stats[name] == nil {
			c.stats[name] = &CacheStats{}
		}
		c.stats[name].record(hit, now)
	}
}

// GetStats returns cache statistics for a specific category
func (c *CacheAnalyticsService) GetStats(category string) CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if stats, exists := c.stats[category]; exists {
		return *stats
	}
	return CacheStats{}
}

// GetAllStats returns all cache statistics, including the overall bucket.
func (c *CacheAnalyticsService) GetAllStats() map[string]CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]CacheStats, len(c.stats))
	for category, stats := range c.stats {
		result[category] = *stats
	}
	return result
}

// GetMetrics returns per-category counters together with the live entry count.
func (c *CacheAnalyticsService) GetMetrics(ctx context.Context) (*CacheMetrics, error) {
	all := c.GetAllStats()

	metrics := &CacheMetrics{
		Overall:    all[overallCategory],
		ByCategory: make(map[string]CacheStats, len(all)),
		Backend:    c.backend,
	}
	for category, stats := range all {
		if category == overallCategory {
			continue
		}
		metrics.ByCategory[category] = stats
	}

	if c.store != nil {
		n, err := c.store.Len(ctx)
		if err != nil {
			return nil, err
		}
		metrics.KeyCount = n
	}
	return metrics, nil
}

// ResetStats resets all cache statistics
func (c *CacheAnalyticsService) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = make(map[string]*CacheStats)
}
