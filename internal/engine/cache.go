package engine

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danielpatrickdp/valuesnet/internal/metrics"
)

// DefaultCacheSize bounds the number of cached reports.
const DefaultCacheSize = 64

// Cache memoizes analysis reports by network content hash. Safe for concurrent use.
// A changed network gets a new hash, so stale entries are never served; they age out.
// Reports are shared between callers and must be treated as read-only.
type Cache struct {
	reports *lru.Cache[string, metrics.Report]
}

// NewCache creates a cache holding at most size reports.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, metrics.Report](size)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &Cache{reports: c}, nil
}

func (c *Cache) Get(hash string) (metrics.Report, bool) { return c.reports.Get(hash) }

func (c *Cache) Add(hash string, r metrics.Report) { c.reports.Add(hash, r) }

// Len reports the number of cached reports.
func (c *Cache) Len() int { return c.reports.Len() }

// Purge drops every cached report.
func (c *Cache) Purge() { c.reports.Purge() }
