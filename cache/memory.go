package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/fxgate/fxgate/domain"
)

const catalogKey = "available_currencies"

// MemoryRateCache implements RateCache in process memory: the catalog in a
// ttlcache so expiry matches the shared store's semantics, rate points in
// nested maps guarded by a mutex. Used as the L1 layer in front of the
// shared store and standalone in tests.
type MemoryRateCache struct {
	catalog    *ttlcache.Cache[string, map[string]string]
	catalogTTL time.Duration

	mu    sync.RWMutex
	rates map[string]map[string]map[string]float64

	now func() time.Time
}

// NewMemoryRateCache creates an in-memory rate cache. catalogTTL <= 0
// defaults to CatalogTTL.
func NewMemoryRateCache(catalogTTL time.Duration) *MemoryRateCache {
	if catalogTTL <= 0 {
		catalogTTL = CatalogTTL
	}
	catalog := ttlcache.New(
		ttlcache.WithTTL[string, map[string]string](catalogTTL),
		ttlcache.WithDisableTouchOnHit[string, map[string]string](),
	)
	go catalog.Start()

	return &MemoryRateCache{
		catalog:    catalog,
		catalogTTL: catalogTTL,
		rates:      make(map[string]map[string]map[string]float64),
		now:        time.Now,
	}
}

// Catalog implements RateCache.Catalog.
func (c *MemoryRateCache) Catalog(_ context.Context) (map[string]string, error) {
	item := c.catalog.Get(catalogKey)
	if item == nil || item.IsExpired() {
		return map[string]string{}, nil
	}
	return item.Value(), nil
}

// PutCatalog implements RateCache.PutCatalog.
func (c *MemoryRateCache) PutCatalog(_ context.Context, currencies map[string]string) error {
	c.catalog.Set(catalogKey, currencies, c.catalogTTL)
	return nil
}

// Rate implements RateCache.Rate.
func (c *MemoryRateCache) Rate(_ context.Context, from, to, date string) (float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate, ok := c.rates[from][to][date]
	return rate, ok, nil
}

// PutRate implements RateCache.PutRate: insert-if-absent at every level,
// no-op for today's date.
func (c *MemoryRateCache) PutRate(_ context.Context, from, to, date string, rate float64) error {
	if date == c.now().UTC().Format(domain.DateLayout) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rates[from] == nil {
		c.rates[from] = make(map[string]map[string]float64)
	}
	if c.rates[from][to] == nil {
		c.rates[from][to] = make(map[string]float64)
	}
	if _, exists := c.rates[from][to][date]; !exists {
		c.rates[from][to][date] = rate
	}
	return nil
}

// Close stops the catalog cleanup goroutine.
func (c *MemoryRateCache) Close() {
	c.catalog.Stop()
}

var _ RateCache = (*MemoryRateCache)(nil)
