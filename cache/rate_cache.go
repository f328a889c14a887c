// Package cache holds the exchange-rate cache: the TTL-bounded currency
// catalog and the unbounded store of historical rate points.
package cache

import (
	"context"
	"time"
)

// CatalogTTL bounds how long a cached currency catalog is served before a
// full re-fetch is forced.
const CatalogTTL = 3 * time.Hour

// RateCache is the layered key-value store behind the currency gateway.
//
// The catalog is refreshed wholesale and expires; rate points are
// immutable historical facts: written once, never overwritten, never
// expired. Implementations must treat PutRate as insert-if-absent and as a
// no-op for today's date, since the live rate moves intra-day.
type RateCache interface {
	// Catalog returns the cached currency catalog, or an empty map when
	// absent or expired.
	Catalog(ctx context.Context) (map[string]string, error)
	// PutCatalog overwrites the catalog wholesale and arms the TTL.
	PutCatalog(ctx context.Context, currencies map[string]string) error
	// Rate returns the cached point for (from, to, date) if present.
	Rate(ctx context.Context, from, to, date string) (float64, bool, error)
	// PutRate stores a historical point. First observed value wins; today's
	// date is never cached.
	PutRate(ctx context.Context, from, to, date string, rate float64) error
}
