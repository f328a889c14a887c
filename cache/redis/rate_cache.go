// Package redis implements the shared rate cache on Redis: the catalog as
// a hash with an absolute expiry, rate points as one RedisJSON document
// nested source -> target -> date.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fxgate/fxgate/cache"
	"github.com/fxgate/fxgate/domain"
)

const (
	catalogKey = "available_currencies"
	ratesKey   = "rates"
)

// RateCache implements cache.RateCache on Redis.
type RateCache struct {
	client *redis.Client
}

// NewRateCache wraps client.
func NewRateCache(client *redis.Client) *RateCache {
	return &RateCache{client: client}
}

// Catalog returns the cached catalog. Redis drops the hash at expiry, so an
// absent key simply yields an empty map.
func (r *RateCache) Catalog(ctx context.Context) (map[string]string, error) {
	currencies, err := r.client.HGetAll(ctx, catalogKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading currency catalog: %w", err)
	}
	return currencies, nil
}

// PutCatalog overwrites the catalog wholesale and arms the 3-hour expiry
// from write time.
func (r *RateCache) PutCatalog(ctx context.Context, currencies map[string]string) error {
	if len(currencies) == 0 {
		return nil
	}
	if err := r.client.HSet(ctx, catalogKey, currencies).Err(); err != nil {
		return fmt.Errorf("storing currency catalog: %w", err)
	}
	if err := r.client.ExpireAt(ctx, catalogKey, time.Now().Add(cache.CatalogTTL)).Err(); err != nil {
		return fmt.Errorf("setting currency catalog expiry: %w", err)
	}
	return nil
}

// Rate returns the cached point for (from, to, date) if present.
func (r *RateCache) Rate(ctx context.Context, from, to, date string) (float64, bool, error) {
	res, err := r.client.JSONGet(ctx, ratesKey, ratePath(from, to, date)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading rate point: %w", err)
	}

	// JSONPath results always arrive as an array; empty means no such path.
	var rates []float64
	if err := json.Unmarshal([]byte(res), &rates); err != nil {
		return 0, false, fmt.Errorf("decoding rate point: %w", err)
	}
	if len(rates) == 0 {
		return 0, false, nil
	}
	return rates[0], true, nil
}

// PutRate inserts a historical point. Today's rate is live and never
// cached. The write walks the document top down with JSON.SET NX at each
// nesting level, so concurrent writers are safe and the first observed
// value for a key stays in place.
func (r *RateCache) PutRate(ctx context.Context, from, to, date string, rate float64) error {
	if date == time.Now().UTC().Format(domain.DateLayout) {
		return nil
	}

	steps := []struct {
		path  string
		value any
	}{
		{"$", map[string]any{from: map[string]any{to: map[string]float64{date: rate}}}},
		{ratePath(from), map[string]any{to: map[string]float64{date: rate}}},
		{ratePath(from, to), map[string]float64{date: rate}},
		{ratePath(from, to, date), rate},
	}
	for _, step := range steps {
		payload, err := json.Marshal(step.value)
		if err != nil {
			return err
		}
		err = r.client.JSONSetMode(ctx, ratesKey, step.path, string(payload), "NX").Err()
		if err == nil {
			return nil
		}
		// NX refused: this level already exists, descend one deeper.
		if !errors.Is(err, redis.Nil) {
			return fmt.Errorf("storing rate point: %w", err)
		}
	}
	// Every level exists: the point was already cached, keep the first value.
	return nil
}

// ratePath builds a bracket-notation JSONPath; dates contain dashes, which
// dot notation cannot carry.
func ratePath(segments ...string) string {
	path := "$"
	for _, segment := range segments {
		path += fmt.Sprintf("[%q]", segment)
	}
	return path
}

var _ cache.RateCache = (*RateCache)(nil)
