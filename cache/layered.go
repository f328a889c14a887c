package cache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Layered composes a fast local layer over the shared store. Reads try
// local first and backfill it from shared on a hit there; writes go to the
// shared store first, then best-effort to local. Rate points are immutable
// so the local copy can never go stale; the catalog carries its own TTL in
// both layers.
type Layered struct {
	local  RateCache
	shared RateCache
}

// NewLayered wraps shared with local.
func NewLayered(local, shared RateCache) *Layered {
	return &Layered{local: local, shared: shared}
}

func (l *Layered) Catalog(ctx context.Context) (map[string]string, error) {
	if currencies, err := l.local.Catalog(ctx); err == nil && len(currencies) > 0 {
		return currencies, nil
	}
	currencies, err := l.shared.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(currencies) > 0 {
		if err := l.local.PutCatalog(ctx, currencies); err != nil {
			log.Warn().Err(err).Msg("failed to backfill local catalog")
		}
	}
	return currencies, nil
}

func (l *Layered) PutCatalog(ctx context.Context, currencies map[string]string) error {
	if err := l.shared.PutCatalog(ctx, currencies); err != nil {
		return err
	}
	if err := l.local.PutCatalog(ctx, currencies); err != nil {
		log.Warn().Err(err).Msg("failed to store catalog locally")
	}
	return nil
}

func (l *Layered) Rate(ctx context.Context, from, to, date string) (float64, bool, error) {
	if rate, ok, err := l.local.Rate(ctx, from, to, date); err == nil && ok {
		return rate, true, nil
	}
	rate, ok, err := l.shared.Rate(ctx, from, to, date)
	if err != nil || !ok {
		return 0, false, err
	}
	if err := l.local.PutRate(ctx, from, to, date, rate); err != nil {
		log.Warn().Err(err).Msg("failed to backfill local rate point")
	}
	return rate, true, nil
}

func (l *Layered) PutRate(ctx context.Context, from, to, date string, rate float64) error {
	if err := l.shared.PutRate(ctx, from, to, date, rate); err != nil {
		return err
	}
	if err := l.local.PutRate(ctx, from, to, date, rate); err != nil {
		log.Warn().Err(err).Msg("failed to store rate point locally")
	}
	return nil
}

var _ RateCache = (*Layered)(nil)
