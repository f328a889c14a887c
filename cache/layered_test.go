package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayeredPair(t *testing.T) (*Layered, *MemoryRateCache, *MemoryRateCache) {
	t.Helper()
	local := NewMemoryRateCache(time.Minute)
	shared := NewMemoryRateCache(time.Minute)
	t.Cleanup(local.Close)
	t.Cleanup(shared.Close)
	return NewLayered(local, shared), local, shared
}

func TestLayeredRateBackfillsLocal(t *testing.T) {
	ctx := context.Background()
	layered, local, shared := newLayeredPair(t)

	require.NoError(t, shared.PutRate(ctx, "USD", "RUB", "2024-06-01", 90))

	rate, ok, err := layered.Rate(ctx, "USD", "RUB", "2024-06-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 90.0, rate)

	rate, ok, err = local.Rate(ctx, "USD", "RUB", "2024-06-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 90.0, rate)
}

func TestLayeredPutRateWritesBothLayers(t *testing.T) {
	ctx := context.Background()
	layered, local, shared := newLayeredPair(t)

	require.NoError(t, layered.PutRate(ctx, "USD", "EUR", "2024-06-01", 0.92))

	_, ok, err := shared.Rate(ctx, "USD", "EUR", "2024-06-01")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = local.Rate(ctx, "USD", "EUR", "2024-06-01")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLayeredCatalogPrefersLocal(t *testing.T) {
	ctx := context.Background()
	layered, local, shared := newLayeredPair(t)

	require.NoError(t, local.PutCatalog(ctx, map[string]string{"USD": "United States Dollar"}))
	require.NoError(t, shared.PutCatalog(ctx, map[string]string{"EUR": "Euro"}))

	catalog, err := layered.Catalog(ctx)
	require.NoError(t, err)
	assert.Contains(t, catalog, "USD")
}

func TestLayeredCatalogFallsThroughAndBackfills(t *testing.T) {
	ctx := context.Background()
	layered, local, shared := newLayeredPair(t)

	require.NoError(t, shared.PutCatalog(ctx, map[string]string{"EUR": "Euro"}))

	catalog, err := layered.Catalog(ctx)
	require.NoError(t, err)
	assert.Contains(t, catalog, "EUR")

	catalog, err = local.Catalog(ctx)
	require.NoError(t, err)
	assert.Contains(t, catalog, "EUR")
}
