package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReportCache(t *testing.T) {
	cache := NewMemoryReportCache(time.Hour)
	ctx := context.Background()

	key := ReportKey(1, "occupancy", "2024-01-01", "2024-01-31", "")
	require.NoError(t, cache.Set(ctx, key, []byte("data")))

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	got, err = cache.Get(ctx, "report:est:2:missing:::")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryReportCacheExpiry(t *testing.T) {
	cache := NewMemoryReportCache(-time.Second)
	ctx := context.Background()

	key := ReportKey(1, "occupancy", "2024-01-01", "2024-01-31", "")
	require.NoError(t, cache.Set(ctx, key, []byte("stale")))

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryReportCacheInvalidate(t *testing.T) {
	cache := NewMemoryReportCache(time.Hour)
	ctx := context.Background()

	mine := ReportKey(1, "occupancy", "2024-01-01", "2024-01-31", "")
	theirs := ReportKey(2, "occupancy", "2024-01-01", "2024-01-31", "")
	require.NoError(t, cache.Set(ctx, mine, []byte("a")))
	require.NoError(t, cache.Set(ctx, theirs, []byte("b")))

	require.NoError(t, cache.InvalidateEstablishment(ctx, 1))

	got, err := cache.Get(ctx, mine)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = cache.Get(ctx, theirs)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)
}
