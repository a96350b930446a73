package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) error { return errors.New("redis down") }
func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis down")
}
func (brokenCache) DeleteByPattern(context.Context, string) error { return errors.New("redis down") }

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	svc := NewCacheService(brokenCache{}, nil, 0, nil, false)
	assert.False(t, svc.Enabled())

	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.NoError(t, svc.Invalidate(context.Background(), "*"))
}

func TestCacheServiceMissAndHit(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCache(), metrics, time.Minute, nil, true)

	var dest int
	hit, err := svc.Get(context.Background(), "absent", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "present", 1, 0))
	hit, err = svc.Get(context.Background(), "present", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.InDelta(t, 0.5, metrics.CacheHitRatio(), 0.0001)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	svc := NewCacheService(brokenCache{}, nil, 0, nil, true)

	_, err := svc.Get(context.Background(), "k", &struct{}{})
	assert.Error(t, err)
	assert.Error(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Error(t, svc.Invalidate(context.Background(), "*"))
}

func TestCacheServiceInvalidateByPrefix(t *testing.T) {
	repo := newMemoryCache()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "dash:resources:5", []string{"a"}, 0))
	require.NoError(t, svc.Set(ctx, "dash:trending:5", []string{"b"}, 0))
	require.NoError(t, svc.Invalidate(ctx, "dash:resources:*"))

	assert.False(t, repo.has("dash:resources:5"))
	assert.True(t, repo.has("dash:trending:5"))
}
