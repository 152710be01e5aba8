package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the handful of commands the adapters use on top of an
// in-memory map. Calling any other Cmdable method panics.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, f.err)
}

func TestListingCache_SetGetDelete(t *testing.T) {
	fake := newFakeRedis()
	cache := NewListingCacheRepository(fake)
	ctx := context.Background()

	listing := &entity.Listing{ID: "5", Title: "Phone", Price: 100, Stock: 3, Status: entity.ListingStatusActive}
	require.NoError(t, cache.Set(ctx, listing, time.Minute))
	assert.Equal(t, time.Minute, fake.ttls["listing:5"])

	got, err := cache.Get(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, listing.Title, got.Title)
	assert.Equal(t, 3, got.Stock)
	assert.True(t, got.IsActive())

	require.NoError(t, cache.Delete(ctx, "5"))
	_, err = cache.Get(ctx, "5")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListingCache_GetBackendError(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection reset")
	cache := NewListingCacheRepository(fake)

	_, err := cache.Get(context.Background(), "5")

	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestListingCache_GetCorruptPayload(t *testing.T) {
	fake := newFakeRedis()
	fake.data["listing:5"] = "{not json"
	cache := NewListingCacheRepository(fake)

	_, err := cache.Get(context.Background(), "5")
	assert.Error(t, err)
}

func TestRevokedTokenStore(t *testing.T) {
	fake := newFakeRedis()
	store := NewRevokedTokenStore(fake)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-expired", 0))
	revoked, _ = store.IsRevoked(ctx, "jti-expired")
	assert.False(t, revoked)
}
