package bookcache

import (
	"context"
	"testing"
	"time"

	"kitabu/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, 10*time.Minute), mr
}

func TestSetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	b := &model.Book{ID: 7, Title: "Dune", Price: decimal.RequireFromString("12.50"), CopiesAvailable: 3}
	require.NoError(t, c.Set(ctx, b))
	assert.True(t, mr.Exists("book:7"))

	ttl := mr.TTL("book:7")
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 11*time.Minute)

	got, err := c.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.True(t, b.Price.Equal(got.Price))
	assert.Equal(t, int64(3), got.CopiesAvailable)
}

func TestGet_Miss(t *testing.T) {
	c, _ := setupTestRedis(t)

	_, err := c.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGet_Corrupt(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("book:1", "{not json"))

	_, err := c.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, &model.Book{ID: 3}))

	require.NoError(t, c.Delete(ctx, 3))
	assert.False(t, mr.Exists("book:3"))
}

func TestNoop(t *testing.T) {
	c := Noop()
	_, err := c.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Set(context.Background(), &model.Book{ID: 1}))
	assert.NoError(t, c.Delete(context.Background(), 1))
}
