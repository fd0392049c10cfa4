package bookcache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"kitabu/model"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, baseTTL: ttl}
}

func (r *RedisCache) Get(ctx context.Context, id int64) (*model.Book, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var b model.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("unmarshal book failed: %w", err)
	}
	return &b, nil
}

func (r *RedisCache) Set(ctx context.Context, b *model.Book) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal book failed: %w", err)
	}
	// jitter spreads expiry of books cached together
	ttl := r.baseTTL + time.Duration(rand.Intn(60))*time.Second
	if err := r.client.Set(ctx, cacheKey(b.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(id int64) string {
	return fmt.Sprintf("book:%d", id)
}
