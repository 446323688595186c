package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fridge-inventory/internal/pkg/common"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "fridge-inventory:ai:"

// RedisClient RedisCache 使用的指令子集，*redis.Client 即可滿足
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache 以 Redis 保存模型回應，多個實例共用
type RedisCache struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedisCache 創建 Redis 快取
func NewRedisCache(client RedisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get 獲取緩存
func (s *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		common.LogCacheMiss("redis")
		return "", common.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	common.LogCacheHit("redis")
	return val, nil
}

// Set 設置緩存
func (s *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 連線由呼叫端管理
func (s *RedisCache) Close() error {
	return nil
}
