package database

import (
	"context"
	"fmt"
	"time"

	"fridge-inventory/internal/infrastructure/config"
	"fridge-inventory/internal/pkg/common"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OpenRedis 建立 Redis 連線並確認可用
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect redis %s: %w", cfg.Addr, err)
	}

	common.LogInfo("Redis 已連線", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return rdb, nil
}
