package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fridge-inventory/internal/pkg/common"

	"github.com/bsm/redislock"
	"go.uber.org/zap"
)

// Locker 對帳作業互斥鎖；同一時間只允許一個對帳作業
type Locker interface {
	// Acquire 取得鎖，回傳的 release 必須呼叫
	Acquire(ctx context.Context) (release func(), err error)
}

// Local 單一程序內的互斥鎖
type Local struct {
	sem chan struct{}
}

// NewLocal 創建程序內互斥鎖
func NewLocal() *Local {
	return &Local{sem: make(chan struct{}, 1)}
}

// Acquire 等待取得鎖直到 ctx 結束
func (l *Local) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, common.ErrLockNotObtained.Wrap(ctx.Err())
	}
}

// Redis 以 redislock 實作的分散式鎖，多個實例共用同一資料庫時使用
type Redis struct {
	client *redislock.Client
	key    string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedis 創建分散式鎖
func NewRedis(client redislock.RedisClient, key string, ttl time.Duration) *Redis {
	return &Redis{
		client: redislock.New(client),
		key:    key,
		ttl:    ttl,
		retry:  100 * time.Millisecond,
	}
}

// Acquire 以固定間隔重試直到 ctx 結束
func (r *Redis) Acquire(ctx context.Context) (func(), error) {
	lk, err := r.client.Obtain(ctx, r.key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(r.retry),
	})
	// 持鎖者未釋放時，重試會持續到 ctx 結束
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil, common.ErrLockNotObtained.Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", r.key, err)
	}

	return func() {
		// ctx 可能已取消，釋放使用獨立的 context
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lk.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			common.LogWarn("釋放對帳鎖失敗", zap.String("key", r.key), zap.Error(err))
		}
	}, nil
}
