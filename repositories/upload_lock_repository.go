package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisUploadLockRepository struct {
	client *redis.Client
}

func NewRedisUploadLockRepository(client *redis.Client) *RedisUploadLockRepository {
	return &RedisUploadLockRepository{client: client}
}

func lockKey(hash string) string {
	return "upload_lock:" + hash
}

// TryLock acquires the per-hash lock with SET NX. The TTL guards
// against a crashed holder; the lock is advisory only.
func (r *RedisUploadLockRepository) TryLock(ctx context.Context, hash string, expireSeconds int) (bool, error) {
	return r.client.SetNX(ctx, lockKey(hash), 1, time.Duration(expireSeconds)*time.Second).Result()
}

func (r *RedisUploadLockRepository) Unlock(ctx context.Context, hash string) error {
	return r.client.Del(ctx, lockKey(hash)).Err()
}
