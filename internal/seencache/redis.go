package seencache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ==================== Redis 实现 ====================

// RedisCache 基于 Redis 的标记缓存
// 利用 EXISTS 和 SETNX 命令,多实例部署时可以共享标记
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 标记缓存实例
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

// Seen 判断标记是否存在
func (cache *RedisCache) Seen(ctx context.Context, key string) (bool, error) {
	count, err := cache.client.Exists(ctx, cache.redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return count > 0, nil
}

// Mark 写入标记
// 使用 SETNX 保证并发写入时只有第一次生效,过期由 Redis 负责
func (cache *RedisCache) Mark(ctx context.Context, key string, ttl time.Duration) error {
	if _, err := cache.client.SetNX(ctx, cache.redisKey(key), placeholderValue, ttl).Result(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// redisKey 构建带命名空间前缀的 Redis 键
func (cache *RedisCache) redisKey(key string) string {
	return seenKeyPrefix + keySeparator + key
}
