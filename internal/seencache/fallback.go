package seencache

import (
	"context"
	"log"
	"time"
)

const logPrefix = "[SeenCache]"

// ==================== 主备实现 ====================

// FallbackCache 主备双后端标记缓存
// Redis 等共享后端不可用时自动降级到备用后端,保证轮询不中断
type FallbackCache struct {
	primary  Checker
	fallback Checker
}

// NewFallbackCache 创建主备标记缓存实例
func NewFallbackCache(primary, fallback Checker) *FallbackCache {
	return &FallbackCache{
		primary:  primary,
		fallback: fallback,
	}
}

// Seen 优先查询主后端,失败时降级到备用后端
func (cache *FallbackCache) Seen(ctx context.Context, key string) (bool, error) {
	seen, err := cache.primary.Seen(ctx, key)
	if err == nil {
		return seen, nil
	}

	log.Printf("%s 主后端不可用,降级到备用后端: %v", logPrefix, err)
	return cache.fallback.Seen(ctx, key)
}

// Mark 写入标记
// 主后端成功后同步写入备用后端,降级后查询仍能命中;
// 主后端失败时只写备用后端
func (cache *FallbackCache) Mark(ctx context.Context, key string, ttl time.Duration) error {
	if err := cache.primary.Mark(ctx, key, ttl); err != nil {
		log.Printf("%s 主后端不可用,降级到备用后端: %v", logPrefix, err)
		return cache.fallback.Mark(ctx, key, ttl)
	}

	// 备用后端同步失败不影响主流程
	if err := cache.fallback.Mark(ctx, key, ttl); err != nil {
		log.Printf("%s 备用后端同步失败: %v", logPrefix, err)
	}

	return nil
}
