package seencache

import (
	"context"
	"sync"
	"time"
)

// ==================== 内存实现 ====================

// MemoryCache 进程内标记缓存
// 适用于单实例部署,进程重启后标记随之丢失
type MemoryCache struct {
	mu          sync.Mutex
	entries     map[string]time.Time // 键 -> 过期时间
	currentTime func() time.Time
}

// NewMemoryCache 创建内存标记缓存实例
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:     make(map[string]time.Time),
		currentTime: time.Now,
	}
}

// Seen 判断标记是否存在且未过期
func (cache *MemoryCache) Seen(_ context.Context, key string) (bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.evictExpired()

	_, exists := cache.entries[key]
	return exists, nil
}

// Mark 写入标记
func (cache *MemoryCache) Mark(_ context.Context, key string, ttl time.Duration) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.entries[key] = cache.currentTime().Add(ttl)
	return nil
}

// evictExpired 清除已过期的标记
// 调用方必须持有锁
func (cache *MemoryCache) evictExpired() {
	now := cache.currentTime()
	for key, expiresAt := range cache.entries {
		if expiresAt.Before(now) {
			delete(cache.entries, key)
		}
	}
}
