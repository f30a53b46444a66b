// Package seencache 记录已转发短信的标记,防止未删除的短信在持续模式下被重复投递
// 支持进程内缓存与基于 Redis 的共享缓存两种后端
package seencache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// ==================== 常量定义 ====================

const (
	keySeparator     = ":"
	seenKeyPrefix    = "sms2mail:seen"
	contentDelimiter = "|"
	placeholderValue = "1"
)

// ==================== 错误定义 ====================

var (
	// ErrCacheUnavailable 缓存后端不可用错误
	ErrCacheUnavailable = errors.New("seen cache backend is not available")
)

// ==================== 接口定义 ====================

// Checker 已转发标记检查器接口
// 检查与标记分离:只有在邮件真正发出之后才写入标记,
// 发送失败的短信在下一个周期仍会被重新投递
type Checker interface {
	// Seen 判断短信是否已被转发过
	Seen(ctx context.Context, key string) (bool, error)

	// Mark 写入已转发标记
	Mark(ctx context.Context, key string, ttl time.Duration) error
}

// Key 根据短信的对象路径、时间戳和正文生成标记键
// 使用 SHA1 哈希保证相同短信总是生成相同的键
func Key(path, timestamp, text string) string {
	content := strings.Join([]string{path, timestamp, text}, contentDelimiter)
	hash := sha1.Sum([]byte(content))
	return hex.EncodeToString(hash[:])
}
