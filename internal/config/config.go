package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认配置常量
const (
	// 轮询默认配置
	DefaultIntervalSeconds = 60

	// 标记缓存默认配置
	DefaultSeenCacheTTL = 24 * time.Hour

	// 标记缓存后端类型
	SeenCacheBackendMemory = "memory"
	SeenCacheBackendRedis  = "redis"
)

// SMTP 邮件投递配置
// 收件人列表来自配置文件,传输凭据由命令行提供
type SMTP struct {
	To map[string]string `yaml:"to"` // 收件人映射:显示名 -> 邮箱地址
}

// HTTP 本地状态接口配置
type HTTP struct {
	Listen string `yaml:"listen"` // 监听地址,留空表示关闭状态接口
}

// SeenCache 已转发短信标记缓存配置
// 默认关闭:未删除的短信在持续模式下会被重复投递,这是既有行为,
// 启用标记缓存属于显式选择
type SeenCache struct {
	Enabled   bool     `yaml:"enabled"`    // 是否启用标记缓存
	Backend   string   `yaml:"backend"`    // 后端类型:memory 或 redis
	RedisAddr string   `yaml:"redis_addr"` // Redis 地址(backend 为 redis 时必填)
	TTL       Duration `yaml:"ttl"`        // 标记保留时长
}

// Config 网关完整配置
type Config struct {
	SMTP               SMTP              `yaml:"smtp"`
	KnownSenders       map[string]string `yaml:"known_senders"`        // 号码 -> 显示名映射
	Interval           int               `yaml:"interval"`             // 轮询间隔(秒)
	DeleteAfterSending bool              `yaml:"delete_after_sending"` // 发送成功后删除源短信
	ContinuousMode     bool              `yaml:"continuous_mode"`      // 持续轮询模式
	HTTP               HTTP              `yaml:"http"`
	SeenCache          SeenCache         `yaml:"seen_cache"`
}

// Duration 支持 "24h" 字符串与整数秒两种写法的时长值
type Duration time.Duration

// UnmarshalYAML 解析时长配置
func (duration *Duration) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err == nil {
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("invalid duration '%s': %w", text, err)
		}
		*duration = Duration(parsed)
		return nil
	}

	var seconds int64
	if err := node.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*duration = Duration(time.Duration(seconds) * time.Second)
	return nil
}

// Std 返回标准库时长表示
func (duration Duration) Std() time.Duration {
	return time.Duration(duration)
}

// PollInterval 返回轮询间隔时长
func (config Config) PollInterval() time.Duration {
	return time.Duration(config.Interval) * time.Second
}

// Load 加载并校验 YAML 配置文件
func Load(configPath string) (Config, error) {
	fileContent, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(fileContent, &config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// MustLoad 加载配置文件,失败时直接崩溃
// 配置缺失意味着网关无法工作,启动早期失败好过带病运行
func MustLoad(configPath string) Config {
	config, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config %s: %v", configPath, err))
	}
	return config
}

// validate 校验配置并设置默认值
func (config *Config) validate() error {
	if err := config.validateRecipients(); err != nil {
		return err
	}

	config.validatePolling()

	return config.validateSeenCache()
}

// validateRecipients 校验收件人配置
func (config *Config) validateRecipients() error {
	if len(config.SMTP.To) == 0 {
		return fmt.Errorf("smtp.to must list at least one recipient")
	}

	for name, address := range config.SMTP.To {
		if !strings.Contains(address, "@") {
			return fmt.Errorf("recipient '%s' has invalid address '%s'", name, address)
		}
	}

	return nil
}

// validatePolling 设置轮询相关默认值
func (config *Config) validatePolling() {
	if config.Interval <= 0 {
		config.Interval = DefaultIntervalSeconds
	}

	if config.KnownSenders == nil {
		config.KnownSenders = map[string]string{}
	}
}

// validateSeenCache 校验标记缓存配置并设置默认值
func (config *Config) validateSeenCache() error {
	if !config.SeenCache.Enabled {
		return nil
	}

	if config.SeenCache.Backend == "" {
		config.SeenCache.Backend = SeenCacheBackendMemory
	}

	switch config.SeenCache.Backend {
	case SeenCacheBackendMemory:
	case SeenCacheBackendRedis:
		if config.SeenCache.RedisAddr == "" {
			return fmt.Errorf("seen_cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown seen_cache backend '%s'", config.SeenCache.Backend)
	}

	if config.SeenCache.TTL <= 0 {
		config.SeenCache.TTL = Duration(DefaultSeenCacheTTL)
	}

	return nil
}
