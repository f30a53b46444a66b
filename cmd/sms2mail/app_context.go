package main

import (
	"log"

	"github.com/Noodlesalat/sms2mail/internal/config"
	"github.com/Noodlesalat/sms2mail/internal/forwarder"
	"github.com/Noodlesalat/sms2mail/internal/mailer"
	"github.com/Noodlesalat/sms2mail/internal/modem"
	"github.com/Noodlesalat/sms2mail/internal/seencache"

	redis "github.com/redis/go-redis/v9"
)

// AppContext 应用运行时上下文
// 聚合所有运行期依赖,统一管理生命周期
type AppContext struct {
	Config      config.Config
	Bus         modem.Bus
	Mailer      mailer.Mailer
	RedisClient *redis.Client
	SeenCache   seencache.Checker
	Forwarder   *forwarder.Forwarder
}

// Close 释放应用上下文持有的所有资源
func (appContext *AppContext) Close() {
	appContext.closeBusConnection()
	appContext.closeRedisClient()
}

// closeBusConnection 断开系统总线连接
func (appContext *AppContext) closeBusConnection() {
	if appContext.Bus == nil {
		return
	}
	if err := appContext.Bus.Close(); err != nil {
		log.Printf("[AppContext] 关闭总线连接出现错误: %v", err)
	}
}

// closeRedisClient 关闭 Redis 客户端
func (appContext *AppContext) closeRedisClient() {
	if appContext.RedisClient == nil {
		return
	}
	if err := appContext.RedisClient.Close(); err != nil {
		log.Printf("[AppContext] 关闭 Redis 客户端出现错误: %v", err)
	}
}

//
// 应用初始化器
//

// ApplicationInitializer 应用初始化器
// 负责构建完整的应用运行上下文
type ApplicationInitializer struct {
	arguments     Arguments
	configuration config.Config
	bus           modem.Bus
	redisClient   *redis.Client
}

// NewApplicationInitializer 创建应用初始化器实例
func NewApplicationInitializer(arguments Arguments, configuration config.Config) *ApplicationInitializer {
	return &ApplicationInitializer{
		arguments:     arguments,
		configuration: configuration,
	}
}

// Initialize 初始化应用上下文
// 按照依赖关系依次初始化各个组件
func (initializer *ApplicationInitializer) Initialize() *AppContext {
	initializer.connectSystemBus()

	sender := initializer.createMailer()
	seenCache := initializer.createSeenCache()
	messageForwarder := initializer.createForwarder(sender, seenCache)

	return &AppContext{
		Config:      initializer.configuration,
		Bus:         initializer.bus,
		Mailer:      sender,
		RedisClient: initializer.redisClient,
		SeenCache:   seenCache,
		Forwarder:   messageForwarder,
	}
}

// connectSystemBus 建立系统总线连接
// 没有总线就无法访问调制解调器,失败直接终止启动
func (initializer *ApplicationInitializer) connectSystemBus() {
	bus, err := modem.ConnectSystemBus()
	if err != nil {
		log.Fatalf("[Initializer] 连接系统总线失败: %v", err)
	}

	initializer.bus = bus
	log.Println("[Initializer] 系统总线连接成功")
}

// createMailer 创建 SMTP 发送器
func (initializer *ApplicationInitializer) createMailer() mailer.Mailer {
	settings := mailer.Settings{
		Server:   initializer.arguments.SMTPServer,
		Port:     initializer.arguments.SMTPPort,
		User:     initializer.arguments.SMTPUser,
		Password: initializer.arguments.SMTPPassword,
		From:     initializer.arguments.FromAddress,
	}

	log.Println("[Initializer] SMTP 发送器创建完成")
	return mailer.NewSMTPMailer(settings)
}

// createSeenCache 创建已转发标记缓存
// 未启用时返回 nil,转发器据此关闭重复检测
func (initializer *ApplicationInitializer) createSeenCache() seencache.Checker {
	if !initializer.configuration.SeenCache.Enabled {
		return nil
	}

	if initializer.configuration.SeenCache.Backend == config.SeenCacheBackendRedis {
		initializer.redisClient = redis.NewClient(&redis.Options{
			Addr: initializer.configuration.SeenCache.RedisAddr,
		})

		log.Println("[Initializer] 标记缓存使用 Redis 后端,内存缓存兜底")
		return seencache.NewFallbackCache(
			seencache.NewRedisCache(initializer.redisClient),
			seencache.NewMemoryCache(),
		)
	}

	log.Println("[Initializer] 标记缓存使用内存后端")
	return seencache.NewMemoryCache()
}

// createForwarder 创建短信转发器
func (initializer *ApplicationInitializer) createForwarder(
	sender mailer.Mailer,
	seenCache seencache.Checker,
) *forwarder.Forwarder {
	options := forwarder.Options{
		Recipients:         initializer.configuration.SMTP.To,
		KnownSenders:       initializer.configuration.KnownSenders,
		DeleteAfterSending: initializer.configuration.DeleteAfterSending,
		Interval:           initializer.configuration.PollInterval(),
	}

	messageForwarder := forwarder.NewForwarder(initializer.bus, sender, options)
	if seenCache != nil {
		messageForwarder.SetSeenCache(seenCache, initializer.configuration.SeenCache.TTL.Std())
	}

	log.Println("[Initializer] 短信转发器创建完成")
	return messageForwarder
}

//
// 外部调用接口
//

// InitAppContext 初始化应用上下文
func InitAppContext(arguments Arguments, configuration config.Config) *AppContext {
	initializer := NewApplicationInitializer(arguments, configuration)
	return initializer.Initialize()
}
