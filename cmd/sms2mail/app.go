package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Noodlesalat/sms2mail/internal/config"
)

const gracefulShutdownPeriod = 5 * time.Second

//
// HTTP 服务器管理
//

// ServerManager HTTP 服务器管理器
type ServerManager struct {
	server *http.Server
}

// NewServerManager 创建服务器管理器实例
func NewServerManager(address string, handler http.Handler) *ServerManager {
	return &ServerManager{
		server: &http.Server{
			Addr:    address,
			Handler: handler,
		},
	}
}

// Start 启动 HTTP 服务器
// 在独立的 goroutine 中运行,避免阻塞转发主流程
func (manager *ServerManager) Start() {
	go func() {
		log.Printf("[Server] 状态接口启动于 %s", manager.server.Addr)

		if err := manager.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Server] 启动失败: %v", err)
		}
	}()
}

// GracefulShutdown 优雅关闭服务器
// 等待现有请求完成或超时后强制关闭
func (manager *ServerManager) GracefulShutdown() error {
	log.Println("[Server] 开始优雅关闭...")

	shutdownContext, cancel := context.WithTimeout(
		context.Background(),
		gracefulShutdownPeriod,
	)
	defer cancel()

	if err := manager.server.Shutdown(shutdownContext); err != nil {
		log.Printf("[Server] 关闭过程出现错误: %v", err)
		return err
	}

	log.Println("[Server] 优雅关闭完成")
	return nil
}

//
// 信号处理器
//

// SignalHandler 系统信号处理器
// 监听 SIGINT 和 SIGTERM,把关闭请求转换为上下文取消
type SignalHandler struct {
	notifyContext context.Context
	stopFunc      context.CancelFunc
}

// NewSignalHandler 创建信号处理器实例
func NewSignalHandler() *SignalHandler {
	notifyContext, stopFunc := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	return &SignalHandler{
		notifyContext: notifyContext,
		stopFunc:      stopFunc,
	}
}

// Context 返回随关闭信号取消的上下文
// 转发循环以该上下文为生命周期
func (handler *SignalHandler) Context() context.Context {
	return handler.notifyContext
}

// Release 注销信号监听
func (handler *SignalHandler) Release() {
	handler.stopFunc()
}

//
// 应用程序启动器
//

// ApplicationRunner 应用程序运行器
// 负责整个应用的生命周期管理
type ApplicationRunner struct {
	arguments     Arguments
	configuration config.Config
	serverManager *ServerManager
	signalHandler *SignalHandler
	appContext    *AppContext
}

// NewApplicationRunner 创建应用运行器实例
func NewApplicationRunner(arguments Arguments) *ApplicationRunner {
	configuration := config.MustLoad(arguments.ConfigPath)

	return &ApplicationRunner{
		arguments:     arguments,
		configuration: configuration,
		signalHandler: NewSignalHandler(),
	}
}

// Run 运行应用程序
// 执行完整的启动、转发和关闭流程
func (runner *ApplicationRunner) Run() {
	defer runner.signalHandler.Release()

	runner.initializeApplication()
	runner.startHTTPServer()
	runner.runForwarder()
	runner.performShutdown()
}

// initializeApplication 初始化应用程序
func (runner *ApplicationRunner) initializeApplication() {
	runner.appContext = InitAppContext(runner.arguments, runner.configuration)
	log.Println("[Runner] 应用程序初始化完成")
}

// startHTTPServer 启动本地状态接口
// 未配置监听地址时保持关闭
func (runner *ApplicationRunner) startHTTPServer() {
	if runner.configuration.HTTP.Listen == "" {
		return
	}

	router := BuildGinRouter(runner.appContext)
	runner.serverManager = NewServerManager(runner.configuration.HTTP.Listen, router)
	runner.serverManager.Start()
}

// runForwarder 运行转发循环
// 持续模式下阻塞到收到关闭信号,单次模式跑完一轮即返回
func (runner *ApplicationRunner) runForwarder() {
	runner.appContext.Forwarder.Run(
		runner.signalHandler.Context(),
		runner.configuration.ContinuousMode,
	)
}

// performShutdown 执行关闭流程
func (runner *ApplicationRunner) performShutdown() {
	// 先关闭 HTTP 服务器,停止接收新请求
	if runner.serverManager != nil {
		if err := runner.serverManager.GracefulShutdown(); err != nil {
			log.Printf("[Runner] 服务器关闭出现错误: %v", err)
		}
	}

	// 再关闭应用上下文,释放所有资源
	if runner.appContext != nil {
		runner.appContext.Close()
		log.Println("[Runner] 应用上下文资源释放完成")
	}

	log.Println("[Runner] 应用程序已完全关闭")
}
