package main

import (
	"net/http"

	"github.com/Noodlesalat/sms2mail/internal/forwarder"

	"github.com/gin-gonic/gin"
)

//
// 数据模型定义
//

// UnifiedResponse 统一的 API 响应格式
type UnifiedResponse struct {
	Code int         `json:"code"`
	Data interface{} `json:"data,omitempty"`
	Msg  string      `json:"msg"`
}

//
// 辅助函数 - 响应处理
//

// sendSuccessResponse 发送成功响应
func sendSuccessResponse(context *gin.Context, data interface{}) {
	context.JSON(http.StatusOK, UnifiedResponse{
		Code: http.StatusOK,
		Data: data,
		Msg:  "success",
	})
}

// sendErrorResponse 发送错误响应
func sendErrorResponse(context *gin.Context, httpStatus int, message string) {
	context.JSON(httpStatus, UnifiedResponse{
		Code: httpStatus,
		Data: nil,
		Msg:  message,
	})
}

//
// 中间件
//

// corsMiddleware 跨域资源共享中间件
// 状态接口只监听本机,放开来源便于本地面板集成
func corsMiddleware() gin.HandlerFunc {
	return func(context *gin.Context) {
		context.Header("Access-Control-Allow-Origin", "*")
		context.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		context.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if context.Request.Method == "OPTIONS" {
			context.AbortWithStatus(http.StatusNoContent)
			return
		}

		context.Next()
	}
}

//
// 处理器 - 运行状态
//

// StatusHandler 运行状态查询处理器
type StatusHandler struct {
	tracker *forwarder.StatsTracker
}

// NewStatusHandler 创建状态处理器实例
func NewStatusHandler(tracker *forwarder.StatsTracker) *StatusHandler {
	return &StatusHandler{tracker: tracker}
}

// handleGetStatus 返回转发循环的累计运行统计
func (handler *StatusHandler) handleGetStatus(context *gin.Context) {
	sendSuccessResponse(context, handler.tracker.Snapshot())
}

// handleGetModem 返回最近一次轮询使用的调制解调器标识
// 尚未完成过发现时返回 404
func (handler *StatusHandler) handleGetModem(context *gin.Context) {
	snapshot := handler.tracker.Snapshot()
	if snapshot.Modem == nil {
		sendErrorResponse(context, http.StatusNotFound, "modem not discovered yet")
		return
	}

	sendSuccessResponse(context, snapshot.Modem)
}

// handleHealthz 存活探针
func handleHealthz(context *gin.Context) {
	context.JSON(http.StatusOK, gin.H{"status": "ok"})
}

//
// 路由注册
//

// BuildGinRouter 构建 Gin 路由器
// 状态接口是只读的,所有端点都不改变网关行为
func BuildGinRouter(app *AppContext) *gin.Engine {
	router := gin.Default()

	// 应用全局中间件
	router.Use(corsMiddleware())

	statusHandler := NewStatusHandler(app.Forwarder.Stats())

	router.GET("/healthz", handleHealthz)

	// API v1 路由组
	apiV1 := router.Group("/v1")
	{
		apiV1.GET("/status", statusHandler.handleGetStatus)
		apiV1.GET("/modem", statusHandler.handleGetModem)
	}

	return router
}
