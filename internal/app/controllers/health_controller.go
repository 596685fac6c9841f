package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"autolot-http-service/internal/app/middleware"
	"autolot-http-service/internal/domain/services"
	"autolot-http-service/internal/domain/services/container"
	"autolot-http-service/internal/error/code"
	"autolot-http-service/internal/error/response"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Container *container.ServiceContainer
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{Container: container}
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthCheckController(container)

		switch method {
		case "ping":
			controller.Ping(ctx)
		case "health":
			controller.Health(ctx)
		case "cacheStats":
			controller.CacheStats(ctx)
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Ping 健康检查端点
func (h *HealthCheckController) Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Health 检查数据库与Redis连接状态
func (h *HealthCheckController) Health(c *gin.Context) {
	status := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	healthy := true

	// 数据库连接检查
	sqlDB, err := h.Container.GetDB().DB()
	if err != nil || sqlDB.Ping() != nil {
		status["database"] = "down"
		healthy = false
	} else {
		status["database"] = "up"
	}

	// Redis连接检查
	redisService := h.Container.GetService("redis").(services.InterfaceRedisService)
	if err := redisService.Ping(); err != nil {
		status["redis"] = "down"
	} else {
		status["redis"] = "up"
	}

	if !healthy {
		status["status"] = "unhealthy"
		response.Fail(c, code.ErrDatabase, status)
		return
	}

	response.Success(c, status)
}

// CacheStats 返回内存缓存统计信息
func (h *HealthCheckController) CacheStats(c *gin.Context) {
	response.Success(c, middleware.CacheStats())
}
