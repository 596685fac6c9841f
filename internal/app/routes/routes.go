package routes

import (
	_ "autolot-http-service/docs"
	"autolot-http-service/internal/app/controllers"
	"autolot-http-service/internal/app/middleware"
	"autolot-http-service/internal/domain/services/container"
	"autolot-http-service/internal/infrastructure/config"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 设置正确的Content-Type，确保UTF-8编码
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})
	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, nil)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg, db)
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	api.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	api.GET("/health", controllers.HandleHealthFunc(container, "health"))
	api.GET("/health/cache-stats", controllers.HandleHealthFunc(container, "cacheStats"))

	// 认证路由
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))

	// 公开的车辆目录路由
	vehiclesGroup := api.Group("/vehicles")
	vehiclesGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleVehicleFunc(container, "getVehicles"))
	vehiclesGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 30 * time.Second}), controllers.HandleVehicleFunc(container, "getVehicle"))

	// 公开的预约路由，防刷限流更严格
	appointmentsGroup := api.Group("/appointments")
	appointmentsGroup.Use(middleware.PathRateLimiter(5, 10)) // 每秒5个请求，最多突发10个
	appointmentsGroup.POST("", controllers.HandleAppointmentFunc(container, "createAppointment"))
	appointmentsGroup.GET("/availability", controllers.HandleAppointmentFunc(container, "getAvailability"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("/")
	auth.Use(middleware.AuthenticateAdmin())

	// 添加通用限流中间件 - 每秒30个请求，最多突发50个请求
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 会话续期路由
	auth.POST("/auth/renew", controllers.HandleJWTFunc(container, "renew"))

	// 车辆管理路由
	vehiclesGroup := auth.Group("/vehicles")
	vehiclesGroup.GET("/stats", middleware.NoCache(), controllers.HandleVehicleFunc(container, "getVehicleStats"))
	vehiclesGroup.POST("", controllers.HandleVehicleFunc(container, "createVehicle"))
	vehiclesGroup.PUT("/:id", controllers.HandleVehicleFunc(container, "updateVehicle"))
	vehiclesGroup.DELETE("/:id", controllers.HandleVehicleFunc(container, "deleteVehicle"))
	vehiclesGroup.POST("/:id/sold", controllers.HandleVehicleFunc(container, "markVehicleSold"))

	// 预约管理路由
	appointmentsGroup := auth.Group("/appointments")
	appointmentsGroup.GET("", controllers.HandleAppointmentFunc(container, "getAppointments"))
	appointmentsGroup.GET("/stats", middleware.NoCache(), controllers.HandleAppointmentFunc(container, "getAppointmentStats"))
	appointmentsGroup.GET("/:id", controllers.HandleAppointmentFunc(container, "getAppointment"))
	appointmentsGroup.PATCH("/:id", controllers.HandleAppointmentFunc(container, "updateAppointmentStatus"))
	appointmentsGroup.DELETE("/:id", controllers.HandleAppointmentFunc(container, "deleteAppointment"))

	// 管理员路由
	adminGroup := auth.Group("/admins")
	adminGroup.GET("", controllers.HandleAdminFunc(container, "getAdmins"))
	adminGroup.GET("/:id", controllers.HandleAdminFunc(container, "getAdmin"))
	adminGroup.POST("", controllers.HandleAdminFunc(container, "createAdmin"))
	adminGroup.PUT("/:id", controllers.HandleAdminFunc(container, "updateAdmin"))
	adminGroup.DELETE("/:id", controllers.HandleAdminFunc(container, "deleteAdmin"))
}
