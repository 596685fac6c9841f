package controllers

import (
	"autolot-http-service/internal/domain/services"
	"autolot-http-service/internal/domain/services/container"
	"autolot-http-service/internal/error/code"
	"autolot-http-service/internal/error/response"
	"strings"

	"github.com/gin-gonic/gin"
)

// InterfaceJWTController 定义认证控制器接口
type InterfaceJWTController interface {
	Login()
	Renew()
}

// JWTController 处理身份验证请求
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController 创建一个新的认证控制器
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 表示登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// LoginResponse 表示登录响应
type LoginResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"Login successful"`
	Data    interface{} `json:"data"`
}

// LoginData 表示登录成功后返回的数据
type LoginData struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	UserID    uint   `json:"user_id" example:"1"`
	Role      string `json:"role" example:"admin"`
	Username  string `json:"username" example:"admin"`
	ExpiresAt string `json:"expires_at" example:"2026-01-01T02:00:00Z"`
}

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"401"`
	Message string      `json:"message" example:"Invalid username or password"`
	Data    interface{} `json:"data"`
}

// HandleJWTFunc 返回一个处理JWT认证请求的Gin处理函数
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "renew":
			controller.Renew()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. Login 处理管理员登录
// @Summary      管理员登录
// @Description  校验用户名和密码，成功后返回带有效期的JWT令牌
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录请求参数"
// @Success      200  {object}  LoginResponse{data=LoginData}  "登录成功"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      401  {object}  ErrorResponse  "用户名或密码错误"
// @Failure      500  {object}  ErrorResponse  "服务器内部错误"
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	result, err := jwtService.Login(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		// 不区分用户不存在与密码错误
		response.Unauthorized(c.Ctx)
		return
	}

	response.Success(c.Ctx, result)
}

// 2. Renew 续期当前会话令牌
// @Summary      续期会话令牌
// @Description  使用当前有效令牌换取一个新令牌，有效期重新计算
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  LoginResponse{data=LoginData}  "续期成功"
// @Failure      401  {object}  ErrorResponse  "令牌无效或已过期"
// @Router       /auth/renew [post]
// @Security     BearerAuth
func (c *JWTController) Renew() {
	authHeader := c.Ctx.GetHeader("Authorization")
	tokenString := authHeader
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = authHeader[7:]
	}
	if tokenString == "" {
		response.Fail(c.Ctx, code.ErrTokenInvalid, nil)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	result, err := jwtService.Renew(tokenString)
	if err != nil {
		response.Fail(c.Ctx, code.ErrTokenInvalid, nil)
		return
	}

	response.Success(c.Ctx, result)
}
