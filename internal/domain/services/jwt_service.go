package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"autolot-http-service/internal/domain/models"
	"autolot-http-service/internal/infrastructure/config"
)

// SessionTTL 管理端会话有效期，活跃续期后重新计时
const SessionTTL = 2 * time.Hour

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(userID uint, role, username string) (string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
	Login(username, password string) (*LoginResult, error)
	Renew(tokenString string) (*LoginResult, error)
}

// LoginResult 表示登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	UserID    uint        `json:"user_id"`
	Role      string      `json:"role"`
	Username  string      `json:"username"`
	ExpiresAt time.Time   `json:"expires_at"`
	CreatedAt interface{} `json:"created_at,omitempty"`
}

// JWTService 提供JWT相关服务
type JWTService struct {
	secretKey string
	issuer    string
	DB        *gorm.DB
}

// JWTClaims 定义JWT令牌的声明结构
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config, db *gorm.DB) InterfaceJWTService {
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "autolot-http-service",
		DB:        db,
	}
}

// GenerateToken 生成JWT令牌，有效期为会话TTL
func (s *JWTService) GenerateToken(userID uint, role, username string) (string, error) {
	expirationTime := time.Now().Add(SessionTTL)

	claims := &JWTClaims{
		UserID:   userID,
		Role:     role,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken 验证JWT令牌
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractClaims 从令牌中提取声明
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	jwtClaims := &JWTClaims{}

	// 提取用户ID
	if userID, ok := claims["user_id"].(float64); ok {
		jwtClaims.UserID = uint(userID)
	}
	// 提取角色
	if role, ok := claims["role"].(string); ok {
		jwtClaims.Role = role
	}
	// 提取用户名
	if username, ok := claims["username"].(string); ok {
		jwtClaims.Username = username
	}
	if issuer, ok := claims["iss"].(string); ok {
		jwtClaims.Issuer = issuer
	}

	return jwtClaims, nil
}

// Login 处理管理员登录请求
func (s *JWTService) Login(username, password string) (*LoginResult, error) {
	var admin models.Admin
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		// 不区分用户不存在和密码错误
		return nil, errors.New("invalid username or password")
	}

	// 比较密码
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, errors.New("invalid username or password")
	}

	// 令牌携带账号存储的角色，区分 admin 和 system_admin
	role := admin.Role
	if role == "" {
		role = "admin"
	}
	token, err := s.GenerateToken(admin.ID, role, admin.Username)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		UserID:    admin.ID,
		Role:      role,
		Username:  admin.Username,
		ExpiresAt: time.Now().Add(SessionTTL),
		CreatedAt: admin.CreatedAt,
	}, nil
}

// Renew 活跃续期：用仍然有效的令牌换取新令牌，会话TTL重新计时
func (s *JWTService) Renew(tokenString string) (*LoginResult, error) {
	claims, err := s.ExtractClaims(tokenString)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(claims.UserID, claims.Role, claims.Username)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		UserID:    claims.UserID,
		Role:      claims.Role,
		Username:  claims.Username,
		ExpiresAt: time.Now().Add(SessionTTL),
	}, nil
}
