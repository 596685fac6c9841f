package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"autolot-http-service/internal/domain/models"
)

func newTestJWTService(t *testing.T) (*JWTService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewJWTService(testConfig(), db).(*JWTService)
	return svc, db
}

func createTestAdmin(t *testing.T, db *gorm.DB, username, password string) *models.Admin {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := &models.Admin{
		Username: username,
		Password: string(hashed),
		Role:     "admin",
		Status:   "active",
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin
}

func TestLogin_OK(t *testing.T) {
	svc, db := newTestJWTService(t)
	admin := createTestAdmin(t, db, "admin", "Admin@123")

	result, err := svc.Login("admin", "Admin@123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a token")
	}
	if result.UserID != admin.ID || result.Role != "admin" || result.Username != "admin" {
		t.Fatalf("unexpected login result: %+v", result)
	}

	// 令牌有效期应接近会话TTL
	remaining := time.Until(result.ExpiresAt)
	if remaining < SessionTTL-time.Minute || remaining > SessionTTL {
		t.Fatalf("unexpected session expiry: %v", remaining)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, db := newTestJWTService(t)
	createTestAdmin(t, db, "admin", "Admin@123")

	if _, err := svc.Login("admin", "wrong"); err == nil {
		t.Fatalf("expected login to fail with wrong password")
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newTestJWTService(t)

	if _, err := svc.Login("ghost", "whatever"); err == nil {
		t.Fatalf("expected login to fail for unknown user")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc, _ := newTestJWTService(t)

	tokenString, err := svc.GenerateToken(7, "admin", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	token, err := svc.ValidateToken(tokenString)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if !token.Valid {
		t.Fatalf("expected token to be valid")
	}

	claims, err := svc.ExtractClaims(tokenString)
	if err != nil {
		t.Fatalf("extract claims: %v", err)
	}
	if claims.UserID != 7 || claims.Role != "admin" || claims.Username != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != "autolot-http-service" {
		t.Fatalf("unexpected issuer: %q", claims.Issuer)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc, _ := newTestJWTService(t)

	// 用服务密钥签发一个已过期的令牌
	claims := &JWTClaims{
		UserID:   1,
		Role:     "admin",
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-SessionTTL - time.Minute)),
			Issuer:    "autolot-http-service",
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(svc.secretKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	// 过期会话必须被拒绝，续期同样不可用
	if _, err := svc.ValidateToken(tokenString); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
	if _, err := svc.Renew(tokenString); err == nil {
		t.Fatalf("expected renew to reject expired token")
	}
}

func TestLogin_CarriesStoredRole(t *testing.T) {
	svc, db := newTestJWTService(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("Root@123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := &models.Admin{
		Username: "root",
		Password: string(hashed),
		Role:     "system_admin",
		Status:   "active",
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	result, err := svc.Login("root", "Root@123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Role != "system_admin" {
		t.Fatalf("expected stored role in result, got %q", result.Role)
	}

	claims, err := svc.ExtractClaims(result.Token)
	if err != nil {
		t.Fatalf("extract claims: %v", err)
	}
	if claims.Role != "system_admin" {
		t.Fatalf("expected stored role in token, got %q", claims.Role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc, _ := newTestJWTService(t)

	other := &JWTService{secretKey: "another-secret", issuer: "autolot-http-service"}
	tokenString, err := other.GenerateToken(1, "admin", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := svc.ValidateToken(tokenString); err == nil {
		t.Fatalf("expected validation to fail with wrong secret")
	}
}

func TestRenew(t *testing.T) {
	svc, db := newTestJWTService(t)
	admin := createTestAdmin(t, db, "admin", "Admin@123")

	login, err := svc.Login("admin", "Admin@123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	renewed, err := svc.Renew(login.Token)
	if err != nil {
		t.Fatalf("renew failed: %v", err)
	}
	if renewed.UserID != admin.ID || renewed.Role != "admin" || renewed.Username != "admin" {
		t.Fatalf("renewed session lost identity: %+v", renewed)
	}

	// 新令牌必须可用
	claims, err := svc.ExtractClaims(renewed.Token)
	if err != nil {
		t.Fatalf("extract renewed claims: %v", err)
	}
	if claims.UserID != admin.ID {
		t.Fatalf("unexpected renewed claims: %+v", claims)
	}
}

func TestRenew_InvalidToken(t *testing.T) {
	svc, _ := newTestJWTService(t)

	if _, err := svc.Renew("not-a-token"); err == nil {
		t.Fatalf("expected renew to fail for malformed token")
	}
}
