package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"autolot-http-service/internal/domain/models"
)

func newTestAdminService(t *testing.T) (*AdminService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewAdminService(db, testConfig()).(*AdminService)
	return svc, db
}

func TestCreateAdmin_HashesPassword(t *testing.T) {
	svc, _ := newTestAdminService(t)

	admin := &models.Admin{Username: "admin", Password: "Admin@123", Role: "admin"}
	if err := svc.CreateAdmin(admin); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if admin.Password == "Admin@123" {
		t.Fatalf("password must be hashed before persisting")
	}
	if !svc.CheckPassword("Admin@123", admin.Password) {
		t.Fatalf("stored hash must match the original password")
	}
}

func TestCreateAdmin_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAdminService(t)

	if err := svc.CreateAdmin(&models.Admin{Username: "admin", Password: "a"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.CreateAdmin(&models.Admin{Username: "admin", Password: "b"}); err == nil {
		t.Fatalf("expected duplicate username to be rejected")
	}
}

func TestUpdateAdmin_RehashesPassword(t *testing.T) {
	svc, _ := newTestAdminService(t)

	admin := &models.Admin{Username: "admin", Password: "Admin@123"}
	if err := svc.CreateAdmin(admin); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.UpdateAdmin(admin.ID, map[string]interface{}{"password": "NewPass@456"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !svc.CheckPassword("NewPass@456", updated.Password) {
		t.Fatalf("updated hash must match the new password")
	}
	if svc.CheckPassword("Admin@123", updated.Password) {
		t.Fatalf("old password must no longer match")
	}
}

func TestDeleteAdmin_LastAdminGuard(t *testing.T) {
	svc, _ := newTestAdminService(t)

	admin := &models.Admin{Username: "admin", Password: "a"}
	if err := svc.CreateAdmin(admin); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 最后一个管理员不可删除
	if err := svc.DeleteAdmin(admin.ID); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	second := &models.Admin{Username: "backup", Password: "b"}
	if err := svc.CreateAdmin(second); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.DeleteAdmin(second.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeleteAdmin(9999); !errors.Is(err, ErrLastAdmin) {
		// 删除后只剩一个管理员，守卫再次生效
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}
