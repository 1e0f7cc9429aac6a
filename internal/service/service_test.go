package service

import (
	"fmt"
	"strings"
	"testing"

	"compliance-tracker/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database so service tests run
// against the real gorm query paths.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// A shared-cache memory db disappears when its last connection closes.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.User{}, &model.Business{}, &model.Task{},
		&model.TaskHistory{}, &model.Document{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedTenant creates one business with its owner and one staff member.
func seedTenant(t *testing.T, db *gorm.DB, tag string) (owner, staff model.User, biz model.Business) {
	t.Helper()

	owner = model.User{
		Name:         tag + " Owner",
		Email:        tag + "-owner@example.com",
		PasswordHash: "irrelevant",
		Role:         model.RoleOwner,
	}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	biz = model.Business{Name: tag + " Business", OwnerID: owner.ID}
	if err := db.Create(&biz).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}
	if err := db.Model(&owner).Update("business_id", biz.ID).Error; err != nil {
		t.Fatalf("attach owner: %v", err)
	}
	owner.BusinessID = &biz.ID

	staff = model.User{
		Name:         tag + " Staff",
		Email:        tag + "-staff@example.com",
		PasswordHash: "irrelevant",
		Role:         model.RoleStaff,
		BusinessID:   &biz.ID,
	}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	return owner, staff, biz
}

func ownerPrincipal(owner model.User, biz model.Business) model.Principal {
	return model.Principal{UserID: owner.ID, BusinessID: biz.ID, Role: model.RoleOwner}
}

func staffPrincipal(staff model.User, biz model.Business) model.Principal {
	return model.Principal{UserID: staff.ID, BusinessID: biz.ID, Role: model.RoleStaff}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
