package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/huddleup/huddle/backend/internal/models"
	"github.com/huddleup/huddle/backend/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database for one test. The shared
// cache keyed by test name keeps all pooled connections on the same store.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Group{}, &models.Membership{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Phone:     "555-" + email,
		Password:  "hashed-password",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func createTestGroup(t *testing.T, db *gorm.DB, creatorID uint, name string, capacity int, public bool) *models.Group {
	t.Helper()

	group, err := NewGroupService(db).Create(&CreateGroupRequest{
		Name:        name,
		Description: "test group",
		MaxCapacity: capacity,
		IsPublic:    &public,
	}, creatorID)
	if err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// assertAppError fails the test unless err is an AppError with the given
// HTTP status.
func assertAppError(t *testing.T, err error, wantStatus int) *response.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with status %d, got nil", wantStatus)
	}
	var appErr *response.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != wantStatus {
		t.Fatalf("expected HTTP status %d, got %d (%s)", wantStatus, appErr.HTTPStatus, appErr.Message)
	}
	return appErr
}
