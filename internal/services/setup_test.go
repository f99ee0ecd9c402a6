package services

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/surajorg0/jira-tracker-backend/internal/models"
	"github.com/surajorg0/jira-tracker-backend/internal/policy"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Project{}, &models.Bug{}, &models.Task{}, &models.File{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupBlobs(t *testing.T) *BlobStore {
	t.Helper()
	blobs, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	return blobs
}

func createUser(t *testing.T, db *gorm.DB, name, role string, approved bool) *models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	user := &models.User{
		Name:       name,
		Email:      strings.ToLower(name) + "@test.local",
		Phone:      "555" + name,
		Password:   string(hash),
		Role:       role,
		IsApproved: approved,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func newGate() *policy.AuthGate { return policy.NewAuthGate() }

func strPtr(s string) *string { return &s }
