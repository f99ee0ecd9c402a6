package db

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/surajorg0/jira-tracker-backend/internal/config"
	"github.com/surajorg0/jira-tracker-backend/internal/models"
)

// EnsureAdmin guarantees exactly one admin account exists, created from the
// deployment-configured identity and auto-approved. Idempotent: if any admin
// record exists the call is a no-op, so re-running bootstrap never creates a
// second admin or resets the existing one's credentials.
func EnsureAdmin(db *gorm.DB, cfg config.Config) error {
	var existing models.User
	err := db.Where("role = ?", models.RoleAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:       cfg.AdminName,
		Email:      cfg.AdminEmail,
		Phone:      cfg.AdminPhone,
		Password:   string(hash),
		Role:       models.RoleAdmin,
		IsApproved: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("bootstrap: admin account created (%s)", admin.Email)
	return nil
}
