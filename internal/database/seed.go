package database

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wauu/lms_backend/internal/config"
	"github.com/wauu/lms_backend/internal/models"
	"github.com/wauu/lms_backend/internal/utils"
)

// SeedAdmin creates the initial administrator account when none exists.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:       uuid.NewString(),
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hashed,
		FirstName:    cfg.AdminFirstName,
		LastName:     cfg.AdminLastName,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Seeded initial admin:", admin.Email)
	return nil
}
