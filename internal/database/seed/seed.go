package seed

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/content_studio/internal/models"
	"github.com/chynybekuuludastan/content_studio/internal/utils/password"
)

// Role names
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// DefaultRoles are created on first start
var DefaultRoles = []models.Role{
	{Name: RoleAdmin, Description: "Administrator with access to every user's generations"},
	{Name: RoleEditor, Description: "User who can configure providers and generate content"},
	{Name: RoleViewer, Description: "Read-only access to the provider catalog and own history"},
}

// SeedDefaultRoles creates any missing default role
func SeedDefaultRoles(db *gorm.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for _, role := range DefaultRoles {
		var count int64
		if err := db.Model(&models.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		role := role
		if err := db.Create(&role).Error; err != nil {
			return err
		}
		log.Info("Seeded role", zap.String("role", role.Name))
	}
	return nil
}

// SeedAdminUser creates the admin account when no user holds the admin role
func SeedAdminUser(db *gorm.DB, email, plainPassword string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	var adminRole models.Role
	if err := db.Where("name = ?", RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var existing models.User
	err := db.Where("role_id = ?", adminRole.ID).First(&existing).Error
	if err == nil {
		log.Debug("Admin user already seeded, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     "admin",
		Email:        email,
		PasswordHash: hash,
		RoleID:       adminRole.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info("Seeded admin user", zap.String("email", email))
	return nil
}

// Run seeds roles and the admin account
func Run(db *gorm.DB, adminEmail, adminPassword string, log *zap.Logger) error {
	if err := SeedDefaultRoles(db, log); err != nil {
		return err
	}
	return SeedAdminUser(db, adminEmail, adminPassword, log)
}
