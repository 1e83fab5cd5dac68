package repository

import (
	"gorm.io/gorm"
)

// Factory manages all repositories
type Factory struct {
	UserRepository         UserRepository
	SettingRepository      SettingRepository
	GenerationRepository   GenerationRepository
	UserActivityRepository UserActivityRepository
}

// NewRepositoryFactory creates a repository factory with all repositories
func NewRepositoryFactory(db *gorm.DB) *Factory {
	return &Factory{
		UserRepository:         NewUserRepository(db),
		SettingRepository:      NewSettingRepository(db),
		GenerationRepository:   NewGenerationRepository(db),
		UserActivityRepository: NewUserActivityRepository(db),
	}
}
