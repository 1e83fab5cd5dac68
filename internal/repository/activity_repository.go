package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/content_studio/internal/models"
)

// Activity action types
const (
	ActionLogin    = "login"
	ActionRegister = "register"
	ActionGenerate = "generate"
	ActionSettings = "settings"
)

// UserActivityRepository records user actions
type UserActivityRepository interface {
	Log(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID, details map[string]interface{}) error
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]models.UserActivity, error)
}

type userActivityRepository struct {
	*BaseRepository
}

// NewUserActivityRepository creates a new activity repository
func NewUserActivityRepository(db *gorm.DB) UserActivityRepository {
	return &userActivityRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (r *userActivityRepository) Log(ctx context.Context, userID uuid.UUID, action, entityType string, entityID uuid.UUID, details map[string]interface{}) error {
	activity := models.UserActivity{
		UserID:     userID,
		ActionType: action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			return err
		}
		activity.Details = datatypes.JSON(data)
	}
	return r.DB.WithContext(ctx).Create(&activity).Error
}

func (r *userActivityRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]models.UserActivity, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	var activities []models.UserActivity
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
