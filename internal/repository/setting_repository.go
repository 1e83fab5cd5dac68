package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chynybekuuludastan/content_studio/internal/models"
	"github.com/chynybekuuludastan/content_studio/internal/settings"
)

// SettingRepository reads and writes per-user settings rows
type SettingRepository interface {
	Get(ctx context.Context, userID uuid.UUID, key string) (string, bool, error)
	Set(ctx context.Context, userID uuid.UUID, key, value string) error
	All(ctx context.Context, userID uuid.UUID) (map[string]string, error)
	// Store returns a settings.Store bound to userID
	Store(userID uuid.UUID) settings.Store
}

type settingRepository struct {
	*BaseRepository
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (r *settingRepository) Get(ctx context.Context, userID uuid.UUID, key string) (string, bool, error) {
	var setting models.Setting
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

// Set inserts the row or overwrites its value
func (r *settingRepository) Set(ctx context.Context, userID uuid.UUID, key, value string) error {
	setting := models.Setting{UserID: userID, Key: key, Value: value}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

func (r *settingRepository) All(ctx context.Context, userID uuid.UUID) (map[string]string, error) {
	var rows []models.Setting
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

func (r *settingRepository) Store(userID uuid.UUID) settings.Store {
	return &userStore{repo: r, userID: userID}
}

// userStore adapts a SettingRepository to settings.Store for one user
type userStore struct {
	repo   SettingRepository
	userID uuid.UUID
}

func (s *userStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.repo.Get(ctx, s.userID, key)
}

func (s *userStore) Set(ctx context.Context, key, value string) error {
	return s.repo.Set(ctx, s.userID, key, value)
}
