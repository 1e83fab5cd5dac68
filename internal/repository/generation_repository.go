package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/content_studio/internal/models"
)

// GenerationFilter narrows generation listings. Zero values match everything.
type GenerationFilter struct {
	Kind     string
	Provider string
	Success  *bool
}

func (f GenerationFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Kind != "" {
		db = db.Where("kind = ?", f.Kind)
	}
	if f.Provider != "" {
		db = db.Where("provider = ?", f.Provider)
	}
	if f.Success != nil {
		db = db.Where("success = ?", *f.Success)
	}
	return db
}

// GenerationRepository defines operations for Generation model
type GenerationRepository interface {
	Repository
	Record(ctx context.Context, generation *models.Generation) error
	FindByUserID(ctx context.Context, userID uuid.UUID, filter GenerationFilter, page, pageSize int) ([]*models.Generation, int64, error)
	FindAll(ctx context.Context, filter GenerationFilter, page, pageSize int) ([]*models.Generation, int64, error)
	CountByProvider(ctx context.Context) (map[string]int64, error)
}

type generationRepository struct {
	*BaseRepository
}

// NewGenerationRepository creates a new generation repository
func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Record stores a finished generation
func (r *generationRepository) Record(ctx context.Context, generation *models.Generation) error {
	return r.DB.WithContext(ctx).Create(generation).Error
}

// FindByUserID lists a user's generations, newest first
func (r *generationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter GenerationFilter, page, pageSize int) ([]*models.Generation, int64, error) {
	return r.list(r.DB.WithContext(ctx).Where("user_id = ?", userID), filter, page, pageSize)
}

// FindAll lists generations of every user, newest first
func (r *generationRepository) FindAll(ctx context.Context, filter GenerationFilter, page, pageSize int) ([]*models.Generation, int64, error) {
	return r.list(r.DB.WithContext(ctx), filter, page, pageSize)
}

func (r *generationRepository) list(db *gorm.DB, filter GenerationFilter, page, pageSize int) ([]*models.Generation, int64, error) {
	var generations []*models.Generation
	var count int64

	query := filter.apply(db.Model(&models.Generation{})).Session(&gorm.Session{})
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Scopes(Paginate(page, pageSize)).Order("created_at DESC").Find(&generations).Error; err != nil {
		return nil, 0, err
	}

	return generations, count, nil
}

// CountByProvider returns the number of generations per provider
func (r *generationRepository) CountByProvider(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Provider string
		Count    int64
	}
	err := r.DB.WithContext(ctx).Model(&models.Generation{}).
		Select("provider, COUNT(*) AS count").
		Group("provider").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Provider] = row.Count
	}
	return counts, nil
}
