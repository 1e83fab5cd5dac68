package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chynybekuuludastan/content_studio/internal/models"
)

// UserRepository defines operations for User model
type UserRepository interface {
	Repository
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindWithRole(userID uuid.UUID) (*models.User, error)
	FindAll(page, pageSize int) ([]*models.User, int64, error)
	FindRoleByName(name string) (*models.Role, error)
	UpdatePassword(userID uuid.UUID, passwordHash string) error
	UpdateRole(userID uuid.UUID, roleID uint) error
	ExistsByEmail(email string) (bool, error)
	ExistsByUsername(username string) (bool, error)
}

type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.DB.Where("email = ?", email).Preload("Role").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *userRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.DB.Where("username = ?", username).Preload("Role").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindWithRole loads a user and its role
func (r *userRepository) FindWithRole(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.Where("id = ?", userID).Preload("Role").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll retrieves all users with pagination
func (r *userRepository) FindAll(page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var count int64

	if err := r.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if err := r.DB.Scopes(Paginate(page, pageSize)).Preload("Role").Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, count, nil
}

// FindRoleByName looks up a role such as "admin" or "editor"
func (r *userRepository) FindRoleByName(name string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// UpdatePassword updates a user's password
func (r *userRepository) UpdatePassword(userID uuid.UUID, passwordHash string) error {
	return r.DB.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
}

// UpdateRole assigns roleID to a user
func (r *userRepository) UpdateRole(userID uuid.UUID, roleID uint) error {
	result := r.DB.Model(&models.User{}).Where("id = ?", userID).Update("role_id", roleID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExistsByEmail checks if a user with the given email exists
func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ExistsByUsername checks if a user with the given username exists
func (r *userRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
