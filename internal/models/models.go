// internal/models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role represents a user role in the system
type Role struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(50);unique;not null;index"`
	Description string `gorm:"type:text"`
	// Relationships
	Users []User `gorm:"foreignKey:RoleID"`
}

// User represents a system user
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Username     string         `gorm:"type:varchar(100);unique;not null;index"`
	Email        string         `gorm:"type:varchar(255);unique;not null;index"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	RoleID       uint           `gorm:"not null;index"`
	Role         Role           `gorm:"foreignKey:RoleID"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	// Relationships
	Settings       []Setting      `gorm:"foreignKey:UserID" json:"-"`
	Generations    []Generation   `gorm:"foreignKey:UserID" json:"-"`
	UserActivities []UserActivity `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate assigns an ID when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Setting is one persisted key-value preference of a user
type Setting struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_settings_user_key"`
	Key       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_settings_user_key"`
	Value     string    `gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Generation kinds
const (
	GenerationKindFreeform = "freeform"
	GenerationKindOutline  = "outline"
	GenerationKindMetadata = "metadata"
	GenerationKindSchema   = "schema"
)

// Generation records one call made through the provider client
type Generation struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	Kind      string         `gorm:"type:varchar(50);not null;index" json:"kind"`
	Provider  string         `gorm:"type:varchar(50);not null;index" json:"provider"`
	Model     string         `gorm:"type:varchar(100)" json:"model"`
	Prompt    string         `gorm:"type:text" json:"prompt"`
	Content   string         `gorm:"type:text" json:"content"`
	Success   bool           `gorm:"not null;default:false;index" json:"success"`
	Error     string         `gorm:"type:text" json:"error,omitempty"`
	Raw       datatypes.JSON `gorm:"type:jsonb" json:"raw,omitempty" swaggertype:"object"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// BeforeCreate assigns an ID when none is set
func (g *Generation) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// UserActivity logs user actions in the system
type UserActivity struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User       User           `gorm:"foreignKey:UserID" json:"-"`
	ActionType string         `gorm:"type:varchar(100);not null;index" json:"action_type"` // login, generate, settings, etc.
	EntityType string         `gorm:"type:varchar(100);index" json:"entity_type,omitempty"`
	EntityID   uuid.UUID      `gorm:"type:uuid;index" json:"entity_id"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty" swaggertype:"object"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// BeforeCreate assigns an ID when none is set
func (a *UserActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
