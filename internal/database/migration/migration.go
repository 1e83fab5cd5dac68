package migration

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migration represents a database migration record
type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null;unique"`
	Batch     int       `gorm:"not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// MigrationFunc defines a function that can run a migration
type MigrationFunc func(tx *gorm.DB) error

// Step is one named migration with its up and down functions
type Step struct {
	Name string
	Up   MigrationFunc
	Down MigrationFunc
}

// Status describes whether a step has been applied
type Status struct {
	Name      string
	Applied   bool
	Batch     int
	AppliedAt time.Time
}

// Migrator handles database migrations
type Migrator struct {
	DB           *gorm.DB
	Steps        []Step
	CurrentBatch int
	log          *zap.Logger
}

// NewMigrator creates a migrator for steps, creating the bookkeeping table when needed
func NewMigrator(db *gorm.DB, steps []Step, log *zap.Logger) (*Migrator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var maxBatch int
	if err := db.Model(&Migration{}).Select("COALESCE(MAX(batch), 0)").Row().Scan(&maxBatch); err != nil {
		return nil, fmt.Errorf("failed to read current batch: %w", err)
	}

	return &Migrator{
		DB:           db,
		Steps:        steps,
		CurrentBatch: maxBatch + 1,
		log:          log,
	}, nil
}

func (m *Migrator) applied() (map[string]Migration, error) {
	var rows []Migration
	if err := m.DB.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	applied := make(map[string]Migration, len(rows))
	for _, row := range rows {
		applied[row.Name] = row
	}
	return applied, nil
}

func (m *Migrator) step(name string) (Step, bool) {
	for _, s := range m.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// Migrate runs all pending migrations in declaration order
func (m *Migrator) Migrate() error {
	applied, err := m.applied()
	if err != nil {
		return err
	}

	for _, step := range m.Steps {
		if _, ok := applied[step.Name]; ok {
			continue
		}
		m.log.Info("Running migration", zap.String("name", step.Name))

		err := m.DB.Transaction(func(tx *gorm.DB) error {
			if err := step.Up(tx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return tx.Create(&Migration{Name: step.Name, Batch: m.CurrentBatch}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", step.Name, err)
		}
	}

	return nil
}

// Rollback rolls back the last batch of migrations
func (m *Migrator) Rollback() error {
	var rows []Migration
	if err := m.DB.Where("batch = ?", m.CurrentBatch-1).Order("id DESC").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to get migrations to rollback: %w", err)
	}

	if len(rows) == 0 {
		m.log.Info("No migrations to rollback")
		return nil
	}

	if err := m.down(rows); err != nil {
		return err
	}
	m.CurrentBatch--
	return nil
}

// Reset rolls back all migrations and then applies them again
func (m *Migrator) Reset() error {
	var rows []Migration
	if err := m.DB.Order("id DESC").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	if err := m.down(rows); err != nil {
		return err
	}

	m.CurrentBatch = 1
	return m.Migrate()
}

func (m *Migrator) down(rows []Migration) error {
	for _, row := range rows {
		step, ok := m.step(row.Name)
		if !ok {
			continue
		}
		m.log.Info("Rolling back migration", zap.String("name", row.Name))

		row := row
		err := m.DB.Transaction(func(tx *gorm.DB) error {
			if err := step.Down(tx); err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			return tx.Delete(&row).Error
		})
		if err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", row.Name, err)
		}
	}
	return nil
}

// GetStatus returns the status of every step in declaration order
func (m *Migrator) GetStatus() ([]Status, error) {
	applied, err := m.applied()
	if err != nil {
		return nil, err
	}

	status := make([]Status, 0, len(m.Steps))
	for _, step := range m.Steps {
		row, ok := applied[step.Name]
		status = append(status, Status{
			Name:      step.Name,
			Applied:   ok,
			Batch:     row.Batch,
			AppliedAt: row.AppliedAt,
		})
	}
	return status, nil
}
