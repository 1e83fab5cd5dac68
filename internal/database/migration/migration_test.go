package migration

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func tableStep(name, table string) Step {
	return Step{
		Name: name,
		Up: func(tx *gorm.DB) error {
			return tx.Exec("CREATE TABLE " + table + " (id INTEGER PRIMARY KEY)").Error
		},
		Down: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE " + table).Error
		},
	}
}

func TestMigrator_MigrateInOrderAndIdempotent(t *testing.T) {
	db := setupTestDB(t)
	steps := []Step{tableStep("01_a", "a"), tableStep("02_b", "b"), tableStep("03_c", "c")}

	m, err := NewMigrator(db, steps, nil)
	require.NoError(t, err)
	require.NoError(t, m.Migrate())
	require.NoError(t, m.Migrate())

	var names []string
	require.NoError(t, db.Model(&Migration{}).Order("id").Pluck("name", &names).Error)
	assert.Equal(t, []string{"01_a", "02_b", "03_c"}, names)

	status, err := m.GetStatus()
	require.NoError(t, err)
	require.Len(t, status, 3)
	for _, s := range status {
		assert.True(t, s.Applied)
		assert.Equal(t, 1, s.Batch)
	}
}

func TestMigrator_RollbackLastBatch(t *testing.T) {
	db := setupTestDB(t)

	first, err := NewMigrator(db, []Step{tableStep("01_a", "a")}, nil)
	require.NoError(t, err)
	require.NoError(t, first.Migrate())

	second, err := NewMigrator(db, []Step{tableStep("01_a", "a"), tableStep("02_b", "b")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.CurrentBatch)
	require.NoError(t, second.Migrate())

	third, err := NewMigrator(db, second.Steps, nil)
	require.NoError(t, err)
	require.NoError(t, third.Rollback())

	assert.True(t, db.Migrator().HasTable("a"))
	assert.False(t, db.Migrator().HasTable("b"))

	status, err := third.GetStatus()
	require.NoError(t, err)
	assert.True(t, status[0].Applied)
	assert.False(t, status[1].Applied)
}

func TestMigrator_Reset(t *testing.T) {
	db := setupTestDB(t)
	m, err := NewMigrator(db, []Step{tableStep("01_a", "a"), tableStep("02_b", "b")}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Migrate())
	require.NoError(t, m.Reset())

	var count int64
	require.NoError(t, db.Model(&Migration{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
	assert.True(t, db.Migrator().HasTable("b"))
}

func TestMigrator_FailedStepIsNotRecorded(t *testing.T) {
	db := setupTestDB(t)
	broken := Step{
		Name: "02_broken",
		Up:   func(*gorm.DB) error { return errors.New("boom") },
		Down: func(*gorm.DB) error { return nil },
	}
	m, err := NewMigrator(db, []Step{tableStep("01_a", "a"), broken}, nil)
	require.NoError(t, err)

	err = m.Migrate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "02_broken")

	status, err := m.GetStatus()
	require.NoError(t, err)
	assert.True(t, status[0].Applied)
	assert.False(t, status[1].Applied)
}

func TestSteps_Ordered(t *testing.T) {
	steps := Steps()
	require.NotEmpty(t, steps)
	for i := 1; i < len(steps); i++ {
		assert.Less(t, steps[i-1].Name, steps[i].Name)
	}
}
