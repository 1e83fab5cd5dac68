package seed

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chynybekuuludastan/content_studio/internal/models"
	"github.com/chynybekuuludastan/content_studio/internal/utils/password"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}))
	return db
}

func TestRun_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Run(db, "root@example.com", "pw", nil))
	require.NoError(t, Run(db, "root@example.com", "pw", nil))

	var roles, users int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(len(DefaultRoles)), roles)
	assert.Equal(t, int64(1), users)

	var admin models.User
	require.NoError(t, db.Preload("Role").Where("email = ?", "root@example.com").First(&admin).Error)
	assert.Equal(t, RoleAdmin, admin.Role.Name)

	ok, err := password.Verify("pw", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSeedAdminUser_RequiresRoles(t *testing.T) {
	db := setupTestDB(t)
	assert.ErrorIs(t, SeedAdminUser(db, "a@example.com", "pw", nil), gorm.ErrRecordNotFound)
}
