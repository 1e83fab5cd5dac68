package migration

import (
	"gorm.io/gorm"
)

// Steps returns the PostgreSQL schema migrations in the order they apply
func Steps() []Step {
	return []Step{
		{Name: "01_create_roles_table", Up: CreateRolesTable, Down: dropTable("roles")},
		{Name: "02_create_users_table", Up: CreateUsersTable, Down: dropTable("users")},
		{Name: "03_create_settings_table", Up: CreateSettingsTable, Down: dropTable("settings")},
		{Name: "04_create_generations_table", Up: CreateGenerationsTable, Down: dropTable("generations")},
		{Name: "05_create_user_activities_table", Up: CreateUserActivitiesTable, Down: dropTable("user_activities")},
		{Name: "06_add_indexes", Up: AddIndexes, Down: RemoveIndexes},
	}
}

func dropTable(name string) MigrationFunc {
	return func(tx *gorm.DB) error {
		return tx.Exec("DROP TABLE IF EXISTS " + name + " CASCADE").Error
	}
}

// CreateRolesTable creates the roles table
func CreateRolesTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS roles (
			id SERIAL PRIMARY KEY,
			name VARCHAR(50) NOT NULL UNIQUE,
			description TEXT
		)
	`).Error
}

// CreateUsersTable creates the users table
func CreateUsersTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(100) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role_id INTEGER NOT NULL REFERENCES roles(id),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at TIMESTAMP WITH TIME ZONE
		)
	`).Error
}

// CreateSettingsTable creates the per-user key-value settings table
func CreateSettingsTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			id SERIAL PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			key VARCHAR(100) NOT NULL,
			value TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT idx_settings_user_key UNIQUE (user_id, key)
		)
	`).Error
}

// CreateGenerationsTable creates the generation history table
func CreateGenerationsTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS generations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			kind VARCHAR(50) NOT NULL,
			provider VARCHAR(50) NOT NULL,
			model VARCHAR(100),
			prompt TEXT,
			content TEXT,
			success BOOLEAN NOT NULL DEFAULT FALSE,
			error TEXT,
			raw JSONB,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
}

// CreateUserActivitiesTable creates the user activity log
func CreateUserActivitiesTable(tx *gorm.DB) error {
	return tx.Exec(`
		CREATE TABLE IF NOT EXISTS user_activities (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			action_type VARCHAR(100) NOT NULL,
			entity_type VARCHAR(100),
			entity_id UUID,
			details JSONB,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
}

var indexes = []struct{ name, table, columns string }{
	{"idx_users_role_id", "users", "role_id"},
	{"idx_users_deleted_at", "users", "deleted_at"},
	{"idx_generations_user_id", "generations", "user_id"},
	{"idx_generations_kind", "generations", "kind"},
	{"idx_generations_provider", "generations", "provider"},
	{"idx_generations_success", "generations", "success"},
	{"idx_generations_created_at", "generations", "created_at"},
	{"idx_user_activities_user_id", "user_activities", "user_id"},
	{"idx_user_activities_action_type", "user_activities", "action_type"},
	{"idx_user_activities_created_at", "user_activities", "created_at"},
}

// AddIndexes adds the lookup indexes used by the repositories
func AddIndexes(tx *gorm.DB) error {
	for _, idx := range indexes {
		if err := tx.Exec("CREATE INDEX IF NOT EXISTS " + idx.name + " ON " + idx.table + "(" + idx.columns + ")").Error; err != nil {
			return err
		}
	}
	return nil
}

// RemoveIndexes drops the indexes added by AddIndexes
func RemoveIndexes(tx *gorm.DB) error {
	for _, idx := range indexes {
		if err := tx.Exec("DROP INDEX IF EXISTS " + idx.name).Error; err != nil {
			return err
		}
	}
	return nil
}
