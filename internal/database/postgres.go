package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chynybekuuludastan/content_studio/internal/models"
)

// DatabaseClient wraps the GORM DB connection
type DatabaseClient struct {
	*gorm.DB
}

// Models lists every table owned by the service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.Role{},
		&models.User{},
		&models.Setting{},
		&models.Generation{},
		&models.UserActivity{},
	}
}

// InitPostgreSQL initializes the PostgreSQL connection and migrates the schema
func InitPostgreSQL(dsn string, log *zap.Logger) (*DatabaseClient, error) {
	return open(postgres.Open(dsn), log, func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return nil
	})
}

// InitSQLite opens a file or in-memory SQLite database. Used for single-user
// local runs where no PostgreSQL server is available.
func InitSQLite(path string, log *zap.Logger) (*DatabaseClient, error) {
	return open(sqlite.Open(path), log, func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		// SQLite serializes writers; one connection also keeps ":memory:" shared
		sqlDB.SetMaxOpenConns(1)
		return nil
	})
}

func open(dialector gorm.Dialector, log *zap.Logger, tune func(*gorm.DB) error) (*DatabaseClient, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}
	if err := tune(db); err != nil {
		return nil, err
	}

	log.Info("Running database migrations", zap.String("dialect", dialector.Name()))
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	log.Info("Connected to database", zap.String("dialect", dialector.Name()))
	return &DatabaseClient{DB: db}, nil
}

// Close closes the database connection
func (d *DatabaseClient) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection is alive
func (d *DatabaseClient) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
