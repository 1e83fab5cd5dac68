package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chynybekuuludastan/content_studio/internal/config"
	"github.com/chynybekuuludastan/content_studio/internal/database/migration"
	appLogger "github.com/chynybekuuludastan/content_studio/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.NewConfig()

	migrateCmd := flag.Bool("migrate", false, "Run migrations")
	rollbackCmd := flag.Bool("rollback", false, "Rollback the last batch of migrations")
	resetCmd := flag.Bool("reset", false, "Rollback all migrations and re-run them")
	statusCmd := flag.Bool("status", false, "Show migration status")
	dsn := flag.String("dsn", cfg.PostgresURI, "PostgreSQL connection string")
	flag.Parse()

	if !(*migrateCmd || *rollbackCmd || *resetCmd || *statusCmd) {
		flag.Usage()
		os.Exit(1)
	}

	zl, err := appLogger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.DBDriver == "sqlite" {
		// SQLite databases are created by the server through AutoMigrate
		zl.Fatal("Migrations target PostgreSQL only", zap.String("driver", cfg.DBDriver))
	}

	db, err := gorm.Open(postgres.Open(*dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		zl.Fatal("Failed to connect to the database", zap.Error(err))
	}

	migrator, err := migration.NewMigrator(db, migration.Steps(), zl)
	if err != nil {
		zl.Fatal("Failed to prepare migrator", zap.Error(err))
	}

	switch {
	case *migrateCmd:
		if err := migrator.Migrate(); err != nil {
			zl.Fatal("Migration failed", zap.Error(err))
		}
		zl.Info("Migrations completed successfully")

	case *rollbackCmd:
		if err := migrator.Rollback(); err != nil {
			zl.Fatal("Rollback failed", zap.Error(err))
		}
		zl.Info("Rollback completed successfully")

	case *resetCmd:
		if err := migrator.Reset(); err != nil {
			zl.Fatal("Reset failed", zap.Error(err))
		}
		zl.Info("Reset completed successfully")

	case *statusCmd:
		status, err := migrator.GetStatus()
		if err != nil {
			zl.Fatal("Failed to get migration status", zap.Error(err))
		}
		printStatus(status)
	}
}

func printStatus(status []migration.Status) {
	fmt.Println("+------------------------------+----------+-------+---------------------+")
	fmt.Println("| Migration                    | Applied? | Batch | Applied At          |")
	fmt.Println("+------------------------------+----------+-------+---------------------+")

	for _, s := range status {
		applied, batch, at := "No", "-", "-"
		if s.Applied {
			applied = "Yes"
			batch = fmt.Sprintf("%d", s.Batch)
			at = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("| %-28s | %-8s | %-5s | %-19s |\n", s.Name, applied, batch, at)
	}

	fmt.Println("+------------------------------+----------+-------+---------------------+")
}
