package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/config"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/models"
)

// Open connects to the configured backend and migrates the schema. The
// default is an in-memory sqlite database, matching the system's
// no-durability contract; postgres is available for deployments that want
// their data back after a restart.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	var db *gorm.DB
	var err error
	switch cfg.Database.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Database.Path), gormCfg)
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory sqlite database exists per connection; pin the pool to a
	// single connection so every session sees the same data.
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Task{}, &models.RefreshToken{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
