package gorm

import (
	"fmt"

	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	gormlib "gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDatabase opens the database named by the configuration and runs
// migrations. The sqlite driver backs local development and tests;
// postgres is the production path.
func NewDatabase(cfg *config.Config) (*gormlib.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}

	gormConfig := &gormlib.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	}

	var db *gormlib.DB
	var err error

	switch cfg.Database.Driver {
	case "sqlite":
		dsn := cfg.Database.Database
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		db, err = gormlib.Open(sqlite.Open(dsn), gormConfig)
	case "postgres":
		db, err = gormlib.Open(postgres.Open(cfg.GetDSN()), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Database.Driver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// NewTestDatabase opens an isolated in-memory sqlite database with the
// schema migrated, for use in tests. The database is named uniquely and
// shared across pool connections, so concurrent queries in one test see
// the same data while tests stay isolated from each other.
func NewTestDatabase() (*gormlib.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gormlib.Open(sqlite.Open(dsn), &gormlib.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gormlib.DB) error {
	if err := db.AutoMigrate(&UserModel{}, &RecipeModel{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
