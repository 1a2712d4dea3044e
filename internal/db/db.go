package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sujalbistaa/polls/internal/models"
)

// Open returns a GORM connection for dbURL, which must start with
// "postgres://" or "sqlite://".
func Open(dbURL string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	sqliteDB := false

	switch {
	case strings.HasPrefix(dbURL, "postgres://"):
		// pgx understands the URL form directly.
		dialector = postgres.Open(dbURL)
		log.Println("Connecting to PostgreSQL database...")
	case strings.HasPrefix(dbURL, "sqlite://"):
		dsn := strings.TrimPrefix(dbURL, "sqlite://")
		if dsn == "" {
			return nil, errors.New("empty sqlite path in DATABASE_URL")
		}
		dialector = sqlite.Open(dsn)
		sqliteDB = true
		log.Println("Connecting to SQLite database at", dsn)
	default:
		return nil, errors.New("invalid DATABASE_URL prefix, must start with 'postgres://' or 'sqlite://'")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if sqliteDB {
		// SQLite has a single writer; one connection keeps concurrent
		// votes queued instead of failing with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	log.Println("Database connection established.")
	return db, nil
}

// Migrate creates or updates the tables for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Question{}, &models.Choice{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
