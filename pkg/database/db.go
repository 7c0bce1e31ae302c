package database

import (
	"fmt"
	"strings"
	"time"

	"anoa.com/plantspeak/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured relational store. Duplicate-key errors are
// translated to gorm.ErrDuplicatedKey for both drivers.
func Open(cfg config.DatabaseConfig, logger gormlogger.Interface) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger,
	}

	switch cfg.Driver {
	case "postgres":
		db, err := gorm.Open(postgres.Open(postgresDSN(cfg)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect postgres: %w", err)
		}
		return db, nil
	case "sqlite", "":
		db, err := gorm.Open(sqlite.Open(SQLiteDSN(cfg.SQLitePath, cfg.LockTimeout)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// A private in-memory database lives on a single connection. File
		// databases run in WAL mode with an open pool, so a second writer
		// waits in sqlite's busy handler and gives up after lockTimeout.
		if strings.Contains(cfg.SQLitePath, ":memory:") {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(1)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// SQLiteDSN builds a go-sqlite3 DSN with a bounded busy wait, WAL journaling
// and immediate write transactions.
func SQLiteDSN(path string, lockTimeout time.Duration) string {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL&_txlock=immediate", path, lockTimeout.Milliseconds())
}

func postgresDSN(cfg config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port,
	)
}
