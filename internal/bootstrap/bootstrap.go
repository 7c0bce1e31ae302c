// Package bootstrap prepares the database for the server and the CLI tools.
package bootstrap

import (
	"fmt"

	"anoa.com/plantspeak/internal/config"
	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/pkg/database"
	"anoa.com/plantspeak/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	demoUsername = "demo"
	demoPassword = "demo1234"
)

// OpenDatabase connects to the configured store and migrates the schema.
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg.DB, logger.NewGormLogger(log, logger.GormLevel(cfg.LogLevel)))
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(entity.Models()...)
}

// SeedDemoUser creates a login for local development. It does nothing when
// the account already exists.
func SeedDemoUser(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("username = ?", demoUsername).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("demo user already exists, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	demo := entity.User{
		Username:     demoUsername,
		PasswordHash: string(hash),
		Name:         "Demo Contributor",
		Role:         "Community member",
	}
	if err := db.Create(&demo).Error; err != nil {
		return err
	}

	log.Info("demo user seeded", zap.String("username", demoUsername), zap.String("password", demoPassword))
	return nil
}
