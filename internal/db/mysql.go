package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"admindash/internal/model"
)

// NewMySQL returns a connected GORM DB instance. Driver errors are translated
// so duplicate keys surface as gorm.ErrDuplicatedKey.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// MigrateMySQL creates or updates the tables and indexes for all models.
func MigrateMySQL(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Product{}); err != nil {
		return fmt.Errorf("migrate mysql: %w", err)
	}
	return nil
}
