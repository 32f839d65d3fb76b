package db

import (
	"fmt"
	"os"
	"path/filepath"

	"prodify/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the sqlite database at path, creating the file and its
// directory if they do not exist, and migrates the schema. The caller owns
// the returned handle and is responsible for closing it via Close.
func Open(path string) (*gorm.DB, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("create database file: %w", err)
		}
		file.Close()
	}

	database, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

// Migrate registers the product/image join table and migrates the schema.
// Exposed separately so tests can run it against their own connections.
func Migrate(database *gorm.DB) error {
	if err := database.SetupJoinTable(&models.Product{}, "Images", &models.ProductImage{}); err != nil {
		return fmt.Errorf("setup join table: %w", err)
	}
	if err := database.AutoMigrate(
		&models.Category{}, &models.Product{}, &models.Image{}, &models.ProductImage{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
