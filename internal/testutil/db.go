// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"academy/config"
	"academy/internal/database"
	"academy/internal/models"

	"gorm.io/gorm"
)

// NewDB returns a migrated database in a temp file that is removed with the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewDB(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "academy.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// SeedCourse inserts a catalog row with the given price.
func SeedCourse(t testing.TB, db *gorm.DB, title string, price int64) *models.Course {
	t.Helper()
	c := &models.Course{Title: title, Level: "beginner", DurationMinutes: 60, Price: price}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return c
}
