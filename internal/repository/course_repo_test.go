package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"academy/config"
	"academy/internal/database"
	"academy/internal/domain"
	"academy/internal/models"
	"academy/internal/testutil"
)

func TestCourse_Price(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewCourseRepository(db)
	ctx := context.Background()

	paid := testutil.SeedCourse(t, db, "Paid", 30)
	free := testutil.SeedCourse(t, db, "Free", 0)

	tests := []struct {
		name    string
		id      uint
		want    int64
		wantErr error
	}{
		{"paid", paid.ID, 30, nil},
		{"free", free.ID, 0, nil},
		{"unknown", 9999, 0, domain.ErrCourseNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.CoursePrice(ctx, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CoursePrice() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CoursePrice() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCourse_NegativePriceRejectedBySchema(t *testing.T) {
	db := testutil.NewDB(t)
	err := db.Create(&models.Course{Title: "Broken", Price: -5}).Error
	if err == nil {
		t.Fatal("inserting a negative price succeeded")
	}
}

// Catalog tables written by another system may lack the check constraint.
func TestCourse_NegativePriceIsNotFree(t *testing.T) {
	db, err := database.NewDB(&config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "catalog.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := db.Exec(`CREATE TABLE courses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		level TEXT,
		duration_minutes INTEGER,
		price INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error; err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	if err := db.Exec(`INSERT INTO courses (id, title, level, duration_minutes, price, created_at, updated_at)
		VALUES (1, 'Broken', 'beginner', 60, -5, ?, ?)`, now, now).Error; err != nil {
		t.Fatal(err)
	}

	price, err := NewCourseRepository(db).CoursePrice(context.Background(), 1)
	if !errors.Is(err, domain.ErrInvalidCoursePrice) {
		t.Fatalf("CoursePrice() = %d, %v; want ErrInvalidCoursePrice", price, err)
	}
}
