package repository

import (
	"context"
	"errors"
	"fmt"

	"academy/internal/domain"
	"academy/internal/models"

	"gorm.io/gorm"
)

// CourseRepository reads the course catalog. Catalog editing lives outside this service.
type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var c models.Course
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CoursePrice returns the enrollment price in tokens. A negative catalog price is an error, never a
// free course.
func (r *CourseRepository) CoursePrice(ctx context.Context, id uint) (int64, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if c.Price < 0 {
		return 0, fmt.Errorf("%w: course %d priced %d", domain.ErrInvalidCoursePrice, id, c.Price)
	}
	return c.Price, nil
}
