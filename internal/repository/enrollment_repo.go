package repository

import (
	"context"

	"academy/internal/domain"
	"academy/internal/models"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: tx}
}

func (r *EnrollmentRepository) Get(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an enrollment. A duplicate (user, course) pair fails with domain.ErrAlreadyEnrolled.
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	err := r.db.WithContext(ctx).Create(e).Error
	if isUniqueViolation(err) {
		return domain.ErrAlreadyEnrolled
	}
	return err
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	err := r.db.WithContext(ctx).Preload("Course").Where("user_id = ?", userID).Order("enrolled_at DESC").Find(&out).Error
	return out, err
}

func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, userID string, courseID uint, progress int) (*models.Enrollment, error) {
	res := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Update("progress", progress)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrEnrollmentNotFound
	}
	return r.Get(ctx, userID, courseID)
}
