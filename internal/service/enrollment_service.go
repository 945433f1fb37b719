package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"academy/internal/domain"
	"academy/internal/logging"
	"academy/internal/models"
	"academy/internal/repository"

	"gorm.io/gorm"
)

// EnrollmentService settles paid enrollments: the price debit and the enrollment row commit together.
type EnrollmentService struct {
	db          *gorm.DB
	wallets     *repository.WalletRepository
	enrollments *repository.EnrollmentRepository
	courses     *repository.CourseRepository
	notifier    *NotificationService
}

func NewEnrollmentService(
	db *gorm.DB,
	wallets *repository.WalletRepository,
	enrollments *repository.EnrollmentRepository,
	courses *repository.CourseRepository,
	notifier *NotificationService,
) *EnrollmentService {
	return &EnrollmentService{
		db:          db,
		wallets:     wallets,
		enrollments: enrollments,
		courses:     courses,
		notifier:    notifier,
	}
}

// Enroll charges the course price and enrolls the user. Enrolling twice returns the existing
// enrollment with created=false and charges nothing.
func (s *EnrollmentService) Enroll(ctx context.Context, userID string, courseID uint) (*models.Enrollment, bool, error) {
	if userID == "" {
		return nil, false, domain.ErrUnauthorized
	}
	existing, err := s.enrollments.Get(ctx, userID, courseID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("lookup enrollment: %w", err)
	}

	price, err := s.courses.CoursePrice(ctx, courseID)
	if err != nil {
		return nil, false, err
	}

	enrollment := &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Progress:   domain.MinProgress,
		EnrolledAt: time.Now(),
	}
	var debit *models.LedgerEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if price > 0 {
			entry, err := s.wallets.WithTx(tx).Debit(ctx, repository.DebitRequest{
				UserID: userID,
				Amount: price,
				Kind:   domain.KindEnrollmentDebit,
				Memo:   fmt.Sprintf("enrollment in course %d", courseID),
			})
			if err != nil {
				return err
			}
			debit = entry
		}
		return s.enrollments.WithTx(tx).Create(ctx, enrollment)
	})

	switch {
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		// A concurrent request enrolled first; its charge stands and ours was rolled back.
		existing, gerr := s.enrollments.Get(ctx, userID, courseID)
		if gerr != nil {
			return nil, false, fmt.Errorf("load existing enrollment: %w", gerr)
		}
		return existing, false, nil
	case err != nil:
		return nil, false, err
	}

	logging.Ctx(ctx).Info().Str("user_id", userID).Uint("course_id", courseID).Int64("price", price).Msg("enrolled")
	if debit != nil {
		s.notifier.LedgerEntryApplied(debit)
	}
	return enrollment, true, nil
}

func (s *EnrollmentService) ListEnrollments(ctx context.Context, userID string) ([]models.Enrollment, error) {
	return s.enrollments.ListByUser(ctx, userID)
}

func (s *EnrollmentService) UpdateProgress(ctx context.Context, userID string, courseID uint, progress int) (*models.Enrollment, error) {
	if progress < domain.MinProgress || progress > domain.MaxProgress {
		return nil, domain.ErrInvalidProgress
	}
	return s.enrollments.UpdateProgress(ctx, userID, courseID, progress)
}
