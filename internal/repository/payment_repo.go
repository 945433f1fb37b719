package repository

import (
	"context"
	"time"

	"academy/internal/domain"
	"academy/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByProviderRef(ctx context.Context, ref string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Where("provider_ref = ?", ref).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkPaid flips a created checkout to paid. Rows already paid are left untouched.
func (r *PaymentRepository) MarkPaid(ctx context.Context, ref string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("provider_ref = ? AND status <> ?", ref, domain.PaymentStatusPaid).
		Updates(map[string]interface{}{"status": domain.PaymentStatusPaid, "completed_at": at}).Error
}

// UpdateStatus records a non-paid terminal status reported by the processor.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, ref, status string) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("provider_ref = ? AND status = ?", ref, domain.PaymentStatusCreated).
		Update("status", status).Error
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}
