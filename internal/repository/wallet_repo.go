package repository

import (
	"context"
	"errors"
	"fmt"

	"academy/internal/domain"
	"academy/internal/metrics"
	"academy/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository is the ledger: the only code that changes wallet balances. Every change
// locks the wallet row and appends a LedgerEntry in the same transaction.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// WithTx binds the repository to an outer transaction. Credit and Debit then run as savepoints
// and commit or roll back with the caller.
func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

type CreditRequest struct {
	UserID            string
	Amount            int64
	Kind              domain.EntryKind
	ExternalReference string // required for purchase credits
	ActorID           string
	Memo              string
}

type DebitRequest struct {
	UserID  string
	Amount  int64
	Kind    domain.EntryKind
	ActorID string
	Memo    string
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetBalance returns 0 for users that have never been credited.
func (r *WalletRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	w, err := r.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// Credit adds tokens to a wallet, creating it at 0 if needed. For a reference that already has a
// credit of the same kind it returns the recorded entry with created=false and leaves the balance
// alone, or ErrReferenceConflict when that entry was for another user or amount.
func (r *WalletRepository) Credit(ctx context.Context, req CreditRequest) (*models.LedgerEntry, bool, error) {
	if req.Amount <= 0 {
		return nil, false, domain.ErrInvalidAmount
	}
	if !req.Kind.Valid() || req.Kind == domain.KindEnrollmentDebit {
		return nil, false, domain.ErrInvalidKind
	}
	if req.Kind == domain.KindPurchaseCredit && req.ExternalReference == "" {
		return nil, false, domain.ErrReferenceRequired
	}

	if req.ExternalReference != "" {
		existing, err := r.findByReference(ctx, req.Kind, req.ExternalReference)
		if err == nil {
			return duplicateCredit(existing, req)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("lookup reference: %w", err)
		}
	}

	var entry *models.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := lockWallet(tx, req.UserID, true)
		if err != nil {
			return err
		}
		entry = &models.LedgerEntry{
			UserID:            req.UserID,
			Amount:            req.Amount,
			Kind:              req.Kind,
			ExternalReference: optional(req.ExternalReference),
			ActorID:           optional(req.ActorID),
			BalanceAfter:      w.Balance + req.Amount,
			Memo:              req.Memo,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.Wallet{}).
			Where("id = ?", w.ID).
			Update("balance", gorm.Expr("balance + ?", req.Amount)).Error
	})
	if err != nil {
		if req.ExternalReference != "" && isUniqueViolation(err) {
			// Lost the race to a concurrent credit for the same payment.
			existing, ferr := r.findByReference(ctx, req.Kind, req.ExternalReference)
			if ferr != nil {
				return nil, false, fmt.Errorf("load existing credit: %w", ferr)
			}
			return duplicateCredit(existing, req)
		}
		metrics.LedgerOperations.WithLabelValues("credit", string(req.Kind), metrics.ResultError).Inc()
		return nil, false, fmt.Errorf("credit wallet: %w", err)
	}
	metrics.LedgerOperations.WithLabelValues("credit", string(req.Kind), metrics.ResultCreated).Inc()
	return entry, true, nil
}

func duplicateCredit(existing *models.LedgerEntry, req CreditRequest) (*models.LedgerEntry, bool, error) {
	if existing.UserID != req.UserID || existing.Amount != req.Amount {
		metrics.LedgerOperations.WithLabelValues("credit", string(req.Kind), metrics.ResultConflict).Inc()
		return nil, false, fmt.Errorf("%w: %s held by user %s for %d", domain.ErrReferenceConflict,
			req.ExternalReference, existing.UserID, existing.Amount)
	}
	metrics.LedgerOperations.WithLabelValues("credit", string(req.Kind), metrics.ResultDuplicate).Inc()
	return existing, false, nil
}

// Debit removes tokens from a wallet or fails with *domain.InsufficientFundsError without any change.
func (r *WalletRepository) Debit(ctx context.Context, req DebitRequest) (*models.LedgerEntry, error) {
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if req.Kind != domain.KindEnrollmentDebit {
		return nil, domain.ErrInvalidKind
	}

	var entry *models.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := lockWallet(tx, req.UserID, false)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.InsufficientFundsError{Balance: 0, Requested: req.Amount}
		}
		if err != nil {
			return err
		}
		if w.Balance < req.Amount {
			return &domain.InsufficientFundsError{Balance: w.Balance, Requested: req.Amount}
		}
		// The balance guard keeps the check-and-write atomic even where FOR UPDATE is a no-op.
		res := tx.Model(&models.Wallet{}).
			Where("id = ? AND balance >= ?", w.ID, req.Amount).
			Update("balance", gorm.Expr("balance - ?", req.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &domain.InsufficientFundsError{Balance: w.Balance, Requested: req.Amount}
		}
		entry = &models.LedgerEntry{
			UserID:       req.UserID,
			Amount:       -req.Amount,
			Kind:         req.Kind,
			ActorID:      optional(req.ActorID),
			BalanceAfter: w.Balance - req.Amount,
			Memo:         req.Memo,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			metrics.LedgerOperations.WithLabelValues("debit", string(req.Kind), metrics.ResultInsufficient).Inc()
			return nil, err
		}
		metrics.LedgerOperations.WithLabelValues("debit", string(req.Kind), metrics.ResultError).Inc()
		return nil, fmt.Errorf("debit wallet: %w", err)
	}
	metrics.LedgerOperations.WithLabelValues("debit", string(req.Kind), metrics.ResultCreated).Inc()
	return entry, nil
}

// ListEntries returns a user's ledger, newest first.
func (r *WalletRepository) ListEntries(ctx context.Context, userID string, page, limit int) ([]models.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where("user_id = ?", userID)
	return listEntries(q, page, limit)
}

// ListAllEntries returns every ledger entry, optionally filtered by kind, newest first.
func (r *WalletRepository) ListAllEntries(ctx context.Context, kind domain.EntryKind, page, limit int) ([]models.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	return listEntries(q, page, limit)
}

func listEntries(q *gorm.DB, page, limit int) ([]models.LedgerEntry, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []models.LedgerEntry
	err := q.Order("id DESC").Limit(limit).Offset((page - 1) * limit).Find(&entries).Error
	return entries, total, err
}

func (r *WalletRepository) findByReference(ctx context.Context, kind domain.EntryKind, ref string) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := r.db.WithContext(ctx).Where("kind = ? AND external_reference = ?", kind, ref).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// lockWallet reads the wallet row FOR UPDATE, creating it at balance 0 when create is set.
func lockWallet(tx *gorm.DB, userID string, create bool) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&w).Error
	switch {
	case err == nil:
		return &w, nil
	case !create || !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	w = models.Wallet{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&w).Error; err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	// Re-read under lock: a concurrent first credit may have inserted the row instead.
	w = models.Wallet{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
