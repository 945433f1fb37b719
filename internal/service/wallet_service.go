package service

import (
	"context"
	"encoding/json"

	"academy/internal/domain"
	"academy/internal/logging"
	"academy/internal/models"
	"academy/internal/repository"
)

// WalletService exposes balances and history, and the back-office token grant.
type WalletService struct {
	wallets  *repository.WalletRepository
	audit    *repository.AuditLogRepository
	notifier *NotificationService
}

func NewWalletService(wallets *repository.WalletRepository, audit *repository.AuditLogRepository, notifier *NotificationService) *WalletService {
	return &WalletService{wallets: wallets, audit: audit, notifier: notifier}
}

func (s *WalletService) Balance(ctx context.Context, userID string) (int64, error) {
	return s.wallets.GetBalance(ctx, userID)
}

func (s *WalletService) Transactions(ctx context.Context, userID string, page, limit int) ([]models.LedgerEntry, int64, error) {
	return s.wallets.ListEntries(ctx, userID, page, limit)
}

func (s *WalletService) AllTransactions(ctx context.Context, kind domain.EntryKind, page, limit int) ([]models.LedgerEntry, int64, error) {
	return s.wallets.ListAllEntries(ctx, kind, page, limit)
}

// Grant credits tokens to a user on behalf of an admin. reference is optional; when set, a
// repeated grant with the same reference is ignored.
func (s *WalletService) Grant(ctx context.Context, adminID, userID string, amount int64, reference, memo string) (*models.LedgerEntry, bool, error) {
	if adminID == "" {
		return nil, false, domain.ErrUnauthorized
	}
	entry, created, err := s.wallets.Credit(ctx, repository.CreditRequest{
		UserID:            userID,
		Amount:            amount,
		Kind:              domain.KindAdminGrant,
		ExternalReference: reference,
		ActorID:           adminID,
		Memo:              memo,
	})
	if err != nil {
		return nil, false, err
	}
	if !created {
		return entry, false, nil
	}

	meta, _ := json.Marshal(map[string]interface{}{"user_id": userID, "amount": amount, "entry_id": entry.ID})
	if err := s.audit.Create(ctx, &models.AuditLog{
		UserID:     &adminID,
		Action:     "tokens_granted",
		Resource:   "wallet",
		ResourceID: userID,
		Metadata:   string(meta),
	}); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("write audit log failed")
	}
	logging.Ctx(ctx).Info().Str("admin_id", adminID).Str("user_id", userID).Int64("amount", amount).Msg("tokens granted")
	s.notifier.LedgerEntryApplied(entry)
	return entry, true, nil
}
