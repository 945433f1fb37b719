package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"academy/internal/domain"
	"academy/internal/logging"
	"academy/internal/metrics"
	"academy/internal/models"
	"academy/internal/repository"
	"academy/pkg/payment"
)

// Caller identifies who asked for a verification. Trusted callers are processor webhooks whose
// signature has already been checked; everyone else must own the payment.
type Caller struct {
	UserID  string
	Trusted bool
	IP      string
}

type Settlement struct {
	Reference string `json:"reference"`
	UserID    string `json:"user_id"`
	// TokensCredited is the wallet delta caused by this call: 0 when the payment was already settled.
	TokensCredited int64 `json:"tokens_credited"`
	Balance        int64 `json:"balance"`
	EntryID        uint  `json:"entry_id"`
}

// VerifierService turns a paid processor record into exactly one purchase credit.
type VerifierService struct {
	provider payment.Provider
	wallets  *repository.WalletRepository
	payments *repository.PaymentRepository
	audit    *repository.AuditLogRepository
	notifier *NotificationService
}

func NewVerifierService(
	provider payment.Provider,
	wallets *repository.WalletRepository,
	payments *repository.PaymentRepository,
	audit *repository.AuditLogRepository,
	notifier *NotificationService,
) *VerifierService {
	return &VerifierService{
		provider: provider,
		wallets:  wallets,
		payments: payments,
		audit:    audit,
		notifier: notifier,
	}
}

// VerifyAndSettle re-reads the payment from the processor and credits the tokens recorded in its
// metadata. Amounts and owners supplied by the caller are never used. Safe to call repeatedly.
func (s *VerifierService) VerifyAndSettle(ctx context.Context, reference string, caller Caller) (*Settlement, error) {
	if reference == "" {
		return nil, domain.ErrReferenceRequired
	}
	if !caller.Trusted && caller.UserID == "" {
		return nil, s.reject(ctx, reference, caller, "", "anonymous caller")
	}
	if s.provider == nil {
		return nil, domain.ErrConfiguration
	}

	log := logging.Ctx(ctx).With().Str("reference", reference).Logger()

	rec, err := s.provider.GetPayment(ctx, reference)
	if err != nil {
		mapped := processorError(err)
		switch {
		case errors.Is(mapped, domain.ErrPaymentNotFound):
			metrics.PaymentVerifications.WithLabelValues("not_found").Inc()
		default:
			metrics.PaymentVerifications.WithLabelValues(metrics.ResultError).Inc()
			log.Error().Err(err).Msg("fetch payment from processor failed")
		}
		return nil, mapped
	}

	if !rec.Paid() {
		if rec.Status == payment.StatusExpired || rec.Status == payment.StatusFailed {
			if err := s.payments.UpdateStatus(ctx, reference, rec.Status); err != nil {
				log.Warn().Err(err).Msg("update payment mirror failed")
			}
		}
		metrics.PaymentVerifications.WithLabelValues("not_completed").Inc()
		return nil, domain.ErrPaymentNotCompleted
	}

	owner, tokens, err := paymentMetadata(rec)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues(metrics.ResultError).Inc()
		log.Error().Err(err).Interface("metadata", rec.Metadata).Msg("paid payment carries unusable metadata")
		return nil, err
	}
	if !caller.Trusted && caller.UserID != owner {
		return nil, s.reject(ctx, reference, caller, owner, "payment belongs to another user")
	}

	entry, created, err := s.wallets.Credit(ctx, repository.CreditRequest{
		UserID:            owner,
		Amount:            tokens,
		Kind:              domain.KindPurchaseCredit,
		ExternalReference: reference,
		Memo:              "token purchase",
	})
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues(metrics.ResultError).Inc()
		log.Error().Err(err).Str("user_id", owner).Msg("credit purchase failed")
		return nil, err
	}

	if err := s.payments.MarkPaid(ctx, reference, time.Now()); err != nil {
		log.Warn().Err(err).Msg("update payment mirror failed")
	}

	balance, err := s.wallets.GetBalance(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}

	out := &Settlement{Reference: reference, UserID: owner, Balance: balance, EntryID: entry.ID}
	if created {
		out.TokensCredited = entry.Amount
		metrics.PaymentVerifications.WithLabelValues("credited").Inc()
		log.Info().Str("user_id", owner).Int64("tokens", entry.Amount).Bool("webhook", caller.Trusted).Msg("purchase credited")
		s.notifier.LedgerEntryApplied(entry)
	} else {
		metrics.PaymentVerifications.WithLabelValues(metrics.ResultDuplicate).Inc()
		log.Debug().Str("user_id", owner).Msg("purchase already credited")
	}
	return out, nil
}

// reject records an unauthorized verification attempt and returns ErrUnauthorized.
func (s *VerifierService) reject(ctx context.Context, reference string, caller Caller, owner, reason string) error {
	metrics.PaymentVerifications.WithLabelValues("unauthorized").Inc()
	logging.Ctx(ctx).Warn().
		Str("reference", reference).
		Str("caller_id", caller.UserID).
		Str("owner_id", owner).
		Str("ip", caller.IP).
		Msg("unauthorized payment verification: " + reason)

	meta, _ := json.Marshal(map[string]string{"reason": reason, "owner_id": owner})
	entry := &models.AuditLog{
		Action:     "payment_verify_unauthorized",
		Resource:   "payment",
		ResourceID: reference,
		IP:         caller.IP,
		Metadata:   string(meta),
	}
	if caller.UserID != "" {
		id := caller.UserID
		entry.UserID = &id
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("write audit log failed")
	}
	return domain.ErrUnauthorized
}

func paymentMetadata(rec *payment.Record) (string, int64, error) {
	owner := rec.Metadata[domain.MetadataUserID]
	if owner == "" {
		return "", 0, fmt.Errorf("%w: missing %s", domain.ErrInvalidPaymentMetadata, domain.MetadataUserID)
	}
	tokens, err := strconv.ParseInt(rec.Metadata[domain.MetadataTokens], 10, 64)
	if err != nil || tokens <= 0 {
		return "", 0, fmt.Errorf("%w: bad %s %q", domain.ErrInvalidPaymentMetadata, domain.MetadataTokens, rec.Metadata[domain.MetadataTokens])
	}
	return owner, tokens, nil
}
