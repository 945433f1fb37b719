package service

import (
	"context"
	"strconv"
	"time"

	"academy/config"
	"academy/internal/domain"
	"academy/internal/logging"
	"academy/internal/models"
	"academy/internal/repository"
	"academy/pkg/payment"
)

// CheckoutService opens processor checkouts for token purchases. The price is always computed
// here from configuration; the client only chooses how many tokens.
type CheckoutService struct {
	provider payment.Provider
	payments *repository.PaymentRepository
	cfg      config.PaymentConfig
}

// NewCheckoutService accepts a nil provider, in which case every checkout fails with ErrConfiguration.
func NewCheckoutService(provider payment.Provider, payments *repository.PaymentRepository, cfg config.PaymentConfig) *CheckoutService {
	return &CheckoutService{provider: provider, payments: payments, cfg: cfg}
}

type CheckoutResult struct {
	Reference    string    `json:"reference"`
	CheckoutURL  string    `json:"checkout_url,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Tokens       int64     `json:"tokens"`
	AmountCents  int64     `json:"amount_cents"`
	Currency     string    `json:"currency"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type Package struct {
	Tokens      int64  `json:"tokens"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

func (s *CheckoutService) CreateSession(ctx context.Context, userID string, tokens int64) (*CheckoutResult, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if tokens <= 0 || tokens > s.cfg.MaxTokensPerPurchase {
		return nil, domain.ErrInvalidAmount
	}
	if s.provider == nil {
		return nil, domain.ErrConfiguration
	}

	co, err := s.provider.CreateCheckout(ctx, payment.CheckoutRequest{
		UserID:          userID,
		Tokens:          tokens,
		UnitAmountCents: s.cfg.UnitAmountCents,
		Currency:        s.cfg.Currency,
		SuccessURL:      s.cfg.SuccessURL,
		CancelURL:       s.cfg.CancelURL,
		ExpiresIn:       s.cfg.SessionExpiry,
		Metadata: map[string]string{
			domain.MetadataUserID: userID,
			domain.MetadataTokens: strconv.FormatInt(tokens, 10),
		},
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("user_id", userID).Int64("tokens", tokens).Msg("create checkout failed")
		return nil, processorError(err)
	}

	amount := s.cfg.UnitAmountCents * tokens
	expires := co.ExpiresAt
	rec := &models.Payment{
		UserID:      userID,
		Provider:    s.provider.Name(),
		ProviderRef: co.Reference,
		TokenAmount: tokens,
		AmountCents: amount,
		Currency:    s.cfg.Currency,
		Status:      domain.PaymentStatusCreated,
		CheckoutURL: co.CheckoutURL,
		ExpiresAt:   &expires,
	}
	// The processor record is authoritative; the local mirror is for history only.
	if err := s.payments.Create(ctx, rec); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("reference", co.Reference).Msg("store checkout mirror failed")
	}

	logging.Ctx(ctx).Info().Str("user_id", userID).Str("reference", co.Reference).Int64("tokens", tokens).Msg("checkout created")
	return &CheckoutResult{
		Reference:    co.Reference,
		CheckoutURL:  co.CheckoutURL,
		ClientSecret: co.ClientSecret,
		Tokens:       tokens,
		AmountCents:  amount,
		Currency:     s.cfg.Currency,
		ExpiresAt:    co.ExpiresAt,
	}, nil
}

// Packages lists the preset purchase sizes with their server-side price.
func (s *CheckoutService) Packages() []Package {
	out := make([]Package, 0, len(s.cfg.TokenPackages))
	for _, n := range s.cfg.TokenPackages {
		if n <= 0 || n > s.cfg.MaxTokensPerPurchase {
			continue
		}
		out = append(out, Package{Tokens: n, AmountCents: n * s.cfg.UnitAmountCents, Currency: s.cfg.Currency})
	}
	return out
}

func (s *CheckoutService) History(ctx context.Context, userID string, limit int) ([]models.Payment, error) {
	return s.payments.ListByUser(ctx, userID, limit)
}
