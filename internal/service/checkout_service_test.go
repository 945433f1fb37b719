package service

import (
	"context"
	"fmt"
	"testing"

	"academy/internal/domain"
	"academy/pkg/payment"

	"github.com/stretchr/testify/require"
)

func TestCheckout_CreateSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.checkout.CreateSession(ctx, "u1", 50)
	require.NoError(t, err)
	require.NotEmpty(t, res.Reference)
	require.Equal(t, int64(50), res.Tokens)
	require.Equal(t, int64(5000), res.AmountCents)
	require.Equal(t, "aud", res.Currency)

	rec, err := f.stub.GetPayment(ctx, res.Reference)
	require.NoError(t, err)
	require.Equal(t, "u1", rec.Metadata[domain.MetadataUserID])
	require.Equal(t, "50", rec.Metadata[domain.MetadataTokens])
	require.Equal(t, int64(5000), rec.AmountCents)

	mirror, err := f.payments.GetByProviderRef(ctx, res.Reference)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStatusCreated, mirror.Status)
	require.Equal(t, "stub", mirror.Provider)
	require.Equal(t, int64(50), mirror.TokenAmount)

	// A checkout alone never touches the ledger.
	require.Equal(t, int64(0), f.balance(t, "u1"))
}

func TestCheckout_RejectsBadAmounts(t *testing.T) {
	f := newFixture(t)
	for _, tokens := range []int64{0, -5, 1001} {
		t.Run(fmt.Sprint(tokens), func(t *testing.T) {
			_, err := f.checkout.CreateSession(context.Background(), "u1", tokens)
			require.ErrorIs(t, err, domain.ErrInvalidAmount)
		})
	}
}

func TestCheckout_RequiresUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.checkout.CreateSession(context.Background(), "", 10)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCheckout_ProcessorErrors(t *testing.T) {
	tests := []struct {
		name    string
		failure error
		want    error
	}{
		{"unavailable", fmt.Errorf("%w: dial tcp: timeout", payment.ErrUnavailable), domain.ErrPaymentProvider},
		{"bad credentials", fmt.Errorf("%w: invalid api key", payment.ErrMisconfigured), domain.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.stub.FailWith(tt.failure)
			_, err := f.checkout.CreateSession(context.Background(), "u1", 10)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckout_NoProviderConfigured(t *testing.T) {
	f := newFixture(t)
	svc := NewCheckoutService(nil, f.payments, testPaymentConfig())
	_, err := svc.CreateSession(context.Background(), "u1", 10)
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCheckout_Packages(t *testing.T) {
	f := newFixture(t)
	pkgs := f.checkout.Packages()
	// 5000 exceeds the per-purchase cap and is dropped.
	require.Equal(t, []Package{
		{Tokens: 10, AmountCents: 1000, Currency: "aud"},
		{Tokens: 50, AmountCents: 5000, Currency: "aud"},
	}, pkgs)
}
