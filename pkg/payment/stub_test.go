package payment

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckout(t *testing.T, s *StubProvider, user string, tokens int64) *Checkout {
	t.Helper()
	co, err := s.CreateCheckout(context.Background(), CheckoutRequest{
		UserID:          user,
		Tokens:          tokens,
		UnitAmountCents: 100,
		Currency:        "aud",
		ExpiresIn:       30 * time.Minute,
		Metadata:        map[string]string{"user_id": user, "tokens": "50"},
	})
	require.NoError(t, err)
	return co
}

func TestStub_CheckoutLifecycle(t *testing.T) {
	s := NewStubProvider("secret")
	ctx := context.Background()

	co := newCheckout(t, s, "u1", 50)
	assert.True(t, strings.HasPrefix(co.Reference, "stub_"))
	assert.Equal(t, int64(5000), co.AmountCents)
	assert.Contains(t, co.CheckoutURL, co.Reference)

	rec, err := s.GetPayment(ctx, co.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, rec.Status)
	assert.False(t, rec.Paid())
	assert.Equal(t, "u1", rec.Metadata["user_id"])

	// Records handed out are copies.
	rec.Metadata["user_id"] = "someone-else"
	s.MarkPaid(co.Reference)

	rec, err = s.GetPayment(ctx, co.Reference)
	require.NoError(t, err)
	assert.True(t, rec.Paid())
	assert.Equal(t, "u1", rec.Metadata["user_id"])

	_, err = s.GetPayment(ctx, "stub_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStub_FailWith(t *testing.T) {
	s := NewStubProvider("")
	down := errors.Join(ErrUnavailable, errors.New("connection refused"))
	s.FailWith(down)

	_, err := s.CreateCheckout(context.Background(), CheckoutRequest{Tokens: 1, UnitAmountCents: 100})
	assert.ErrorIs(t, err, ErrUnavailable)

	s.FailWith(nil)
	_, err = s.CreateCheckout(context.Background(), CheckoutRequest{Tokens: 1, UnitAmountCents: 100})
	assert.NoError(t, err)
}

func TestStub_ParseWebhook(t *testing.T) {
	s := NewStubProvider("whsec")
	co := newCheckout(t, s, "u1", 10)

	signed := func(body string) http.Header {
		h := http.Header{}
		h.Set(StubSignatureHeader, s.Sign([]byte(body)))
		return h
	}

	tests := []struct {
		name    string
		body    string
		header  http.Header
		wantRef string
		wantErr error
	}{
		{
			name:    "paid event",
			body:    `{"reference":"` + co.Reference + `","status":"paid"}`,
			wantRef: co.Reference,
		},
		{
			name:    "non settling event",
			body:    `{"reference":"` + co.Reference + `","status":"expired"}`,
			wantErr: ErrIgnoredEvent,
		},
		{
			name:    "bad signature",
			body:    `{"reference":"` + co.Reference + `","status":"paid"}`,
			header:  http.Header{StubSignatureHeader: []string{"deadbeef"}},
			wantErr: ErrInvalidSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.header
			if h == nil {
				h = signed(tt.body)
			}
			ref, err := s.ParseWebhook([]byte(tt.body), h)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRef, ref)
		})
	}

	rec, err := s.GetPayment(context.Background(), co.Reference)
	require.NoError(t, err)
	assert.True(t, rec.Paid(), "signed paid webhook completes the stub payment")
}

func TestStub_ParseWebhookWithoutSecret(t *testing.T) {
	s := NewStubProvider("")
	_, err := s.ParseWebhook([]byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestClampExpiry(t *testing.T) {
	assert.Equal(t, 31*time.Minute, clampExpiry(0))
	assert.Equal(t, 31*time.Minute, clampExpiry(30*time.Minute))
	assert.Equal(t, 2*time.Hour, clampExpiry(2*time.Hour))
	assert.Equal(t, 24*time.Hour, clampExpiry(48*time.Hour))
}
