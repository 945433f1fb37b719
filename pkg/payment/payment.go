package payment

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	// ErrNotFound means the processor has no record for the reference.
	ErrNotFound = errors.New("payment: reference not found")
	// ErrUnavailable covers transport failures, timeouts and an open circuit.
	ErrUnavailable = errors.New("payment: processor unavailable")
	// ErrMisconfigured means credentials or settings are missing.
	ErrMisconfigured = errors.New("payment: processor not configured")
	// ErrInvalidSignature rejects webhooks that were not signed with the shared secret.
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	// ErrIgnoredEvent is returned by ParseWebhook for events that do not settle a payment.
	ErrIgnoredEvent = errors.New("payment: event ignored")
)

// Processor-side payment states.
const (
	StatusOpen    = "open"
	StatusPaid    = "paid"
	StatusExpired = "expired"
	StatusFailed  = "failed"
)

type CheckoutRequest struct {
	UserID          string
	Tokens          int64
	UnitAmountCents int64
	Currency        string
	SuccessURL      string
	CancelURL       string
	ExpiresIn       time.Duration
	Metadata        map[string]string
}

type Checkout struct {
	Reference    string
	CheckoutURL  string
	ClientSecret string
	AmountCents  int64
	ExpiresAt    time.Time
}

// Record is the processor's authoritative view of a payment.
type Record struct {
	Reference   string
	Status      string
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

func (r *Record) Paid() bool { return r.Status == StatusPaid }

// Provider is a card processor that hosts checkout pages.
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	GetPayment(ctx context.Context, reference string) (*Record, error)
	// ParseWebhook authenticates a notification and returns the payment reference it is about.
	ParseWebhook(payload []byte, header http.Header) (string, error)
}
