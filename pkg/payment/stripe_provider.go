package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	stripeSignatureHeader   = "Stripe-Signature"
	stripeCheckoutCompleted = "checkout.session.completed"
	// Delayed payment methods complete the session first and report the settled payment later.
	stripeAsyncSucceeded = "checkout.session.async_payment_succeeded"
	stripeProductName       = "Academy tokens"
	// Stripe rejects checkout expiries outside 30 minutes to 24 hours.
	stripeMinExpiry = 30 * time.Minute
	stripeMaxExpiry = 24 * time.Hour
)

// StripeProvider creates hosted Checkout Sessions and reads them back for verification.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) (*StripeProvider, error) {
	if secretKey == "" {
		return nil, ErrMisconfigured
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProvider{api: sc, webhookSecret: webhookSecret}, nil
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.UnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(stripeProductName),
				},
			},
			Quantity: stripe.Int64(req.Tokens),
		}},
		ExpiresAt: stripe.Int64(time.Now().Add(clampExpiry(req.ExpiresIn)).Unix()),
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &Checkout{
		Reference:    s.ID,
		CheckoutURL:  s.URL,
		ClientSecret: s.ClientSecret,
		AmountCents:  s.AmountTotal,
		ExpiresAt:    time.Unix(s.ExpiresAt, 0),
	}, nil
}

func (p *StripeProvider) GetPayment(ctx context.Context, reference string) (*Record, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := p.api.CheckoutSessions.Get(reference, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return sessionRecord(s), nil
}

// ParseWebhook accepts checkout.session.completed and checkout.session.async_payment_succeeded
// events signed with the endpoint secret. Whether the session is actually paid is decided later by
// GetPayment.
func (p *StripeProvider) ParseWebhook(payload []byte, header http.Header) (string, error) {
	if p.webhookSecret == "" {
		return "", ErrMisconfigured
	}
	evt, err := webhook.ConstructEventWithOptions(payload, header.Get(stripeSignatureHeader), p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	switch string(evt.Type) {
	case stripeCheckoutCompleted, stripeAsyncSucceeded:
	default:
		return "", ErrIgnoredEvent
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
		return "", fmt.Errorf("decode checkout session: %w", err)
	}
	if s.ID == "" {
		return "", fmt.Errorf("decode checkout session: missing id")
	}
	return s.ID, nil
}

func sessionRecord(s *stripe.CheckoutSession) *Record {
	rec := &Record{
		Reference:   s.ID,
		AmountCents: s.AmountTotal,
		Currency:    string(s.Currency),
		Metadata:    s.Metadata,
	}
	switch {
	case s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		rec.Status = StatusPaid
	case s.Status == stripe.CheckoutSessionStatusExpired:
		rec.Status = StatusExpired
	default:
		rec.Status = StatusOpen
	}
	return rec
}

func mapStripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.Code == stripe.ErrorCodeResourceMissing || se.HTTPStatusCode == http.StatusNotFound:
			return ErrNotFound
		case se.HTTPStatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", ErrMisconfigured, se.Msg)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func clampExpiry(d time.Duration) time.Duration {
	// A little headroom over the minimum absorbs clock skew with the processor.
	if d <= stripeMinExpiry {
		return stripeMinExpiry + time.Minute
	}
	if d > stripeMaxExpiry {
		return stripeMaxExpiry
	}
	return d
}
