package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StubSignatureHeader carries the hex HMAC-SHA256 of the webhook body.
const StubSignatureHeader = "X-Webhook-Signature"

// StubProvider is an in-memory processor for development and tests. Payments stay open until
// MarkPaid is called or a signed webhook reports them paid.
type StubProvider struct {
	webhookSecret string

	mu       sync.RWMutex
	payments map[string]*Record
	failWith error
}

func NewStubProvider(webhookSecret string) *StubProvider {
	return &StubProvider{
		webhookSecret: webhookSecret,
		payments:      make(map[string]*Record),
	}
}

func (s *StubProvider) Name() string { return "stub" }

func (s *StubProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if err := s.failure(ctx); err != nil {
		return nil, err
	}
	ref := "stub_" + uuid.NewString()
	meta := make(map[string]string, len(req.Metadata))
	for k, v := range req.Metadata {
		meta[k] = v
	}
	amount := req.UnitAmountCents * req.Tokens

	s.mu.Lock()
	s.payments[ref] = &Record{
		Reference:   ref,
		Status:      StatusOpen,
		AmountCents: amount,
		Currency:    req.Currency,
		Metadata:    meta,
	}
	s.mu.Unlock()

	return &Checkout{
		Reference:   ref,
		CheckoutURL: "https://checkout.stub.local/pay/" + ref,
		AmountCents: amount,
		ExpiresAt:   time.Now().Add(req.ExpiresIn),
	}, nil
}

func (s *StubProvider) GetPayment(ctx context.Context, reference string) (*Record, error) {
	if err := s.failure(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.payments[reference]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	cp.Metadata = make(map[string]string, len(rec.Metadata))
	for k, v := range rec.Metadata {
		cp.Metadata[k] = v
	}
	return &cp, nil
}

type stubWebhook struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// ParseWebhook checks the signature and applies the reported status to the in-memory record,
// the way a real processor would have completed the payment before notifying.
func (s *StubProvider) ParseWebhook(payload []byte, header http.Header) (string, error) {
	if s.webhookSecret == "" {
		return "", ErrMisconfigured
	}
	if !hmac.Equal([]byte(s.Sign(payload)), []byte(header.Get(StubSignatureHeader))) {
		return "", ErrInvalidSignature
	}
	var evt stubWebhook
	if err := json.Unmarshal(payload, &evt); err != nil {
		return "", fmt.Errorf("decode stub webhook: %w", err)
	}
	if evt.Reference == "" {
		return "", fmt.Errorf("decode stub webhook: missing reference")
	}
	if evt.Status != StatusPaid {
		return "", ErrIgnoredEvent
	}
	s.MarkPaid(evt.Reference)
	return evt.Reference, nil
}

// Sign returns the signature ParseWebhook expects for payload.
func (s *StubProvider) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// MarkPaid completes a checkout. Unknown references are ignored.
func (s *StubProvider) MarkPaid(reference string) {
	s.SetStatus(reference, StatusPaid)
}

func (s *StubProvider) SetStatus(reference, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.payments[reference]; ok {
		rec.Status = status
	}
}

// SetMetadata overwrites a record's metadata, e.g. to simulate a payment created for another user.
func (s *StubProvider) SetMetadata(reference string, meta map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.payments[reference]; ok {
		rec.Metadata = meta
	}
}

// FailWith makes every processor call return err until it is called again with nil.
func (s *StubProvider) FailWith(err error) {
	s.mu.Lock()
	s.failWith = err
	s.mu.Unlock()
}

func (s *StubProvider) failure(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failWith
}
