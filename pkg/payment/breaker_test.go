package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns queued errors in order, then succeeds.
type scriptedProvider struct {
	mu    sync.Mutex
	errs  []error
	calls int
	block bool
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) next(ctx context.Context) error {
	p.mu.Lock()
	p.calls++
	block := p.block
	var err error
	if len(p.errs) > 0 {
		err, p.errs = p.errs[0], p.errs[1:]
	}
	p.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (p *scriptedProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if err := p.next(ctx); err != nil {
		return nil, err
	}
	return &Checkout{Reference: "ref"}, nil
}

func (p *scriptedProvider) GetPayment(ctx context.Context, reference string) (*Record, error) {
	if err := p.next(ctx); err != nil {
		return nil, err
	}
	return &Record{Reference: reference, Status: StatusPaid}, nil
}

func (p *scriptedProvider) ParseWebhook([]byte, http.Header) (string, error) { return "ref", nil }

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func unavailable(n int) []error {
	out := make([]error, n)
	for i := range out {
		out[i] = fmt.Errorf("%w: connection reset", ErrUnavailable)
	}
	return out
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &scriptedProvider{errs: unavailable(10)}
	b := NewBreakerProvider(next, BreakerConfig{Failures: 3, OpenTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.CreateCheckout(ctx, CheckoutRequest{})
		require.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.CreateCheckout(ctx, CheckoutRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.callCount(), "open circuit must not reach the processor")
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	next := &scriptedProvider{errs: []error{ErrNotFound, ErrNotFound, ErrNotFound, ErrNotFound}}
	b := NewBreakerProvider(next, BreakerConfig{Failures: 2, MaxRetries: 3, RetryInterval: time.Millisecond})

	for i := 0; i < 4; i++ {
		_, err := b.GetPayment(context.Background(), "missing")
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, "closed", b.State())
	assert.Equal(t, 4, next.callCount(), "not-found is never retried")
}

func TestBreaker_RetriesTransientReads(t *testing.T) {
	next := &scriptedProvider{errs: unavailable(2)}
	b := NewBreakerProvider(next, BreakerConfig{Failures: 5, MaxRetries: 2, RetryInterval: time.Millisecond})

	rec, err := b.GetPayment(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", rec.Reference)
	assert.Equal(t, 3, next.callCount())
}

func TestBreaker_ReadRetriesAreBounded(t *testing.T) {
	next := &scriptedProvider{errs: unavailable(10)}
	b := NewBreakerProvider(next, BreakerConfig{Failures: 10, MaxRetries: 2, RetryInterval: time.Millisecond})

	_, err := b.GetPayment(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, next.callCount())
}

func TestBreaker_CheckoutIsNotRetried(t *testing.T) {
	next := &scriptedProvider{errs: unavailable(1)}
	b := NewBreakerProvider(next, BreakerConfig{Failures: 5, MaxRetries: 3, RetryInterval: time.Millisecond})

	_, err := b.CreateCheckout(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, next.callCount())
}

func TestBreaker_CallTimeout(t *testing.T) {
	next := &scriptedProvider{block: true}
	b := NewBreakerProvider(next, BreakerConfig{Failures: 5, CallTimeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := b.CreateCheckout(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}
