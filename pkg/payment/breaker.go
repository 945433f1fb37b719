package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"academy/internal/logging"
	"academy/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	gobreaker "github.com/sony/gobreaker/v2"
)

type BreakerConfig struct {
	// Failures is the number of consecutive processor failures that opens the circuit.
	Failures uint32
	// OpenTimeout is how long the circuit stays open before a trial call is let through.
	OpenTimeout time.Duration
	// CallTimeout bounds each processor call. Zero means the caller's context only.
	CallTimeout time.Duration
	// MaxRetries applies to reads only; checkout creation is never retried.
	MaxRetries    uint64
	RetryInterval time.Duration
}

// BreakerProvider guards another Provider with a circuit breaker, per-call timeouts and retried reads.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker[any]
	cfg  BreakerConfig
}

func NewBreakerProvider(next Provider, cfg BreakerConfig) *BreakerProvider {
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	name := "payment-" + next.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		// Unknown references and bad credentials are answers, not outages.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrMisconfigured)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("payment processor circuit changed state")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
	return &BreakerProvider{next: next, cb: cb, cfg: cfg}
}

func (b *BreakerProvider) Name() string { return b.next.Name() }

// State reports the circuit state, for health output.
func (b *BreakerProvider) State() string { return b.cb.State().String() }

func (b *BreakerProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	v, err := b.call(ctx, "create_checkout", func(ctx context.Context) (any, error) {
		return b.next.CreateCheckout(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Checkout), nil
}

func (b *BreakerProvider) GetPayment(ctx context.Context, reference string) (*Record, error) {
	var rec *Record
	op := func() error {
		v, err := b.call(ctx, "get_payment", func(ctx context.Context) (any, error) {
			return b.next.GetPayment(ctx, reference)
		})
		if err != nil {
			if retryable(err) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		rec = v.(*Record)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	if b.cfg.RetryInterval > 0 {
		bo.InitialInterval = b.cfg.RetryInterval
	}
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, b.cfg.MaxRetries), ctx)); err != nil {
		if !errors.Is(err, ErrUnavailable) && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}
	return rec, nil
}

func (b *BreakerProvider) ParseWebhook(payload []byte, header http.Header) (string, error) {
	return b.next.ParseWebhook(payload, header)
}

func (b *BreakerProvider) call(ctx context.Context, op string, fn func(context.Context) (any, error)) (any, error) {
	v, err := b.cb.Execute(func() (any, error) {
		cctx, cancel := ctx, context.CancelFunc(func() {})
		if b.cfg.CallTimeout > 0 {
			cctx, cancel = context.WithTimeout(ctx, b.cfg.CallTimeout)
		}
		defer cancel()
		v, err := fn(cctx)
		if err != nil && cctx.Err() != nil && !errors.Is(err, ErrUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return v, err
	})

	switch {
	case err == nil:
		metrics.ProcessorCalls.WithLabelValues(op, metrics.ResultSuccess).Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ProcessorCalls.WithLabelValues(op, metrics.ResultRejected).Inc()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		metrics.ProcessorCalls.WithLabelValues(op, metrics.ResultError).Inc()
	}
	return v, err
}

func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) &&
		!errors.Is(err, gobreaker.ErrOpenState) &&
		!errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}
