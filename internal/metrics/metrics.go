package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "academy_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "endpoint"})

	LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_ledger_operations_total",
		Help: "Wallet credits and debits, labeled by entry kind and outcome",
	}, []string{"op", "kind", "result"})

	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_payment_verifications_total",
		Help: "Payment verification attempts by outcome",
	}, []string{"result"})

	ProcessorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_payment_processor_calls_total",
		Help: "Calls to the payment processor by operation and outcome",
	}, []string{"op", "result"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "academy_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	CircuitBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_circuit_breaker_transitions_total",
		Help: "Circuit breaker state transitions",
	}, []string{"name", "from", "to"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "academy_rate_limited_requests_total",
		Help: "Requests rejected by the per-client rate limiter",
	})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "academy_websocket_clients",
		Help: "Connected wallet websocket clients",
	})
)

// Ledger operation outcomes.
const (
	ResultCreated      = "created"
	ResultDuplicate    = "duplicate"
	ResultConflict     = "conflict"
	ResultInsufficient = "insufficient"
	ResultError        = "error"
	ResultSuccess      = "success"
	ResultRejected     = "rejected"
)
