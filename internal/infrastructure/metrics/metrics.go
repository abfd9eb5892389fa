package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Settlement metrics
	Swaps                *prometheus.CounterVec
	SwapDuration         prometheus.Histogram
	SwapTopUps           prometheus.Counter
	Withdrawals          *prometheus.CounterVec
	DepositRequests      prometheus.Counter
	WebhookCredits       *prometheus.CounterVec
	Compensations        *prometheus.CounterVec
	CompensationFailures prometheus.Counter
	FeesCharged          *prometheus.CounterVec
	SettlementErrors     *prometheus.CounterVec

	// Rail metrics
	RailRequests *prometheus.CounterVec
	RailDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
// A nil reg registers with the default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		Swaps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_swaps_total",
				Help: "Total number of swaps by source currency and outcome",
			},
			[]string{"source", "outcome"},
		),
		SwapDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lnstable_swap_duration_seconds",
			Help:    "Duration of swap operations including rail calls",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		SwapTopUps: f.NewCounter(prometheus.CounterOpts{
			Name: "lnstable_swap_topups_total",
			Help: "Total number of exchange margin top-ups paid over lightning",
		}),
		Withdrawals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_withdrawals_total",
				Help: "Total number of withdrawals by payment path and outcome",
			},
			[]string{"path", "outcome"},
		),
		DepositRequests: f.NewCounter(prometheus.CounterOpts{
			Name: "lnstable_deposit_requests_total",
			Help: "Total number of deposit invoices issued",
		}),
		WebhookCredits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_webhook_credits_total",
				Help: "Total number of paid-invoice notifications by outcome",
			},
			[]string{"outcome"},
		),
		Compensations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_compensations_total",
				Help: "Total number of balance debits reversed after a failed step",
			},
			[]string{"flow"},
		),
		CompensationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "lnstable_compensation_failures_total",
			Help: "Total number of compensations that could not be persisted",
		}),
		FeesCharged: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_fees_charged_total",
				Help: "Sum of fees charged, in the currency's ledger unit",
			},
			[]string{"currency"},
		),
		SettlementErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_settlement_errors_total",
				Help: "Total number of settlement errors by flow and category",
			},
			[]string{"flow", "category"},
		),

		RailRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_rail_requests_total",
				Help: "Total number of rail API requests",
			},
			[]string{"rail", "operation", "status"},
		),
		RailDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lnstable_rail_request_duration_seconds",
				Help:    "Rail API request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"rail", "operation"},
		),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lnstable_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		AuthAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"outcome"},
		),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lnstable_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"path"},
		),
	}
}
