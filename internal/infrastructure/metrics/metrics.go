package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerOperations  *prometheus.CounterVec
	LedgerErrors      *prometheus.CounterVec
	OperationDuration prometheus.Histogram
	OperationAmount   prometheus.Histogram
	WalletBalance     *prometheus.GaugeVec

	// Escrow metrics
	EscrowsFunded   prometheus.Counter
	EscrowsReleased prometheus.Counter
	EscrowsRefunded prometheus.Counter
	EscrowDuration  prometheus.Histogram

	// Verification metrics
	VerificationCodesIssued *prometheus.CounterVec
	VerificationChecks      *prometheus.CounterVec

	// Settlement metrics
	WithdrawalsSettled prometheus.Counter
	WithdrawalsFailed  prometheus.Counter
	SettlementLag      prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBErrors *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		LedgerOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_ledger_operations_total",
				Help: "Total ledger operations by type",
			},
			[]string{"operation"},
		),
		LedgerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_ledger_errors_total",
				Help: "Total ledger operation errors by type",
			},
			[]string{"error_type"},
		),
		OperationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletd_operation_duration_seconds",
			Help:    "Duration of ledger operations",
			Buckets: prometheus.DefBuckets,
		}),
		OperationAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletd_operation_amount",
			Help:    "Ledger operation amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		WalletBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "walletd_wallet_balance",
				Help: "Current wallet balance",
			},
			[]string{"wallet_id", "currency"},
		),

		EscrowsFunded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_escrows_funded_total",
			Help: "Total number of escrows funded",
		}),
		EscrowsReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_escrows_released_total",
			Help: "Total number of escrows released",
		}),
		EscrowsRefunded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_escrows_refunded_total",
			Help: "Total number of escrows refunded",
		}),
		EscrowDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletd_escrow_duration_seconds",
			Help:    "Duration of escrow operations",
			Buckets: prometheus.DefBuckets,
		}),

		VerificationCodesIssued: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_verification_codes_issued_total",
				Help: "Total verification codes issued by channel",
			},
			[]string{"channel"},
		),
		VerificationChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_verification_checks_total",
				Help: "Total verification code checks by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),

		WithdrawalsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_withdrawals_settled_total",
			Help: "Total withdrawals settled by the worker",
		}),
		WithdrawalsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletd_withdrawals_failed_total",
			Help: "Total withdrawals failed and reversed",
		}),
		SettlementLag: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletd_settlement_lag_seconds",
			Help:    "Time between withdrawal request and settlement",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 300},
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletd_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
