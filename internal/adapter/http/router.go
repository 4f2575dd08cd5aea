package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strefex-app/walletd/internal/adapter/http/handler"
	"github.com/strefex-app/walletd/internal/adapter/http/middleware"
	"github.com/strefex-app/walletd/internal/infrastructure/auth"
	"github.com/strefex-app/walletd/internal/infrastructure/metrics"
	"github.com/strefex-app/walletd/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler       *handler.WalletHandler
	EscrowHandler       *handler.EscrowHandler
	MethodHandler       *handler.MethodHandler
	VerificationHandler *handler.VerificationHandler
	SecurityHandler     *handler.SecurityHandler
	HealthHandler       *handler.HealthHandler
	IdempotencyStore    usecase.IdempotencyStore
	JWTManager          *auth.JWTManager
	Metrics             *metrics.Metrics
	RateLimiter         *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Wallets and money movement
		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", cfg.WalletHandler.Create)
			r.Get("/", cfg.WalletHandler.List)
			r.Get("/{id}", cfg.WalletHandler.Get)
			r.Get("/{id}/balance", cfg.WalletHandler.Balance)
			r.Get("/{id}/reconcile", cfg.WalletHandler.Reconcile)
			r.Post("/{id}/topup", cfg.WalletHandler.TopUp)
			r.Post("/{id}/withdraw", cfg.WalletHandler.Withdraw)
			r.Post("/{id}/payments", cfg.WalletHandler.SendPayment)
			r.Post("/{id}/payments/incoming", cfg.WalletHandler.ReceivePayment)
			r.Get("/{id}/transactions", cfg.WalletHandler.ListTransactions)
			r.Get("/{id}/escrows", cfg.EscrowHandler.ListByWallet)
			r.Get("/{id}/escrows/active", cfg.EscrowHandler.ActiveByWallet)

			// Payment methods
			r.Route("/{id}/payment-methods", func(r chi.Router) {
				r.Post("/", cfg.MethodHandler.Add)
				r.Get("/", cfg.MethodHandler.List)
				r.Delete("/{methodID}", cfg.MethodHandler.Remove)
				r.Put("/{methodID}/default", cfg.MethodHandler.SetDefault)
				r.Put("/{methodID}/verify", cfg.MethodHandler.Verify)
			})

			// Verification gate
			r.Route("/{id}/verification", func(r chi.Router) {
				r.Post("/codes", cfg.VerificationHandler.IssueCode)
				r.Post("/checks", cfg.VerificationHandler.CheckCode)
				r.Post("/cancel", cfg.VerificationHandler.Cancel)
			})

			// Security settings
			r.Route("/{id}/security", func(r chi.Router) {
				r.Get("/", cfg.SecurityHandler.Get)
				r.Put("/", cfg.SecurityHandler.Update)
				r.Post("/phone/verify", cfg.SecurityHandler.VerifyPhone)
				r.Post("/2fa/enable", cfg.SecurityHandler.EnableTwoFactor)
				r.Post("/2fa/disable", cfg.SecurityHandler.DisableTwoFactor)
			})
		})

		// Transactions
		r.Get("/transactions/{id}", cfg.WalletHandler.GetTransaction)

		// Escrows
		r.Route("/escrows", func(r chi.Router) {
			r.Post("/", cfg.EscrowHandler.Fund)
			r.Get("/{id}", cfg.EscrowHandler.Get)
			r.Post("/{id}/release", cfg.EscrowHandler.Release)
			r.Post("/{id}/refund", cfg.EscrowHandler.Refund)
			r.Post("/{id}/dispute", cfg.EscrowHandler.Dispute)
		})
	})

	return r
}
