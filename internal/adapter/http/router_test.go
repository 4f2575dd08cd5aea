package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/adapter/http/handler"
	apimiddleware "github.com/strefex-app/walletd/internal/adapter/http/middleware"
	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/infrastructure/auth"
	"github.com/strefex-app/walletd/internal/usecase"
	"github.com/strefex-app/walletd/internal/usecase/mocks"
)

type walletServiceStub struct{}

func (walletServiceStub) CreateWallet(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
	return &domain.Wallet{ID: "w-1", OwnerEmail: input.OwnerEmail, Currency: input.Currency}, nil
}

func (walletServiceStub) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return &domain.Wallet{ID: id}, nil
}

func (walletServiceStub) ListWallets(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error) {
	return nil, nil
}

func (walletServiceStub) AvailableBalance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (walletServiceStub) TopUp(ctx context.Context, input usecase.TopUpInput) (*domain.Transaction, error) {
	return &domain.Transaction{ID: "tx-1"}, nil
}

func (walletServiceStub) Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error) {
	return &domain.Transaction{ID: "tx-2"}, nil
}

func (walletServiceStub) SendPayment(ctx context.Context, input usecase.SendPaymentInput) (*usecase.SendPaymentResult, error) {
	return &usecase.SendPaymentResult{}, nil
}

func (walletServiceStub) ReceivePayment(ctx context.Context, input usecase.ReceivePaymentInput) (*domain.Transaction, error) {
	return &domain.Transaction{ID: "tx-3"}, nil
}

func (walletServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return &domain.Transaction{ID: id}, nil
}

func (walletServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return nil, nil
}

func newRouterConfig(overrides ...func(*RouterConfig)) RouterConfig {
	walletRepo := mocks.NewMockWalletRepository()
	escrowRepo := mocks.NewMockEscrowRepository()
	txRepo := mocks.NewMockTransactionRepository()
	methodRepo := mocks.NewMockMethodRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	auditRepo := mocks.NewMockAuditRepository()
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	store := mocks.NewMockVerificationStore()
	sender := mocks.NewMockCodeSender()
	tracker := mocks.NewMockDailySpendTracker()

	policy := usecase.NewSecurityPolicy(tracker)
	verification := usecase.NewVerificationUseCase(walletRepo, store, sender, idGen, nil)
	escrowUC := usecase.NewEscrowUseCase(
		txMgr, walletRepo, escrowRepo, txRepo, outboxRepo, auditRepo,
		policy, verification, idGen, nil,
	)
	methodUC := usecase.NewMethodUseCase(walletRepo, methodRepo, auditRepo, policy, verification, idGen)
	securityUC := usecase.NewSecurityUseCase(walletRepo, auditRepo, idGen)
	reconUC := usecase.NewReconciliationUseCase(walletRepo, escrowRepo)

	cfg := RouterConfig{
		WalletHandler:       handler.NewWalletHandler(walletServiceStub{}, reconUC),
		EscrowHandler:       handler.NewEscrowHandler(escrowUC),
		MethodHandler:       handler.NewMethodHandler(methodUC),
		VerificationHandler: handler.NewVerificationHandler(verification),
		SecurityHandler:     handler.NewSecurityHandler(securityUC),
		HealthHandler:       handler.NewHealthHandler(nil, nil),
	}

	for _, override := range overrides {
		override(&cfg)
	}

	return cfg
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_WalletRoutesWired(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets", strings.NewReader(`{"owner_email":"a@b.com","currency":"USD"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_AuthRejectsMissingToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.JWTManager = jwtManager
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestNewRouter_AuthAcceptsValidToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.JWTManager = jwtManager
	}))

	token, err := jwtManager.Generate(&domain.Identity{AccountID: "acc-1", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
