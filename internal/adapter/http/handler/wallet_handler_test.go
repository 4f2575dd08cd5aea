package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/adapter/http/dto"
	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

type walletServiceStub struct {
	createFn           func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error)
	getFn              func(ctx context.Context, id string) (*domain.Wallet, error)
	listFn             func(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error)
	balanceFn          func(ctx context.Context, walletID string) (decimal.Decimal, error)
	topUpFn            func(ctx context.Context, input usecase.TopUpInput) (*domain.Transaction, error)
	withdrawFn         func(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error)
	sendPaymentFn      func(ctx context.Context, input usecase.SendPaymentInput) (*usecase.SendPaymentResult, error)
	receivePaymentFn   func(ctx context.Context, input usecase.ReceivePaymentInput) (*domain.Transaction, error)
	getTransactionFn   func(ctx context.Context, id string) (*domain.Transaction, error)
	listTransactionsFn func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

func (s *walletServiceStub) CreateWallet(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
	return s.createFn(ctx, input)
}

func (s *walletServiceStub) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.getFn(ctx, id)
}

func (s *walletServiceStub) ListWallets(ctx context.Context, input usecase.ListWalletsInput) ([]*domain.Wallet, error) {
	return s.listFn(ctx, input)
}

func (s *walletServiceStub) AvailableBalance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	return s.balanceFn(ctx, walletID)
}

func (s *walletServiceStub) TopUp(ctx context.Context, input usecase.TopUpInput) (*domain.Transaction, error) {
	return s.topUpFn(ctx, input)
}

func (s *walletServiceStub) Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error) {
	return s.withdrawFn(ctx, input)
}

func (s *walletServiceStub) SendPayment(ctx context.Context, input usecase.SendPaymentInput) (*usecase.SendPaymentResult, error) {
	return s.sendPaymentFn(ctx, input)
}

func (s *walletServiceStub) ReceivePayment(ctx context.Context, input usecase.ReceivePaymentInput) (*domain.Transaction, error) {
	return s.receivePaymentFn(ctx, input)
}

func (s *walletServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getTransactionFn(ctx, id)
}

func (s *walletServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.listTransactionsFn(ctx, input)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestWalletHandler_Create_Success(t *testing.T) {
	wallet := &domain.Wallet{
		ID:         "w-1",
		OwnerEmail: "buyer@example.com",
		Currency:   "USD",
	}

	var captured usecase.CreateWalletInput
	h := NewWalletHandler(&walletServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
			captured = input
			return wallet, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.CreateWalletRequest{
		OwnerEmail: "buyer@example.com",
		Currency:   "USD",
	})

	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.OwnerEmail != "buyer@example.com" || captured.Currency != "USD" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.WalletResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "w-1" {
		t.Fatalf("expected wallet ID w-1, got %s", resp.ID)
	}
}

func TestWalletHandler_Create_InvalidJSON(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error) {
			t.Fatal("CreateWallet should not be called for invalid payload")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/wallets", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWalletHandler_Get_NotFound(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Wallet, error) {
			return nil, domain.ErrWalletNotFound
		},
	}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/wallets/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestWalletHandler_TopUp_Success(t *testing.T) {
	var captured usecase.TopUpInput
	h := NewWalletHandler(&walletServiceStub{
		topUpFn: func(ctx context.Context, input usecase.TopUpInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID:       "tx-1",
				WalletID: input.WalletID,
				Type:     domain.TransactionTopUp,
				Amount:   input.Amount,
				Status:   domain.StatusCompleted,
			}, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.TopUpRequest{
		Amount:   decimal.NewFromInt(100),
		Currency: "USD",
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/wallets/w-1/topup", bytes.NewReader(body)), "id", "w-1")
	rec := httptest.NewRecorder()

	h.TopUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.WalletID != "w-1" || !captured.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
}

func TestWalletHandler_Withdraw_VerificationRequired(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error) {
			return nil, domain.ErrVerificationRequired
		},
	}, nil)

	body, _ := json.Marshal(dto.WithdrawRequest{Amount: decimal.NewFromInt(50)})
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/wallets/w-1/withdraw", bytes.NewReader(body)), "id", "w-1")
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestWalletHandler_Withdraw_Accepted(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error) {
			return &domain.Transaction{
				ID:       "tx-2",
				WalletID: input.WalletID,
				Type:     domain.TransactionWithdrawal,
				Amount:   input.Amount,
				Status:   domain.StatusProcessing,
			}, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.WithdrawRequest{Amount: decimal.NewFromInt(50)})
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/wallets/w-1/withdraw", bytes.NewReader(body)), "id", "w-1")
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(domain.StatusProcessing) {
		t.Fatalf("expected processing status, got %s", resp.Status)
	}
}

func TestWalletHandler_SendPayment_WithEscrow(t *testing.T) {
	h := NewWalletHandler(&walletServiceStub{
		sendPaymentFn: func(ctx context.Context, input usecase.SendPaymentInput) (*usecase.SendPaymentResult, error) {
			if !input.UseEscrow {
				t.Fatalf("expected UseEscrow to be set")
			}
			return &usecase.SendPaymentResult{
				Escrow: &domain.Escrow{
					ID:       "esc-1",
					WalletID: input.WalletID,
					Amount:   input.Amount,
					Status:   domain.EscrowFunded,
				},
			}, nil
		},
	}, nil)

	body, _ := json.Marshal(dto.SendPaymentRequest{
		Amount:         decimal.NewFromInt(75),
		RecipientEmail: "seller@example.com",
		UseEscrow:      true,
	})
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/wallets/w-1/payments", bytes.NewReader(body)), "id", "w-1")
	rec := httptest.NewRecorder()

	h.SendPayment(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SendPaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Escrow == nil || resp.Escrow.ID != "esc-1" {
		t.Fatalf("expected escrow in response, got %+v", resp)
	}
	if resp.Transaction != nil {
		t.Fatalf("expected no transaction for escrowed payment")
	}
}

func TestWalletHandler_ListTransactions_PassesTypeFilter(t *testing.T) {
	var captured usecase.ListTransactionsInput
	h := NewWalletHandler(&walletServiceStub{
		listTransactionsFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			captured = input
			return nil, nil
		},
	}, nil)

	req := withURLParam(
		httptest.NewRequest(http.MethodGet, "/wallets/w-1/transactions?type=top_up&limit=5", nil),
		"id", "w-1",
	)
	rec := httptest.NewRecorder()

	h.ListTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.WalletID != "w-1" || captured.Type != domain.TransactionTopUp || captured.Limit != 5 {
		t.Fatalf("unexpected input: %+v", captured)
	}
}
