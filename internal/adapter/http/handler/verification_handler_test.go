package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/adapter/http/dto"
	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
	"github.com/strefex-app/walletd/internal/usecase/mocks"
)

type verificationFixture struct {
	handler  *VerificationHandler
	sender   *mocks.MockCodeSender
	walletID string
}

func newVerificationFixture(t *testing.T) *verificationFixture {
	t.Helper()

	walletRepo := mocks.NewMockWalletRepository()
	store := mocks.NewMockVerificationStore()
	sender := mocks.NewMockCodeSender()
	idGen := mocks.NewMockIDGenerator()

	verificationUC := usecase.NewVerificationUseCase(walletRepo, store, sender, idGen, nil)

	wallet := &domain.Wallet{
		ID:         "w-1",
		OwnerEmail: "owner@example.com",
		Currency:   "USD",
		Balance:    decimal.NewFromInt(500),
	}
	if err := walletRepo.Create(t.Context(), wallet, domain.DefaultSecuritySettings()); err != nil {
		t.Fatalf("failed to seed wallet: %v", err)
	}

	return &verificationFixture{
		handler:  NewVerificationHandler(verificationUC),
		sender:   sender,
		walletID: wallet.ID,
	}
}

func (f *verificationFixture) issueCode(t *testing.T, channel string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(dto.IssueCodeRequest{Channel: channel})
	req := withURLParam(
		httptest.NewRequest(http.MethodPost, "/wallets/"+f.walletID+"/verification/codes", bytes.NewReader(body)),
		"id", f.walletID,
	)
	rec := httptest.NewRecorder()
	f.handler.IssueCode(rec, req)
	return rec
}

func (f *verificationFixture) checkCode(t *testing.T, operation, channel, code string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(dto.CheckCodeRequest{Operation: operation, Channel: channel, Code: code})
	req := withURLParam(
		httptest.NewRequest(http.MethodPost, "/wallets/"+f.walletID+"/verification/checks", bytes.NewReader(body)),
		"id", f.walletID,
	)
	rec := httptest.NewRecorder()
	f.handler.CheckCode(rec, req)
	return rec
}

func TestVerificationHandler_IssueCode_Email(t *testing.T) {
	f := newVerificationFixture(t)

	rec := f.issueCode(t, "email")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.IssueCodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Channel != "email" {
		t.Fatalf("unexpected channel: %s", resp.Channel)
	}
	if !resp.ExpiresAt.After(time.Now().UTC()) {
		t.Fatalf("expected a future expiry, got %v", resp.ExpiresAt)
	}
	if len(f.sender.Delivered) != 1 {
		t.Fatalf("expected one delivered code, got %d", len(f.sender.Delivered))
	}
	if f.sender.Delivered[0].Destination != "owner@example.com" {
		t.Fatalf("code delivered to %s", f.sender.Delivered[0].Destination)
	}
}

func TestVerificationHandler_IssueCode_PhoneWithoutNumber(t *testing.T) {
	f := newVerificationFixture(t)

	rec := f.issueCode(t, "phone")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVerificationHandler_CheckCode_Completes(t *testing.T) {
	f := newVerificationFixture(t)

	if rec := f.issueCode(t, "email"); rec.Code != http.StatusCreated {
		t.Fatalf("issue failed: %d", rec.Code)
	}

	rec := f.checkCode(t, string(domain.OpWithdraw), "email", f.sender.LastCode())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.CheckCodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Completed {
		t.Fatal("expected the single email step to complete the gate")
	}
	if resp.ClearanceToken == "" {
		t.Fatal("expected a clearance token")
	}
}

func TestVerificationHandler_CheckCode_Mismatch(t *testing.T) {
	f := newVerificationFixture(t)

	if rec := f.issueCode(t, "email"); rec.Code != http.StatusCreated {
		t.Fatalf("issue failed: %d", rec.Code)
	}

	rec := f.checkCode(t, string(domain.OpWithdraw), "email", "000000")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVerificationHandler_CheckCode_NoPendingCode(t *testing.T) {
	f := newVerificationFixture(t)

	rec := f.checkCode(t, string(domain.OpWithdraw), "email", "123456")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVerificationHandler_Cancel(t *testing.T) {
	f := newVerificationFixture(t)

	body, _ := json.Marshal(dto.CancelVerificationRequest{Operation: string(domain.OpWithdraw)})
	req := withURLParam(
		httptest.NewRequest(http.MethodDelete, "/wallets/"+f.walletID+"/verification", bytes.NewReader(body)),
		"id", f.walletID,
	)
	rec := httptest.NewRecorder()

	f.handler.Cancel(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
}
