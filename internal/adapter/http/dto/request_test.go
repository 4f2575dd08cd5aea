package dto

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

func TestCreateWalletRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateWalletRequest{
		OwnerEmail: "alice@example.com",
		Currency:   "USD",
	}

	got := req.ToUseCaseInput()
	want := usecase.CreateWalletInput{
		OwnerEmail: "alice@example.com",
		Currency:   "USD",
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestWithdrawRequest_ToUseCaseInput(t *testing.T) {
	req := &WithdrawRequest{
		Amount:          decimal.RequireFromString("125.50"),
		PaymentMethodID: "pm-1",
		Description:     "rent",
		ClearanceToken:  "tok-1",
	}

	got := req.ToUseCaseInput("w-1")

	if got.WalletID != "w-1" {
		t.Errorf("WalletID = %s, want w-1", got.WalletID)
	}
	if !got.Amount.Equal(decimal.RequireFromString("125.50")) {
		t.Errorf("Amount = %s, want 125.50", got.Amount)
	}
	if got.PaymentMethodID != "pm-1" || got.ClearanceToken != "tok-1" {
		t.Errorf("unexpected input: %+v", got)
	}
}

func TestSendPaymentRequest_ToUseCaseInput(t *testing.T) {
	req := &SendPaymentRequest{
		Amount:         decimal.NewFromInt(40),
		RecipientEmail: "bob@example.com",
		UseEscrow:      true,
	}

	got := req.ToUseCaseInput("w-1")

	if got.WalletID != "w-1" || got.RecipientEmail != "bob@example.com" {
		t.Errorf("unexpected input: %+v", got)
	}
	if !got.UseEscrow {
		t.Error("expected UseEscrow to carry through")
	}
}

func TestAddMethodRequest_ToUseCaseInput(t *testing.T) {
	req := &AddMethodRequest{
		Type:        "card",
		Label:       "Main card",
		Fields:      map[string]string{"card_number": "4242424242424242"},
		MakeDefault: true,
	}

	got := req.ToUseCaseInput("w-1")

	if got.Type != domain.MethodCard {
		t.Errorf("Type = %s, want %s", got.Type, domain.MethodCard)
	}
	if got.Fields["card_number"] != "4242424242424242" {
		t.Errorf("unexpected fields: %+v", got.Fields)
	}
	if !got.MakeDefault {
		t.Error("expected MakeDefault to carry through")
	}
}

func TestUpdateSecurityRequest_ToUseCaseInput(t *testing.T) {
	limit := decimal.NewFromInt(500)
	enabled := true

	req := &UpdateSecurityRequest{
		DailyLimit:            &limit,
		WithdrawalRequires2FA: &enabled,
	}

	got := req.ToUseCaseInput()

	if got.DailyLimit == nil || !got.DailyLimit.Equal(limit) {
		t.Errorf("DailyLimit = %v, want 500", got.DailyLimit)
	}
	if got.WithdrawalRequires2FA == nil || !*got.WithdrawalRequires2FA {
		t.Error("expected WithdrawalRequires2FA to be set")
	}
	if got.PaymentRequires2FA != nil {
		t.Error("expected absent field to stay nil")
	}
}
