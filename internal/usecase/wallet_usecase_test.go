package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

func TestWalletUseCase_CreateWallet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	wallet, err := f.wallets.CreateWallet(ctx, usecase.CreateWalletInput{
		OwnerEmail: "owner@example.com",
		Currency:   "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !wallet.Balance.IsZero() || !wallet.EscrowHeld.IsZero() {
		t.Error("new wallet must start with zero balances")
	}

	settings, err := f.security.GetSettings(ctx, wallet.ID)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if !settings.WithdrawalRequires2FA || !settings.PaymentRequires2FA {
		t.Error("new wallet must start with the protective defaults")
	}
	if !settings.DailyLimit.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("default daily limit = %s", settings.DailyLimit)
	}

	if _, err := f.wallets.CreateWallet(ctx, usecase.CreateWalletInput{
		OwnerEmail: "not-an-email",
		Currency:   "USD",
	}); !errors.Is(err, domain.ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}

	if _, err := f.wallets.CreateWallet(ctx, usecase.CreateWalletInput{
		OwnerEmail: "owner@example.com",
		Currency:   "XXX",
	}); !errors.Is(err, domain.ErrInvalidCurrency) {
		t.Errorf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestWalletUseCase_TopUp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 0, false)

	tx, err := f.wallets.TopUp(ctx, usecase.TopUpInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.Status != domain.StatusCompleted {
		t.Errorf("top-up status = %s, want completed", tx.Status)
	}
	if tx.CompletedAt == nil {
		t.Error("top-up must carry a completion time")
	}
	if !strings.HasPrefix(tx.Reference, "TU-") {
		t.Errorf("reference = %s, want TU- prefix", tx.Reference)
	}

	got, _ := f.wallets.GetWallet(ctx, wallet.ID)
	if !got.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("balance = %s, want 500", got.Balance)
	}
	if !got.TotalDeposited.Equal(decimal.NewFromInt(500)) {
		t.Errorf("totalDeposited = %s, want 500", got.TotalDeposited)
	}
	if err := got.CheckInvariants(); err != nil {
		t.Errorf("invariants violated: %v", err)
	}

	if len(f.outboxRepo.ByType(domain.EventTypeWalletToppedUp)) != 1 {
		t.Error("expected one wallet.topup event")
	}

	if _, err := f.wallets.TopUp(ctx, usecase.TopUpInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(-5),
	}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	if _, err := f.wallets.TopUp(ctx, usecase.TopUpInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(10),
		Currency: "EUR",
	}); !errors.Is(err, domain.ErrCurrencyMismatch) {
		t.Errorf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestWalletUseCase_Withdraw(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, false)

	tx, err := f.wallets.Withdraw(ctx, usecase.WithdrawInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Debit lands immediately, settlement finishes later.
	if tx.Status != domain.StatusProcessing {
		t.Errorf("withdrawal status = %s, want processing", tx.Status)
	}
	if tx.CompletedAt != nil {
		t.Error("processing withdrawal must not carry a completion time")
	}
	if !strings.HasPrefix(tx.Reference, "WD-") {
		t.Errorf("reference = %s, want WD- prefix", tx.Reference)
	}

	got, _ := f.wallets.GetWallet(ctx, wallet.ID)
	if !got.Balance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("balance = %s, want 700", got.Balance)
	}
	if !got.TotalWithdrawn.Equal(decimal.NewFromInt(300)) {
		t.Errorf("totalWithdrawn = %s, want 300", got.TotalWithdrawn)
	}

	if len(f.outboxRepo.ByType(domain.EventTypeWithdrawalRequested)) != 1 {
		t.Error("expected one withdrawal.requested event")
	}

	if _, err := f.wallets.Withdraw(ctx, usecase.WithdrawInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(5000),
	}); !errors.Is(err, domain.ErrInsufficientAvailableBalance) {
		t.Errorf("expected ErrInsufficientAvailableBalance, got %v", err)
	}
}

func TestWalletUseCase_WithdrawRequiresClearance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, true)

	_, err := f.wallets.Withdraw(ctx, usecase.WithdrawInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(100),
	})
	if !errors.Is(err, domain.ErrVerificationRequired) {
		t.Fatalf("expected ErrVerificationRequired, got %v", err)
	}

	token := f.clearance(t, wallet.ID, domain.OpWithdraw)

	tx, err := f.wallets.Withdraw(ctx, usecase.WithdrawInput{
		WalletID:       wallet.ID,
		Amount:         decimal.NewFromInt(100),
		ClearanceToken: token,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tx.SecurityVerified {
		t.Error("gated withdrawal must be marked verified")
	}

	// The token is spent; a second withdrawal needs a fresh gate run.
	if _, err := f.wallets.Withdraw(ctx, usecase.WithdrawInput{
		WalletID:       wallet.ID,
		Amount:         decimal.NewFromInt(100),
		ClearanceToken: token,
	}); !errors.Is(err, domain.ErrVerificationRequired) {
		t.Errorf("expected ErrVerificationRequired on token reuse, got %v", err)
	}
}

func TestWalletUseCase_WithdrawLimits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 100000, false)

	limit := decimal.NewFromInt(200)
	daily := decimal.NewFromInt(300)
	if _, err := f.security.UpdateSettings(ctx, wallet.ID, usecase.UpdateSettingsInput{
		SingleTransactionLimit: &limit,
		DailyLimit:             &daily,
	}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	if _, err := f.wallets.Withdraw(ctx, usecase.WithdrawInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(250),
	}); !errors.Is(err, domain.ErrSingleTransactionLimit) {
		t.Errorf("expected ErrSingleTransactionLimit, got %v", err)
	}

	if _, err := f.wallets.Withdraw(ctx, usecase.WithdrawInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(200),
	}); err != nil {
		t.Fatalf("first withdrawal: %v", err)
	}

	// 200 already spent today, another 200 would cross the daily 300.
	if _, err := f.wallets.Withdraw(ctx, usecase.WithdrawInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(200),
	}); !errors.Is(err, domain.ErrDailyLimit) {
		t.Errorf("expected ErrDailyLimit, got %v", err)
	}
}

func TestWalletUseCase_SendPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, false)

	result, err := f.wallets.SendPayment(ctx, usecase.SendPaymentInput{
		WalletID:       wallet.ID,
		Amount:         decimal.NewFromInt(250),
		RecipientEmail: "seller@example.com",
		RecipientName:  "Seller",
		Description:    "invoice 42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tx := result.Transaction
	if tx == nil {
		t.Fatal("direct payment must return a transaction")
	}
	if tx.Status != domain.StatusCompleted {
		t.Errorf("payment status = %s, want completed", tx.Status)
	}
	if !strings.HasPrefix(tx.Reference, "PAY-") {
		t.Errorf("reference = %s, want PAY- prefix", tx.Reference)
	}
	if tx.Counterparty == nil || tx.Counterparty.Email != "seller@example.com" {
		t.Error("payment must record the counterparty")
	}

	got, _ := f.wallets.GetWallet(ctx, wallet.ID)
	if !got.Balance.Equal(decimal.NewFromInt(750)) {
		t.Errorf("balance = %s, want 750", got.Balance)
	}
	if !got.TotalSent.Equal(decimal.NewFromInt(250)) {
		t.Errorf("totalSent = %s, want 250", got.TotalSent)
	}
	if err := got.CheckInvariants(); err != nil {
		t.Errorf("invariants violated: %v", err)
	}
}

func TestWalletUseCase_SendPaymentWithEscrow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, false)

	result, err := f.wallets.SendPayment(ctx, usecase.SendPaymentInput{
		WalletID:       wallet.ID,
		Amount:         decimal.NewFromInt(400),
		RecipientEmail: "seller@example.com",
		UseEscrow:      true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Escrow == nil {
		t.Fatal("escrowed payment must return the escrow")
	}
	if result.Escrow.Status != domain.EscrowFunded {
		t.Errorf("escrow status = %s, want funded", result.Escrow.Status)
	}

	// Money is earmarked, not spent.
	got, _ := f.wallets.GetWallet(ctx, wallet.ID)
	if !got.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance = %s, want 1000", got.Balance)
	}
	if !got.EscrowHeld.Equal(decimal.NewFromInt(400)) {
		t.Errorf("escrowHeld = %s, want 400", got.EscrowHeld)
	}
	available, _ := f.wallets.AvailableBalance(ctx, wallet.ID)
	if !available.Equal(decimal.NewFromInt(600)) {
		t.Errorf("available = %s, want 600", available)
	}
}

func TestWalletUseCase_ReceivePayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 0, false)

	tx, err := f.wallets.ReceivePayment(ctx, usecase.ReceivePaymentInput{
		WalletID:    wallet.ID,
		Amount:      decimal.NewFromInt(125),
		SenderEmail: "payer@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(tx.Reference, "RCV-") {
		t.Errorf("reference = %s, want RCV- prefix", tx.Reference)
	}

	got, _ := f.wallets.GetWallet(ctx, wallet.ID)
	if !got.Balance.Equal(decimal.NewFromInt(125)) {
		t.Errorf("balance = %s, want 125", got.Balance)
	}
	if !got.TotalReceived.Equal(decimal.NewFromInt(125)) {
		t.Errorf("totalReceived = %s, want 125", got.TotalReceived)
	}

	// A caller-provided reference is kept as-is.
	tx2, err := f.wallets.ReceivePayment(ctx, usecase.ReceivePaymentInput{
		WalletID:  wallet.ID,
		Amount:    decimal.NewFromInt(1),
		Reference: "EXT-REF-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx2.Reference != "EXT-REF-1" {
		t.Errorf("reference = %s, want EXT-REF-1", tx2.Reference)
	}
}

func TestWalletUseCase_ListTransactions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, false)

	if _, err := f.wallets.Withdraw(ctx, usecase.WithdrawInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	all, err := f.wallets.ListTransactions(ctx, usecase.ListTransactionsInput{WalletID: wallet.ID})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d transactions, want 2", len(all))
	}
	// Most recent first.
	if all[0].Type != domain.TransactionWithdrawal {
		t.Errorf("first transaction = %s, want withdrawal", all[0].Type)
	}

	withdrawals, err := f.wallets.ListTransactions(ctx, usecase.ListTransactionsInput{
		WalletID: wallet.ID,
		Type:     domain.TransactionWithdrawal,
	})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(withdrawals) != 1 {
		t.Errorf("got %d withdrawals, want 1", len(withdrawals))
	}

	// A bad type filter is a validation failure, not a missing resource.
	if _, err := f.wallets.ListTransactions(ctx, usecase.ListTransactionsInput{
		WalletID: wallet.ID,
		Type:     "jousting",
	}); !errors.Is(err, domain.ErrInvalidTransactionType) {
		t.Errorf("expected ErrInvalidTransactionType, got %v", err)
	}
}
