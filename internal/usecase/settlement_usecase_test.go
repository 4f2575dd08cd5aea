package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

func requestWithdrawal(t *testing.T, f *fixture, walletID string, amount int64) *domain.Transaction {
	t.Helper()

	tx, err := f.wallets.Withdraw(context.Background(), usecase.WithdrawInput{
		WalletID: walletID,
		Amount:   decimal.NewFromInt(amount),
	})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	return tx
}

func TestSettlementUseCase_Settle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, false)
	tx := requestWithdrawal(t, f, wallet.ID, 300)

	if err := f.settlement.Settle(ctx, tx.ID); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	got, _ := f.wallets.GetTransaction(ctx, tx.ID)
	if got.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("settled withdrawal must carry a completion time")
	}

	// Settlement only flips the status; the debit already happened.
	w, _ := f.wallets.GetWallet(ctx, wallet.ID)
	if !w.Balance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("balance = %s, want 700", w.Balance)
	}

	if len(f.outboxRepo.ByType(domain.EventTypeWithdrawalSettled)) != 1 {
		t.Error("expected one withdrawal.settled event")
	}

	// Completed is final.
	if err := f.settlement.Settle(ctx, tx.ID); !errors.Is(err, domain.ErrTransactionFinal) {
		t.Errorf("expected ErrTransactionFinal, got %v", err)
	}
	if err := f.settlement.Fail(ctx, tx.ID, "too late"); !errors.Is(err, domain.ErrTransactionFinal) {
		t.Errorf("expected ErrTransactionFinal, got %v", err)
	}
}

func TestSettlementUseCase_Fail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, false)
	tx := requestWithdrawal(t, f, wallet.ID, 300)

	if err := f.settlement.Fail(ctx, tx.ID, "bank rejected"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	got, _ := f.wallets.GetTransaction(ctx, tx.ID)
	if got.Status != domain.StatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}

	// The money comes back as a compensating credit so the running totals
	// stay monotonic and the balance identity holds.
	w, _ := f.wallets.GetWallet(ctx, wallet.ID)
	if !w.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance = %s, want 1000", w.Balance)
	}
	if !w.TotalWithdrawn.Equal(decimal.NewFromInt(300)) {
		t.Errorf("totalWithdrawn = %s, want 300", w.TotalWithdrawn)
	}
	if !w.TotalDeposited.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("totalDeposited = %s, want 1300", w.TotalDeposited)
	}
	if err := w.CheckInvariants(); err != nil {
		t.Errorf("invariants violated: %v", err)
	}

	reversals, err := f.wallets.ListTransactions(ctx, usecase.ListTransactionsInput{
		WalletID: wallet.ID,
		Type:     domain.TransactionTopUp,
	})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	// Initial funding plus the reversal.
	if len(reversals) != 2 {
		t.Fatalf("got %d top_up transactions, want 2", len(reversals))
	}
	if reversals[0].Reference != tx.Reference {
		t.Error("reversal must reference the failed withdrawal")
	}

	if len(f.outboxRepo.ByType(domain.EventTypeWithdrawalFailed)) != 1 {
		t.Error("expected one withdrawal.failed event")
	}

	// Failed is final.
	if err := f.settlement.Settle(ctx, tx.ID); !errors.Is(err, domain.ErrTransactionFinal) {
		t.Errorf("expected ErrTransactionFinal, got %v", err)
	}
}

func TestSettlementUseCase_RejectsNonWithdrawals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, false)

	topup, err := f.wallets.TopUp(ctx, usecase.TopUpInput{
		WalletID: wallet.ID,
		Amount:   decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("TopUp: %v", err)
	}

	if err := f.settlement.Settle(ctx, topup.ID); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound for non-withdrawal, got %v", err)
	}
}
