package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/usecase"
)

func TestReconciliationUseCase_ReconcileWallet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, false)
	fundEscrow(t, f, wallet.ID, 300)

	rec := usecase.NewReconciliationUseCase(f.walletRepo, f.escrowRepo)

	result, err := rec.ReconcileWallet(ctx, wallet.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet: %v", err)
	}
	if !result.IsReconciled {
		t.Errorf("healthy wallet flagged: %s", result.InvariantError)
	}
	if !result.ActiveEscrows.Equal(decimal.NewFromInt(300)) {
		t.Errorf("active escrows = %s, want 300", result.ActiveEscrows)
	}

	// Corrupt the aggregate: escrowHeld no longer matches the escrows.
	w, _ := f.walletRepo.GetByID(ctx, wallet.ID)
	w.EscrowHeld = decimal.NewFromInt(999)

	result, err = rec.ReconcileWallet(ctx, wallet.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet: %v", err)
	}
	if result.IsReconciled {
		t.Error("corrupted wallet must be flagged")
	}
}

func TestReconciliationUseCase_CachedResult(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	wallet := f.newWallet(t, 1000, false)

	rec := usecase.NewReconciliationUseCase(f.walletRepo, f.escrowRepo)
	rec.SetCache(&mapCache{entries: map[string]string{}}, time.Minute)

	first, err := rec.ReconcileWallet(ctx, wallet.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet: %v", err)
	}

	// Corrupt the aggregate; the cached result must still be served.
	w, _ := f.walletRepo.GetByID(ctx, wallet.ID)
	w.EscrowHeld = decimal.NewFromInt(999)

	second, err := rec.ReconcileWallet(ctx, wallet.ID)
	if err != nil {
		t.Fatalf("ReconcileWallet: %v", err)
	}
	if !second.IsReconciled {
		t.Error("expected cached healthy result")
	}
	if !second.LastChecked.Equal(first.LastChecked) {
		t.Errorf("expected cached timestamp %v, got %v", first.LastChecked, second.LastChecked)
	}
}

type mapCache struct {
	entries map[string]string
}

func (c *mapCache) Get(ctx context.Context, key string) (string, error) {
	return c.entries[key], nil
}

func (c *mapCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func TestReconciliationUseCase_ReconcileAll(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.newWallet(t, 500, false)
	f.newWallet(t, 700, false)

	rec := usecase.NewReconciliationUseCase(f.walletRepo, f.escrowRepo)

	report, err := rec.ReconcileAll(ctx)
	if err != nil {
		t.Fatalf("ReconcileAll: %v", err)
	}
	if report.TotalWallets != 2 {
		t.Errorf("total = %d, want 2", report.TotalWallets)
	}
	if report.ReconciledWallets != 2 {
		t.Errorf("reconciled = %d, want 2", report.ReconciledWallets)
	}
	if len(report.Discrepancies) != 0 {
		t.Errorf("discrepancies = %d, want 0", len(report.Discrepancies))
	}
}
