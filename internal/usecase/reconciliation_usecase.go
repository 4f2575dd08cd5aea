package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
)

// ReconciliationUseCase checks the ledger invariants wallet by wallet.
type ReconciliationUseCase struct {
	walletRepo WalletRepository
	escrowRepo EscrowRepository
	cache      Cache
	cacheTTL   time.Duration
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(walletRepo WalletRepository, escrowRepo EscrowRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		walletRepo: walletRepo,
		escrowRepo: escrowRepo,
	}
}

// SetCache enables caching of per-wallet reconciliation results. The check
// walks every active escrow, so repeated polling gets the cached report
// until the TTL lapses.
func (uc *ReconciliationUseCase) SetCache(cache Cache, ttl time.Duration) {
	uc.cache = cache
	uc.cacheTTL = ttl
}

// ReconciliationResult represents the outcome of one wallet's check.
type ReconciliationResult struct {
	WalletID       string
	Balance        decimal.Decimal
	EscrowHeld     decimal.Decimal
	ActiveEscrows  decimal.Decimal
	IsReconciled   bool
	InvariantError string
	LastChecked    time.Time
}

// ReconcileWallet checks one wallet: the money invariants on the aggregate
// itself, plus escrowHeld against the sum of active escrows.
func (uc *ReconciliationUseCase) ReconcileWallet(ctx context.Context, walletID string) (*ReconciliationResult, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, reconcileCacheKey(walletID)); err == nil && cached != "" {
			var result ReconciliationResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return &result, nil
			}
		}
	}

	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		WalletID:     walletID,
		Balance:      wallet.Balance,
		EscrowHeld:   wallet.EscrowHeld,
		IsReconciled: true,
		LastChecked:  time.Now().UTC(),
	}

	if err := wallet.CheckInvariants(); err != nil {
		result.IsReconciled = false
		result.InvariantError = err.Error()
	}

	active, err := uc.escrowRepo.ListActiveByWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	held := decimal.Zero
	for _, e := range active {
		held = held.Add(e.Amount)
	}
	result.ActiveEscrows = held

	if !held.Equal(wallet.EscrowHeld) {
		result.IsReconciled = false
		if result.InvariantError == "" {
			result.InvariantError = domain.ErrLedgerMismatch.Error()
		}
	}

	if uc.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			_ = uc.cache.Set(ctx, reconcileCacheKey(walletID), string(payload), uc.cacheTTL)
		}
	}

	return result, nil
}

func reconcileCacheKey(walletID string) string {
	return "reconcile:" + walletID
}

// ReconciliationReport represents a full reconciliation sweep.
type ReconciliationReport struct {
	TotalWallets      int
	ReconciledWallets int
	Discrepancies     []*ReconciliationResult
	CheckedAt         time.Time
}

// ReconcileAll sweeps every wallet and collects the discrepancies.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	wallets, err := uc.walletRepo.List(ctx, 10000, 0)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalWallets: len(wallets),
		CheckedAt:    time.Now().UTC(),
	}

	for _, w := range wallets {
		result, err := uc.ReconcileWallet(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile wallet %s: %w", w.ID, err)
		}
		if result.IsReconciled {
			report.ReconciledWallets++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
