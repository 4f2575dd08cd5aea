package usecase

import (
	"context"
	"time"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/infrastructure/metrics"
)

// SettlementUseCase finishes withdrawals requested through the ledger. The
// settlement worker drives it from withdrawal.requested outbox events; the
// debit already happened, settlement only flips the transaction forward.
type SettlementUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	txRepo     TransactionRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *SettlementUseCase {
	return &SettlementUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// Settle completes a processing withdrawal. Idempotent at the caller's
// level: a transaction already in a final state is rejected with
// ErrTransactionFinal and nothing moves.
func (uc *SettlementUseCase) Settle(ctx context.Context, transactionID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	transaction, err := uc.txRepo.GetByIDForUpdate(txCtx, tx, transactionID)
	if err != nil {
		return err
	}

	if transaction.Type != domain.TransactionWithdrawal {
		return domain.ErrTransactionNotFound
	}
	if !transaction.Status.CanTransitionTo(domain.StatusCompleted) {
		return domain.ErrTransactionFinal
	}

	now := time.Now().UTC()
	if err := uc.txRepo.UpdateStatus(txCtx, tx, transactionID, domain.StatusCompleted, &now); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transactionID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeWithdrawalSettled,
		Payload: map[string]any{
			"transaction_id": transactionID,
			"wallet_id":      transaction.WalletID,
			"amount":         transaction.Amount.String(),
			"currency":       transaction.Currency,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.WithdrawalsSettled.Inc()
		uc.metrics.SettlementLag.Observe(now.Sub(transaction.CreatedAt).Seconds())
	}

	return nil
}

// Fail marks a processing withdrawal failed and returns the money. The
// reversal is a compensating completed top-up so the running totals stay
// monotonic and the balance identity keeps holding.
func (uc *SettlementUseCase) Fail(ctx context.Context, transactionID, reason string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	transaction, err := uc.txRepo.GetByIDForUpdate(txCtx, tx, transactionID)
	if err != nil {
		return err
	}

	if transaction.Type != domain.TransactionWithdrawal {
		return domain.ErrTransactionNotFound
	}
	if !transaction.Status.CanTransitionTo(domain.StatusFailed) {
		return domain.ErrTransactionFinal
	}

	wallet, err := uc.walletRepo.GetByIDForUpdate(txCtx, tx, transaction.WalletID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := uc.txRepo.UpdateStatus(txCtx, tx, transactionID, domain.StatusFailed, &now); err != nil {
		return err
	}

	completedAt := now
	reversal := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		WalletID:    wallet.ID,
		Type:        domain.TransactionTopUp,
		Amount:      transaction.Amount,
		Currency:    transaction.Currency,
		Status:      domain.StatusCompleted,
		Description: "withdrawal reversal: " + reason,
		Reference:   transaction.Reference,
		CreatedAt:   now,
		CompletedAt: &completedAt,
	}
	if err := uc.txRepo.Create(txCtx, tx, reversal); err != nil {
		return err
	}

	wallet.Balance = wallet.Balance.Add(transaction.Amount)
	wallet.TotalDeposited = wallet.TotalDeposited.Add(transaction.Amount)
	wallet.Version++
	if err := uc.walletRepo.UpdateMoney(txCtx, tx, wallet, now); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transactionID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeWithdrawalFailed,
		Payload: map[string]any{
			"transaction_id": transactionID,
			"wallet_id":      wallet.ID,
			"amount":         transaction.Amount.String(),
			"reason":         reason,
			"reversal_id":    reversal.ID,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.WithdrawalsFailed.Inc()
	}

	return nil
}
