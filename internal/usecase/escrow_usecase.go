package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/infrastructure/metrics"
)

// EscrowUseCase handles the escrow lifecycle: fund, release, refund and
// dispute. Funding earmarks money on the buyer's wallet without spending
// it; release finally debits the buyer and hands the seller credit to the
// event stream; refund returns the earmark.
type EscrowUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	escrowRepo EscrowRepository
	txRepo     TransactionRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	policy     *SecurityPolicy
	clearance  ClearanceConsumer
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// NewEscrowUseCase creates a new EscrowUseCase.
func NewEscrowUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	escrowRepo EscrowRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	policy *SecurityPolicy,
	clearance ClearanceConsumer,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *EscrowUseCase {
	return &EscrowUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		escrowRepo: escrowRepo,
		txRepo:     txRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		policy:     policy,
		clearance:  clearance,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// FundEscrowInput represents input for creating and funding an escrow.
type FundEscrowInput struct {
	WalletID       string
	Amount         decimal.Decimal
	SellerEmail    string
	SellerName     string
	Description    string
	ClearanceToken string
}

// Fund creates an escrow and earmarks the amount on the buyer's wallet in
// one step. The balance and running totals stay untouched; only escrowHeld
// grows. Gated and limit-checked like a direct payment.
func (uc *EscrowUseCase) Fund(ctx context.Context, input FundEscrowInput) (*domain.Escrow, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(input.SellerEmail); err != nil {
		return nil, err
	}

	settings, err := uc.walletRepo.GetSecurity(ctx, input.WalletID)
	if err != nil {
		return nil, err
	}

	if err := uc.policy.CheckLimits(ctx, input.WalletID, input.Amount, settings); err != nil {
		return nil, err
	}

	verified := false
	if uc.policy.RequiresVerification(domain.OpSendPayment, settings) {
		if err := uc.clearance.Consume(ctx, input.WalletID, domain.OpSendPayment, input.ClearanceToken); err != nil {
			return nil, err
		}
		verified = true
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallet, err := uc.walletRepo.GetByIDForUpdate(txCtx, tx, input.WalletID)
	if err != nil {
		return nil, err
	}

	if err := wallet.ValidateSpend(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fundedAt := now
	escrow := &domain.Escrow{
		ID:          uc.idGen.Generate(),
		WalletID:    wallet.ID,
		BuyerEmail:  wallet.OwnerEmail,
		SellerEmail: input.SellerEmail,
		SellerName:  input.SellerName,
		Amount:      input.Amount,
		Currency:    wallet.Currency,
		Description: input.Description,
		Status:      domain.EscrowFunded,
		CreatedAt:   now,
		FundedAt:    &fundedAt,
	}
	if err := uc.escrowRepo.Create(txCtx, tx, escrow); err != nil {
		return nil, err
	}

	completedAt := now
	transaction := &domain.Transaction{
		ID:       uc.idGen.Generate(),
		WalletID: wallet.ID,
		Type:     domain.TransactionEscrowLock,
		Amount:   input.Amount,
		Currency: wallet.Currency,
		Status:   domain.StatusCompleted,
		Counterparty: &domain.Counterparty{
			Email: input.SellerEmail,
			Name:  input.SellerName,
		},
		Description:      input.Description,
		Reference:        escrow.ID,
		CreatedAt:        now,
		CompletedAt:      &completedAt,
		SecurityVerified: verified,
	}
	if err := uc.txRepo.Create(txCtx, tx, transaction); err != nil {
		return nil, err
	}

	// Earmark only. Balance and totalSent move at release time.
	wallet.EscrowHeld = wallet.EscrowHeld.Add(input.Amount)
	wallet.Version++
	if err := uc.walletRepo.UpdateMoney(txCtx, tx, wallet, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   escrow.ID,
		AggregateType: domain.AggregateTypeEscrow,
		EventType:     domain.EventTypeEscrowFunded,
		Payload: map[string]any{
			"escrow_id":    escrow.ID,
			"wallet_id":    wallet.ID,
			"seller_email": input.SellerEmail,
			"amount":       input.Amount.String(),
			"currency":     wallet.Currency,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.auditTx(txCtx, tx, wallet.ID, domain.AuditActionEscrowFund, escrow.ID, escrow); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	_ = uc.policy.RecordSpend(ctx, wallet.ID, input.Amount)

	if uc.metrics != nil {
		uc.metrics.EscrowsFunded.Inc()
		uc.metrics.EscrowDuration.Observe(time.Since(now).Seconds())
	}

	return escrow, nil
}

// Release finalizes a funded escrow in the seller's favor: the buyer's
// balance and totalSent move, the earmark is dropped, and the seller-side
// credit goes out as an event.
func (uc *EscrowUseCase) Release(ctx context.Context, escrowID string) (*domain.Escrow, error) {
	start := time.Now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	escrow, err := uc.escrowRepo.GetByIDForUpdate(txCtx, tx, escrowID)
	if err != nil {
		return nil, err
	}

	if err := escrow.CanRelease(); err != nil {
		return nil, err
	}

	wallet, err := uc.walletRepo.GetByIDForUpdate(txCtx, tx, escrow.WalletID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	completedAt := now
	transaction := &domain.Transaction{
		ID:       uc.idGen.Generate(),
		WalletID: wallet.ID,
		Type:     domain.TransactionEscrowRelease,
		Amount:   escrow.Amount,
		Currency: escrow.Currency,
		Status:   domain.StatusCompleted,
		Counterparty: &domain.Counterparty{
			Email: escrow.SellerEmail,
			Name:  escrow.SellerName,
		},
		Description: escrow.Description,
		Reference:   escrow.ID,
		CreatedAt:   now,
		CompletedAt: &completedAt,
	}
	if err := uc.txRepo.Create(txCtx, tx, transaction); err != nil {
		return nil, err
	}

	wallet.Balance = wallet.Balance.Sub(escrow.Amount)
	wallet.EscrowHeld = wallet.EscrowHeld.Sub(escrow.Amount)
	wallet.TotalSent = wallet.TotalSent.Add(escrow.Amount)
	wallet.Version++
	if err := uc.walletRepo.UpdateMoney(txCtx, tx, wallet, now); err != nil {
		return nil, err
	}

	releasedAt := now
	escrow.Status = domain.EscrowReleased
	escrow.ReleasedAt = &releasedAt
	if err := uc.escrowRepo.UpdateStatus(txCtx, tx, escrow, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   escrow.ID,
		AggregateType: domain.AggregateTypeEscrow,
		EventType:     domain.EventTypeEscrowReleased,
		Payload: map[string]any{
			"escrow_id":    escrow.ID,
			"buyer_email":  escrow.BuyerEmail,
			"seller_email": escrow.SellerEmail,
			"amount":       escrow.Amount.String(),
			"currency":     escrow.Currency,
			"reference":    transaction.Reference,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.auditTx(txCtx, tx, wallet.ID, domain.AuditActionEscrowRelease, escrow.ID, escrow); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EscrowsReleased.Inc()
		uc.metrics.EscrowDuration.Observe(time.Since(start).Seconds())
	}

	return escrow, nil
}

// Refund returns a funded or disputed escrow's earmark to the buyer. Only
// escrowHeld moves; the balance never left the wallet.
func (uc *EscrowUseCase) Refund(ctx context.Context, escrowID, reason string) (*domain.Escrow, error) {
	start := time.Now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	escrow, err := uc.escrowRepo.GetByIDForUpdate(txCtx, tx, escrowID)
	if err != nil {
		return nil, err
	}

	if err := escrow.CanRefund(); err != nil {
		return nil, err
	}

	wallet, err := uc.walletRepo.GetByIDForUpdate(txCtx, tx, escrow.WalletID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	completedAt := now
	transaction := &domain.Transaction{
		ID:       uc.idGen.Generate(),
		WalletID: wallet.ID,
		Type:     domain.TransactionEscrowRefund,
		Amount:   escrow.Amount,
		Currency: escrow.Currency,
		Status:   domain.StatusCompleted,
		Counterparty: &domain.Counterparty{
			Email: escrow.SellerEmail,
			Name:  escrow.SellerName,
		},
		Description: reason,
		Reference:   escrow.ID,
		CreatedAt:   now,
		CompletedAt: &completedAt,
	}
	if err := uc.txRepo.Create(txCtx, tx, transaction); err != nil {
		return nil, err
	}

	wallet.EscrowHeld = wallet.EscrowHeld.Sub(escrow.Amount)
	if wallet.EscrowHeld.IsNegative() {
		wallet.EscrowHeld = decimal.Zero
	}
	wallet.Version++
	if err := uc.walletRepo.UpdateMoney(txCtx, tx, wallet, now); err != nil {
		return nil, err
	}

	releasedAt := now
	escrow.Status = domain.EscrowRefunded
	escrow.ReleasedAt = &releasedAt
	if reason != "" {
		escrow.DisputeReason = reason
	}
	if err := uc.escrowRepo.UpdateStatus(txCtx, tx, escrow, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   escrow.ID,
		AggregateType: domain.AggregateTypeEscrow,
		EventType:     domain.EventTypeEscrowRefunded,
		Payload: map[string]any{
			"escrow_id":      escrow.ID,
			"buyer_email":    escrow.BuyerEmail,
			"amount":         escrow.Amount.String(),
			"dispute_reason": escrow.DisputeReason,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.auditTx(txCtx, tx, wallet.ID, domain.AuditActionEscrowRefund, escrow.ID, escrow); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EscrowsRefunded.Inc()
		uc.metrics.EscrowDuration.Observe(time.Since(start).Seconds())
	}

	return escrow, nil
}

// Dispute flags a funded escrow. No money moves; the escrow can only go to
// refunded from here.
func (uc *EscrowUseCase) Dispute(ctx context.Context, escrowID, reason string) (*domain.Escrow, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	escrow, err := uc.escrowRepo.GetByIDForUpdate(txCtx, tx, escrowID)
	if err != nil {
		return nil, err
	}

	if err := escrow.CanDispute(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	escrow.Status = domain.EscrowDisputed
	escrow.DisputeReason = reason
	if err := uc.escrowRepo.UpdateStatus(txCtx, tx, escrow, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   escrow.ID,
		AggregateType: domain.AggregateTypeEscrow,
		EventType:     domain.EventTypeEscrowDisputed,
		Payload: map[string]any{
			"escrow_id":      escrow.ID,
			"wallet_id":      escrow.WalletID,
			"dispute_reason": reason,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.auditTx(txCtx, tx, escrow.WalletID, domain.AuditActionEscrowDispute, escrow.ID, escrow); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return escrow, nil
}

// GetEscrow retrieves an escrow by ID.
func (uc *EscrowUseCase) GetEscrow(ctx context.Context, id string) (*domain.Escrow, error) {
	return uc.escrowRepo.GetByID(ctx, id)
}

// ListEscrowsInput represents input for listing a wallet's escrows.
type ListEscrowsInput struct {
	WalletID string
	Limit    int
	Offset   int
}

// ListEscrows returns a wallet's escrows, most recent first.
func (uc *EscrowUseCase) ListEscrows(ctx context.Context, input ListEscrowsInput) ([]*domain.Escrow, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.escrowRepo.ListByWallet(ctx, input.WalletID, input.Limit, input.Offset)
}

// ActiveEscrows returns the escrows still holding funds on a wallet.
func (uc *EscrowUseCase) ActiveEscrows(ctx context.Context, walletID string) ([]*domain.Escrow, error) {
	return uc.escrowRepo.ListActiveByWallet(ctx, walletID)
}

func (uc *EscrowUseCase) auditTx(ctx context.Context, tx Transaction, walletID string, action domain.AuditAction, escrowID string, state any) error {
	if uc.auditRepo == nil {
		return nil
	}

	return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		WalletID:     walletID,
		Action:       string(action),
		ResourceType: "escrow",
		ResourceID:   escrowID,
		AfterState:   domain.MarshalState(state),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now(),
	})
}
