package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/infrastructure/metrics"
)

// WalletUseCase handles the money-moving operations on a wallet: top-ups,
// withdrawals, direct payments and received payments. Escrowed payments are
// delegated to the escrow funder.
type WalletUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	txRepo     TransactionRepository
	methodRepo MethodRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	policy     *SecurityPolicy
	clearance  ClearanceConsumer
	escrow     EscrowFunder
	idGen      IDGenerator
	metrics    *metrics.Metrics
}

// EscrowFunder creates and funds an escrow in a single step. Satisfied by
// EscrowUseCase.
type EscrowFunder interface {
	Fund(ctx context.Context, input FundEscrowInput) (*domain.Escrow, error)
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(
	txManager TransactionManager,
	walletRepo WalletRepository,
	txRepo TransactionRepository,
	methodRepo MethodRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	policy *SecurityPolicy,
	clearance ClearanceConsumer,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *WalletUseCase {
	return &WalletUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		methodRepo: methodRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		policy:     policy,
		clearance:  clearance,
		idGen:      idGen,
		metrics:    metrics,
	}
}

// SetEscrowFunder wires the escrow delegate. Set after construction because
// the escrow use case is built from the same repositories.
func (uc *WalletUseCase) SetEscrowFunder(f EscrowFunder) {
	uc.escrow = f
}

// CreateWalletInput represents input for provisioning a wallet.
type CreateWalletInput struct {
	OwnerEmail string
	Currency   string
}

// CreateWallet provisions a wallet with zero balances and the default
// security settings.
func (uc *WalletUseCase) CreateWallet(ctx context.Context, input CreateWalletInput) (*domain.Wallet, error) {
	if err := domain.ValidateEmail(input.OwnerEmail); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:             uc.idGen.Generate(),
		OwnerEmail:     input.OwnerEmail,
		Currency:       input.Currency,
		Balance:        decimal.Zero,
		EscrowHeld:     decimal.Zero,
		TotalDeposited: decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		TotalSent:      decimal.Zero,
		TotalReceived:  decimal.Zero,
		Version:        0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.walletRepo.Create(ctx, wallet, domain.DefaultSecuritySettings()); err != nil {
		return nil, err
	}

	uc.audit(ctx, wallet.ID, domain.AuditActionWalletCreate, "wallet", wallet.ID, wallet)

	return wallet, nil
}

// GetWallet retrieves a wallet by ID.
func (uc *WalletUseCase) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.walletRepo.GetByID(ctx, id)
}

// ListWalletsInput represents input for listing wallets.
type ListWalletsInput struct {
	Limit  int
	Offset int
}

// ListWallets lists wallets with pagination.
func (uc *WalletUseCase) ListWallets(ctx context.Context, input ListWalletsInput) ([]*domain.Wallet, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.walletRepo.List(ctx, input.Limit, input.Offset)
}

// AvailableBalance returns the spendable amount for a wallet.
func (uc *WalletUseCase) AvailableBalance(ctx context.Context, walletID string) (decimal.Decimal, error) {
	wallet, err := uc.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return wallet.AvailableBalance(), nil
}

// TopUpInput represents input for a deposit.
type TopUpInput struct {
	WalletID        string
	Amount          decimal.Decimal
	Currency        string
	PaymentMethodID string
	Description     string
}

// TopUp credits the wallet from an external source. Completes immediately.
func (uc *WalletUseCase) TopUp(ctx context.Context, input TopUpInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
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

	if input.Currency != "" && input.Currency != wallet.Currency {
		return nil, domain.ErrCurrencyMismatch
	}

	now := time.Now().UTC()
	completedAt := now
	transaction := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		WalletID:        wallet.ID,
		Type:            domain.TransactionTopUp,
		Amount:          input.Amount,
		Currency:        wallet.Currency,
		Status:          domain.StatusCompleted,
		Description:     input.Description,
		PaymentMethodID: input.PaymentMethodID,
		Reference:       domain.NewReference(domain.RefPrefixTopUp, now),
		CreatedAt:       now,
		CompletedAt:     &completedAt,
	}
	if err := uc.txRepo.Create(txCtx, tx, transaction); err != nil {
		return nil, err
	}

	wallet.Balance = wallet.Balance.Add(input.Amount)
	wallet.TotalDeposited = wallet.TotalDeposited.Add(input.Amount)
	wallet.Version++
	if err := uc.walletRepo.UpdateMoney(txCtx, tx, wallet, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   wallet.ID,
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeWalletToppedUp,
		Payload: map[string]any{
			"wallet_id":      wallet.ID,
			"transaction_id": transaction.ID,
			"amount":         input.Amount.String(),
			"currency":       wallet.Currency,
			"reference":      transaction.Reference,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.auditTx(txCtx, tx, wallet.ID, domain.AuditActionTopUp, "transaction", transaction.ID, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.observe("top_up", input.Amount, now)

	return transaction, nil
}

// WithdrawInput represents input for a withdrawal request.
type WithdrawInput struct {
	WalletID        string
	Amount          decimal.Decimal
	PaymentMethodID string
	Description     string
	ClearanceToken  string
}

// Withdraw debits the wallet immediately and leaves the transaction in
// processing until the settlement worker finishes it. When the wallet's
// settings gate withdrawals, a clearance token from the verification flow
// must accompany the request.
func (uc *WalletUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
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
	if uc.policy.RequiresVerification(domain.OpWithdraw, settings) {
		if err := uc.clearance.Consume(ctx, input.WalletID, domain.OpWithdraw, input.ClearanceToken); err != nil {
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

	if input.PaymentMethodID != "" {
		if _, err := uc.methodRepo.GetByID(txCtx, input.PaymentMethodID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	transaction := &domain.Transaction{
		ID:               uc.idGen.Generate(),
		WalletID:         wallet.ID,
		Type:             domain.TransactionWithdrawal,
		Amount:           input.Amount,
		Currency:         wallet.Currency,
		Status:           domain.StatusProcessing,
		Description:      input.Description,
		PaymentMethodID:  input.PaymentMethodID,
		Reference:        domain.NewReference(domain.RefPrefixWithdrawal, now),
		CreatedAt:        now,
		SecurityVerified: verified,
	}
	if err := uc.txRepo.Create(txCtx, tx, transaction); err != nil {
		return nil, err
	}

	// The debit happens up front; settlement only flips the status.
	wallet.Balance = wallet.Balance.Sub(input.Amount)
	wallet.TotalWithdrawn = wallet.TotalWithdrawn.Add(input.Amount)
	wallet.Version++
	if err := uc.walletRepo.UpdateMoney(txCtx, tx, wallet, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transaction.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypeWithdrawalRequested,
		Payload: map[string]any{
			"transaction_id":    transaction.ID,
			"wallet_id":         wallet.ID,
			"amount":            input.Amount.String(),
			"currency":          wallet.Currency,
			"payment_method_id": input.PaymentMethodID,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.auditTx(txCtx, tx, wallet.ID, domain.AuditActionWithdraw, "transaction", transaction.ID, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	// Best effort: the withdrawal already committed.
	_ = uc.policy.RecordSpend(ctx, wallet.ID, input.Amount)

	uc.observe("withdrawal", input.Amount, now)

	return transaction, nil
}

// SendPaymentInput represents input for an outgoing payment.
type SendPaymentInput struct {
	WalletID       string
	Amount         decimal.Decimal
	RecipientEmail string
	RecipientName  string
	Description    string
	UseEscrow      bool
	ClearanceToken string
}

// SendPaymentResult carries the outcome of a send: a direct payment yields
// a completed transaction, an escrowed one additionally yields the escrow.
type SendPaymentResult struct {
	Transaction *domain.Transaction
	Escrow      *domain.Escrow
}

// SendPayment pays another party. With UseEscrow the funds are earmarked in
// an escrow instead of leaving the wallet.
func (uc *WalletUseCase) SendPayment(ctx context.Context, input SendPaymentInput) (*SendPaymentResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(input.RecipientEmail); err != nil {
		return nil, err
	}

	if input.UseEscrow {
		escrow, err := uc.escrow.Fund(ctx, FundEscrowInput{
			WalletID:       input.WalletID,
			Amount:         input.Amount,
			SellerEmail:    input.RecipientEmail,
			SellerName:     input.RecipientName,
			Description:    input.Description,
			ClearanceToken: input.ClearanceToken,
		})
		if err != nil {
			return nil, err
		}
		return &SendPaymentResult{Escrow: escrow}, nil
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
	completedAt := now
	transaction := &domain.Transaction{
		ID:       uc.idGen.Generate(),
		WalletID: wallet.ID,
		Type:     domain.TransactionPaymentSent,
		Amount:   input.Amount,
		Currency: wallet.Currency,
		Status:   domain.StatusCompleted,
		Counterparty: &domain.Counterparty{
			Email: input.RecipientEmail,
			Name:  input.RecipientName,
		},
		Description:      input.Description,
		Reference:        domain.NewReference(domain.RefPrefixPayment, now),
		CreatedAt:        now,
		CompletedAt:      &completedAt,
		SecurityVerified: verified,
	}
	if err := uc.txRepo.Create(txCtx, tx, transaction); err != nil {
		return nil, err
	}

	wallet.Balance = wallet.Balance.Sub(input.Amount)
	wallet.TotalSent = wallet.TotalSent.Add(input.Amount)
	wallet.Version++
	if err := uc.walletRepo.UpdateMoney(txCtx, tx, wallet, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transaction.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypePaymentSent,
		Payload: map[string]any{
			"transaction_id":  transaction.ID,
			"wallet_id":       wallet.ID,
			"amount":          input.Amount.String(),
			"currency":        wallet.Currency,
			"recipient_email": input.RecipientEmail,
			"reference":       transaction.Reference,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.auditTx(txCtx, tx, wallet.ID, domain.AuditActionSendPayment, "transaction", transaction.ID, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	_ = uc.policy.RecordSpend(ctx, wallet.ID, input.Amount)

	uc.observe("payment_sent", input.Amount, now)

	return &SendPaymentResult{Transaction: transaction}, nil
}

// ReceivePaymentInput represents input for an incoming payment.
type ReceivePaymentInput struct {
	WalletID    string
	Amount      decimal.Decimal
	SenderEmail string
	SenderName  string
	Description string
	Reference   string
}

// ReceivePayment credits the wallet with an incoming payment. Completes
// immediately; no gate and no limit checks apply to inbound funds.
func (uc *WalletUseCase) ReceivePayment(ctx context.Context, input ReceivePaymentInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
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

	now := time.Now().UTC()
	reference := input.Reference
	if reference == "" {
		reference = domain.NewReference(domain.RefPrefixReceived, now)
	}

	completedAt := now
	transaction := &domain.Transaction{
		ID:       uc.idGen.Generate(),
		WalletID: wallet.ID,
		Type:     domain.TransactionPaymentReceived,
		Amount:   input.Amount,
		Currency: wallet.Currency,
		Status:   domain.StatusCompleted,
		Counterparty: &domain.Counterparty{
			Email: input.SenderEmail,
			Name:  input.SenderName,
		},
		Description: input.Description,
		Reference:   reference,
		CreatedAt:   now,
		CompletedAt: &completedAt,
	}
	if err := uc.txRepo.Create(txCtx, tx, transaction); err != nil {
		return nil, err
	}

	wallet.Balance = wallet.Balance.Add(input.Amount)
	wallet.TotalReceived = wallet.TotalReceived.Add(input.Amount)
	wallet.Version++
	if err := uc.walletRepo.UpdateMoney(txCtx, tx, wallet, now); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transaction.ID,
		AggregateType: domain.AggregateTypeTransaction,
		EventType:     domain.EventTypePaymentReceived,
		Payload: map[string]any{
			"transaction_id": transaction.ID,
			"wallet_id":      wallet.ID,
			"amount":         input.Amount.String(),
			"currency":       wallet.Currency,
			"sender_email":   input.SenderEmail,
			"reference":      reference,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := uc.auditTx(txCtx, tx, wallet.ID, domain.AuditActionReceive, "transaction", transaction.ID, transaction); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.observe("payment_received", input.Amount, now)

	return transaction, nil
}

// GetTransaction retrieves a single ledger transaction.
func (uc *WalletUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txRepo.GetByID(ctx, id)
}

// ListTransactionsInput represents input for listing a wallet's transactions.
type ListTransactionsInput struct {
	WalletID string
	Type     domain.TransactionType
	Limit    int
	Offset   int
}

// ListTransactions returns a wallet's transactions, most recent first,
// optionally filtered by type.
func (uc *WalletUseCase) ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error) {
	input.Limit, input.Offset = domain.ValidatePagination(input.Limit, input.Offset)

	if input.Type != "" {
		if !input.Type.IsValid() {
			return nil, domain.ErrInvalidTransactionType
		}
		return uc.txRepo.ListByWalletAndType(ctx, input.WalletID, input.Type, input.Limit, input.Offset)
	}
	return uc.txRepo.ListByWallet(ctx, input.WalletID, input.Limit, input.Offset)
}

// DefaultPaymentMethod returns the wallet's default method. When no default
// flag is set, it falls back to the earliest registered method; removing the
// default leaves the flag unset, not repointed.
func (uc *WalletUseCase) DefaultPaymentMethod(ctx context.Context, walletID string) (*domain.PaymentMethod, error) {
	method, err := uc.methodRepo.GetDefault(ctx, walletID)
	if err == nil {
		return method, nil
	}
	if !errors.Is(err, domain.ErrMethodNotFound) {
		return nil, err
	}

	methods, err := uc.methodRepo.List(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if len(methods) == 0 {
		return nil, domain.ErrMethodNotFound
	}
	return methods[0], nil
}

func (uc *WalletUseCase) observe(operation string, amount decimal.Decimal, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.LedgerOperations.WithLabelValues(operation).Inc()
	amt, _ := amount.Float64()
	uc.metrics.OperationAmount.Observe(amt)
	uc.metrics.OperationDuration.Observe(time.Since(start).Seconds())
}

func (uc *WalletUseCase) audit(ctx context.Context, walletID string, action domain.AuditAction, resourceType, resourceID string, state any) {
	if uc.auditRepo == nil {
		return
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		WalletID:     walletID,
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		AfterState:   domain.MarshalState(state),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now(),
	})
}

func (uc *WalletUseCase) auditTx(ctx context.Context, tx Transaction, walletID string, action domain.AuditAction, resourceType, resourceID string, state any) error {
	if uc.auditRepo == nil {
		return nil
	}

	return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		WalletID:     walletID,
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		AfterState:   domain.MarshalState(state),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now(),
	})
}
