package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
)

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet, settings domain.SecuritySettings) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Wallet, error)
	UpdateMoney(ctx context.Context, tx Transaction, wallet *domain.Wallet, updatedAt time.Time) error
	GetSecurity(ctx context.Context, id string) (domain.SecuritySettings, error)
	UpdateSecurity(ctx context.Context, id string, settings domain.SecuritySettings, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.TransactionStatus, completedAt *time.Time) error
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error)
	ListByWalletAndType(ctx context.Context, walletID string, t domain.TransactionType, limit, offset int) ([]*domain.Transaction, error)
}

// EscrowRepository defines data access for escrow transactions.
type EscrowRepository interface {
	Create(ctx context.Context, tx Transaction, escrow *domain.Escrow) error
	GetByID(ctx context.Context, id string) (*domain.Escrow, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Escrow, error)
	UpdateStatus(ctx context.Context, tx Transaction, escrow *domain.Escrow, updatedAt time.Time) error
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Escrow, error)
	ListActiveByWallet(ctx context.Context, walletID string) ([]*domain.Escrow, error)
}

// MethodRepository defines data access for payment methods.
type MethodRepository interface {
	Create(ctx context.Context, method *domain.PaymentMethod) error
	GetByID(ctx context.Context, id string) (*domain.PaymentMethod, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, walletID string) ([]*domain.PaymentMethod, error)
	// SetDefault atomically clears the default flag on the wallet's other
	// methods and sets it on the given one.
	SetDefault(ctx context.Context, walletID, id string) error
	ClearDefault(ctx context.Context, walletID string) error
	SetVerified(ctx context.Context, id string) error
	GetDefault(ctx context.Context, walletID string) (*domain.PaymentMethod, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// VerificationStore holds the short-lived verification state: pending codes
// (one per channel per wallet), step progress per operation attempt, and
// single-use clearance tokens. Nothing here survives its TTL.
type VerificationStore interface {
	PutCode(ctx context.Context, walletID string, channel domain.Channel, code domain.PendingCode) error
	GetCode(ctx context.Context, walletID string, channel domain.Channel) (*domain.PendingCode, error)
	DeleteCode(ctx context.Context, walletID string, channel domain.Channel) error

	PutProgress(ctx context.Context, walletID string, op domain.OperationKind, steps []domain.Channel, ttl time.Duration) error
	GetProgress(ctx context.Context, walletID string, op domain.OperationKind) ([]domain.Channel, error)
	DeleteProgress(ctx context.Context, walletID string, op domain.OperationKind) error

	PutClearance(ctx context.Context, walletID string, op domain.OperationKind, token string, ttl time.Duration) error
	// ConsumeClearance atomically checks and removes the token; a token is
	// good for exactly one operation.
	ConsumeClearance(ctx context.Context, walletID string, op domain.OperationKind, token string) (bool, error)
}

// ClearanceConsumer redeems a single-use clearance token minted by the
// verification gate.
type ClearanceConsumer interface {
	Consume(ctx context.Context, walletID string, op domain.OperationKind, token string) error
}

// CodeSender delivers a verification code over a channel. The dispatch
// transport (email/SMS provider) is an external collaborator.
type CodeSender interface {
	Deliver(ctx context.Context, channel domain.Channel, destination, code string) error
}

// DailySpendTracker accumulates per-wallet spend for daily limit checks.
type DailySpendTracker interface {
	Add(ctx context.Context, walletID string, day time.Time, amount decimal.Decimal) error
	SpentOn(ctx context.Context, walletID string, day time.Time) (decimal.Decimal, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
