package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository. Rows are
// append-only; only status and completed_at ever change.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `
	id, wallet_id, type, amount, currency, status, description,
	counterparty_email, counterparty_name, payment_method_id,
	reference, created_at, completed_at, security_verified
`

// Create inserts a transaction within a ledger transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	var cpEmail, cpName *string
	if t.Counterparty != nil {
		cpEmail = &t.Counterparty.Email
		cpName = &t.Counterparty.Name
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := pgxTx.Exec(ctx, query,
		t.ID,
		t.WalletID,
		t.Type,
		t.Amount,
		t.Currency,
		t.Status,
		t.Description,
		cpEmail,
		cpName,
		nullIfEmpty(t.PaymentMethodID),
		t.Reference,
		t.CreatedAt,
		t.CompletedAt,
		t.SecurityVerified,
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a transaction by ID with a FOR UPDATE lock.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return scanTransaction(pgxTx.QueryRow(ctx, query, id))
}

// UpdateStatus moves a transaction forward. The WHERE clause refuses to
// touch rows already in a final state.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.TransactionStatus, completedAt *time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE transactions
		SET status = $2, completed_at = $3
		WHERE id = $1 AND status NOT IN ('completed', 'failed')
	`
	tag, err := pgxTx.Exec(ctx, query, id, status, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionFinal
	}

	return nil
}

// ListByWallet retrieves a wallet's transactions, most recent first.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryTransactions(ctx, query, walletID, limit, offset)
}

// ListByWalletAndType retrieves a wallet's transactions of one type.
func (r *TransactionRepository) ListByWalletAndType(ctx context.Context, walletID string, t domain.TransactionType, limit, offset int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE wallet_id = $1 AND type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	return r.queryTransactions(ctx, query, walletID, t, limit, offset)
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var cpEmail, cpName, methodID *string

	err := row.Scan(
		&t.ID,
		&t.WalletID,
		&t.Type,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.Description,
		&cpEmail,
		&cpName,
		&methodID,
		&t.Reference,
		&t.CreatedAt,
		&t.CompletedAt,
		&t.SecurityVerified,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}

	if cpEmail != nil {
		t.Counterparty = &domain.Counterparty{Email: *cpEmail}
		if cpName != nil {
			t.Counterparty.Name = *cpName
		}
	}
	if methodID != nil {
		t.PaymentMethodID = *methodID
	}

	return &t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
