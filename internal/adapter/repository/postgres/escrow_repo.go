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

// EscrowRepository implements usecase.EscrowRepository.
type EscrowRepository struct {
	pool *pgxpool.Pool
}

// NewEscrowRepository creates a new EscrowRepository.
func NewEscrowRepository(pool *pgxpool.Pool) *EscrowRepository {
	return &EscrowRepository{pool: pool}
}

const escrowColumns = `
	id, wallet_id, buyer_email, seller_email, seller_name,
	amount, currency, description, status,
	created_at, funded_at, released_at, dispute_reason
`

// Create inserts an escrow within a ledger transaction.
func (r *EscrowRepository) Create(ctx context.Context, tx usecase.Transaction, escrow *domain.Escrow) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO escrows (` + escrowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := pgxTx.Exec(ctx, query,
		escrow.ID,
		escrow.WalletID,
		escrow.BuyerEmail,
		escrow.SellerEmail,
		escrow.SellerName,
		escrow.Amount,
		escrow.Currency,
		escrow.Description,
		escrow.Status,
		escrow.CreatedAt,
		escrow.FundedAt,
		escrow.ReleasedAt,
		escrow.DisputeReason,
	)

	return err
}

// GetByID retrieves an escrow by ID.
func (r *EscrowRepository) GetByID(ctx context.Context, id string) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE id = $1`
	return scanEscrow(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an escrow by ID with a FOR UPDATE lock.
func (r *EscrowRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Escrow, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE id = $1 FOR UPDATE`
	return scanEscrow(pgxTx.QueryRow(ctx, query, id))
}

// UpdateStatus writes the escrow's resolution fields.
func (r *EscrowRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, escrow *domain.Escrow, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE escrows
		SET status = $2, funded_at = $3, released_at = $4, dispute_reason = $5
		WHERE id = $1
	`
	tag, err := pgxTx.Exec(ctx, query,
		escrow.ID,
		escrow.Status,
		escrow.FundedAt,
		escrow.ReleasedAt,
		escrow.DisputeReason,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEscrowNotFound
	}

	return nil
}

// ListByWallet retrieves a wallet's escrows, most recent first.
func (r *EscrowRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.Escrow, error) {
	query := `
		SELECT ` + escrowColumns + `
		FROM escrows
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEscrows(rows)
}

// ListActiveByWallet retrieves the escrows still holding funds.
func (r *EscrowRepository) ListActiveByWallet(ctx context.Context, walletID string) ([]*domain.Escrow, error) {
	query := `
		SELECT ` + escrowColumns + `
		FROM escrows
		WHERE wallet_id = $1 AND status IN ('funded', 'disputed')
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEscrows(rows)
}

func collectEscrows(rows pgx.Rows) ([]*domain.Escrow, error) {
	var escrows []*domain.Escrow
	for rows.Next() {
		escrow, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		escrows = append(escrows, escrow)
	}

	return escrows, rows.Err()
}

func scanEscrow(row pgx.Row) (*domain.Escrow, error) {
	var e domain.Escrow
	err := row.Scan(
		&e.ID,
		&e.WalletID,
		&e.BuyerEmail,
		&e.SellerEmail,
		&e.SellerName,
		&e.Amount,
		&e.Currency,
		&e.Description,
		&e.Status,
		&e.CreatedAt,
		&e.FundedAt,
		&e.ReleasedAt,
		&e.DisputeReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEscrowNotFound
	}
	if err != nil {
		return nil, err
	}

	return &e, nil
}
