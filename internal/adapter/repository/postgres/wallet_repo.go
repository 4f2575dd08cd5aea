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

// WalletRepository implements usecase.WalletRepository. The wallet row and
// its security settings row are created together; the money columns are
// only ever written under a FOR UPDATE lock.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

const walletColumns = `
	id, owner_email, currency, balance, escrow_held,
	total_deposited, total_withdrawn, total_sent, total_received,
	version, created_at, updated_at
`

// Create inserts a wallet and its security settings in one transaction.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet, settings domain.SecuritySettings) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	walletQuery := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, walletQuery,
		wallet.ID,
		wallet.OwnerEmail,
		wallet.Currency,
		wallet.Balance,
		wallet.EscrowHeld,
		wallet.TotalDeposited,
		wallet.TotalWithdrawn,
		wallet.TotalSent,
		wallet.TotalReceived,
		wallet.Version,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	if err != nil {
		return err
	}

	securityQuery := `
		INSERT INTO wallet_security (
			wallet_id, email_verified, phone_verified, phone_number,
			two_factor_enabled, daily_limit, single_transaction_limit,
			withdrawal_requires_2fa, payment_requires_2fa,
			last_verified_at, login_alerts, transaction_alerts, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Exec(ctx, securityQuery,
		wallet.ID,
		settings.EmailVerified,
		settings.PhoneVerified,
		settings.PhoneNumber,
		settings.TwoFactorEnabled,
		settings.DailyLimit,
		settings.SingleTransactionLimit,
		settings.WithdrawalRequires2FA,
		settings.PaymentRequires2FA,
		settings.LastVerifiedAt,
		settings.LoginAlerts,
		settings.TransactionAlerts,
		wallet.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return r.scanWallet(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a wallet by ID with a FOR UPDATE lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return r.scanWallet(pgxTx.QueryRow(ctx, query, id))
}

// UpdateMoney writes the wallet's money columns. Guards on the version the
// caller read under its lock.
func (r *WalletRepository) UpdateMoney(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE wallets
		SET balance = $2, escrow_held = $3,
		    total_deposited = $4, total_withdrawn = $5,
		    total_sent = $6, total_received = $7,
		    version = $8, updated_at = $9
		WHERE id = $1 AND version = $8 - 1
	`
	tag, err := pgxTx.Exec(ctx, query,
		wallet.ID,
		wallet.Balance,
		wallet.EscrowHeld,
		wallet.TotalDeposited,
		wallet.TotalWithdrawn,
		wallet.TotalSent,
		wallet.TotalReceived,
		wallet.Version,
		updatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// GetSecurity retrieves a wallet's security settings.
func (r *WalletRepository) GetSecurity(ctx context.Context, id string) (domain.SecuritySettings, error) {
	query := `
		SELECT email_verified, phone_verified, phone_number,
		       two_factor_enabled, daily_limit, single_transaction_limit,
		       withdrawal_requires_2fa, payment_requires_2fa,
		       last_verified_at, login_alerts, transaction_alerts
		FROM wallet_security
		WHERE wallet_id = $1
	`

	var s domain.SecuritySettings
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.EmailVerified,
		&s.PhoneVerified,
		&s.PhoneNumber,
		&s.TwoFactorEnabled,
		&s.DailyLimit,
		&s.SingleTransactionLimit,
		&s.WithdrawalRequires2FA,
		&s.PaymentRequires2FA,
		&s.LastVerifiedAt,
		&s.LoginAlerts,
		&s.TransactionAlerts,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SecuritySettings{}, domain.ErrWalletNotFound
	}

	return s, err
}

// UpdateSecurity writes a wallet's security settings. Last write wins.
func (r *WalletRepository) UpdateSecurity(ctx context.Context, id string, settings domain.SecuritySettings, updatedAt time.Time) error {
	query := `
		UPDATE wallet_security
		SET email_verified = $2, phone_verified = $3, phone_number = $4,
		    two_factor_enabled = $5, daily_limit = $6, single_transaction_limit = $7,
		    withdrawal_requires_2fa = $8, payment_requires_2fa = $9,
		    last_verified_at = $10, login_alerts = $11, transaction_alerts = $12,
		    updated_at = $13
		WHERE wallet_id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		id,
		settings.EmailVerified,
		settings.PhoneVerified,
		settings.PhoneNumber,
		settings.TwoFactorEnabled,
		settings.DailyLimit,
		settings.SingleTransactionLimit,
		settings.WithdrawalRequires2FA,
		settings.PaymentRequires2FA,
		settings.LastVerifiedAt,
		settings.LoginAlerts,
		settings.TransactionAlerts,
		updatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// List retrieves wallets with pagination.
func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		wallet, err := r.scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}

	return wallets, rows.Err()
}

func (r *WalletRepository) scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.ID,
		&w.OwnerEmail,
		&w.Currency,
		&w.Balance,
		&w.EscrowHeld,
		&w.TotalDeposited,
		&w.TotalWithdrawn,
		&w.TotalSent,
		&w.TotalReceived,
		&w.Version,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}

	return &w, nil
}
