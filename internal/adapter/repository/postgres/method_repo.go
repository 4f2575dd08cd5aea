package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strefex-app/walletd/internal/domain"
)

// MethodRepository implements usecase.MethodRepository. Type-specific
// details live in a JSONB column and are rehydrated into the tagged
// variant for the stored type.
type MethodRepository struct {
	pool *pgxpool.Pool
}

// NewMethodRepository creates a new MethodRepository.
func NewMethodRepository(pool *pgxpool.Pool) *MethodRepository {
	return &MethodRepository{pool: pool}
}

const methodColumns = `
	id, wallet_id, type, label, details, is_default, verified, added_at
`

// Create inserts a payment method.
func (r *MethodRepository) Create(ctx context.Context, method *domain.PaymentMethod) error {
	details, err := json.Marshal(method.Details)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO payment_methods (` + methodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		method.ID,
		method.WalletID,
		method.Type,
		method.Label,
		details,
		method.IsDefault,
		method.Verified,
		method.AddedAt,
	)

	return err
}

// GetByID retrieves a payment method by ID.
func (r *MethodRepository) GetByID(ctx context.Context, id string) (*domain.PaymentMethod, error) {
	query := `SELECT ` + methodColumns + ` FROM payment_methods WHERE id = $1`
	return scanMethod(r.pool.QueryRow(ctx, query, id))
}

// Delete removes a payment method.
func (r *MethodRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM payment_methods WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMethodNotFound
	}

	return nil
}

// List retrieves a wallet's payment methods in order of addition.
func (r *MethodRepository) List(ctx context.Context, walletID string) ([]*domain.PaymentMethod, error) {
	query := `
		SELECT ` + methodColumns + `
		FROM payment_methods
		WHERE wallet_id = $1
		ORDER BY added_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []*domain.PaymentMethod
	for rows.Next() {
		method, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}

	return methods, rows.Err()
}

// SetDefault atomically moves the default flag to the given method.
func (r *MethodRepository) SetDefault(ctx context.Context, walletID, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE payment_methods SET is_default = false WHERE wallet_id = $1`,
		walletID,
	); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE payment_methods SET is_default = true WHERE id = $1 AND wallet_id = $2`,
		id, walletID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMethodNotFound
	}

	return tx.Commit(ctx)
}

// ClearDefault clears the default flag on all of a wallet's methods.
func (r *MethodRepository) ClearDefault(ctx context.Context, walletID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE payment_methods SET is_default = false WHERE wallet_id = $1`,
		walletID,
	)
	return err
}

// SetVerified marks a method verified.
func (r *MethodRepository) SetVerified(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payment_methods SET verified = true WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMethodNotFound
	}

	return nil
}

// GetDefault retrieves a wallet's default payment method.
func (r *MethodRepository) GetDefault(ctx context.Context, walletID string) (*domain.PaymentMethod, error) {
	query := `SELECT ` + methodColumns + ` FROM payment_methods WHERE wallet_id = $1 AND is_default = true`
	return scanMethod(r.pool.QueryRow(ctx, query, walletID))
}

func scanMethod(row pgx.Row) (*domain.PaymentMethod, error) {
	var m domain.PaymentMethod
	var details []byte

	err := row.Scan(
		&m.ID,
		&m.WalletID,
		&m.Type,
		&m.Label,
		&details,
		&m.IsDefault,
		&m.Verified,
		&m.AddedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMethodNotFound
	}
	if err != nil {
		return nil, err
	}

	m.Details, err = unmarshalDetails(m.Type, details)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// unmarshalDetails rehydrates the JSONB details into the variant for the
// stored type.
func unmarshalDetails(t domain.MethodType, data []byte) (domain.MethodDetails, error) {
	var target domain.MethodDetails
	switch t {
	case domain.MethodCard:
		target = &domain.CardDetails{}
	case domain.MethodBankAccount:
		target = &domain.BankAccountDetails{}
	case domain.MethodWireTrans:
		target = &domain.WireDetails{}
	case domain.MethodSEPA:
		target = &domain.SEPADetails{}
	case domain.MethodPayPal, domain.MethodGooglePay, domain.MethodApplePay:
		target = &domain.AccountEmailDetails{Type: t}
	case domain.MethodStripe:
		target = &domain.StripeDetails{}
	case domain.MethodCryptoBTC, domain.MethodCryptoETH, domain.MethodCryptoUSDT:
		target = &domain.CryptoDetails{Type: t}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMethodType, t)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, target); err != nil {
			return nil, err
		}
	}

	return target, nil
}
