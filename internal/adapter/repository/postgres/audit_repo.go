package postgres

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

// AuditRepository implements audit log persistence
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const auditInsert = `
	INSERT INTO audit_logs (
		id, wallet_id, action, resource_type, resource_id,
		request_id, after_state, status, error_message, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// Create inserts a new audit log entry outside any ledger transaction.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	afterState, err := marshalAuditState(log.AfterState)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, auditInsert, auditArgs(log, afterState)...)
	return err
}

// CreateTx inserts a new audit log entry inside a ledger transaction, so
// the trail commits or rolls back with the money.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	pgxTx := tx.(*Tx).PgxTx()

	afterState, err := marshalAuditState(log.AfterState)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, auditInsert, auditArgs(log, afterState)...)
	return err
}

// List retrieves audit logs with filtering
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, wallet_id, action, resource_type, resource_id,
		       request_id, after_state, status, error_message, created_at
		FROM audit_logs
		WHERE 1=1
	`

	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.WalletID != "" {
		query += " AND wallet_id = " + arg(filter.WalletID)
	}
	if filter.Action != "" {
		query += " AND action = " + arg(filter.Action)
	}
	if filter.ResourceType != "" {
		query += " AND resource_type = " + arg(filter.ResourceType)
	}
	if filter.ResourceID != "" {
		query += " AND resource_id = " + arg(filter.ResourceID)
	}
	if filter.StartDate != nil {
		query += " AND created_at >= " + arg(*filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND created_at <= " + arg(*filter.EndDate)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT " + arg(limit)
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		log, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

func auditArgs(log *domain.AuditLog, afterState []byte) []any {
	return []any{
		log.ID,
		log.WalletID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		afterState,
		log.Status,
		log.ErrorMessage,
		log.CreatedAt,
	}
}

func marshalAuditState(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

func scanAuditLog(row pgx.Row) (*domain.AuditLog, error) {
	var log domain.AuditLog
	var afterState []byte

	err := row.Scan(
		&log.ID,
		&log.WalletID,
		&log.Action,
		&log.ResourceType,
		&log.ResourceID,
		&log.RequestID,
		&afterState,
		&log.Status,
		&log.ErrorMessage,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(afterState) > 0 {
		_ = json.Unmarshal(afterState, &log.AfterState)
	}

	return &log, nil
}
