package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// ClearanceTTL is how long a verification clearance token stays usable
	// after the final gate step passes.
	ClearanceTTL = 10 * time.Minute

	// ProgressTTL bounds an in-flight verification attempt. Abandoning the
	// flow leaves no residual authorization once this elapses.
	ProgressTTL = 15 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
