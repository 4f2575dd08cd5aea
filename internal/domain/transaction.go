package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTopUp           TransactionType = "top_up"
	TransactionWithdrawal      TransactionType = "withdrawal"
	TransactionPaymentSent     TransactionType = "payment_sent"
	TransactionPaymentReceived TransactionType = "payment_received"
	TransactionEscrowLock      TransactionType = "escrow_lock"
	TransactionEscrowRelease   TransactionType = "escrow_release"
	TransactionEscrowRefund    TransactionType = "escrow_refund"
	TransactionFee             TransactionType = "fee"
)

var validTransactionTypes = map[TransactionType]bool{
	TransactionTopUp:           true,
	TransactionWithdrawal:      true,
	TransactionPaymentSent:     true,
	TransactionPaymentReceived: true,
	TransactionEscrowLock:      true,
	TransactionEscrowRelease:   true,
	TransactionEscrowRefund:    true,
	TransactionFee:             true,
}

// IsValid checks if the transaction type is known.
func (t TransactionType) IsValid() bool {
	return validTransactionTypes[t]
}

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
)

// IsFinal reports whether the status admits no further transitions.
func (s TransactionStatus) IsFinal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo checks a status transition. Only pending/processing may
// move forward, and only to completed or failed.
func (s TransactionStatus) CanTransitionTo(to TransactionStatus) bool {
	if s.IsFinal() {
		return false
	}
	return to == StatusCompleted || to == StatusFailed
}

// Counterparty identifies the other side of a payment.
type Counterparty struct {
	Email string
	Name  string
}

// Transaction is an append-only ledger entry. Immutable once completed;
// only the status (and completedAt) may change, and only forward.
type Transaction struct {
	ID               string
	WalletID         string
	Type             TransactionType
	Amount           decimal.Decimal
	Currency         string
	Status           TransactionStatus
	Description      string
	Counterparty     *Counterparty
	PaymentMethodID  string
	Reference        string
	CreatedAt        time.Time
	CompletedAt      *time.Time
	SecurityVerified bool
}

// Validate checks the transaction fields.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// Reference prefixes for human-readable correlation ids.
const (
	RefPrefixTopUp      = "TU"
	RefPrefixWithdrawal = "WD"
	RefPrefixPayment    = "PAY"
	RefPrefixReceived   = "RCV"
)

// NewReference builds a correlation id like "TU-MB2K3F9X" from a prefix and
// a timestamp encoded in base36.
func NewReference(prefix string, at time.Time) string {
	return prefix + "-" + strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
}
