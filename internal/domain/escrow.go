package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EscrowStatus string

const (
	// EscrowPending exists in the model but is not reachable through the
	// public API: funding is synchronous with creation.
	EscrowPending  EscrowStatus = "pending"
	EscrowFunded   EscrowStatus = "funded"
	EscrowReleased EscrowStatus = "released"
	EscrowDisputed EscrowStatus = "disputed"
	EscrowRefunded EscrowStatus = "refunded"
)

// Escrow models funds earmarked on a buyer's wallet, held until released to
// the seller or refunded to the buyer. Backed by exactly one escrow_lock
// transaction, and on resolution exactly one escrow_release or escrow_refund.
type Escrow struct {
	ID            string
	WalletID      string // buyer's wallet
	BuyerEmail    string
	SellerEmail   string
	SellerName    string
	Amount        decimal.Decimal
	Currency      string
	Description   string
	Status        EscrowStatus
	CreatedAt     time.Time
	FundedAt      *time.Time
	ReleasedAt    *time.Time
	DisputeReason string
}

// Validate checks the escrow fields.
func (e *Escrow) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// CanRelease checks the release precondition. Release is only legal from
// funded; a second attempt fails here and must not mutate any money state.
func (e *Escrow) CanRelease() error {
	if e.Status != EscrowFunded {
		return ErrEscrowNotFunded
	}
	return nil
}

// CanRefund checks the refund precondition. Refund is legal from funded or
// from disputed (the transitional state on the way to refunded).
func (e *Escrow) CanRefund() error {
	if e.Status != EscrowFunded && e.Status != EscrowDisputed {
		return ErrEscrowNotFunded
	}
	return nil
}

// CanDispute checks the dispute precondition.
func (e *Escrow) CanDispute() error {
	if e.Status != EscrowFunded {
		return ErrEscrowNotFunded
	}
	return nil
}

// IsActive reports whether the escrow still holds funds.
func (e *Escrow) IsActive() bool {
	return e.Status == EscrowFunded || e.Status == EscrowDisputed
}
