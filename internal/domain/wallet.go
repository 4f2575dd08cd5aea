package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the per-account money aggregate. Balance and EscrowHeld are
// mutated only inside a ledger transaction holding a row lock on the wallet.
type Wallet struct {
	ID             string
	OwnerEmail     string
	Currency       string
	Balance        decimal.Decimal
	EscrowHeld     decimal.Decimal
	TotalDeposited decimal.Decimal
	TotalWithdrawn decimal.Decimal
	TotalSent      decimal.Decimal
	TotalReceived  decimal.Decimal
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AvailableBalance returns the spendable amount: balance minus escrow-held funds.
func (w *Wallet) AvailableBalance() decimal.Decimal {
	return w.Balance.Sub(w.EscrowHeld)
}

// ValidateSpend checks if amount can be taken from the available balance.
func (w *Wallet) ValidateSpend(amount decimal.Decimal) error {
	if amount.GreaterThan(w.AvailableBalance()) {
		return ErrInsufficientAvailableBalance
	}
	return nil
}

// CheckInvariants verifies the wallet's money invariants:
// non-negative balances, escrowHeld <= balance, and the running-total
// identity balance == deposited + received - withdrawn - sent.
func (w *Wallet) CheckInvariants() error {
	if w.Balance.IsNegative() || w.EscrowHeld.IsNegative() {
		return ErrNegativeBalance
	}
	if w.EscrowHeld.GreaterThan(w.Balance) {
		return ErrEscrowExceedsBalance
	}

	expected := w.TotalDeposited.
		Add(w.TotalReceived).
		Sub(w.TotalWithdrawn).
		Sub(w.TotalSent)
	if !w.Balance.Equal(expected) {
		return ErrLedgerMismatch
	}

	return nil
}

// SecuritySettings holds the per-wallet security configuration.
// Read-mostly, last-write-wins; not money state.
type SecuritySettings struct {
	EmailVerified          bool
	PhoneVerified          bool
	PhoneNumber            string
	TwoFactorEnabled       bool
	DailyLimit             decimal.Decimal
	SingleTransactionLimit decimal.Decimal
	WithdrawalRequires2FA  bool
	PaymentRequires2FA     bool
	LastVerifiedAt         *time.Time
	LoginAlerts            bool
	TransactionAlerts      bool
}

// DefaultSecuritySettings returns the settings applied when a wallet is provisioned.
func DefaultSecuritySettings() SecuritySettings {
	return SecuritySettings{
		EmailVerified:          true,
		DailyLimit:             decimal.NewFromInt(50000),
		SingleTransactionLimit: decimal.NewFromInt(25000),
		WithdrawalRequires2FA:  true,
		PaymentRequires2FA:     true,
		LoginAlerts:            true,
		TransactionAlerts:      true,
	}
}
