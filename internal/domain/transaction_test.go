package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from TransactionStatus
		to   TransactionStatus
		ok   bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusFailed, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusCompleted, StatusFailed, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusFailed, StatusCompleted, false},
		{StatusProcessing, StatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.ok {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.ok, got)
		}
	}
}

func TestNewReference(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ref := NewReference(RefPrefixTopUp, at)

	if !strings.HasPrefix(ref, "TU-") {
		t.Errorf("expected TU- prefix, got %q", ref)
	}
	if ref != strings.ToUpper(ref) {
		t.Errorf("expected uppercase reference, got %q", ref)
	}
}

func TestTransaction_Validate(t *testing.T) {
	tx := &Transaction{
		Type:   TransactionTopUp,
		Amount: decimal.NewFromInt(-5),
	}
	if err := tx.Validate(); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	tx.Amount = decimal.NewFromInt(100)
	if err := tx.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
