package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging
type AuditLog struct {
	ID           string
	WalletID     string // wallet the action was performed on
	Action       string // what action (wallet.topup, escrow.release, etc.)
	ResourceType string // type of resource (transaction, escrow, payment_method)
	ResourceID   string // ID of the resource
	RequestID    string // request ID for tracing
	AfterState   JSON   // state after the action
	Status       string // success, failure, error
	ErrorMessage string // if status=error, the error message
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Wallet actions
	AuditActionWalletCreate AuditAction = "wallet.create"
	AuditActionTopUp        AuditAction = "wallet.topup"
	AuditActionWithdraw     AuditAction = "wallet.withdraw"
	AuditActionSendPayment  AuditAction = "wallet.send"
	AuditActionReceive      AuditAction = "wallet.receive"

	// Escrow actions
	AuditActionEscrowFund    AuditAction = "escrow.fund"
	AuditActionEscrowRelease AuditAction = "escrow.release"
	AuditActionEscrowRefund  AuditAction = "escrow.refund"
	AuditActionEscrowDispute AuditAction = "escrow.dispute"

	// Payment method actions
	AuditActionMethodAdd    AuditAction = "payment_method.add"
	AuditActionMethodRemove AuditAction = "payment_method.remove"

	// Security actions
	AuditActionSecurityUpdate    AuditAction = "security.update"
	AuditActionVerificationCheck AuditAction = "verification.check"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	WalletID     string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
