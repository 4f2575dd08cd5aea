package domain

import "time"

// Event types
const (
	EventTypeWalletCreated       = "wallet.created"
	EventTypeWalletToppedUp      = "wallet.topup"
	EventTypeWithdrawalRequested = "withdrawal.requested"
	EventTypeWithdrawalSettled   = "withdrawal.settled"
	EventTypeWithdrawalFailed    = "withdrawal.failed"
	EventTypePaymentSent         = "payment.sent"
	EventTypePaymentReceived     = "payment.received"
	EventTypeEscrowFunded        = "escrow.funded"
	EventTypeEscrowReleased      = "escrow.released"
	EventTypeEscrowRefunded      = "escrow.refunded"
	EventTypeEscrowDisputed      = "escrow.disputed"
	EventTypeMethodAdded         = "payment_method.added"
	EventTypeMethodRemoved       = "payment_method.removed"
)

// Aggregate types
const (
	AggregateTypeWallet      = "wallet"
	AggregateTypeTransaction = "transaction"
	AggregateTypeEscrow      = "escrow"
	AggregateTypeMethod      = "payment_method"
)

// OutboxEvent represents an event to be published. Written in the same
// database transaction as the state change it describes; the settlement
// worker drains unpublished events.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// WithdrawalRequestedEvent payload. Drives the two-phase withdrawal:
// the debit is already committed, the worker settles the transaction.
type WithdrawalRequestedEvent struct {
	TransactionID   string `json:"transaction_id"`
	WalletID        string `json:"wallet_id"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	PaymentMethodID string `json:"payment_method_id"`
}

// EscrowReleasedEvent payload. Seller-side crediting subscribes to this
// event; the buyer-side debit does not call into the seller's wallet.
type EscrowReleasedEvent struct {
	EscrowID    string `json:"escrow_id"`
	BuyerEmail  string `json:"buyer_email"`
	SellerEmail string `json:"seller_email"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

// EscrowRefundedEvent payload
type EscrowRefundedEvent struct {
	EscrowID      string `json:"escrow_id"`
	BuyerEmail    string `json:"buyer_email"`
	Amount        string `json:"amount"`
	DisputeReason string `json:"dispute_reason"`
}
