package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID               string          `json:"id"`
	OwnerEmail       string          `json:"owner_email"`
	Currency         string          `json:"currency"`
	Balance          decimal.Decimal `json:"balance"`
	EscrowHeld       decimal.Decimal `json:"escrow_held"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	TotalDeposited   decimal.Decimal `json:"total_deposited"`
	TotalWithdrawn   decimal.Decimal `json:"total_withdrawn"`
	TotalSent        decimal.Decimal `json:"total_sent"`
	TotalReceived    decimal.Decimal `json:"total_received"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:               w.ID,
		OwnerEmail:       w.OwnerEmail,
		Currency:         w.Currency,
		Balance:          w.Balance,
		EscrowHeld:       w.EscrowHeld,
		AvailableBalance: w.AvailableBalance(),
		TotalDeposited:   w.TotalDeposited,
		TotalWithdrawn:   w.TotalWithdrawn,
		TotalSent:        w.TotalSent,
		TotalReceived:    w.TotalReceived,
		Version:          w.Version,
		CreatedAt:        w.CreatedAt,
		UpdatedAt:        w.UpdatedAt,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// ListWalletsResponse wraps a page of wallets.
type ListWalletsResponse struct {
	Wallets []*WalletResponse `json:"wallets"`
	Total   int64             `json:"total"`
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID                string          `json:"id"`
	WalletID          string          `json:"wallet_id"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	Description       string          `json:"description,omitempty"`
	CounterpartyEmail string          `json:"counterparty_email,omitempty"`
	CounterpartyName  string          `json:"counterparty_name,omitempty"`
	PaymentMethodID   string          `json:"payment_method_id,omitempty"`
	Reference         string          `json:"reference"`
	SecurityVerified  bool            `json:"security_verified"`
	CreatedAt         time.Time       `json:"created_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:               t.ID,
		WalletID:         t.WalletID,
		Type:             string(t.Type),
		Amount:           t.Amount,
		Currency:         t.Currency,
		Status:           string(t.Status),
		Description:      t.Description,
		PaymentMethodID:  t.PaymentMethodID,
		Reference:        t.Reference,
		SecurityVerified: t.SecurityVerified,
		CreatedAt:        t.CreatedAt,
		CompletedAt:      t.CompletedAt,
	}
	if t.Counterparty != nil {
		resp.CounterpartyEmail = t.Counterparty.Email
		resp.CounterpartyName = t.Counterparty.Name
	}
	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
}

// SendPaymentResponse carries the outcome of a send. Escrow is set only
// when the payment was escrowed.
type SendPaymentResponse struct {
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Escrow      *EscrowResponse      `json:"escrow,omitempty"`
}

// BalanceResponse reports a wallet's spendable balance.
type BalanceResponse struct {
	WalletID         string          `json:"wallet_id"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}

// EscrowResponse represents an escrow in API responses.
type EscrowResponse struct {
	ID            string          `json:"id"`
	WalletID      string          `json:"wallet_id"`
	BuyerEmail    string          `json:"buyer_email"`
	SellerEmail   string          `json:"seller_email"`
	SellerName    string          `json:"seller_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description,omitempty"`
	Status        string          `json:"status"`
	DisputeReason string          `json:"dispute_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	FundedAt      *time.Time      `json:"funded_at,omitempty"`
	ReleasedAt    *time.Time      `json:"released_at,omitempty"`
}

// EscrowFromDomain converts a domain escrow to a response.
func EscrowFromDomain(e *domain.Escrow) *EscrowResponse {
	return &EscrowResponse{
		ID:            e.ID,
		WalletID:      e.WalletID,
		BuyerEmail:    e.BuyerEmail,
		SellerEmail:   e.SellerEmail,
		SellerName:    e.SellerName,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Description:   e.Description,
		Status:        string(e.Status),
		DisputeReason: e.DisputeReason,
		CreatedAt:     e.CreatedAt,
		FundedAt:      e.FundedAt,
		ReleasedAt:    e.ReleasedAt,
	}
}

// EscrowsFromDomain converts domain escrows to responses.
func EscrowsFromDomain(escrows []*domain.Escrow) []*EscrowResponse {
	result := make([]*EscrowResponse, len(escrows))
	for i, e := range escrows {
		result[i] = EscrowFromDomain(e)
	}
	return result
}

// ListEscrowsResponse wraps a page of escrows.
type ListEscrowsResponse struct {
	Escrows []*EscrowResponse `json:"escrows"`
	Total   int64             `json:"total"`
}

// MethodResponse represents a payment method in API responses. Raw details
// never leave the service.
type MethodResponse struct {
	ID        string    `json:"id"`
	WalletID  string    `json:"wallet_id"`
	Type      string    `json:"type"`
	Label     string    `json:"label,omitempty"`
	IsDefault bool      `json:"is_default"`
	Verified  bool      `json:"verified"`
	AddedAt   time.Time `json:"added_at"`
}

// MethodFromDomain converts a domain payment method to a response.
func MethodFromDomain(m *domain.PaymentMethod) *MethodResponse {
	return &MethodResponse{
		ID:        m.ID,
		WalletID:  m.WalletID,
		Type:      string(m.Type),
		Label:     m.Label,
		IsDefault: m.IsDefault,
		Verified:  m.Verified,
		AddedAt:   m.AddedAt,
	}
}

// MethodsFromDomain converts domain payment methods to responses.
func MethodsFromDomain(methods []*domain.PaymentMethod) []*MethodResponse {
	result := make([]*MethodResponse, len(methods))
	for i, m := range methods {
		result[i] = MethodFromDomain(m)
	}
	return result
}

// SecuritySettingsResponse represents security settings in API responses.
// The phone number is masked for display.
type SecuritySettingsResponse struct {
	EmailVerified          bool            `json:"email_verified"`
	PhoneVerified          bool            `json:"phone_verified"`
	PhoneNumber            string          `json:"phone_number,omitempty"`
	TwoFactorEnabled       bool            `json:"two_factor_enabled"`
	DailyLimit             decimal.Decimal `json:"daily_limit"`
	SingleTransactionLimit decimal.Decimal `json:"single_transaction_limit"`
	WithdrawalRequires2FA  bool            `json:"withdrawal_requires_2fa"`
	PaymentRequires2FA     bool            `json:"payment_requires_2fa"`
	LoginAlerts            bool            `json:"login_alerts"`
	TransactionAlerts      bool            `json:"transaction_alerts"`
	LastVerifiedAt         *time.Time      `json:"last_verified_at,omitempty"`
}

// SecuritySettingsFromDomain converts domain settings to a response.
func SecuritySettingsFromDomain(s domain.SecuritySettings) *SecuritySettingsResponse {
	return &SecuritySettingsResponse{
		EmailVerified:          s.EmailVerified,
		PhoneVerified:          s.PhoneVerified,
		PhoneNumber:            domain.MaskPhone(s.PhoneNumber),
		TwoFactorEnabled:       s.TwoFactorEnabled,
		DailyLimit:             s.DailyLimit,
		SingleTransactionLimit: s.SingleTransactionLimit,
		WithdrawalRequires2FA:  s.WithdrawalRequires2FA,
		PaymentRequires2FA:     s.PaymentRequires2FA,
		LoginAlerts:            s.LoginAlerts,
		TransactionAlerts:      s.TransactionAlerts,
		LastVerifiedAt:         s.LastVerifiedAt,
	}
}

// IssueCodeResponse acknowledges a dispatched verification code.
type IssueCodeResponse struct {
	Channel   string    `json:"channel"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CheckCodeResponse reports the outcome of a verification step.
type CheckCodeResponse struct {
	Step           string `json:"step"`
	Completed      bool   `json:"completed"`
	ClearanceToken string `json:"clearance_token,omitempty"`
}

// CheckCodeFromResult converts a use case check result to a response.
func CheckCodeFromResult(r *usecase.CheckResult) *CheckCodeResponse {
	return &CheckCodeResponse{
		Step:           string(r.Step),
		Completed:      r.Completed,
		ClearanceToken: r.ClearanceToken,
	}
}

// ReconciliationResponse reports a wallet's invariant check.
type ReconciliationResponse struct {
	WalletID       string          `json:"wallet_id"`
	Balance        decimal.Decimal `json:"balance"`
	EscrowHeld     decimal.Decimal `json:"escrow_held"`
	ActiveEscrows  decimal.Decimal `json:"active_escrows"`
	IsReconciled   bool            `json:"is_reconciled"`
	InvariantError string          `json:"invariant_error,omitempty"`
	LastChecked    time.Time       `json:"last_checked"`
}

// ReconciliationFromResult converts a use case result to a response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		WalletID:       r.WalletID,
		Balance:        r.Balance,
		EscrowHeld:     r.EscrowHeld,
		ActiveEscrows:  r.ActiveEscrows,
		IsReconciled:   r.IsReconciled,
		InvariantError: r.InvariantError,
		LastChecked:    r.LastChecked,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
