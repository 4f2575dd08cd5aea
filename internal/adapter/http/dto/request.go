package dto

import (
	"github.com/shopspring/decimal"

	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

// CreateWalletRequest represents a request to provision a wallet.
type CreateWalletRequest struct {
	OwnerEmail string `json:"owner_email"`
	Currency   string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWalletRequest) ToUseCaseInput() usecase.CreateWalletInput {
	return usecase.CreateWalletInput{
		OwnerEmail: r.OwnerEmail,
		Currency:   r.Currency,
	}
}

// TopUpRequest represents a deposit request.
type TopUpRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentMethodID string          `json:"payment_method_id,omitempty"`
	Description     string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TopUpRequest) ToUseCaseInput(walletID string) usecase.TopUpInput {
	return usecase.TopUpInput{
		WalletID:        walletID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		PaymentMethodID: r.PaymentMethodID,
		Description:     r.Description,
	}
}

// WithdrawRequest represents a withdrawal request.
type WithdrawRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethodID string          `json:"payment_method_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	ClearanceToken  string          `json:"clearance_token,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawRequest) ToUseCaseInput(walletID string) usecase.WithdrawInput {
	return usecase.WithdrawInput{
		WalletID:        walletID,
		Amount:          r.Amount,
		PaymentMethodID: r.PaymentMethodID,
		Description:     r.Description,
		ClearanceToken:  r.ClearanceToken,
	}
}

// SendPaymentRequest represents an outgoing payment request.
type SendPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	RecipientEmail string          `json:"recipient_email"`
	RecipientName  string          `json:"recipient_name,omitempty"`
	Description    string          `json:"description,omitempty"`
	UseEscrow      bool            `json:"use_escrow,omitempty"`
	ClearanceToken string          `json:"clearance_token,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SendPaymentRequest) ToUseCaseInput(walletID string) usecase.SendPaymentInput {
	return usecase.SendPaymentInput{
		WalletID:       walletID,
		Amount:         r.Amount,
		RecipientEmail: r.RecipientEmail,
		RecipientName:  r.RecipientName,
		Description:    r.Description,
		UseEscrow:      r.UseEscrow,
		ClearanceToken: r.ClearanceToken,
	}
}

// ReceivePaymentRequest represents an incoming payment notification.
type ReceivePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	SenderEmail string          `json:"sender_email"`
	SenderName  string          `json:"sender_name,omitempty"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ReceivePaymentRequest) ToUseCaseInput(walletID string) usecase.ReceivePaymentInput {
	return usecase.ReceivePaymentInput{
		WalletID:    walletID,
		Amount:      r.Amount,
		SenderEmail: r.SenderEmail,
		SenderName:  r.SenderName,
		Description: r.Description,
		Reference:   r.Reference,
	}
}

// FundEscrowRequest represents a request to create and fund an escrow.
type FundEscrowRequest struct {
	WalletID       string          `json:"wallet_id"`
	Amount         decimal.Decimal `json:"amount"`
	SellerEmail    string          `json:"seller_email"`
	SellerName     string          `json:"seller_name,omitempty"`
	Description    string          `json:"description,omitempty"`
	ClearanceToken string          `json:"clearance_token,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *FundEscrowRequest) ToUseCaseInput() usecase.FundEscrowInput {
	return usecase.FundEscrowInput{
		WalletID:       r.WalletID,
		Amount:         r.Amount,
		SellerEmail:    r.SellerEmail,
		SellerName:     r.SellerName,
		Description:    r.Description,
		ClearanceToken: r.ClearanceToken,
	}
}

// EscrowReasonRequest carries the reason for a refund or dispute.
type EscrowReasonRequest struct {
	Reason string `json:"reason,omitempty"`
}

// AddMethodRequest represents a request to register a payment method.
type AddMethodRequest struct {
	Type        string            `json:"type"`
	Label       string            `json:"label,omitempty"`
	Fields      map[string]string `json:"fields"`
	MakeDefault bool              `json:"make_default,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddMethodRequest) ToUseCaseInput(walletID string) usecase.AddMethodInput {
	return usecase.AddMethodInput{
		WalletID:    walletID,
		Type:        domain.MethodType(r.Type),
		Label:       r.Label,
		Fields:      r.Fields,
		MakeDefault: r.MakeDefault,
	}
}

// RemoveMethodRequest carries the clearance token for a method removal.
type RemoveMethodRequest struct {
	ClearanceToken string `json:"clearance_token,omitempty"`
}

// IssueCodeRequest represents a request to send a verification code.
type IssueCodeRequest struct {
	Channel string `json:"channel"`
}

// CheckCodeRequest represents a verification step attempt.
type CheckCodeRequest struct {
	Operation string `json:"operation"`
	Channel   string `json:"channel"`
	Code      string `json:"code"`
}

// CancelVerificationRequest names the operation whose attempt to drop.
type CancelVerificationRequest struct {
	Operation string `json:"operation"`
}

// UpdateSecurityRequest carries a partial security settings update. Absent
// fields leave the current value untouched.
type UpdateSecurityRequest struct {
	DailyLimit             *decimal.Decimal `json:"daily_limit,omitempty"`
	SingleTransactionLimit *decimal.Decimal `json:"single_transaction_limit,omitempty"`
	WithdrawalRequires2FA  *bool            `json:"withdrawal_requires_2fa,omitempty"`
	PaymentRequires2FA     *bool            `json:"payment_requires_2fa,omitempty"`
	LoginAlerts            *bool            `json:"login_alerts,omitempty"`
	TransactionAlerts      *bool            `json:"transaction_alerts,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateSecurityRequest) ToUseCaseInput() usecase.UpdateSettingsInput {
	return usecase.UpdateSettingsInput{
		DailyLimit:             r.DailyLimit,
		SingleTransactionLimit: r.SingleTransactionLimit,
		WithdrawalRequires2FA:  r.WithdrawalRequires2FA,
		PaymentRequires2FA:     r.PaymentRequires2FA,
		LoginAlerts:            r.LoginAlerts,
		TransactionAlerts:      r.TransactionAlerts,
	}
}

// VerifyPhoneRequest represents a phone verification request.
type VerifyPhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}
