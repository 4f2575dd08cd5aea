package domain

import "errors"

var (
	// Wallet errors
	ErrWalletNotFound               = errors.New("wallet not found")
	ErrInvalidAmount                = errors.New("amount must be positive")
	ErrInsufficientAvailableBalance = errors.New("insufficient available balance")
	ErrNegativeBalance              = errors.New("wallet balance is negative")
	ErrEscrowExceedsBalance         = errors.New("escrow held exceeds balance")
	ErrLedgerMismatch               = errors.New("balance does not match running totals")
	ErrCurrencyMismatch             = errors.New("currency does not match wallet currency")

	// Limit errors
	ErrSingleTransactionLimit = errors.New("amount exceeds single transaction limit")
	ErrDailyLimit             = errors.New("amount exceeds daily limit")

	// Transaction errors
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrTransactionFinal       = errors.New("transaction is already in a final status")
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// Escrow errors
	ErrEscrowNotFound  = errors.New("escrow transaction not found")
	ErrEscrowNotFunded = errors.New("escrow is not in funded status")

	// Payment method errors
	ErrMethodNotFound       = errors.New("payment method not found")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrUnknownMethodType    = errors.New("unknown payment method type")

	// Verification errors
	ErrNoPendingCode        = errors.New("no pending verification code")
	ErrCodeExpired          = errors.New("verification code expired")
	ErrCodeMismatch         = errors.New("verification code mismatch")
	ErrStepOutOfOrder       = errors.New("verification step attempted out of order")
	ErrVerificationRequired = errors.New("operation requires verification")
	ErrPhoneNotVerified     = errors.New("phone number is not verified")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
