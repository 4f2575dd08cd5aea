package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/strefex-app/walletd/internal/adapter/http/dto"
	"github.com/strefex-app/walletd/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrEscrowNotFound),
		errors.Is(err, domain.ErrMethodNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTransactionFinal),
		errors.Is(err, domain.ErrEscrowNotFunded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrVerificationRequired):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientAvailableBalance),
		errors.Is(err, domain.ErrSingleTransactionLimit),
		errors.Is(err, domain.ErrDailyLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooSmall),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, domain.ErrMissingRequiredField),
		errors.Is(err, domain.ErrUnknownMethodType),
		errors.Is(err, domain.ErrInvalidTransactionType),
		errors.Is(err, domain.ErrNoPendingCode),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeMismatch),
		errors.Is(err, domain.ErrStepOutOfOrder),
		errors.Is(err, domain.ErrPhoneNotVerified):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
