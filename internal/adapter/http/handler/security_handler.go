package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefex-app/walletd/internal/adapter/http/dto"
	"github.com/strefex-app/walletd/internal/usecase"
)

// SecurityHandler handles security settings HTTP requests.
type SecurityHandler struct {
	securityUC *usecase.SecurityUseCase
}

// NewSecurityHandler creates a new SecurityHandler.
func NewSecurityHandler(securityUC *usecase.SecurityUseCase) *SecurityHandler {
	return &SecurityHandler{securityUC: securityUC}
}

// Get returns the wallet's security settings.
func (h *SecurityHandler) Get(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	settings, err := h.securityUC.GetSettings(r.Context(), walletID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get security settings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SecuritySettingsFromDomain(settings))
}

// Update applies a partial security settings update.
func (h *SecurityHandler) Update(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	var req dto.UpdateSecurityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settings, err := h.securityUC.UpdateSettings(r.Context(), walletID, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update security settings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SecuritySettingsFromDomain(settings))
}

// VerifyPhone records the wallet's verified phone number.
func (h *SecurityHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	var req dto.VerifyPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settings, err := h.securityUC.VerifyPhone(r.Context(), walletID, req.PhoneNumber)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify phone", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SecuritySettingsFromDomain(settings))
}

// EnableTwoFactor turns two-factor verification on.
func (h *SecurityHandler) EnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	settings, err := h.securityUC.EnableTwoFactor(r.Context(), walletID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to enable two-factor", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SecuritySettingsFromDomain(settings))
}

// DisableTwoFactor turns two-factor verification off.
func (h *SecurityHandler) DisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	settings, err := h.securityUC.DisableTwoFactor(r.Context(), walletID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to disable two-factor", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SecuritySettingsFromDomain(settings))
}
