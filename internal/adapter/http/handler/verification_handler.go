package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefex-app/walletd/internal/adapter/http/dto"
	"github.com/strefex-app/walletd/internal/domain"
	"github.com/strefex-app/walletd/internal/usecase"
)

// VerificationHandler handles verification gate HTTP requests.
type VerificationHandler struct {
	verificationUC *usecase.VerificationUseCase
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verificationUC *usecase.VerificationUseCase) *VerificationHandler {
	return &VerificationHandler{verificationUC: verificationUC}
}

// IssueCode dispatches a one-time code over the requested channel.
func (h *VerificationHandler) IssueCode(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	var req dto.IssueCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expiresAt, err := h.verificationUC.IssueCode(r.Context(), walletID, domain.Channel(req.Channel))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to issue code", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.IssueCodeResponse{
		Channel:   req.Channel,
		ExpiresAt: expiresAt,
	})
}

// CheckCode verifies a gate step for an operation attempt.
func (h *VerificationHandler) CheckCode(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	var req dto.CheckCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.verificationUC.CheckCode(
		r.Context(),
		walletID,
		domain.OperationKind(req.Operation),
		domain.Channel(req.Channel),
		req.Code,
	)
	if err != nil {
		writeError(w, mapDomainError(err), "verification failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CheckCodeFromResult(result))
}

// Cancel drops any in-flight attempt state for an operation.
func (h *VerificationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	var req dto.CancelVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.verificationUC.Cancel(r.Context(), walletID, domain.OperationKind(req.Operation)); err != nil {
		writeError(w, mapDomainError(err), "failed to cancel verification", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
