package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefex-app/walletd/internal/adapter/http/dto"
	"github.com/strefex-app/walletd/internal/usecase"
)

// MethodHandler handles payment method HTTP requests.
type MethodHandler struct {
	methodUC *usecase.MethodUseCase
}

// NewMethodHandler creates a new MethodHandler.
func NewMethodHandler(methodUC *usecase.MethodUseCase) *MethodHandler {
	return &MethodHandler{methodUC: methodUC}
}

// Add registers a payment method on a wallet.
func (h *MethodHandler) Add(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	var req dto.AddMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	method, err := h.methodUC.AddMethod(r.Context(), req.ToUseCaseInput(walletID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add payment method", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MethodFromDomain(method))
}

// List lists a wallet's payment methods.
func (h *MethodHandler) List(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	methods, err := h.methodUC.ListMethods(r.Context(), walletID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list payment methods", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MethodsFromDomain(methods))
}

// Remove deletes a payment method. Removal is always gated, so the request
// must carry a clearance token.
func (h *MethodHandler) Remove(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")
	methodID := chi.URLParam(r, "methodID")

	var req dto.RemoveMethodRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	if err := h.methodUC.RemoveMethod(r.Context(), walletID, methodID, req.ClearanceToken); err != nil {
		writeError(w, mapDomainError(err), "failed to remove payment method", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetDefault makes a method the wallet's default.
func (h *MethodHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")
	methodID := chi.URLParam(r, "methodID")

	if err := h.methodUC.SetDefault(r.Context(), walletID, methodID); err != nil {
		writeError(w, mapDomainError(err), "failed to set default method", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Verify marks a method as verified.
func (h *MethodHandler) Verify(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")
	methodID := chi.URLParam(r, "methodID")

	if err := h.methodUC.VerifyMethod(r.Context(), walletID, methodID); err != nil {
		writeError(w, mapDomainError(err), "failed to verify method", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
