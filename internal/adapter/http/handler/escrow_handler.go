package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strefex-app/walletd/internal/adapter/http/dto"
	"github.com/strefex-app/walletd/internal/usecase"
)

// EscrowHandler handles escrow HTTP requests.
type EscrowHandler struct {
	escrowUC *usecase.EscrowUseCase
}

// NewEscrowHandler creates a new EscrowHandler.
func NewEscrowHandler(escrowUC *usecase.EscrowUseCase) *EscrowHandler {
	return &EscrowHandler{escrowUC: escrowUC}
}

// Fund creates and funds an escrow from the buyer's wallet.
func (h *EscrowHandler) Fund(w http.ResponseWriter, r *http.Request) {
	var req dto.FundEscrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	escrow, err := h.escrowUC.Fund(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to fund escrow", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.EscrowFromDomain(escrow))
}

// Get retrieves an escrow by ID.
func (h *EscrowHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing escrow ID", "")
		return
	}

	escrow, err := h.escrowUC.GetEscrow(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get escrow", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EscrowFromDomain(escrow))
}

// Release pays the escrowed amount out to the seller.
func (h *EscrowHandler) Release(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing escrow ID", "")
		return
	}

	escrow, err := h.escrowUC.Release(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to release escrow", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EscrowFromDomain(escrow))
}

// Refund returns the earmarked amount to the buyer.
func (h *EscrowHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing escrow ID", "")
		return
	}

	var req dto.EscrowReasonRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	escrow, err := h.escrowUC.Refund(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to refund escrow", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EscrowFromDomain(escrow))
}

// Dispute flags a funded escrow as contested.
func (h *EscrowHandler) Dispute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing escrow ID", "")
		return
	}

	var req dto.EscrowReasonRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	escrow, err := h.escrowUC.Dispute(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to dispute escrow", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EscrowFromDomain(escrow))
}

// ListByWallet lists a wallet's escrows, most recent first.
func (h *EscrowHandler) ListByWallet(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	escrows, err := h.escrowUC.ListEscrows(r.Context(), usecase.ListEscrowsInput{
		WalletID: walletID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list escrows", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEscrowsResponse{
		Escrows: dto.EscrowsFromDomain(escrows),
		Total:   int64(len(escrows)),
	})
}

// ActiveByWallet lists a wallet's escrows still holding funds.
func (h *EscrowHandler) ActiveByWallet(w http.ResponseWriter, r *http.Request) {
	walletID := chi.URLParam(r, "id")

	escrows, err := h.escrowUC.ActiveEscrows(r.Context(), walletID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list active escrows", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEscrowsResponse{
		Escrows: dto.EscrowsFromDomain(escrows),
		Total:   int64(len(escrows)),
	})
}
