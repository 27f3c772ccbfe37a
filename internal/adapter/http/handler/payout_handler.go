package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/usecase"
)

// PayoutHandler handles payout recording requests.
type PayoutHandler struct {
	payoutUC *usecase.PayoutUseCase
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(payoutUC *usecase.PayoutUseCase) *PayoutHandler {
	return &PayoutHandler{payoutUC: payoutUC}
}

// Record records a payout against one or more approved allocations.
func (h *PayoutHandler) Record(w http.ResponseWriter, r *http.Request) {
	createdBy, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.RecordPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(createdBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	payout, err := h.payoutUC.RecordPayout(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record payout", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.PayoutFromDomain(payout))
}

// Get retrieves a payout by ID.
func (h *PayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payout ID", "")
		return
	}

	payout, err := h.payoutUC.GetPayout(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get payout", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PayoutFromDomain(payout))
}
