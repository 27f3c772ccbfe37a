package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/usecase"
)

// DisputeHandler handles dispute lifecycle requests.
type DisputeHandler struct {
	disputeUC *usecase.DisputeUseCase
}

// NewDisputeHandler creates a new DisputeHandler.
func NewDisputeHandler(disputeUC *usecase.DisputeUseCase) *DisputeHandler {
	return &DisputeHandler{disputeUC: disputeUC}
}

// Open opens a dispute against a snapshot.
func (h *DisputeHandler) Open(w http.ResponseWriter, r *http.Request) {
	openerID, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.OpenDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	dispute, err := h.disputeUC.OpenDispute(r.Context(), req.ToUseCaseInput(openerID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to open dispute", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.DisputeFromDomain(dispute))
}

// SetStatus transitions a dispute to a new status.
func (h *DisputeHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing dispute ID", "")
		return
	}

	var req dto.SetDisputeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	dispute, err := h.disputeUC.SetStatus(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update dispute", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.DisputeFromDomain(dispute))
}

// EscalateOverdue escalates every dispute past its SLA deadline and
// reports how many were moved.
func (h *DisputeHandler) EscalateOverdue(w http.ResponseWriter, r *http.Request) {
	escalated, err := h.disputeUC.EscalateOverdue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to escalate disputes", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EscalationResponse{Escalated: escalated})
}

// Get retrieves a dispute by ID.
func (h *DisputeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing dispute ID", "")
		return
	}

	dispute, err := h.disputeUC.GetDispute(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get dispute", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.DisputeFromDomain(dispute))
}

// ListByDeal lists disputes raised against a deal's snapshots.
func (h *DisputeHandler) ListByDeal(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealId")
	if dealID == "" {
		writeError(w, http.StatusBadRequest, "missing deal ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	disputes, err := h.disputeUC.ListByDeal(r.Context(), dealID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list disputes", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DisputesFromDomain(disputes))
}
