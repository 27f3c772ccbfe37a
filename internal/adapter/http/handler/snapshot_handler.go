package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/usecase"
)

// SnapshotHandler handles snapshot computation and the maker-checker
// approval workflow.
type SnapshotHandler struct {
	snapshotUC *usecase.SnapshotUseCase
	approvalUC *usecase.ApprovalUseCase
	reversalUC *usecase.ReversalUseCase
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(
	snapshotUC *usecase.SnapshotUseCase,
	approvalUC *usecase.ApprovalUseCase,
	reversalUC *usecase.ReversalUseCase,
) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotUC: snapshotUC,
		approvalUC: approvalUC,
		reversalUC: reversalUC,
	}
}

// Compute computes a new snapshot version for a deal.
func (h *SnapshotHandler) Compute(w http.ResponseWriter, r *http.Request) {
	makerID, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.ComputeSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(makerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	result, err := h.snapshotUC.ComputeSnapshot(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to compute snapshot", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.ComputeSnapshotFromResult(result))
}

// Get retrieves a snapshot by ID.
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing snapshot ID", "")
		return
	}

	snapshot, err := h.snapshotUC.GetSnapshot(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get snapshot", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromDomain(snapshot))
}

// ListPending lists snapshots awaiting approval.
func (h *SnapshotHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	snapshots, err := h.approvalUC.ListPending(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list pending snapshots", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotsFromDomain(snapshots))
}

// Approve approves a pending snapshot.
func (h *SnapshotHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// Reject rejects a pending snapshot.
func (h *SnapshotHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *SnapshotHandler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	approverID, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing snapshot ID", "")
		return
	}

	var req dto.DecisionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	input := req.ToUseCaseInput(id, approverID)

	decide := h.approvalUC.Reject
	if approve {
		decide = h.approvalUC.Approve
	}

	snapshot, err := decide(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to decide snapshot", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotFromDomain(snapshot))
}

// Reverse posts a full or partial reversal against a snapshot.
func (h *SnapshotHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing snapshot ID", "")
		return
	}

	var req dto.ReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(id, actorID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	result, err := h.reversalUC.Reverse(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reverse snapshot", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.ReverseFromResult(result))
}
