package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/usecase"
)

// PeriodLockHandler handles settlement period lock requests.
type PeriodLockHandler struct {
	lockUC *usecase.PeriodLockUseCase
}

// NewPeriodLockHandler creates a new PeriodLockHandler.
func NewPeriodLockHandler(lockUC *usecase.PeriodLockUseCase) *PeriodLockHandler {
	return &PeriodLockHandler{lockUC: lockUC}
}

// Create locks a settlement period against mutations.
func (h *PeriodLockHandler) Create(w http.ResponseWriter, r *http.Request) {
	createdBy, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.CreatePeriodLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	lock, err := h.lockUC.CreateLock(r.Context(), req.ToUseCaseInput(createdBy))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create period lock", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.PeriodLockFromDomain(lock))
}

// Release releases an active period lock.
func (h *PeriodLockHandler) Release(w http.ResponseWriter, r *http.Request) {
	releasedBy, ok := requireActor(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing lock ID", "")
		return
	}

	var req dto.ReleasePeriodLockRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	lock, err := h.lockUC.ReleaseLock(r.Context(), req.ToUseCaseInput(id, releasedBy))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to release period lock", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodLockFromDomain(lock))
}

// List lists period locks, most recent first.
func (h *PeriodLockHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	locks, err := h.lockUC.ListLocks(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list period locks", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodLocksFromDomain(locks))
}
