package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/usecase"
)

// PolicyHandler handles policy-related HTTP requests.
type PolicyHandler struct {
	policyUC *usecase.PolicyUseCase
}

// NewPolicyHandler creates a new PolicyHandler.
func NewPolicyHandler(policyUC *usecase.PolicyUseCase) *PolicyHandler {
	return &PolicyHandler{policyUC: policyUC}
}

// Create creates a new policy version.
func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	policy, err := h.policyUC.UpsertPolicy(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create policy", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.PolicyFromDomain(policy))
}

// Get retrieves a policy by ID.
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing policy ID", "")
		return
	}

	policy, err := h.policyUC.GetPolicy(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get policy", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PolicyFromDomain(policy))
}

// List lists policy versions.
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	policies, err := h.policyUC.ListPolicies(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list policies", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PoliciesFromDomain(policies))
}

// Effective resolves the policy effective at a point in time. The "at"
// query parameter defaults to now.
func (h *PolicyHandler) Effective(w http.ResponseWriter, r *http.Request) {
	at := time.Now().UTC()

	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid at parameter", err.Error())
			return
		}
		at = parsed
	}

	policy, err := h.policyUC.ResolveEffective(r.Context(), at)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to resolve policy", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PolicyFromDomain(policy))
}
