package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/usecase"
)

// SummaryHandler serves read-model views over authoritative snapshots.
type SummaryHandler struct {
	summaryUC *usecase.SummaryUseCase
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryUC *usecase.SummaryUseCase) *SummaryHandler {
	return &SummaryHandler{summaryUC: summaryUC}
}

// UserSummary aggregates a user's allocations across the latest
// authoritative snapshot of each deal.
func (h *SummaryHandler) UserSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	summary, err := h.summaryUC.GetUserSummary(r.Context(), userID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get user summary", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.UserSummaryFromUseCase(summary))
}

// DealDetail returns every snapshot version of a deal with its
// allocations and payout links.
func (h *SummaryHandler) DealDetail(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealId")
	if dealID == "" {
		writeError(w, http.StatusBadRequest, "missing deal ID", "")
		return
	}

	detail, err := h.summaryUC.GetDealDetail(r.Context(), dealID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get deal detail", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.DealDetailFromUseCase(detail))
}
