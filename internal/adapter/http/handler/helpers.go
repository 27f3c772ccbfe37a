package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/adapter/http/middleware"
	"github.com/iho/splitledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrPolicyNotFound),
		errors.Is(err, domain.ErrSnapshotNotFound),
		errors.Is(err, domain.ErrAllocationNotFound),
		errors.Is(err, domain.ErrPayoutNotFound),
		errors.Is(err, domain.ErrDisputeNotFound),
		errors.Is(err, domain.ErrLockNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSelfApproval):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPeriodLocked),
		errors.Is(err, domain.ErrOverlappingLock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOverpayment),
		errors.Is(err, domain.ErrOverreversal),
		errors.Is(err, domain.ErrCrossDealPayout),
		errors.Is(err, domain.ErrDuplicateLink):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidSplit),
		errors.Is(err, domain.ErrInvalidPolicy),
		errors.Is(err, domain.ErrNoActivePolicy),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDisputeType),
		errors.Is(err, domain.ErrInvalidPeriod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// requireActor returns the acting user from the request, or writes a 401
// when the identity header is absent.
func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID := middleware.ActorID(r.Context())
	if actorID == "" {
		writeError(w, http.StatusUnauthorized, "missing actor identity", "set the "+middleware.ActorIDHeader+" header")
		return "", false
	}

	return actorID, true
}
