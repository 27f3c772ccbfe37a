package middleware

import (
	"context"
	"net/http"
)

// ActorIDHeader carries the authenticated actor identity. Authentication
// itself happens at the gateway; this service only needs to know who is
// acting for maker-checker checks and ledger attribution.
const ActorIDHeader = "X-Actor-ID"

type actorKey struct{}

// Actor extracts the actor identity header into the request context.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID := r.Header.Get(ActorIDHeader)
		if actorID != "" {
			r = r.WithContext(context.WithValue(r.Context(), actorKey{}, actorID))
		}

		next.ServeHTTP(w, r)
	})
}

// ActorID returns the actor identity from the context, or "" if absent.
func ActorID(ctx context.Context) string {
	actorID, _ := ctx.Value(actorKey{}).(string)
	return actorID
}
