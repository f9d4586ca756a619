package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const actorKey contextKey = "actor"

// DefaultActor is used when a request does not identify its operator.
const DefaultActor = "admin"

// MaxActorLen bounds the actor name so header abuse cannot bloat audit
// records.
const MaxActorLen = 100

// WithActor returns middleware that resolves the acting operator from the
// X-Actor-Name header and stores it in the request context. Blank or
// oversized values fall back to DefaultActor.
func WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get("X-Actor-Name"))
		if actor == "" || len(actor) > MaxActorLen {
			actor = DefaultActor
		}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentActor returns the operator recorded on the request context, or
// DefaultActor when the middleware did not run.
func CurrentActor(r *http.Request) string {
	if actor, ok := r.Context().Value(actorKey).(string); ok && actor != "" {
		return actor
	}
	return DefaultActor
}
