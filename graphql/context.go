package graphql

import (
	"context"
	"net/http"
)

type contextKey string

const CtxKeyUserID contextKey = "userID"

// HeaderUserID carries the shopper id for queries that omit it.
const HeaderUserID = "X-User-ID"

// UserIDFromContext returns the shopper id attached to the request, if any.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

// UserContext copies the X-User-ID header into the request context.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(HeaderUserID); id != "" {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
