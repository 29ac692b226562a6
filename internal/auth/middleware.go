package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/models"
)

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) models.Identity {
	id, ok := ctx.Value(identityKey).(models.Identity)
	if !ok {
		return models.Unauthenticated()
	}
	return id
}

// UserMiddleware attaches the session identity and a request scoped logger
// to the context and turns away requests without a signed-in user.
func UserMiddleware(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := LoadIdentity(r, store)
			if !id.Authenticated() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": "Please sign in to continue."})
				return
			}
			ctx := WithIdentity(r.Context(), id)
			ctx = logger.ContextWithLogger(ctx, logger.FromContext(ctx).With("user", id.Email, "role", id.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
