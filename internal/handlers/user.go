package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"

	"github.com/petermazzocco/interior-admin/internal/access"
	"github.com/petermazzocco/interior-admin/internal/auth"
	"github.com/petermazzocco/interior-admin/internal/catalog"
	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/models"
)

func withProvider(r *http.Request) *http.Request {
	return gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
}

func BeginAuthHandler(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, withProvider(r))
}

// UserLoginHandler finishes the OAuth handshake, resolves the caller's role
// once and stores it in the session for the rest of the sign-in.
func UserLoginHandler(w http.ResponseWriter, r *http.Request, store sessions.Store, resolver *access.Resolver, sync *catalog.Synchronizer, redirect string) {
	log := logger.FromContext(r.Context())
	r = withProvider(r)
	user, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Warn("complete auth", "error", err)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Sign in failed. Please try again."})
		return
	}

	id := resolver.Resolve(r.Context(), models.Session{
		Authenticated: true,
		UserID:        user.UserID,
		Email:         user.Email,
	})
	// a new sign-in starts from an empty view
	sync.Forget(id)

	if err := auth.SaveIdentity(w, r, store, id); err != nil {
		log.Error("save session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to save session"})
		return
	}
	log.Info("signed in", "email", id.Email, "role", id.Role)
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func LogoutHandler(w http.ResponseWriter, r *http.Request, store sessions.Store, sync *catalog.Synchronizer) {
	id := auth.LoadIdentity(r, store)
	_ = gothic.Logout(w, withProvider(r))
	if err := auth.ClearIdentity(w, r, store); err != nil {
		logger.FromContext(r.Context()).Warn("clear session", "error", err)
	}
	if id.Authenticated() {
		sync.Forget(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func GetMeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.IdentityFrom(r.Context()))
}
