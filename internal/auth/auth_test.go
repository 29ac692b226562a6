package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petermazzocco/interior-admin/models"
)

func roundTrip(t *testing.T, store sessions.Store, id models.Identity) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, SaveIdentity(rec, httptest.NewRequest(http.MethodGet, "/", nil), store, id))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionIdentity(t *testing.T) {
	store := NewStore("0123456789abcdef0123456789abcdef", 3600, false)
	id := models.Identity{UserID: "g-1", Email: "asha@studio.in", Role: models.RoleAdmin, City: "Pune"}

	t.Run("Should read back the saved identity", func(t *testing.T) {
		assert.Equal(t, id, LoadIdentity(roundTrip(t, store, id), store))
	})

	t.Run("Should treat a request without a cookie as unauthenticated", func(t *testing.T) {
		got := LoadIdentity(httptest.NewRequest(http.MethodGet, "/", nil), store)

		assert.Equal(t, models.RoleUnauthenticated, got.Role)
	})

	t.Run("Should clear the identity", func(t *testing.T) {
		req := roundTrip(t, store, id)
		rec := httptest.NewRecorder()
		require.NoError(t, ClearIdentity(rec, req, store))

		next := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range rec.Result().Cookies() {
			next.AddCookie(c)
		}
		assert.False(t, LoadIdentity(next, store).Authenticated())
	})
}

func TestUserMiddleware(t *testing.T) {
	store := NewStore("0123456789abcdef0123456789abcdef", 3600, false)
	var seen models.Identity
	h := UserMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("Should reject requests without a session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please sign in")
	})

	t.Run("Should pass the identity on", func(t *testing.T) {
		id := models.Identity{UserID: "g-2", Email: "guest@mail.com", Role: models.RoleUser}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, roundTrip(t, store, id))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, id, seen)
	})
}

func TestIdentityFrom(t *testing.T) {
	assert.Equal(t, models.RoleUnauthenticated, IdentityFrom(context.Background()).Role)
}
