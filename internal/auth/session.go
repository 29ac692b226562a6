package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"github.com/petermazzocco/interior-admin/models"
)

const SessionName = "interior_session"

// NewStore creates the cookie store used for both the OAuth handshake and
// the dashboard session.
func NewStore(secret string, maxAge int, isProd bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(maxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = isProd
	gothic.Store = store
	return store
}

func UseGoogle(key, secret, callbackURL string) {
	goth.UseProviders(google.New(key, secret, callbackURL, "email", "profile"))
}

// SaveIdentity stores the resolved identity in the session cookie.
func SaveIdentity(w http.ResponseWriter, r *http.Request, store sessions.Store, id models.Identity) error {
	session, err := store.Get(r, SessionName)
	if err != nil && session == nil {
		return err
	}
	session.Values["user_id"] = id.UserID
	session.Values["email"] = id.Email
	session.Values["role"] = string(id.Role)
	session.Values["city"] = id.City
	return session.Save(r, w)
}

// LoadIdentity returns the unauthenticated identity when the request has
// no usable session.
func LoadIdentity(r *http.Request, store sessions.Store) models.Identity {
	session, err := store.Get(r, SessionName)
	if err != nil || session == nil {
		return models.Unauthenticated()
	}
	email, _ := session.Values["email"].(string)
	role, _ := session.Values["role"].(string)
	if email == "" || !models.Role(role).Valid() {
		return models.Unauthenticated()
	}
	userID, _ := session.Values["user_id"].(string)
	city, _ := session.Values["city"].(string)
	return models.Identity{UserID: userID, Email: email, Role: models.Role(role), City: city}
}

func ClearIdentity(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, SessionName)
	if err != nil && session == nil {
		return err
	}
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
