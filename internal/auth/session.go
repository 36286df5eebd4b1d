package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"

	"review-responder-go/internal/config"
)

// SessionName is the name of the login session cookie.
const SessionName = "review-responder-session"

const sessionKeyUserID = "user_id"

// Sessions stores the logged-in user id in a signed cookie.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions creates the cookie store. The secret is SHA-256 hashed to
// derive a 32-byte signing key, so any passphrase works; it must be stable
// across restarts.
func NewSessions(cfg config.SessionConfig) *Sessions {
	key := sha256.Sum256([]byte(cfg.Secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// Login records userID in the session cookie.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, userID uint) error {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		// an undecodable cookie still yields a fresh session
		session, _ = s.store.New(r, SessionName)
	}
	session.Values[sessionKeyUserID] = userID
	return session.Save(r, w)
}

// Logout expires the session cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	delete(session.Values, sessionKeyUserID)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// UserID returns the logged-in user id, if any.
func (s *Sessions) UserID(r *http.Request) (uint, bool) {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return 0, false
	}
	id, ok := session.Values[sessionKeyUserID].(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
