package auth

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/oauth2"

	"gitea.jw6.us/james/syllacal/internal/config"
)

const sessionLifetime = 24 * time.Hour

// Session is the per-browser state carried in the encrypted session cookie:
// who the user is and the Google token the calendar collaborator acts with.
// The token never touches the database; it lives and dies with the cookie,
// like the original credentials-in-session design.
type Session struct {
	ID     string        `json:"id"`
	UserID int64         `json:"user_id"`
	Email  string        `json:"email"`
	Token  *oauth2.Token `json:"token"`
	Exp    int64         `json:"exp"`
}

// SessionManager encodes and decodes web sessions.
type SessionManager struct {
	cookieName string
	codec      *securecookie.SecureCookie
	secure     bool
}

func NewSessionManager(cfg *config.Config) (*SessionManager, error) {
	// Derive independent signing and encryption keys from the configured
	// secret rather than reusing one digest for both roles.
	hashKey, err := deriveKey(cfg.Session.Secret, "syllacal-session-hash")
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(cfg.Session.Secret, "syllacal-session-block")
	if err != nil {
		return nil, err
	}

	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionLifetime.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})

	secure := true
	if base, err := url.Parse(cfg.BaseURL); err == nil && base.Scheme != "https" {
		secure = false
	}

	return &SessionManager{
		cookieName: "syllacal_session",
		codec:      sc,
		secure:     secure,
	}, nil
}

// Issue writes the session cookie.
func (m *SessionManager) Issue(w http.ResponseWriter, s *Session) error {
	s.Exp = time.Now().Add(sessionLifetime).Unix()

	encoded, err := m.codec.Encode(m.cookieName, s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  time.Now().Add(sessionLifetime),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear removes the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
	})
}

// Current decodes the session from the request, if present and unexpired.
func (m *SessionManager) Current(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, false
	}

	var s Session
	if err := m.codec.Decode(m.cookieName, c.Value, &s); err != nil {
		return nil, false
	}
	if time.Unix(s.Exp, 0).Before(time.Now()) {
		return nil, false
	}
	if s.ID == "" || s.UserID == 0 {
		return nil, false
	}
	return &s, true
}

func deriveKey(secret, label string) ([]byte, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(label))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", label, err)
	}
	return key, nil
}
