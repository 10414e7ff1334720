package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"gitea.jw6.us/james/syllacal/internal/config"
	httperr "gitea.jw6.us/james/syllacal/internal/http/errors"
	"gitea.jw6.us/james/syllacal/internal/store"
)

const (
	googleIssuer    = "https://accounts.google.com"
	stateCookieName = "syllacal_oauth_state"
	stateLifetime   = 10 * time.Minute
)

// Service runs the Google sign-in flow and guards session-only routes.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	sessions *SessionManager
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

func NewService(ctx context.Context, cfg *config.Config, st *store.Store, sessions *SessionManager) (*Service, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("discover google oidc provider: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURL:  strings.TrimRight(cfg.BaseURL, "/") + cfg.OAuth.RedirectPath,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			oidc.ScopeOpenID,
			"email",
			calendar.CalendarEventsScope,
			calendar.CalendarReadonlyScope,
		},
	}

	return &Service{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		oauth:    oauthCfg,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.OAuth.ClientID}),
	}, nil
}

// BeginOAuth redirects the browser to Google's consent screen with a
// single-use state nonce pinned in a short-lived cookie.
func (s *Service) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(stateLifetime),
		HttpOnly: true,
		Secure:   s.sessions.secure,
		SameSite: http.SameSiteLaxMode,
	})

	// Offline access so token refreshes survive the hour-long access token.
	authURL := s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleOAuthCallback validates state, exchanges the code, verifies the
// ID token, upserts the user row and starts a session.
func (s *Service) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		httperr.LogWarn(r, "oauth callback with bad state")
		httperr.JSON(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	// State is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:    stateCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		httperr.LogWarn(r, fmt.Sprintf("oauth consent denied: %s", errParam))
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httperr.JSON(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		httperr.InternalError(w, r, err, "exchange oauth code")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		httperr.InternalError(w, r, errors.New("token response missing id_token"), "oauth token response")
		return
	}
	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		httperr.InternalError(w, r, err, "verify id token")
		return
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		httperr.InternalError(w, r, err, "parse id token claims")
		return
	}
	if !claims.EmailVerified {
		httperr.JSON(w, http.StatusForbidden, "google account email is not verified")
		return
	}

	user, err := s.store.Users.UpsertOAuthUser(ctx, idToken.Subject, claims.Email)
	if err != nil {
		httperr.InternalError(w, r, err, "upsert user")
		return
	}

	sess := &Session{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Email:  user.PrimaryEmail,
		Token:  token,
	}
	if err := s.sessions.Issue(w, sess); err != nil {
		httperr.InternalError(w, r, err, "issue session")
		return
	}

	httperr.LogInfo(r, fmt.Sprintf("user %d signed in", user.ID))
	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session cookie.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// RequireSession rejects requests without a valid session. API routes get
// a JSON 401 rather than a redirect so the frontend can react.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.Current(r)
		if !ok {
			httperr.JSON(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// AttachSession decorates the context with the session when one is
// present but lets unauthenticated requests through. Used on probe
// endpoints that answer differently for signed-in users.
func (s *Service) AttachSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.sessions.Current(r); ok {
			r = r.WithContext(WithSession(r.Context(), sess))
		}
		next.ServeHTTP(w, r)
	})
}

// TokenSource returns an oauth2 token source for the session's Google
// credentials, refreshing through the configured client.
func (s *Service) TokenSource(ctx context.Context, sess *Session) oauth2.TokenSource {
	return s.oauth.TokenSource(ctx, sess.Token)
}
