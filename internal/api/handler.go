// Package api implements the JSON endpoints the frontend talks to:
// session info, calendar reads, syllabus analysis, the staged event
// list, reminder settings and the final commit to Google Calendar.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"

	"golang.org/x/oauth2"

	"gitea.jw6.us/james/syllacal/internal/auth"
	"gitea.jw6.us/james/syllacal/internal/config"
	"gitea.jw6.us/james/syllacal/internal/extract"
	"gitea.jw6.us/james/syllacal/internal/gcal"
	httperr "gitea.jw6.us/james/syllacal/internal/http/errors"
	"gitea.jw6.us/james/syllacal/internal/reminders"
	"gitea.jw6.us/james/syllacal/internal/staging"
	"gitea.jw6.us/james/syllacal/internal/store"
)

// Calendar is the slice of the Google Calendar client the handlers use.
// Narrowed to an interface so tests can substitute a fake.
type Calendar interface {
	ListUpcoming(ctx context.Context, timeMin string) ([]gcal.UpcomingEvent, error)
	Insert(ctx context.Context, events []staging.Event) gcal.InsertResult
	Update(ctx context.Context, id string, e staging.Event) error
	Delete(ctx context.Context, ids []string) (int, error)
}

// CalendarFactory builds a calendar client bound to a session's Google
// credentials.
type CalendarFactory func(ctx context.Context, ts oauth2.TokenSource) (Calendar, error)

// TokenSources yields refreshing credentials for a session. Satisfied
// by auth.Service.
type TokenSources interface {
	TokenSource(ctx context.Context, sess *auth.Session) oauth2.TokenSource
}

// NewCalendarFactory adapts the concrete gcal client to the factory shape.
func NewCalendarFactory() CalendarFactory {
	return func(ctx context.Context, ts oauth2.TokenSource) (Calendar, error) {
		return gcal.NewClient(ctx, ts)
	}
}

// Handler holds the wiring shared by all API endpoints.
type Handler struct {
	cfg         *config.Config
	store       *store.Store
	authService TokenSources
	extractor   extract.Extractor
	registry    *staging.Registry
	calendars   CalendarFactory
	rng         *rand.Rand
}

func NewHandler(cfg *config.Config, st *store.Store, authService TokenSources, extractor extract.Extractor, registry *staging.Registry, calendars CalendarFactory, rng *rand.Rand) *Handler {
	return &Handler{
		cfg:         cfg,
		store:       st,
		authService: authService,
		extractor:   extractor,
		registry:    registry,
		calendars:   calendars,
		rng:         rng,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// calendarFor builds a calendar client for the session's credentials.
func (h *Handler) calendarFor(ctx context.Context, sess *auth.Session) (Calendar, error) {
	return h.calendars(ctx, h.authService.TokenSource(ctx, sess))
}

// settingsSaver binds the settings repository to one user so the
// reminders store can persist after every mutation.
type settingsSaver struct {
	repo   store.SettingsRepository
	userID int64
}

func (s settingsSaver) SaveSettings(ctx context.Context, blob []byte) error {
	return s.repo.Save(ctx, s.userID, blob)
}

// settingsStore loads the user's reminder settings, falling back to
// defaults when nothing is stored yet or the stored blob is from
// another schema version.
func (h *Handler) settingsStore(ctx context.Context, userID int64) (*reminders.Store, error) {
	blob, err := h.store.Settings.Get(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	settings := reminders.Load(blob, reminders.SchemaVersion)
	return reminders.NewStore(settings, settingsSaver{repo: h.store.Settings, userID: userID}), nil
}

// session pulls the authenticated session out of the request context.
// RequireSession guarantees it exists on these routes.
func session(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		httperr.JSON(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return sess, true
}
