package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gitea.jw6.us/james/syllacal/internal/auth"
	"gitea.jw6.us/james/syllacal/internal/gcal"
	httperr "gitea.jw6.us/james/syllacal/internal/http/errors"
	"gitea.jw6.us/james/syllacal/internal/staging"
	"gitea.jw6.us/james/syllacal/internal/store"
)

// User reports login state. Unlike the other endpoints this one is
// mounted outside RequireSession so the frontend can probe it. The user
// row is re-read so the email is current and a session outliving its
// account reads as signed out.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
		return
	}

	u, err := h.store.Users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeJSON(w, http.StatusOK, map[string]any{"loggedIn": false})
			return
		}
		httperr.InternalError(w, r, err, "load user")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"loggedIn": true,
		"email":    u.PrimaryEmail,
	})
}

// Events lists the user's upcoming calendar events.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	cal, err := h.calendarFor(r.Context(), sess)
	if err != nil {
		httperr.InternalError(w, r, err, "create calendar client")
		return
	}

	events, err := cal.ListUpcoming(r.Context(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		httperr.InternalError(w, r, err, "list calendar events")
		return
	}
	if events == nil {
		events = []gcal.UpcomingEvent{}
	}
	h.writeJSON(w, http.StatusOK, events)
}

// UpdateEvent replaces one calendar event in place.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	var req struct {
		ID string `json:"id"`
		staging.Event
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequestError(w, r, err, "invalid request body")
		return
	}
	if req.ID == "" {
		httperr.JSON(w, http.StatusBadRequest, "missing event id")
		return
	}

	cal, err := h.calendarFor(r.Context(), sess)
	if err != nil {
		httperr.InternalError(w, r, err, "create calendar client")
		return
	}
	if err := cal.Update(r.Context(), req.ID, req.Event); err != nil {
		httperr.InternalError(w, r, err, "update calendar event")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// DeleteEvents removes calendar events by id, best effort, and reports
// how many actually went away.
func (h *Handler) DeleteEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	var req struct {
		EventIDs []string `json:"eventIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequestError(w, r, err, "invalid request body")
		return
	}

	cal, err := h.calendarFor(r.Context(), sess)
	if err != nil {
		httperr.InternalError(w, r, err, "create calendar client")
		return
	}

	deleted, err := cal.Delete(r.Context(), req.EventIDs)
	if err != nil {
		httperr.LogWarn(r, fmt.Sprintf("partial delete: %d of %d removed: %v", deleted, len(req.EventIDs), err))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"deleted_count": deleted,
	})
}
