package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httperr "gitea.jw6.us/james/syllacal/internal/http/errors"
	"gitea.jw6.us/james/syllacal/internal/metrics"
	"gitea.jw6.us/james/syllacal/internal/reminders"
)

// Settings returns the user's reminder configuration. A missing or
// stale-version blob comes back as the defaults.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	st, err := h.settingsStore(r.Context(), sess.UserID)
	if err != nil {
		httperr.InternalError(w, r, err, "load settings")
		return
	}
	h.writeJSON(w, http.StatusOK, st.Settings())
}

// AddRule appends a reminder rule to one category.
func (h *Handler) AddRule(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	var req struct {
		Category reminders.Category `json:"category"`
		Amount   int                `json:"amount"`
		Unit     string             `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequestError(w, r, err, "invalid request body")
		return
	}

	st, err := h.settingsStore(r.Context(), sess.UserID)
	if err != nil {
		httperr.InternalError(w, r, err, "load settings")
		return
	}

	if err := st.AddRule(r.Context(), req.Category, reminders.Rule{Amount: req.Amount, Unit: req.Unit}); err != nil {
		if errors.Is(err, reminders.ErrInvalidCategory) {
			httperr.JSON(w, http.StatusBadRequest, "unknown category")
			return
		}
		httperr.InternalError(w, r, err, "add reminder rule")
		return
	}
	h.writeJSON(w, http.StatusOK, st.Settings())
}

// UpdateRule edits one field of an existing rule. Amount edits never
// fail on bad input; the value is coerced to 0 and the response flags
// it so the UI can show what actually got stored.
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	category := reminders.Category(chi.URLParam(r, "category"))
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httperr.BadRequestError(w, r, err, "invalid index")
		return
	}

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.BadRequestError(w, r, err, "invalid request body")
		return
	}

	st, err := h.settingsStore(r.Context(), sess.UserID)
	if err != nil {
		httperr.InternalError(w, r, err, "load settings")
		return
	}

	coerced, err := st.UpdateRule(r.Context(), category, index, req.Field, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, reminders.ErrInvalidCategory):
			httperr.JSON(w, http.StatusBadRequest, "unknown category")
		case errors.Is(err, reminders.ErrIndexOutOfRange):
			// Stale index against a list edited elsewhere. No-op.
			metrics.CountDiscardedEdit("settings_update")
			h.writeJSON(w, http.StatusOK, map[string]any{
				"coerced":  false,
				"settings": st.Settings(),
			})
		default:
			httperr.BadRequestError(w, r, err, "invalid rule edit")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"coerced":  coerced,
		"settings": st.Settings(),
	})
}

// RemoveRule deletes a rule by category and position. Stale indices are
// swallowed the same way as staged-list removals.
func (h *Handler) RemoveRule(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	category := reminders.Category(chi.URLParam(r, "category"))
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httperr.BadRequestError(w, r, err, "invalid index")
		return
	}

	st, err := h.settingsStore(r.Context(), sess.UserID)
	if err != nil {
		httperr.InternalError(w, r, err, "load settings")
		return
	}

	if err := st.RemoveRule(r.Context(), category, index); err != nil {
		switch {
		case errors.Is(err, reminders.ErrInvalidCategory):
			httperr.JSON(w, http.StatusBadRequest, "unknown category")
			return
		case errors.Is(err, reminders.ErrIndexOutOfRange):
			metrics.CountDiscardedEdit("settings_remove")
		default:
			httperr.InternalError(w, r, err, "remove reminder rule")
			return
		}
	}
	h.writeJSON(w, http.StatusOK, st.Settings())
}
