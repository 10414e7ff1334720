package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httperr "gitea.jw6.us/james/syllacal/internal/http/errors"
	"gitea.jw6.us/james/syllacal/internal/metrics"
	"gitea.jw6.us/james/syllacal/internal/staging"
)

// Staged returns the session's staged event list for review.
func (h *Handler) Staged(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.registry.Events(sess.ID))
}

// RemoveStaged splices one event out of the staged list by position.
// A stale index (usually a double-click racing a previous removal) is a
// no-op: the client gets the current list back either way, and the
// discarded edit is counted so the pattern stays visible.
func (h *Handler) RemoveStaged(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httperr.BadRequestError(w, r, err, "invalid index")
		return
	}

	if err := h.registry.RemoveAt(sess.ID, index); err != nil {
		if errors.Is(err, staging.ErrIndexOutOfRange) {
			metrics.CountDiscardedEdit("staged_remove")
		} else {
			httperr.InternalError(w, r, err, "remove staged event")
			return
		}
	}
	h.writeJSON(w, http.StatusOK, h.registry.Events(sess.ID))
}

// ClearStaged throws away the whole staged list.
func (h *Handler) ClearStaged(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	h.registry.Clear(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}
