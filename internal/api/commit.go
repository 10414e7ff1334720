package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	httperr "gitea.jw6.us/james/syllacal/internal/http/errors"
	"gitea.jw6.us/james/syllacal/internal/colors"
	"gitea.jw6.us/james/syllacal/internal/gcal"
	"gitea.jw6.us/james/syllacal/internal/metrics"
)

// Commit classifies the staged events, attaches the user's reminder
// rules and a color, and writes the batch to Google Calendar. The
// staged list is cleared only when every event landed; on a partial
// failure it stays intact so the user can retry.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	var req struct {
		ColorID string `json:"colorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		httperr.BadRequestError(w, r, err, "invalid request body")
		return
	}
	if req.ColorID == "" {
		req.ColorID = colors.Random
	}

	staged := h.registry.Events(sess.ID)
	if len(staged) == 0 {
		httperr.JSON(w, http.StatusBadRequest, "no staged events to commit")
		return
	}

	st, err := h.settingsStore(r.Context(), sess.UserID)
	if err != nil {
		httperr.InternalError(w, r, err, "load settings")
		return
	}

	cal, err := h.calendarFor(r.Context(), sess)
	if err != nil {
		httperr.InternalError(w, r, err, "create calendar client")
		return
	}

	// Existing events inform the color picker's availability snapshot.
	// A listing failure degrades to the full palette rather than
	// blocking the commit.
	var existing []colors.EventSummary
	if upcoming, err := cal.ListUpcoming(r.Context(), time.Now().UTC().Format(time.RFC3339)); err == nil {
		existing = gcal.ColorSummaries(upcoming)
	} else {
		httperr.LogWarn(r, fmt.Sprintf("color snapshot unavailable: %v", err))
	}

	batchID := uuid.NewString()
	batch := h.registry.BuildCommitBatch(sess.ID, st.Settings(), req.ColorID, existing, h.rng)
	httperr.LogInfo(r, fmt.Sprintf("commit batch %s: %d events", batchID, len(batch)))

	res := cal.Insert(r.Context(), batch)
	if res.Err != nil {
		metrics.CountCommitBatch("failure", res.Inserted)
		httperr.LogError(r, fmt.Sprintf("commit batch %s inserted %d of %d events", batchID, res.Inserted, len(batch)), res.Err)
		h.writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":    "some events could not be added",
			"inserted": res.Inserted,
			"failed":   res.Failed,
		})
		return
	}

	h.registry.Clear(sess.ID)
	metrics.CountCommitBatch("success", res.Inserted)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"count":  res.Inserted,
	})
}
