package api

import (
	"fmt"
	"io"
	"net/http"

	httperr "gitea.jw6.us/james/syllacal/internal/http/errors"
)

// maxUploadBytes caps syllabus uploads. Course PDFs run a few MB at
// most; anything bigger is almost certainly the wrong file.
const maxUploadBytes = 20 << 20

// Analyze accepts a syllabus upload, extracts candidate events and
// replaces the session's staged list with them. The router applies a
// strict rate limit here since each call burns LLM quota.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httperr.BadRequestError(w, r, err, "invalid upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httperr.JSON(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		httperr.JSON(w, http.StatusBadRequest, "no file selected")
		return
	}

	doc, err := io.ReadAll(file)
	if err != nil {
		httperr.InternalError(w, r, err, "read upload")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	categories := r.MultipartForm.Value["categories"]
	colorID := r.FormValue("colorId")
	if colorID == "" {
		colorID = "1"
	}

	events, err := h.extractor.Extract(r.Context(), doc, mimeType, categories, colorID)
	if err != nil {
		httperr.InternalError(w, r, err, "analyze syllabus")
		return
	}

	h.registry.SetStaged(sess.ID, events)
	httperr.LogInfo(r, fmt.Sprintf("staged %d events from %s", len(events), header.Filename))

	h.writeJSON(w, http.StatusOK, h.registry.Events(sess.ID))
}
