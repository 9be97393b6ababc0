package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/service"
)

// maxDocumentBytes caps a document POST. The largest bundled document is a
// few KiB, so 1 MiB leaves room for long blog posts.
const maxDocumentBytes = 1 << 20

// ContentHandler serves /api/portfolio/{resource}.
//
// Reads are public and return the stored JSON untouched (or the bundled
// default when nothing is stored). Writes replace the whole document, need
// an admin session (auth.RequireAdmin in the router) and answer
// {"success": true, "data": <document>}. Status codes follow writeError:
// 400 for bad JSON or a document of the wrong shape, 403 for resources that
// cannot be written wholesale, 404 for unknown resources.
type ContentHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

// NewContentHandler creates a ContentHandler on top of the content service.
func NewContentHandler(content *service.ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{content: content, logger: logger}
}

// HandleGet returns the stored document or its default. Private resources
// need an admin session (attached by auth.OptionalSession).
func (h *ContentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "resource")
	if res, ok := content.Lookup(name); ok && res.Private {
		if s, ok := auth.SessionFromContext(r.Context()); !ok || !s.IsAdmin() {
			writeError(w, apperror.Unauthorized("Unauthorized"), "")
			return
		}
	}

	body, err := h.content.Get(r.Context(), name)
	if err != nil {
		writeError(w, err, "Failed to load data")
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

// HandleSave replaces the whole document with the request body. Every
// successful save leaves exactly one backup holding the new body.
func (h *ContentHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "resource")

	body, err := readBody(w, r, maxDocumentBytes)
	if err != nil {
		writeError(w, err, "Failed to save data")
		return
	}

	saved, err := h.content.Save(r.Context(), name, body)
	if err != nil {
		writeError(w, err, "Failed to save data")
		return
	}
	writeSuccess(w, saved)
}

// HandleBackups lists the backups of one resource, newest first.
func (h *ContentHandler) HandleBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.content.ListBackups(r.Context(), chi.URLParam(r, "resource"))
	if err != nil {
		writeError(w, err, "Failed to list backups")
		return
	}
	writeJSON(w, http.StatusOK, backups)
}
