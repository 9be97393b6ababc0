package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/service"
)

// maxContactBytes caps one contact form post. The message itself is limited
// to 5000 characters by validation; the rest is room for the other fields.
const maxContactBytes = 32 << 10

// ContactHandler serves the contact form and the admin inbox.
//
// Two audiences use it:
//   - Visitors post to /api/contact. That route is public and rate limited
//     per client IP by the router, so the handler only has to validate.
//   - The admin lists, marks and deletes messages under /api/admin/contacts,
//     behind auth.RequireAdmin.
//
// Messages live in the private "contacts" document, so they get the same
// backups as every other resource.
type ContactHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

// NewContactHandler creates a ContactHandler on top of the content service.
func NewContactHandler(content *service.ContentService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{content: content, logger: logger}
}

// HandleSubmit accepts a message from the public contact form.
//
// Request: {"name", "email", "subject", "message"}
// Response: 201 {"success": true, "data": {"id": "..."}, "message": "..."}
//
// The id, status and timestamp are assigned by the service; anything the
// client sends for them is overwritten.
func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, maxContactBytes)
	if err != nil {
		writeError(w, err, "Failed to send message")
		return
	}
	var msg model.ContactMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		writeError(w, apperror.ValidationFailed("", "Invalid JSON"), "")
		return
	}

	// Validation errors come back as 400 with the failing field set.
	saved, err := h.content.SubmitContact(r.Context(), msg)
	if err != nil {
		writeError(w, err, "Failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Data:    map[string]string{"id": saved.ID},
		Message: "Message sent successfully",
	})
}

// HandleList returns every message, newest first.
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.content.ListContacts(r.Context())
	if err != nil {
		writeError(w, err, "Failed to load messages")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HandleUpdateStatus takes {"status": "unread"|"read"|"replied"} and returns
// the updated message. An unknown id is a 404, an unknown status a 400.
func (h *ContactHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, maxContactBytes)
	if err != nil {
		writeError(w, err, "Failed to update message")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, apperror.ValidationFailed("", "Invalid JSON"), "")
		return
	}

	msg, err := h.content.UpdateContactStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err, "Failed to update message")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: msg})
}

// HandleDelete removes one message. Deleting an id that is already gone is
// a 404 so the inbox can tell the admin the list was stale.
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "Failed to delete message")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
