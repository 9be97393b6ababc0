package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/resume"
	"github.com/sakif/portfolio/internal/service"
)

// ResumeHandler renders the resume page and its PDF. A nil renderer
// disables the PDF endpoint.
type ResumeHandler struct {
	content  *service.ContentService
	renderer resume.Renderer
	logger   *slog.Logger
}

// NewResumeHandler creates a ResumeHandler. Pass a nil renderer when
// RESUME_PDF is off.
func NewResumeHandler(content *service.ContentService, renderer resume.Renderer, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{content: content, renderer: renderer, logger: logger}
}

// HandlePage renders the resume as HTML; ?template= picks the layout.
func (h *ResumeHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	view, err := h.content.ResumeView(r.Context(), r.URL.Query().Get("template"))
	if err != nil {
		h.logger.Error("building resume view failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := resume.Render(&buf, view); err != nil {
		h.logger.Error("rendering resume failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// HandleJSON returns the assembled resume view.
func (h *ResumeHandler) HandleJSON(w http.ResponseWriter, r *http.Request) {
	view, err := h.content.ResumeView(r.Context(), r.URL.Query().Get("template"))
	if err != nil {
		writeError(w, err, "Failed to load data")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandlePDF prints the resume with the configured renderer.
//
// It returns 503 when rendering is disabled, so the frontend can hide the
// download button instead of showing an error. The PDF is fully rendered
// before any header is written, so a failed render is still a clean JSON
// 500. The file name is built from the person's name, for example
// "Ada_Lovelace_Resume.pdf".
func (h *ResumeHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, apperror.Unavailable("PDF rendering is not enabled"), "")
		return
	}

	view, err := h.content.ResumeView(r.Context(), r.URL.Query().Get("template"))
	if err != nil {
		writeError(w, err, "Failed to load data")
		return
	}

	pdf, err := resume.PDF(r.Context(), h.renderer, view)
	if err != nil {
		h.logger.Error("resume PDF failed", slog.String("error", err.Error()))
		writeError(w, err, "Failed to render PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resume.FileName(view)))
	w.Header().Set("Content-Length", fmt.Sprint(len(pdf)))
	w.Write(pdf)
}
