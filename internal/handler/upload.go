package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/repository/filestore"
)

const (
	// MaxResumeBytes caps the uploaded resume PDF.
	MaxResumeBytes = 10 << 20

	// ResumeFileName is where the uploaded resume is published.
	ResumeFileName = "resume.pdf"
)

// UploadHandler accepts the resume PDF and publishes it under publicDir.
//
// The uploaded file is separate from the generated PDF at
// /api/portfolio/resume/pdf: it is whatever document the admin wants
// visitors to download, served as is from /resume.pdf.
type UploadHandler struct {
	publicDir string
	logger    *slog.Logger
}

// NewUploadHandler creates an UploadHandler writing into publicDir. The
// directory is created on the first upload if it does not exist.
func NewUploadHandler(publicDir string, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{publicDir: publicDir, logger: logger}
}

// HandleResumeUpload reads multipart field "file", checks that it really is
// a PDF and atomically replaces <publicDir>/resume.pdf.
//
// SIZE LIMIT:
// The limit is enforced three times, each catching a different client:
//  1. MaxBytesReader stops reading the body past the limit, so a huge
//     upload is cut off instead of buffered to disk.
//  2. header.Size rejects a part that declares itself too big.
//  3. LimitReader on the part itself catches one that lies about its size.
//
// TYPE CHECK:
// The file name and the part's Content-Type come from the client and prove
// nothing. The first bytes must sniff as application/pdf and start with the
// "%PDF-" magic.
//
// The file is written to a temp file and renamed over the old one, so a
// visitor downloading /resume.pdf mid-upload gets the old or the new file,
// never half of one.
func (h *UploadHandler) HandleResumeUpload(w http.ResponseWriter, r *http.Request) {
	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, MaxResumeBytes+64<<10)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apperror.TooLarge("File must be 10 MB or smaller"), "")
			return
		}
		writeError(w, apperror.ValidationFailed("file", "No file provided"), "")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "No file provided"), "")
		return
	}
	defer file.Close()

	if header.Size > MaxResumeBytes {
		writeError(w, apperror.TooLarge("File must be 10 MB or smaller"), "")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxResumeBytes+1))
	if err != nil {
		writeError(w, err, "Failed to upload resume")
		return
	}
	if len(data) > MaxResumeBytes {
		writeError(w, apperror.TooLarge("File must be 10 MB or smaller"), "")
		return
	}
	if !isPDF(data) {
		writeError(w, apperror.ValidationFailed("file", "File must be a PDF"), "")
		return
	}

	if err := os.MkdirAll(h.publicDir, 0o755); err != nil {
		h.logger.Error("creating public dir failed", slog.String("error", err.Error()))
		writeError(w, err, "Failed to upload resume")
		return
	}
	if err := filestore.WriteAtomic(filepath.Join(h.publicDir, ResumeFileName), data); err != nil {
		h.logger.Error("writing resume failed", slog.String("error", err.Error()))
		writeError(w, err, "Failed to upload resume")
		return
	}

	h.logger.Info("resume uploaded", slog.Int("bytes", len(data)), slog.String("filename", header.Filename))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Resume uploaded successfully",
		"path":    "/" + ResumeFileName,
	})
}

// HandleResumeFile serves the uploaded PDF, or 404 before the first upload.
// http.ServeFile handles Range and If-Modified-Since for us.
func (h *UploadHandler) HandleResumeFile(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.publicDir, ResumeFileName)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func isPDF(data []byte) bool {
	return http.DetectContentType(data) == "application/pdf" && bytes.HasPrefix(data, []byte("%PDF-"))
}
