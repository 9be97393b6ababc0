// Package handler contains the HTTP handlers: the JSON API under /api and
// the server-rendered pages.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio/internal/apperror"
)

// ErrorResponse is the body of every API error. Error is meant for people;
// Code is stable and meant for programs.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// SuccessResponse wraps the result of a write.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeRawJSON sends an already encoded document untouched.
func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeSuccess sends {"success":true,"data":<body>} with body embedded
// verbatim. HTML escaping stays off so the data matches what the next GET
// returns, including any '<', '>' or '&' inside strings.
func writeSuccess(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(SuccessResponse{Success: true, Data: json.RawMessage(body)}); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps domain errors to status codes. Anything that is not an
// apperror becomes a 500 carrying internalMsg, never the error text.
func writeError(w http.ResponseWriter, err error, internalMsg string) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		writeJSON(w, status, ErrorResponse{Error: internalMsg, Code: code})
		return
	}

	resp := ErrorResponse{Error: err.Error(), Code: code}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
		resp.Field = appErr.Field
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, apperror.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// readBody reads at most limit bytes of the request body. A larger body is
// reported as apperror.ErrTooLarge.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	rc := http.MaxBytesReader(w, r.Body, limit)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperror.TooLarge("request body too large")
		}
		return nil, apperror.ValidationFailed("", "could not read request body")
	}
	return body, nil
}
