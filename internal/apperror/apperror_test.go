package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("blog post", "7"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("level", "level must be between 0 and 100"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("admin session required"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable("pdf renderer disabled"),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "TooLarge wraps ErrTooLarge",
			err:       TooLarge("file exceeds 10 MiB"),
			target:    ErrTooLarge,
			wantMatch: true,
		},
		{
			name:      "wrapped NotFound still matches",
			err:       fmt.Errorf("deleting post: %w", NotFound("blog post", "7")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("blog post", "7"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unauthorized does NOT match ErrForbidden",
			err:       Unauthorized("admin session required"),
			target:    ErrForbidden,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("blog post", "42"),
			wantMessage: "blog post not found with id 42",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("title", "title is required"),
			wantMessage: "title is required",
		},
		{
			name:        "Conflict message includes resource and id",
			err:         Conflict("contact", "abc"),
			wantMessage: "contact conflict with id abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestErrorsAsExtractsMessage(t *testing.T) {
	err := fmt.Errorf("saving about: %w", ValidationFailed("stats", "stats[0].label is required"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As() did not find *AppError in the chain")
	}
	if appErr.Field != "stats" {
		t.Errorf("Field = %q, want %q", appErr.Field, "stats")
	}
	if appErr.Message != "stats[0].label is required" {
		t.Errorf("Message = %q", appErr.Message)
	}
}
