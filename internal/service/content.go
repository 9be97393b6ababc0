package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
	"github.com/sakif/portfolio/internal/validation"
)

// dateLayout is the calendar-date format used by publishedAt and updatedAt.
const dateLayout = "2006-01-02"

// ContentService reads and writes the portfolio documents. Reads fall back
// to the bundled defaults; writes are validated before they reach the
// repository and are stored pretty-printed.
//
// BYTES IN, BYTES OUT:
// A document is never decoded into a map and re-encoded for storage. The
// request body is checked against its typed model (which decodes a copy),
// then stored with json.Indent, which only changes whitespace. Reads undo
// that with json.Compact. Key order, number spelling and unknown fields all
// survive, so a compact POST body comes back from GET byte for byte.
//
// WRITE PATHS:
//   - Save replaces a document with a body from the admin (repo.Put).
//   - update runs a read-modify-write for blog upserts, blog deletes and
//     the contact inbox (repo.Update), so two writers cannot lose each
//     other's change.
//
// Both leave exactly one backup per successful write, and neither writes
// anything when validation fails.
type ContentService struct {
	repo     repository.DocumentRepository
	validate *validation.Validator
	logger   *slog.Logger
	now      func() time.Time
}

// NewContentService creates the service. v runs the struct rules every
// document must pass before it is written.
func NewContentService(repo repository.DocumentRepository, v *validation.Validator, logger *slog.Logger) *ContentService {
	return &ContentService{
		repo:     repo,
		validate: v,
		logger:   logger,
		now:      time.Now,
	}
}

// lookup maps an unknown resource name to a 404 before any I/O.
func lookup(name string) (content.Resource, error) {
	res, ok := content.Lookup(name)
	if !ok {
		return content.Resource{}, apperror.NotFound("resource", name)
	}
	return res, nil
}

// Get returns the stored document in compact form, or the bundled default
// verbatim when nothing has been saved. A stored document that is no longer
// valid JSON is logged and the default is served instead.
func (s *ContentService) Get(ctx context.Context, name string) ([]byte, error) {
	res, err := lookup(name)
	if err != nil {
		return nil, err
	}

	doc, err := s.repo.Get(ctx, name)
	if errors.Is(err, apperror.ErrNotFound) {
		return res.Default(), nil
	}
	if err != nil {
		s.logger.Error("failed to read document",
			slog.String("resource", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, doc.Body); err != nil {
		s.logger.Warn("stored document is not valid JSON, serving default",
			slog.String("resource", name),
			slog.String("error", err.Error()),
		)
		return res.Default(), nil
	}
	return buf.Bytes(), nil
}

// Decode reads a document (or its default) into dst.
func (s *ContentService) Decode(ctx context.Context, name string, dst any) error {
	body, err := s.Get(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

// Save replaces a whole document. The body must be valid JSON of the
// resource's shape. Key order and values are preserved: the returned
// compact body equals a compact request body byte for byte.
func (s *ContentService) Save(ctx context.Context, name string, body []byte) ([]byte, error) {
	res, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if !res.Editable {
		return nil, apperror.Forbidden(fmt.Sprintf("%s cannot be replaced wholesale", name))
	}
	if err := res.Check(s.validate, body); err != nil {
		return nil, err
	}

	stored, err := indent(body)
	if err != nil {
		return nil, apperror.ValidationFailed("", "request body must be valid JSON")
	}
	if _, err := s.repo.Put(ctx, name, stored); err != nil {
		s.logger.Error("failed to save document",
			slog.String("resource", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving %s: %w", name, err)
	}

	s.logger.Info("document saved", slog.String("resource", name), slog.Int("bytes", len(stored)))
	return compact(stored), nil
}

// ListBackups returns the backups of one resource, newest first.
func (s *ContentService) ListBackups(ctx context.Context, name string) ([]model.Backup, error) {
	if _, err := lookup(name); err != nil {
		return nil, err
	}
	return s.repo.ListBackups(ctx, name)
}

// update runs fn inside a repository read-modify-write. fn sees the stored
// body, or the default when nothing has been saved yet. Its result is
// validated against the resource before anything is written.
func (s *ContentService) update(ctx context.Context, name string, fn func(current []byte) ([]byte, error)) ([]byte, error) {
	res, err := lookup(name)
	if err != nil {
		return nil, err
	}

	doc, _, err := s.repo.Update(ctx, name, func(current []byte, found bool) ([]byte, error) {
		if !found {
			current = res.Default()
		}
		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		if err := res.Check(s.validate, next); err != nil {
			return nil, err
		}
		return indent(next)
	})
	if err != nil {
		if !isClientError(err) {
			s.logger.Error("failed to update document",
				slog.String("resource", name),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}
	return compact(doc.Body), nil
}

func (s *ContentService) today() string {
	return s.now().UTC().Format(dateLayout)
}

// indent is the storage form: two-space indentation and a final newline,
// readable when someone opens the file store by hand.
func indent(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// marshalJSON encodes values the service builds itself (merged blog posts,
// the contact inbox). Unlike json.Marshal it leaves '<', '>' and '&' as
// they are, so post content reads the same in the stored file as it did in
// the request.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// compact is only called on bodies that already passed json.Indent.
func compact(body []byte) []byte {
	var buf bytes.Buffer
	_ = json.Compact(&buf, body)
	return buf.Bytes()
}

// isClientError reports errors caused by the request, which are answered
// with a 4xx and not logged as failures.
func isClientError(err error) bool {
	return errors.Is(err, apperror.ErrValidation) ||
		errors.Is(err, apperror.ErrNotFound) ||
		errors.Is(err, apperror.ErrForbidden)
}
