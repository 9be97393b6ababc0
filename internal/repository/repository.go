// Package repository defines the storage contract for content documents.
//
// A document is a named JSON blob ("about", "blog", ...). Every write fully
// replaces the blob and leaves one backup copy behind; backups are never
// pruned. Implementations live in sub-packages (filestore, sqlite) and the
// cached package decorates any of them with a read cache.
package repository

import (
	"context"

	"github.com/sakif/portfolio/internal/model"
)

// UpdateFunc computes the new body of a document from its current one.
// found is false when nothing has been stored yet. Returning an error aborts
// the write and leaves the document and its backups untouched.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

type DocumentRepository interface {
	// Get returns the stored document, or apperror.ErrNotFound.
	Get(ctx context.Context, name string) (*model.Document, error)

	// Put replaces the document and writes exactly one backup with the same body.
	Put(ctx context.Context, name string, body []byte) (*model.Backup, error)

	// Update runs a read-modify-write that no other write to the same
	// document can interleave with.
	Update(ctx context.Context, name string, fn UpdateFunc) (*model.Document, *model.Backup, error)

	// ListBackups returns the backups of one document, newest first.
	ListBackups(ctx context.Context, name string) ([]model.Backup, error)
}
