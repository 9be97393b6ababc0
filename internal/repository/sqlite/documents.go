package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

var _ repository.DocumentRepository = (*DB)(nil)

// Timestamps are stored as Unix milliseconds, the same precision the backup
// ids carry.
func toMillis(t time.Time) int64   { return t.UnixMilli() }
func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// Get returns the stored document or an apperror.ErrNotFound. The name is
// checked first so a bad name fails the same way it does in the file store.
func (db *DB) Get(ctx context.Context, name string) (*model.Document, error) {
	if err := repository.CheckName(name); err != nil {
		return nil, err
	}
	return getDocument(ctx, db.conn, name)
}

// Put overwrites the document. It is Update with a function that ignores
// the current body, so a save and its backup still commit together.
func (db *DB) Put(ctx context.Context, name string, body []byte) (*model.Backup, error) {
	_, backup, err := db.Update(ctx, name, func([]byte, bool) ([]byte, error) {
		return body, nil
	})
	return backup, err
}

// Update reads, transforms and writes the document in one transaction. With
// a single pooled connection, transactions run one after another, so no
// other write can slip in between the read and the write.
func (db *DB) Update(ctx context.Context, name string, fn repository.UpdateFunc) (*model.Document, *model.Backup, error) {
	if err := repository.CheckName(name); err != nil {
		return nil, nil, err
	}

	// === 1. READ inside the transaction ===
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	var current []byte
	found := true
	existing, err := getDocument(ctx, tx, name)
	switch {
	case err == nil:
		current = existing.Body
	case errors.Is(err, apperror.ErrNotFound):
		found = false
	default:
		return nil, nil, err
	}

	// === 2. TRANSFORM ===
	// An error from fn rolls back; nothing is written and no backup is made.
	next, err := fn(current, found)
	if err != nil {
		return nil, nil, err
	}

	// === 3. WRITE the document and its backup ===
	// Upsert: INSERT for a first save, UPDATE for later ones. Both rows get
	// the same timestamp, truncated to what the columns hold.
	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, next, toMillis(now),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: writing document %s: %w", name, err)
	}

	backup := &model.Backup{
		ID:        repository.NewBackupID(name, now),
		Name:      name,
		CreatedAt: now,
		Size:      int64(len(next)),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO document_backups (id, name, body, created_at) VALUES (?, ?, ?, ?)`,
		backup.ID, name, next, toMillis(now),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: writing backup of %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("sqlite: committing %s: %w", name, err)
	}
	return &model.Document{Name: name, Body: next, UpdatedAt: now}, backup, nil
}

// ListBackups returns the backups of name, newest first. Bodies are not
// loaded; length(body) gives the size without reading the blob.
func (db *DB) ListBackups(ctx context.Context, name string) ([]model.Backup, error) {
	if err := repository.CheckName(name); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, created_at, length(body) FROM document_backups
		 WHERE name = ? ORDER BY created_at DESC, id DESC`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing backups of %s: %w", name, err)
	}
	defer rows.Close()

	backups := []model.Backup{}
	for rows.Next() {
		var (
			b       model.Backup
			created int64
		)
		if err := rows.Scan(&b.ID, &created, &b.Size); err != nil {
			return nil, fmt.Errorf("sqlite: scanning backup row: %w", err)
		}
		b.Name = name
		b.CreatedAt = fromMillis(created)
		backups = append(backups, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating backups: %w", err)
	}
	return backups, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getDocument reads one row through either the pool or a transaction.
func getDocument(ctx context.Context, q querier, name string) (*model.Document, error) {
	var (
		body    []byte
		updated int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT body, updated_at FROM documents WHERE name = ?`, name,
	).Scan(&body, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("document", name)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading document %s: %w", name, err)
	}
	return &model.Document{Name: name, Body: body, UpdatedAt: fromMillis(updated)}, nil
}
