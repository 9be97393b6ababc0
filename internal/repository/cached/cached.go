// Package cached decorates a DocumentRepository with a read-through cache.
//
// Only Get is served from the cache. Writes go straight to the underlying
// repository and then drop the cached entry, so the next read refills it.
// A failing cache never fails a request: errors are logged and the call
// falls through to the repository.
//
// Entries hold the document body byte for byte. Re-encoding the body as a
// JSON value would compact it and escape '<', '>' and '&', and readers must
// get back exactly what the admin saved. An entry is the update time in
// RFC 3339 form, a newline, then the raw body.
//
// A Get that read the repository before a concurrent write can try to store
// the old body after the write has already invalidated the key. Every write
// bumps a per-document generation first, and a Get that sees the generation
// move while it was filling drops its own entry again. This only covers
// writers in the same process; other processes sharing the cache are bounded
// by the TTL.
package cached

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/portfolio/internal/cache"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

var _ repository.DocumentRepository = (*Repository)(nil)

var errBadEntry = errors.New("malformed cache entry")

type Repository struct {
	next   repository.DocumentRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

func New(next repository.DocumentRepository, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Repository {
	return &Repository{
		next:        next,
		cache:       c,
		ttl:         ttl,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

func key(name string) string { return "document:" + name }

func (r *Repository) Get(ctx context.Context, name string) (*model.Document, error) {
	if raw, ok, err := r.cache.Get(ctx, key(name)); err != nil {
		r.logger.Warn("cache read failed", slog.String("document", name), slog.String("error", err.Error()))
	} else if ok {
		doc, err := decodeEntry(name, raw)
		if err == nil {
			return doc, nil
		}
		r.logger.Warn("dropping undecodable cache entry", slog.String("document", name))
	}

	gen := r.generation(name)
	doc, err := r.next.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key(name), encodeEntry(doc), r.ttl); err != nil {
		r.logger.Warn("cache write failed", slog.String("document", name), slog.String("error", err.Error()))
		return doc, nil
	}
	if r.generation(name) != gen {
		r.invalidate(ctx, name)
	}
	return doc, nil
}

func (r *Repository) Put(ctx context.Context, name string, body []byte) (*model.Backup, error) {
	backup, err := r.next.Put(ctx, name, body)
	if err != nil {
		return nil, err
	}
	r.bump(name)
	r.invalidate(ctx, name)
	return backup, nil
}

func (r *Repository) Update(ctx context.Context, name string, fn repository.UpdateFunc) (*model.Document, *model.Backup, error) {
	doc, backup, err := r.next.Update(ctx, name, fn)
	if err != nil {
		return nil, nil, err
	}
	r.bump(name)
	r.invalidate(ctx, name)
	return doc, backup, nil
}

func (r *Repository) ListBackups(ctx context.Context, name string) ([]model.Backup, error) {
	return r.next.ListBackups(ctx, name)
}

func (r *Repository) invalidate(ctx context.Context, name string) {
	if err := r.cache.Delete(ctx, key(name)); err != nil {
		r.logger.Warn("cache invalidation failed", slog.String("document", name), slog.String("error", err.Error()))
	}
}

func (r *Repository) generation(name string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[name]
}

func (r *Repository) bump(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[name]++
}

func encodeEntry(doc *model.Document) []byte {
	stamp := doc.UpdatedAt.UTC().Format(time.RFC3339Nano)
	buf := make([]byte, 0, len(stamp)+1+len(doc.Body))
	buf = append(buf, stamp...)
	buf = append(buf, '\n')
	return append(buf, doc.Body...)
}

func decodeEntry(name string, raw []byte) (*model.Document, error) {
	stamp, body, ok := bytes.Cut(raw, []byte{'\n'})
	if !ok {
		return nil, errBadEntry
	}
	updated, err := time.Parse(time.RFC3339Nano, string(stamp))
	if err != nil {
		return nil, errBadEntry
	}
	return &model.Document{
		Name:      name,
		Body:      bytes.Clone(body),
		UpdatedAt: updated,
	}, nil
}
