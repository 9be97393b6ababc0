// Package store opens the document repository selected by configuration:
// the file store or SQLite, optionally behind a Redis read cache.
//
// The result is always a stack of two layers:
//
//	cached.Repository  (Redis, or a no-op cache)
//	    filestore.Store or sqlite.Repository
//
// Callers never need to know which driver or cache is in use; they get a
// repository.DocumentRepository and a list of things to close.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/portfolio/internal/cache"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/repository"
	"github.com/sakif/portfolio/internal/repository/cached"
	"github.com/sakif/portfolio/internal/repository/filestore"
	"github.com/sakif/portfolio/internal/repository/sqlite"
)

// Open returns the repository and whatever must be closed with it.
//
// STORE_DRIVER picks the backing store:
//   - "file" (default): one JSON file per resource under DATA_DIR, easy to
//     inspect and back up by hand. Writers are serialised per document
//     inside this process only.
//   - "sqlite": one database file at DB_PATH. Every write is a transaction,
//     so it is the one to use when more than one process writes.
//
// Redis is optional. When it is configured but does not answer a ping
// within three seconds the site still starts, uncached, and logs a warning.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.DocumentRepository, []io.Closer, error) {
	var (
		repo    repository.DocumentRepository
		closers []io.Closer
	)

	switch cfg.StoreDriver {
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("store: creating database directory: %w", err)
		}
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("store: opening sqlite: %w", err)
		}
		repo = db
		closers = append(closers, db)
		logger.Info("document store ready", slog.String("driver", config.StoreSQLite), slog.String("path", cfg.DBPath))
	default:
		files, err := filestore.New(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("store: opening file store: %w", err)
		}
		repo = files
		logger.Info("document store ready", slog.String("driver", config.StoreFile), slog.String("dir", files.Dir()))
	}

	// The cached layer is always present; NoopCache makes it a pass-through.
	var c cache.Cache = cache.NewNoop()
	if cfg.RedisEnabled() {
		rc, err := openRedis(cfg)
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, caching disabled", slog.String("error", err.Error()))
			rc.Close()
		} else {
			logger.Info("document cache ready", slog.Duration("ttl", cfg.CacheTTL()))
			closers = append(closers, rc)
			c = rc
		}
	}
	return cached.New(repo, c, cfg.CacheTTL(), logger), closers, nil
}

func openRedis(cfg *config.Config) (*cache.RedisCache, error) {
	if cfg.RedisURL != "" {
		return cache.NewRedisFromURL(cfg.RedisURL)
	}
	return cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		c.Close()
	}
}
