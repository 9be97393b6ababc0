// Command seed writes the bundled default of every resource into the
// configured store. Documents that already exist are left alone unless
// -force is given; every write leaves a backup like any admin save.
//
// The server serves the same defaults for missing documents, so seeding is
// not required to get a working site. It exists so a fresh deployment has
// real files (or rows) the admin can inspect, and so -force can reset a
// resource to its shipped content while keeping the old one as a backup.
//
// Usage:
//
//	go run ./cmd/seed                 # seed whatever is missing
//	go run ./cmd/seed -only=skills    # one resource
//	go run ./cmd/seed -force          # overwrite everything
//
// It reads the same environment as cmd/server (STORE_DRIVER, DATA_DIR,
// DB_PATH, REDIS_*), so it writes where the server reads.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/repository"
	"github.com/sakif/portfolio/internal/store"
)

func main() {
	force := flag.Bool("force", false, "overwrite documents that already exist")
	only := flag.String("only", "", "seed a single resource")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	os.Exit(run(*force, *only, logger))
}

// run returns the process exit code: 0 on success, 1 on failure, 2 for an
// unknown -only resource. It is split from main so deferred closes run
// before the process exits.
func run(force bool, only string, logger *slog.Logger) int {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	resources := content.All()
	if only != "" {
		res, ok := content.Lookup(only)
		if !ok {
			logger.Error("unknown resource", slog.String("resource", only))
			return 2
		}
		resources = []content.Resource{res}
	}

	ctx := context.Background()
	repo, closers, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("opening store failed", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	written, err := seed(ctx, repo, resources, force, logger)
	if err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("seed complete", slog.Int("written", written), slog.Int("resources", len(resources)))
	return 0
}

// seed writes each resource's default and returns how many it wrote.
// A document counts as existing when Get succeeds; any error other than
// not found stops the run, since it means the store itself is unhealthy.
func seed(ctx context.Context, repo repository.DocumentRepository, resources []content.Resource, force bool, logger *slog.Logger) (int, error) {
	written := 0
	for _, res := range resources {
		_, err := repo.Get(ctx, res.Name)
		switch {
		case err == nil && !force:
			logger.Info("skipping existing document", slog.String("resource", res.Name))
			continue
		case err != nil && !errors.Is(err, apperror.ErrNotFound):
			return written, err
		}

		backup, err := repo.Put(ctx, res.Name, res.Default())
		if err != nil {
			return written, err
		}
		written++
		logger.Info("seeded", slog.String("resource", res.Name), slog.String("backup", backup.ID))
	}
	return written, nil
}
