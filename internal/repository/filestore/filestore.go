// Package filestore implements repository.DocumentRepository on plain JSON
// files, one file per document:
//
//	<dir>/about.json
//	<dir>/blog.json
//	<dir>/backups/about-2024-01-15T10-30-00-123Z-cv37rs3pp9olc6atsptg.json
//
// Writes go to a temp file in the same directory and are renamed into
// place, so readers never see a half-written document. A per-document mutex
// serialises writers within this process; several processes sharing one
// data directory still race (use the sqlite repository for that).
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

var _ repository.DocumentRepository = (*Store)(nil)

// BackupDirName is the sub-directory of the data directory holding backups.
const BackupDirName = "backups"

// Store is the file-backed repository. The zero value is not usable; call
// New.
type Store struct {
	dir       string
	backupDir string
	now       func() time.Time

	// mu guards locks. locks holds one mutex per document name, created on
	// first use and never removed; there are only a handful of names.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New prepares dir (and its backups sub-directory) for use.
func New(dir string) (*Store, error) {
	backupDir := filepath.Join(dir, BackupDirName)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: creating %s: %w", backupDir, err)
	}
	return &Store{
		dir:       dir,
		backupDir: backupDir,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// BackupDir returns the directory holding backup files.
func (s *Store) BackupDir() string { return s.backupDir }

// Get reads <dir>/<name>.json. UpdatedAt is the file's modification time,
// so a file edited by hand reports when it was edited.
func (s *Store) Get(_ context.Context, name string) (*model.Document, error) {
	if err := repository.CheckName(name); err != nil {
		return nil, err
	}

	path := s.documentPath(name)
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.NotFound("document", name)
		}
		return nil, fmt.Errorf("filestore: reading %s: %w", path, err)
	}

	doc := &model.Document{Name: name, Body: body}
	if info, err := os.Stat(path); err == nil {
		doc.UpdatedAt = info.ModTime()
	}
	return doc, nil
}

// Put overwrites the document and writes its backup, under the same lock
// as Update.
func (s *Store) Put(ctx context.Context, name string, body []byte) (*model.Backup, error) {
	_, backup, err := s.Update(ctx, name, func([]byte, bool) ([]byte, error) {
		return body, nil
	})
	return backup, err
}

// Update holds the document's lock across read, fn and write, so two
// updates of the same document in this process run one after the other.
// Updates of different documents do not block each other.
func (s *Store) Update(ctx context.Context, name string, fn repository.UpdateFunc) (*model.Document, *model.Backup, error) {
	if err := repository.CheckName(name); err != nil {
		return nil, nil, err
	}

	lock := s.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	// The request may have been cancelled while waiting for the lock.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var current []byte
	found := true
	existing, err := s.Get(ctx, name)
	switch {
	case err == nil:
		current = existing.Body
	case errors.Is(err, apperror.ErrNotFound):
		found = false
	default:
		return nil, nil, err
	}

	next, err := fn(current, found)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()

	// Backup first: if the document write then fails, the backup is removed
	// again so a failed save never leaves a backup behind.
	backup, backupPath, err := s.writeBackup(name, next, now)
	if err != nil {
		return nil, nil, err
	}
	if err := WriteAtomic(s.documentPath(name), next); err != nil {
		_ = os.Remove(backupPath)
		return nil, nil, fmt.Errorf("filestore: writing %s: %w", name, err)
	}

	return &model.Document{Name: name, Body: next, UpdatedAt: now}, backup, nil
}

// ListBackups scans the backups directory for files belonging to name.
// The creation time is parsed from the file name, not the file's mtime, so
// copying the directory elsewhere keeps the history intact. Files that do
// not parse as backup names are skipped.
func (s *Store) ListBackups(_ context.Context, name string) ([]model.Backup, error) {
	if err := repository.CheckName(name); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return nil, fmt.Errorf("filestore: listing backups: %w", err)
	}

	backups := []model.Backup{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, isJSON := strings.CutSuffix(e.Name(), ".json")
		if !isJSON {
			continue
		}
		created, ok := repository.ParseBackupID(name, id)
		if !ok {
			continue
		}
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		backups = append(backups, model.Backup{
			ID:        id,
			Name:      name,
			CreatedAt: created,
			Size:      size,
		})
	}

	// Newest first; the id breaks ties between saves in the same millisecond.
	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.After(backups[j].CreatedAt)
		}
		return backups[i].ID > backups[j].ID
	})
	return backups, nil
}

// BackupPath returns the file holding the backup with the given id.
func (s *Store) BackupPath(id string) string {
	return filepath.Join(s.backupDir, id+".json")
}

func (s *Store) documentPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// lockFor returns the mutex for name, creating it on first use.
func (s *Store) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *Store) writeBackup(name string, body []byte, at time.Time) (*model.Backup, string, error) {
	id := repository.NewBackupID(name, at)
	path := s.BackupPath(id)
	if err := WriteAtomic(path, body); err != nil {
		return nil, "", fmt.Errorf("filestore: writing backup %s: %w", id, err)
	}
	return &model.Backup{ID: id, Name: name, CreatedAt: at, Size: int64(len(body))}, path, nil
}

// WriteAtomic replaces path with body via a temp file in the same directory
// and a rename, so readers see either the old or the new content.
func WriteAtomic(path string, body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return err
	}
	// Sync before rename so a crash cannot leave the new name pointing at an
	// empty file.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// CreateTemp makes files 0600; documents and the resume are public.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
