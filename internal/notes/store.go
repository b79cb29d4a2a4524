// Package notes stores note documents as markdown files in a folder,
// with a stable id per document kept in the state index so a note can
// be found again after the meeting (and the filename) changes.
package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sevenofnine/meeting-note-sync/internal/state"
)

type Store struct {
	dir   string
	index *state.Store
}

func NewStore(dir string, index *state.Store) (*Store, error) {
	if dir == "" {
		return nil, errors.New("notes folder is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create notes folder: %w", err)
	}
	return &Store{dir: dir, index: index}, nil
}

// Create writes a new document and returns its id.
func (s *Store) Create(name, content string) (string, error) {
	id := uuid.NewString()
	if err := os.WriteFile(s.path(name), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write note %s: %w", name, err)
	}
	if err := s.index.PutDocument(id, name); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Read(id string) (string, error) {
	name, ok, err := s.index.DocumentName(id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("read note: unknown document %s", id)
	}
	content, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", fmt.Errorf("read note %s: %w", name, err)
	}
	return string(content), nil
}

// Write stores new content under name, renaming the file when the
// document's current name differs.
func (s *Store) Write(id, name, content string) error {
	prev, ok, err := s.index.DocumentName(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write note %s: %w", name, err)
	}
	if ok && prev != name {
		if err := os.Remove(s.path(prev)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove renamed note %s: %w", prev, err)
		}
	}
	return s.index.PutDocument(id, name)
}

// Trash moves the document into a .trash subfolder instead of deleting
// it outright, and drops it from the index.
func (s *Store) Trash(id string) error {
	name, ok, err := s.index.DocumentName(id)
	if err != nil {
		return err
	}
	if ok {
		trashDir := filepath.Join(s.dir, ".trash")
		if err := os.MkdirAll(trashDir, 0o755); err != nil {
			return fmt.Errorf("create trash folder: %w", err)
		}
		if err := os.Rename(s.path(name), filepath.Join(trashDir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("trash note %s: %w", name, err)
		}
	}
	return s.index.DeleteDocument(id)
}

// ByID resolves an id to the document's current name. A stale index
// entry whose file is gone reads as absent.
func (s *Store) ByID(id string) (string, bool, error) {
	name, ok, err := s.index.DocumentName(id)
	if err != nil || !ok {
		return "", false, err
	}
	if _, err := os.Stat(s.path(name)); errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("stat note %s: %w", name, err)
	}
	return name, true, nil
}

// IDByName finds a document by filename. Files created outside the
// tool are adopted into the index on first sight.
func (s *Store) IDByName(name string) (string, bool, error) {
	if _, err := os.Stat(s.path(name)); errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("stat note %s: %w", name, err)
	}
	id, ok, err := s.index.DocumentIDByName(name)
	if err != nil {
		return "", false, err
	}
	if ok {
		return id, true, nil
	}
	id = uuid.NewString()
	if err := s.index.PutDocument(id, name); err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
