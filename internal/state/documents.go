package state

import (
	"database/sql"
	"errors"
	"fmt"
)

// Document index: maps stable document ids to current filenames so
// notes can be found by id even after a meeting is renamed.

func (s *Store) PutDocument(id, name string) error {
	_, err := s.db.Exec(
		`INSERT INTO documents (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		id, name,
	)
	if err != nil {
		return fmt.Errorf("put document %s: %w", id, err)
	}
	return nil
}

func (s *Store) DocumentName(id string) (string, bool, error) {
	var name string
	err := s.db.QueryRow(`SELECT name FROM documents WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get document %s: %w", id, err)
	}
	return name, true, nil
}

func (s *Store) DocumentIDByName(name string) (string, bool, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM documents WHERE name = ? LIMIT 1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find document %s: %w", name, err)
	}
	return id, true, nil
}

func (s *Store) DeleteDocument(id string) error {
	if _, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}
