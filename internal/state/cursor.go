package state

import (
	"database/sql"
	"errors"
	"fmt"
)

// Cursor keys used by the sync coordinator.
const (
	KeySyncToken = "syncToken"
	KeyPageToken = "pageToken"
)

// Get returns the stored cursor value, or "" when the key is absent.
// Deletion, not an empty value, represents "no cursor".
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM cursor WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get cursor %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO cursor (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set cursor %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM cursor WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete cursor %s: %w", key, err)
	}
	return nil
}
