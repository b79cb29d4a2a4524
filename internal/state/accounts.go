package state

import (
	"database/sql"
	"errors"
	"fmt"
)

// Account is one cached company record, keyed by root domain.
type Account struct {
	Domain      string
	Name        string
	Label       string
	Blacklisted bool
}

func (s *Store) Account(domain string) (Account, bool, error) {
	var a Account
	var blacklisted int
	err := s.db.QueryRow(
		`SELECT domain, name, label, blacklisted FROM accounts WHERE domain = ?`, domain,
	).Scan(&a.Domain, &a.Name, &a.Label, &blacklisted)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, false, nil
	}
	if err != nil {
		return Account{}, false, fmt.Errorf("get account %s: %w", domain, err)
	}
	a.Blacklisted = blacklisted != 0
	return a, true, nil
}

func (s *Store) PutAccount(a Account) error {
	blacklisted := 0
	if a.Blacklisted {
		blacklisted = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO accounts (domain, name, label, blacklisted) VALUES (?, ?, ?, ?)
		 ON CONFLICT(domain) DO UPDATE SET name = excluded.name, label = excluded.label, blacklisted = excluded.blacklisted`,
		a.Domain, a.Name, a.Label, blacklisted,
	)
	if err != nil {
		return fmt.Errorf("put account %s: %w", a.Domain, err)
	}
	return nil
}
