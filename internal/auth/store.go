// Package auth keeps the calendar API credentials encrypted at rest,
// sealed with a passphrase-derived key.
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

const saltSize = 16

// Credentials is everything needed to talk to the calendar API.
type Credentials struct {
	APIToken   string `json:"api_token"`
	CalendarID string `json:"calendar_id"`
}

// Store reads and writes one encrypted credentials file.
type Store struct {
	Path string
}

func (s Store) Save(creds Credentials, passphrase string) error {
	if s.Path == "" {
		return fmt.Errorf("credentials path is required")
	}
	plaintext, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("salt: %w", err)
	}
	gcm, err := sealer(passphrase, salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	blob := append(append(salt, nonce...), sealed...)
	if err := os.WriteFile(s.Path, blob, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s Store) Load(passphrase string) (Credentials, error) {
	if s.Path == "" {
		return Credentials{}, fmt.Errorf("credentials path is required")
	}
	blob, err := os.ReadFile(s.Path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	if len(blob) < saltSize {
		return Credentials{}, fmt.Errorf("credentials file is corrupt")
	}
	gcm, err := sealer(passphrase, blob[:saltSize])
	if err != nil {
		return Credentials{}, err
	}
	if len(blob) < saltSize+gcm.NonceSize() {
		return Credentials{}, fmt.Errorf("credentials file is corrupt")
	}
	nonce := blob[saltSize : saltSize+gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, blob[saltSize+gcm.NonceSize():], nil)
	if err != nil {
		return Credentials{}, fmt.Errorf("decrypt credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return Credentials{}, fmt.Errorf("unmarshal credentials: %w", err)
	}
	return creds, nil
}

func sealer(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(passphrase), salt, 3, 64*1024, 4, 32)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return gcm, nil
}
