// Package client implements the admin-side session keeping: a file-backed
// token store with graceful degradation and the guard deciding whether a
// protected action may proceed.
package client

import (
	"os"
	"path/filepath"
	"strings"

	"siteapi/internal/domain"
)

// Availability is probed once at construction; all dependent code branches
// on it instead of catching I/O errors ad hoc at every call site.
type Availability int

const (
	StorageUnavailable Availability = iota
	StorageAvailable
)

const tokenFileName = "session.token"

// TokenStore persists the one session token under a fixed key. When the
// backing directory cannot be written it degrades: reads report absence and
// writes fail with ErrStorageUnavailable, but nothing panics or throws.
type TokenStore struct {
	path         string
	availability Availability
}

func NewTokenStore(dir string) *TokenStore {
	s := &TokenStore{path: filepath.Join(dir, tokenFileName)}
	s.availability = probe(dir)
	return s
}

// probe checks the directory is usable exactly once.
func probe(dir string) Availability {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return StorageUnavailable
	}
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return StorageUnavailable
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return StorageAvailable
}

func (s *TokenStore) Availability() Availability { return s.availability }

// Save persists the token. Fails only when storage is unavailable or the
// write itself errors.
func (s *TokenStore) Save(token string) error {
	if s.availability != StorageAvailable {
		return domain.ErrStorageUnavailable
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

// Load returns the stored token. The second result is false when storage is
// unavailable or nothing is stored; there is no error to handle.
func (s *TokenStore) Load() (string, bool) {
	if s.availability != StorageAvailable {
		return "", false
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}
	return token, true
}

// Clear discards the stored token. Clearing an empty or unavailable store is
// a no-op, not an error.
func (s *TokenStore) Clear() {
	if s.availability != StorageAvailable {
		return
	}
	os.Remove(s.path)
}
