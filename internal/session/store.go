// Package session persists the logged-in username, the terminal counterpart
// of the browser's durable storage. The record is an explicit object handed
// to the views that need it rather than ambient global state.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotLoggedIn reports a read with no stored session record.
var ErrNotLoggedIn = errors.New("not logged in")

// Record is the stored session state: just the active username. No tokens,
// no expiry.
type Record struct {
	Username string    `json:"username"`
	SavedAt  time.Time `json:"saved_at"`
}

// Store reads and writes one session record at a fixed path.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore constructs a store for the given session file path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// NewStoreWithClock constructs a store with an injected clock for tests.
func NewStoreWithClock(path string, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{path: path, now: now}
}

// Current returns the active username, or ErrNotLoggedIn when no record
// exists.
func (s *Store) Current() (string, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotLoggedIn
		}
		return "", fmt.Errorf("read session: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(content, &rec); err != nil {
		return "", fmt.Errorf("parse session: %w", err)
	}
	username := strings.TrimSpace(rec.Username)
	if username == "" {
		return "", ErrNotLoggedIn
	}
	return username, nil
}

// Save writes the username as the active session. The write is atomic so a
// crash mid-write never leaves a truncated record.
func (s *Store) Save(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	encoded, err := json.Marshal(Record{Username: username, SavedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Clear removes the session record. Clearing an absent record is not an
// error. This deliberately removes the same record Save writes; the source
// application cleared an unrelated storage key on logout, leaving the login
// key behind.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
