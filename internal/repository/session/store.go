// Package session persists the signed-in user between CLI runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/nyaybodh/nyaybodh/internal/domain"
)

// Data is the persisted session.
type Data struct {
	Token           string       `json:"token"`
	User            *domain.User `json:"user,omitempty"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	RefreshToken    string       `json:"refresh_token,omitempty"`
}

// FromTokens builds an authenticated session from a login response.
func FromTokens(t domain.Tokens) Data {
	u := t.User()
	return Data{
		Token:           t.AccessToken,
		User:            &u,
		IsAuthenticated: t.AccessToken != "",
		RefreshToken:    t.RefreshToken,
	}
}

// Store keeps the session in a JSON file readable only by its owner.
type Store struct {
	mu   sync.RWMutex
	path string
	data Data
}

// DefaultPath returns $XDG_CONFIG_HOME/nyaybodh/session.json, falling back to ~/.config.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "nyaybodh", "session.json"), nil
}

// Open loads the session at path. A missing file is an empty session.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var stored struct {
		Data
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	if stored.Token == "" {
		stored.Token = stored.AccessToken
	}
	s.data = stored.Data
	return s, nil
}

// Path returns the session file location.
func (s *Store) Path() string { return s.path }

// Token returns the bearer token, "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.data.IsAuthenticated {
		return ""
	}
	return s.data.Token
}

// RefreshToken returns the stored refresh token.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.RefreshToken
}

// Get returns the current session.
func (s *Store) Get() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Save replaces the session and writes it to disk.
func (s *Store) Save(d Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(d); err != nil {
		return err
	}
	s.data = d
	return nil
}

// Clear signs out locally and removes the session file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = Data{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// write replaces the file atomically via a temp file and rename.
func (s *Store) write(d Data) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}
