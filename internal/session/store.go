package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/freightflow/gateway/internal/identity"
)

// persistedState is the durable slot backing the store. One file, one
// credential: writing a new token replaces any previous one.
type persistedState struct {
	PlatformToken string            `json:"platform_token,omitempty"`
	Session       *identity.Session `json:"session,omitempty"`
}

// Store owns the cached platform credential and the persisted identity
// session. All access goes through its methods; concurrent callers are
// serialized by the mutex.
type Store struct {
	mu    sync.Mutex
	path  string // empty = memory only
	state persistedState
}

// NewStore creates a store backed by the given file path. An empty path keeps
// state in memory only. A pre-existing state file is loaded; a missing or
// unreadable one starts the store empty.
func NewStore(path string) *Store {
	s := &Store{path: path}
	s.load()
	return s
}

func (s *Store) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}
	s.state = state
}

func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session state dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	return nil
}

// Token returns the cached platform bearer token, or "" when none is held.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PlatformToken
}

// SetToken caches and persists a platform bearer token, replacing any
// previous one.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PlatformToken = token
	return s.persist()
}

// Session returns the persisted identity session, or nil.
func (s *Store) Session() *identity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session
}

// SetSession persists the identity session alongside the token.
func (s *Store) SetSession(sess *identity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session = sess
	return s.persist()
}

// Clear wipes the in-memory credential and removes the durable slot.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = persistedState{}
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session state: %w", err)
	}
	return nil
}
