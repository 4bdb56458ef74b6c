package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tracktide/logger"
	"tracktide/model"
)

// ErrNoSession is returned when an operation needs a logged-in user and the
// store holds none.
var ErrNoSession = errors.New("session: not logged in")

// state is the on-disk session document.
type state struct {
	Token   string      `json:"token"`
	User    *model.User `json:"user,omitempty"`
	SavedAt time.Time   `json:"savedAt"`
}

// Store holds the current auth session and persists it to a JSON file so a
// login survives restarts and is visible to other processes using the same
// file. Subscribers are notified on every state change, including changes
// made by another process and picked up from disk.
type Store struct {
	path string

	mu    sync.RWMutex
	cur   state
	subs  []func()
	watch *watcher
}

// NewStore creates a store backed by the given file and loads any session
// already persisted there.
func NewStore(path string) *Store {
	s := &Store{path: path}
	if err := s.loadLocked(); err != nil && !os.IsNotExist(err) {
		logger.Warn("[Session] failed to load session file",
			logger.String("path", path), logger.ErrorField(err))
	}
	return s
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Token
}

// User returns the logged-in user, or nil.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.User
}

// LoggedIn reports whether a token is present.
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

// Set stores a new session and persists it.
func (s *Store) Set(token string, user *model.User) error {
	s.mu.Lock()
	s.cur = state{Token: token, User: user, SavedAt: time.Now()}
	err := s.persistLocked()
	s.mu.Unlock()

	s.notify()
	return err
}

// Clear logs out: the in-memory session is dropped and the session file is
// removed.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.cur = state{}
	err := os.Remove(s.path)
	if err != nil && os.IsNotExist(err) {
		err = nil
	}
	s.mu.Unlock()

	s.notify()
	return err
}

// Subscribe registers a callback invoked after every session change. The
// callback runs on the mutating goroutine and must not block.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// reload re-reads the session file and notifies subscribers if the session
// changed. Used by the file watcher.
func (s *Store) reload() {
	s.mu.Lock()
	prev := s.cur.Token
	if err := s.loadLocked(); err != nil {
		if os.IsNotExist(err) {
			// File removed by another process: treat as logout.
			s.cur = state{}
		} else {
			logger.Warn("[Session] reload failed", logger.ErrorField(err))
			s.mu.Unlock()
			return
		}
	}
	changed := s.cur.Token != prev
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	s.cur = st
	return nil
}

func (s *Store) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.cur, "", "  ")
	if err != nil {
		return err
	}
	// Write-then-rename so a concurrent reader never sees a half-written file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
