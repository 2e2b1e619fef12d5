// Package pending holds quality-selection state between the moment choices
// are offered to a chat and the moment a button is tapped. Entries are
// write-once, read-once and live for the lifetime of the process.
package pending

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"qualitybot/internals/format"
)

var (
	// ErrUnknownToken means the token was never issued or was already consumed.
	ErrUnknownToken = errors.New("unknown selection token")

	// ErrIndexOutOfRange means the token is live but the choice index is not
	// valid for its stored list. The entry is left untouched.
	ErrIndexOutOfRange = errors.New("choice index out of range")
)

// Entry is the state stored per token.
type Entry struct {
	URL     string
	Choices []format.Choice
}

// Store is a mutex-guarded token -> Entry table shared by all in-flight
// chat sessions. All mutation goes through Create, Resolve and Pop.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Create stores the URL and its choice list under a fresh token and returns
// the token. A live token is never reissued.
func (s *Store) Create(url string, choices []format.Choice) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		token := newToken()
		if _, taken := s.entries[token]; taken {
			continue
		}
		s.entries[token] = Entry{URL: url, Choices: choices}
		return token
	}
}

// Resolve atomically looks up the token, validates idx against its choice
// list, and on success removes the entry and returns it along with the
// selected choice. An out-of-range index does not consume the token, so a
// mistaken tap leaves the session usable.
func (s *Store) Resolve(token string, idx int) (Entry, format.Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return Entry{}, format.Choice{}, ErrUnknownToken
	}
	if idx < 0 || idx >= len(e.Choices) {
		return Entry{}, format.Choice{}, ErrIndexOutOfRange
	}
	delete(s.entries, token)
	return e, e.Choices[idx], nil
}

// Pop atomically removes and returns the entry for token. Used by the fixed
// "best"/"audio" shortcuts that bypass the stored choice list.
func (s *Store) Pop(token string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if ok {
		delete(s.entries, token)
	}
	return e, ok
}

// Len reports the number of outstanding entries. There is no eviction, so
// this is the store's memory footprint in sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// newToken returns 12 hex chars (48 bits) of a random UUID, short enough for
// callback payloads and large enough to treat collisions between live
// entries as practically impossible (Create re-rolls on the off chance).
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
