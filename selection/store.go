// Package selection keeps the one voice message each user has picked for
// transcription. State lives in memory only and is lost on restart.
package selection

import (
	"sync"
	"time"

	"github.com/EasterCompany/dex-vmt-service/voicenote"
)

// Selection is a user's currently chosen voice message.
type Selection struct {
	OwnerID    string
	Note       voicenote.Note
	SelectedAt time.Time
}

// Store maps owner IDs to their latest selection.
type Store struct {
	mu    sync.RWMutex
	items map[string]Selection
	now   func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		items: make(map[string]Selection),
		now:   time.Now,
	}
}

// WithClock replaces the clock used to stamp selections.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Set records note as ownerID's selection, replacing any previous one.
func (s *Store) Set(ownerID string, note voicenote.Note) Selection {
	sel := Selection{OwnerID: ownerID, Note: note, SelectedAt: s.now()}
	s.mu.Lock()
	s.items[ownerID] = sel
	s.mu.Unlock()
	return sel
}

// Get returns ownerID's selection. ok is false when nothing is selected.
func (s *Store) Get(ownerID string) (Selection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel, ok := s.items[ownerID]
	return sel, ok
}

// Len returns the number of owners with a live selection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
