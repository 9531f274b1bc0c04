// Package wantlist holds the volatile per-space, per-user want lists and
// the executor that applies parsed operations to them. Nothing here
// survives a restart by design.
package wantlist

import (
	"sync"

	"wantbot/internal/cardkey"
	"wantbot/internal/logging"
)

const (
	// MaxEntries caps the number of distinct keys per user list.
	MaxEntries = 50
	// MaxQuantity caps the stored quantity per key.
	MaxQuantity = 99
	// MaxNameLength caps the user-supplied card name length.
	MaxNameLength = 100
)

// UserWantList is one member's wants. Lists are created lazily on the
// first successful add and deleted entirely once emptied; no empty record
// ever persists.
type UserWantList struct {
	DisplayName string
	Items       map[cardkey.Key]int
}

// SpaceState is all want-list state for one shared space. SummaryRef is an
// opaque handle owned by the publishing collaborator; the core only
// carries it.
type SpaceState struct {
	Users      map[string]*UserWantList
	SummaryRef string
}

// Store owns every space's state behind one lock. Per-operation mutations
// run entirely inside the lock; the only suspension point (card
// resolution) happens outside it, which is what allows two concurrent
// commands to interleave there.
type Store struct {
	mu     sync.Mutex
	spaces map[string]*SpaceState
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{spaces: make(map[string]*SpaceState)}
}

// space returns the state for spaceID, creating it lazily. Caller must
// hold the lock.
func (s *Store) space(spaceID string) *SpaceState {
	state, ok := s.spaces[spaceID]
	if !ok {
		state = &SpaceState{Users: make(map[string]*UserWantList)}
		s.spaces[spaceID] = state
		logging.Store("created space %s", spaceID)
	}
	return state
}

// snapshotItems returns a copy of a user's current items, empty when the
// user has no list yet. This is the pre-resolution read the add path works
// from.
func (s *Store) snapshotItems(spaceID, userID string) map[cardkey.Key]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[cardkey.Key]int)
	if state, ok := s.spaces[spaceID]; ok {
		if list, ok := state.Users[userID]; ok {
			for k, q := range list.Items {
				items[k] = q
			}
		}
	}
	return items
}

// ClearUser removes a user's entire list and returns how many entries it
// held.
func (s *Store) ClearUser(spaceID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.spaces[spaceID]
	if !ok {
		return 0
	}
	list, ok := state.Users[userID]
	if !ok {
		return 0
	}
	removed := len(list.Items)
	delete(state.Users, userID)
	logging.Store("cleared %d entr(ies) for user %s in space %s", removed, userID, spaceID)
	return removed
}

// SummaryRef returns the opaque summary handle for a space.
func (s *Store) SummaryRef(spaceID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.spaces[spaceID]; ok {
		return state.SummaryRef
	}
	return ""
}

// SetSummaryRef stores the opaque summary handle the publisher owns.
func (s *Store) SetSummaryRef(spaceID, ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.space(spaceID).SummaryRef = ref
}

// UserSnapshot is a copied view of one user's list for rendering.
type UserSnapshot struct {
	DisplayName string
	Items       map[cardkey.Key]int
}

// SpaceSnapshot is a copied view of a whole space for rendering. Rendering
// a snapshot twice must yield identical text.
type SpaceSnapshot struct {
	Users []UserSnapshot
}

// Snapshot deep-copies a space's state for the renderer.
func (s *Store) Snapshot(spaceID string) SpaceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap SpaceSnapshot
	state, ok := s.spaces[spaceID]
	if !ok {
		return snap
	}
	for _, list := range state.Users {
		items := make(map[cardkey.Key]int, len(list.Items))
		for k, q := range list.Items {
			items[k] = q
		}
		snap.Users = append(snap.Users, UserSnapshot{
			DisplayName: list.DisplayName,
			Items:       items,
		})
	}
	return snap
}

// pruneEmpty drops the user's record if their list emptied out. Caller
// must hold the lock.
func (s *Store) pruneEmpty(spaceID, userID string) {
	state, ok := s.spaces[spaceID]
	if !ok {
		return
	}
	if list, ok := state.Users[userID]; ok && len(list.Items) == 0 {
		delete(state.Users, userID)
		logging.StoreDebug("pruned empty list for user %s in space %s", userID, spaceID)
	}
}
