// internal/game/room_store.go
package game

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

const maxRoomIDLen = 20

// RoomStore is the registry mapping room id to Room. It is the only
// shared mutable structure across events; per-room state is guarded by
// each room's own mutex, never by a process-wide lock.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room

	// OnChange runs after every mutation of the room set. The server
	// hooks the lobby broadcast here.
	OnChange func()
}

// NewRoomStore returns an empty in-memory registry.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*Room)}
}

// Add registers a freshly created room, enforcing id shape and
// uniqueness.
func (s *RoomStore) Add(r *Room) error {
	if len(r.ID) == 0 || len(r.ID) > maxRoomIDLen {
		return errInvalidRoomID(r.ID)
	}
	s.mu.Lock()
	if _, exists := s.rooms[r.ID]; exists {
		s.mu.Unlock()
		return errDuplicateRoomID(r.ID)
	}
	s.rooms[r.ID] = r
	s.mu.Unlock()

	s.notify()
	return nil
}

// Lookup returns the room for id, if registered.
func (s *RoomStore) Lookup(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Get is Lookup with a typed RoomNotFound error for the wire.
func (s *RoomStore) Get(id string) (*Room, error) {
	r, ok := s.Lookup(id)
	if !ok {
		return nil, errRoomNotFound(id)
	}
	return r, nil
}

// Delete removes a room. Deleting an absent id is a no-op and triggers no
// broadcast.
func (s *RoomStore) Delete(id string) {
	s.mu.Lock()
	_, existed := s.rooms[id]
	delete(s.rooms, id)
	s.mu.Unlock()

	if existed {
		s.notify()
	}
}

// Rooms returns a snapshot of all registered rooms sorted by id. The
// slice reflects the registry at call time, not a live view.
func (s *RoomStore) Rooms() []*Room {
	s.mu.Lock()
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Entries derives the sanitized lobby view. Finished rooms are skipped:
// they are mid-deletion and never listed.
func (s *RoomStore) Entries() []LobbyEntry {
	rooms := s.Rooms()
	entries := make([]LobbyEntry, 0, len(rooms))
	for _, r := range rooms {
		r.Mu.Lock()
		if r.Phase == PhaseFinished {
			r.Mu.Unlock()
			continue
		}
		status := StatusOpen
		if r.Phase == PhasePlaying {
			status = StatusPlaying
		} else if len(r.Participants) >= 2 {
			status = StatusFull
		}
		entries = append(entries, LobbyEntry{
			ID:          r.ID,
			PlayerCount: len(r.Participants),
			HasPassword: r.AccessSecret != "",
			Status:      status,
			TimeLimit:   r.TurnLimitSeconds,
		})
		r.Mu.Unlock()
	}
	return entries
}

// RoomsWithParticipant returns every room containing the given connection.
// A connection may sit in several rooms at once, and a disconnect has to
// tear down all of them.
func (s *RoomStore) RoomsWithParticipant(conn uuid.UUID) []*Room {
	var out []*Room
	for _, r := range s.Rooms() {
		if r.HasParticipant(conn) {
			out = append(out, r)
		}
	}
	return out
}

func (s *RoomStore) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
