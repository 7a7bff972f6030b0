// internal/game/room_store_test.go
package game

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddValidation(t *testing.T) {
	s := NewRoomStore()

	err := s.Add(NewRoom("", "", UntimedTurnLimit, uuid.New()))
	require.Error(t, err)
	assert.Equal(t, KindInvalidRoomID, AsRoomError(err).Kind)

	err = s.Add(NewRoom(strings.Repeat("x", 21), "", UntimedTurnLimit, uuid.New()))
	require.Error(t, err)
	assert.Equal(t, KindInvalidRoomID, AsRoomError(err).Kind)

	require.NoError(t, s.Add(NewRoom(strings.Repeat("x", 20), "", UntimedTurnLimit, uuid.New())))
}

func TestStoreDuplicateID(t *testing.T) {
	s := NewRoomStore()
	first := NewRoom("X", "", UntimedTurnLimit, uuid.New())
	require.NoError(t, s.Add(first))

	err := s.Add(NewRoom("X", "", UntimedTurnLimit, uuid.New()))
	require.Error(t, err)
	assert.Equal(t, KindDuplicateRoomID, AsRoomError(err).Kind)

	// The first room is untouched by the rejected create.
	got, ok := s.Lookup("X")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Len(t, got.Participants, 1)
}

func TestStoreGetAndDelete(t *testing.T) {
	s := NewRoomStore()
	require.NoError(t, s.Add(NewRoom("a", "", UntimedTurnLimit, uuid.New())))

	_, err := s.Get("missing")
	require.Error(t, err)
	assert.Equal(t, KindRoomNotFound, AsRoomError(err).Kind)

	r, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", r.ID)

	s.Delete("a")
	_, ok := s.Lookup("a")
	assert.False(t, ok)
	s.Delete("a") // idempotent
}

func TestStoreOnChangeNotifications(t *testing.T) {
	s := NewRoomStore()
	var changes int
	s.OnChange = func() { changes++ }

	require.NoError(t, s.Add(NewRoom("a", "", UntimedTurnLimit, uuid.New())))
	assert.Equal(t, 1, changes)

	// Rejected creates and absent deletes are not mutations.
	_ = s.Add(NewRoom("a", "", UntimedTurnLimit, uuid.New()))
	s.Delete("missing")
	assert.Equal(t, 1, changes)

	s.Delete("a")
	assert.Equal(t, 2, changes)
}

func TestStoreEntries(t *testing.T) {
	s := NewRoomStore()
	p := uuid.New()

	open := NewRoom("b-open", "", 60, p)
	require.NoError(t, s.Add(open))

	playing := NewRoom("a-playing", "pw", 30, uuid.New())
	require.NoError(t, s.Add(playing))
	_, err := playing.Join(uuid.New(), "pw")
	require.NoError(t, err)

	entries := s.Entries()
	require.Len(t, entries, 2)

	// Sorted by id for deterministic payloads.
	assert.Equal(t, "a-playing", entries[0].ID)
	assert.Equal(t, StatusPlaying, entries[0].Status)
	assert.Equal(t, 2, entries[0].PlayerCount)
	assert.True(t, entries[0].HasPassword)
	assert.Equal(t, 30, entries[0].TimeLimit)

	assert.Equal(t, "b-open", entries[1].ID)
	assert.Equal(t, StatusOpen, entries[1].Status)
	assert.Equal(t, 1, entries[1].PlayerCount)
	assert.False(t, entries[1].HasPassword)

	for _, e := range entries {
		assert.LessOrEqual(t, e.PlayerCount, 2)
	}

	// Finished rooms are never listed.
	playing.DeclareResult(playing.Participants[0], 0)
	entries = s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "b-open", entries[0].ID)
}

func TestStoreRoomsWithParticipant(t *testing.T) {
	s := NewRoomStore()
	p0 := uuid.New()
	require.NoError(t, s.Add(NewRoom("mine", "", UntimedTurnLimit, p0)))
	require.NoError(t, s.Add(NewRoom("also-mine", "", UntimedTurnLimit, p0)))
	require.NoError(t, s.Add(NewRoom("other", "", UntimedTurnLimit, uuid.New())))

	rooms := s.RoomsWithParticipant(p0)
	require.Len(t, rooms, 2)
	for _, r := range rooms {
		assert.True(t, r.HasParticipant(p0))
	}

	assert.Empty(t, s.RoomsWithParticipant(uuid.New()))
}
