// internal/game/errors.go
package game

import "fmt"

// ErrorKind is the machine-readable error class surfaced to the
// originating connection. Kinds are never broadcast.
type ErrorKind string

const (
	KindDuplicateRoomID ErrorKind = "DuplicateRoomId"
	KindInvalidRoomID   ErrorKind = "InvalidRoomId"
	KindRoomNotFound    ErrorKind = "RoomNotFound"
	KindRoomFull        ErrorKind = "RoomFull"
	KindWrongSecret     ErrorKind = "WrongSecret"
)

// RoomError carries a wire error kind alongside a human-readable message.
type RoomError struct {
	Kind ErrorKind
	msg  string
}

func (e *RoomError) Error() string { return e.msg }

// WireEvent renders the error as a unicast error event.
func (e *RoomError) WireEvent() Event {
	return Event{Type: EventError, Kind: string(e.Kind), Message: e.msg}
}

// AsRoomError extracts a *RoomError from err, wrapping unknown errors so
// handlers always have a kind to put on the wire.
func AsRoomError(err error) *RoomError {
	if re, ok := err.(*RoomError); ok {
		return re
	}
	return &RoomError{Kind: "Internal", msg: err.Error()}
}

func errDuplicateRoomID(id string) error {
	return &RoomError{Kind: KindDuplicateRoomID, msg: fmt.Sprintf("room %q already exists", id)}
}

func errInvalidRoomID(id string) error {
	return &RoomError{Kind: KindInvalidRoomID, msg: fmt.Sprintf("room id %q must be 1-%d characters", id, maxRoomIDLen)}
}

func errRoomNotFound(id string) error {
	return &RoomError{Kind: KindRoomNotFound, msg: fmt.Sprintf("room %q not found", id)}
}

func errRoomFull(id string) error {
	return &RoomError{Kind: KindRoomFull, msg: fmt.Sprintf("room %q is full", id)}
}

func errWrongSecret(id string) error {
	return &RoomError{Kind: KindWrongSecret, msg: fmt.Sprintf("wrong password for room %q", id)}
}
