// internal/game/events.go
package game

// EventType names an outbound event on the session socket.
type EventType string

const (
	EventRoomJoined     EventType = "roomJoined"     // unicast to the joining connection
	EventGameStart      EventType = "gameStart"      // multicast to room
	EventMoveMade       EventType = "moveMade"       // multicast to room
	EventTimerUpdate    EventType = "timerUpdate"    // multicast to room, once per second while timed+playing
	EventGameOver       EventType = "gameOver"       // multicast to room, room deleted immediately after
	EventPlayerLeft     EventType = "playerLeft"     // unicast to each remaining participant
	EventUpdateRoomList EventType = "updateRoomList" // broadcast to every connection
	EventError          EventType = "error"          // unicast to the originating connection
)

// Game-over reasons.
const (
	ReasonCheckmate = "checkmate"
	ReasonTimeout   = "timeout"
)

// Event is the single outbound message shape. Optional fields are pointers
// so a meaningful zero (player index 0, timeLeft 0) still serializes.
type Event struct {
	Type   EventType `json:"type"`
	RoomID string    `json:"roomId,omitempty"`

	// roomJoined
	PlayerIndex *int `json:"playerIndex,omitempty"`
	TimeLimit   *int `json:"turnLimitSeconds,omitempty"`

	// moveMade
	Piece            *Piece  `json:"piece,omitempty"`
	NextTurn         *int    `json:"nextTurn,omitempty"`
	ConsecutivePairs *[2]int `json:"consecutivePairs,omitempty"`

	// timerUpdate
	TimeLeft *int `json:"timeLeft,omitempty"`
	Turn     *int `json:"turn,omitempty"`

	// gameOver
	Winner *int   `json:"winner,omitempty"`
	Reason string `json:"reason,omitempty"`

	// updateRoomList; pointer so an empty lobby still serializes as [].
	Rooms *[]LobbyEntry `json:"rooms,omitempty"`

	// error
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// LobbyEntry is the sanitized per-room view pushed to every connection.
// It is derived on demand and never stored.
type LobbyEntry struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	HasPassword bool   `json:"hasPassword"`
	Status      string `json:"status"`
	TimeLimit   int    `json:"timeLimit"`
}

// Lobby status values.
const (
	StatusOpen    = "OPEN"
	StatusFull    = "FULL"
	StatusPlaying = "PLAYING"
)

func intp(v int) *int { return &v }
