// internal/game/room.go
package game

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is a room's lifecycle stage. A finished room is deleted from its
// registry immediately; there is no stored terminal state.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseFinished
)

// Room holds the complete authoritative state of one match. All mutation
// goes through the transition methods below, each of which serializes on
// Mu, so no two events for the same room are ever mid-processing at once.
// Rooms are otherwise independent and run concurrently.
type Room struct {
	ID               string
	AccessSecret     string
	TurnLimitSeconds int

	// Participants is fixed at join order: index 0 moves first. Length is
	// 1 while waiting and exactly 2 while playing.
	Participants []uuid.UUID

	// Board is append-only for the lifetime of the room.
	Board      []Piece
	TurnOwner  int
	PairStreak [2]int
	Phase      Phase

	// RemainingSeconds is meaningful only while playing and timed.
	RemainingSeconds int

	// StrictWins makes the server recompute pair streaks and re-verify
	// declared wins from the board instead of trusting the mover's claims.
	StrictWins bool

	// TickInterval is how often the countdown decrements. One second in
	// production; tests shorten it.
	TickInterval time.Duration

	Mu sync.Mutex

	// timerGen increments on every timer start and cancel so a stale
	// countdown goroutine can never act after it was superseded.
	timerGen    int
	timerCancel context.CancelFunc

	// BroadcastFn sends an event to every participant's connection. It is
	// invoked with Mu held so emissions for a room keep event order; it
	// must enqueue and return without re-entering the room.
	BroadcastFn func(ev Event)

	// UnicastFn sends an event to a single connection. Same contract as
	// BroadcastFn: called with Mu held, enqueue only.
	UnicastFn func(conn uuid.UUID, ev Event)

	// OnFinished runs after the terminal broadcast and must remove the
	// room from its registry.
	OnFinished func(r *Room)
}

// NewRoom builds a waiting room with its creator as participant 0.
func NewRoom(id, accessSecret string, turnLimitSeconds int, creator uuid.UUID) *Room {
	return &Room{
		ID:               id,
		AccessSecret:     accessSecret,
		TurnLimitSeconds: turnLimitSeconds,
		Participants:     []uuid.UUID{creator},
		Board:            []Piece{},
		Phase:            PhaseWaiting,
		TickInterval:     time.Second,
	}
}

// Join adds the second participant and starts play. It returns the new
// participant's index (always 1) or a typed error for the wire.
func (r *Room) Join(conn uuid.UUID, secret string) (int, error) {
	r.Mu.Lock()
	if r.Phase != PhaseWaiting || len(r.Participants) >= 2 {
		r.Mu.Unlock()
		return 0, errRoomFull(r.ID)
	}
	if r.Participants[0] == conn {
		r.Mu.Unlock()
		return 0, errRoomFull(r.ID)
	}
	if !secretsEqual(r.AccessSecret, secret) {
		r.Mu.Unlock()
		return 0, errWrongSecret(r.ID)
	}
	r.Participants = append(r.Participants, conn)
	r.Phase = PhasePlaying
	r.TurnOwner = 0
	r.Mu.Unlock()
	return 1, nil
}

// BeginPlay announces the match and arms the first countdown. Called once
// by the handler after the join reply so gameStart never precedes
// roomJoined on the joiner's wire.
func (r *Room) BeginPlay() {
	r.Mu.Lock()
	if r.Phase != PhasePlaying {
		r.Mu.Unlock()
		return
	}
	r.broadcast(Event{Type: EventGameStart, RoomID: r.ID})
	r.startTurnTimerLocked()
	r.Mu.Unlock()
}

// ApplyMove validates and applies a move claim. Invalid claims are dropped
// with no reply and no broadcast; the sender gets no oracle distinguishing
// wrong-turn from occupied from out-of-bounds. Returns whether the move
// was applied.
func (r *Room) ApplyMove(conn uuid.UUID, x, y, orientation int, claimedPairs [2]int) bool {
	r.Mu.Lock()
	if r.Phase != PhasePlaying {
		r.Mu.Unlock()
		return false
	}
	mover := r.TurnOwner
	if r.Participants[mover] != conn {
		r.Mu.Unlock()
		return false
	}
	if !InBounds(x, y) || !ValidOrientation(orientation) || Occupied(r.Board, x, y) {
		r.Mu.Unlock()
		return false
	}

	move := Piece{X: x, Y: y, Orientation: orientation, Player: mover}
	if r.StrictWins {
		special := IsSpecialMove(move, LastPieceOf(r.Board, 1-mover))
		next := NextPairStreak(r.PairStreak[mover], special)
		if next > MaxPairStreak {
			r.Mu.Unlock()
			return false
		}
		r.PairStreak[mover] = next
	} else {
		// Baseline protocol: adopt the mover's claimed counters, but an
		// out-of-range claim is an illegal streak and is dropped.
		if claimedPairs[0] < 0 || claimedPairs[0] > MaxPairStreak ||
			claimedPairs[1] < 0 || claimedPairs[1] > MaxPairStreak {
			r.Mu.Unlock()
			return false
		}
		r.PairStreak = claimedPairs
	}

	r.Board = append(r.Board, move)
	r.TurnOwner = 1 - mover
	pairs := r.PairStreak
	r.broadcast(Event{
		Type:             EventMoveMade,
		RoomID:           r.ID,
		Piece:            &move,
		NextTurn:         intp(r.TurnOwner),
		ConsecutivePairs: &pairs,
	})
	r.startTurnTimerLocked()
	r.Mu.Unlock()
	return true
}

// DeclareResult ends the game on a participant's win claim. In strict
// mode the claim is re-verified against the board and silently dropped if
// it does not hold.
func (r *Room) DeclareResult(conn uuid.UUID, winner int) {
	r.Mu.Lock()
	if r.Phase != PhasePlaying || !r.hasParticipantLocked(conn) {
		r.Mu.Unlock()
		return
	}
	if winner != 0 && winner != 1 {
		r.Mu.Unlock()
		return
	}
	if r.StrictWins && !HasWin(r.Board, winner) {
		r.Mu.Unlock()
		return
	}
	done := r.finishLocked(winner, ReasonCheckmate)
	r.Mu.Unlock()
	done()
}

// HandleDisconnect tears the room down when any participant's connection
// drops: no grace period, no reconnection window. The remaining
// participant, if any, is notified.
func (r *Room) HandleDisconnect(conn uuid.UUID) {
	r.Mu.Lock()
	if r.Phase == PhaseFinished || !r.hasParticipantLocked(conn) {
		r.Mu.Unlock()
		return
	}
	r.cancelTimerLocked()
	r.Phase = PhaseFinished
	for _, p := range r.Participants {
		if p != conn {
			r.unicast(p, Event{Type: EventPlayerLeft, RoomID: r.ID})
		}
	}
	r.Mu.Unlock()

	if r.OnFinished != nil {
		r.OnFinished(r)
	}
}

// HasParticipant reports whether conn is bound to this room.
func (r *Room) HasParticipant(conn uuid.UUID) bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.hasParticipantLocked(conn)
}

func (r *Room) hasParticipantLocked(conn uuid.UUID) bool {
	for _, p := range r.Participants {
		if p == conn {
			return true
		}
	}
	return false
}

// finishLocked moves the room to its terminal phase and enqueues the
// gameOver broadcast while the lock is still held, so no later event for
// this room can slip an emission in front of it. The returned step runs
// after unlock: registry deletion fans out across room locks and must not
// nest inside this one.
func (r *Room) finishLocked(winner int, reason string) func() {
	r.cancelTimerLocked()
	r.Phase = PhaseFinished
	r.broadcast(Event{Type: EventGameOver, RoomID: r.ID, Winner: intp(winner), Reason: reason})
	return func() {
		if r.OnFinished != nil {
			r.OnFinished(r)
		}
	}
}

func (r *Room) broadcast(ev Event) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

func (r *Room) unicast(conn uuid.UUID, ev Event) {
	if r.UnicastFn != nil {
		r.UnicastFn(conn, ev)
	}
}

// secretsEqual compares the room secret against the supplied one in
// constant time. An empty room secret means the room is public.
func secretsEqual(roomSecret, supplied string) bool {
	if roomSecret == "" {
		return true
	}
	if len(roomSecret) != len(supplied) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(roomSecret), []byte(supplied)) == 1
}
