// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/landolt/gomoku-server/internal/auth"
	"github.com/landolt/gomoku-server/internal/game"
	"github.com/landolt/gomoku-server/internal/middleware"
	"github.com/sirupsen/logrus"
)

const sessionCookieName = "session_token"

// ClientMessage is the inbound message shape on the session socket.
type ClientMessage struct {
	Type             string      `json:"type"`
	RoomID           string      `json:"roomId"`
	AccessSecret     string      `json:"accessSecret,omitempty"`
	TurnLimitSeconds int         `json:"turnLimitSeconds,omitempty"`
	Piece            *game.Piece `json:"piece,omitempty"`
	ConsecutivePairs *[2]int     `json:"consecutivePairs,omitempty"`
	Winner           *int        `json:"winner,omitempty"`
}

// client is one live session connection with its outbound queue. replaced
// is set when a newer connection takes over the session id; the superseded
// connection's teardown must then leave the identity's rooms alone.
type client struct {
	id       uuid.UUID
	out      chan game.Event
	cancel   context.CancelFunc
	replaced atomic.Bool
}

// send enqueues an event without blocking room logic; a consumer that
// cannot drain its queue loses events rather than stalling every room it
// shares a broadcast with.
func (cl *client) send(ev game.Event, logger *logrus.Logger) {
	select {
	case cl.out <- ev:
	default:
		logger.Warnf("dropping %s event for slow session %s", ev.Type, cl.id)
	}
}

// SessionWSHandler upgrades the connection, establishes a guest session
// identity, pushes the initial lobby view, and runs the read loop. When
// the loop exits the connection's room, if any, is torn down.
func (s *GameServer) SessionWSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Cookie must be set before Accept writes the 101 response.
		connID, err := s.ensureGuestSession(w, r)
		if err != nil {
			s.Logger.Warnf("session bootstrap failed for %s: %v", r.RemoteAddr, err)
			http.Error(w, "session bootstrap failed", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"gomoku"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			s.Logger.Warnf("websocket accept error from %s: %v", r.RemoteAddr, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		if c.Subprotocol() != "gomoku" {
			c.Close(BadSubprotocolError, "client must speak the gomoku subprotocol")
			return
		}
		middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, connID.String())

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		cl := &client{id: connID, out: make(chan game.Event, 16), cancel: cancel}
		s.register(cl)

		go writePump(ctx, c, cl, s.Logger)

		// Every newly arriving connection gets the current lobby once.
		entries := s.Rooms.Entries()
		cl.send(game.Event{Type: game.EventUpdateRoomList, Rooms: &entries}, s.Logger)

		readErr := s.readLoop(ctx, c, cl)

		s.unregister(cl)
		if cl.replaced.Load() {
			// The identity lives on over a newer connection; its rooms
			// stay up.
			middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, connID.String(), readErr)
			c.Close(SessionReplacedError, "session resumed on a newer connection")
			return
		}
		s.handleDisconnect(connID)
		middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, connID.String(), readErr)
		c.Close(websocket.StatusNormalClosure, "session closed")
	}
}

// ensureGuestSession returns the connection's stable identity, minting a
// fresh guest token when the cookie is absent or invalid.
func (s *GameServer) ensureGuestSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := auth.VerifySessionToken(cookie.Value); err == nil {
			return id, nil
		}
	}
	id, token, err := auth.NewSessionToken()
	if err != nil {
		return uuid.Nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// readLoop delivers inbound events one at a time per connection, in
// arrival order.
func (s *GameServer) readLoop(ctx context.Context, c *websocket.Conn, cl *client) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			s.Logger.Warnf("ignoring non-text frame from session %s", cl.id)
			continue
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.Logger.Warnf("malformed message from session %s: %v", cl.id, err)
			continue
		}
		s.handleMessage(cl.id, msg)
	}
}

// handleMessage routes one inbound event to the room state machine.
func (s *GameServer) handleMessage(connID uuid.UUID, msg ClientMessage) {
	switch msg.Type {
	case "create":
		s.handleCreate(connID, msg)
	case "join":
		s.handleJoin(connID, msg)
	case "move":
		s.handleMove(connID, msg)
	case "declareResult":
		s.handleDeclareResult(connID, msg)
	default:
		s.Logger.Warnf("unknown message type %q from session %s", msg.Type, connID)
	}
}

func (s *GameServer) handleCreate(connID uuid.UUID, msg ClientMessage) {
	limit := msg.TurnLimitSeconds
	if limit == 0 {
		limit = game.DefaultTurnLimitSeconds
	}
	room := game.NewRoom(msg.RoomID, msg.AccessSecret, limit, connID)
	s.attach(room)
	if err := s.Rooms.Add(room); err != nil {
		s.sendTo(connID, game.AsRoomError(err).WireEvent())
		return
	}
	s.Logger.Infof("session %s created room %q (limit %ds)", connID, room.ID, limit)
	s.sendTo(connID, game.Event{
		Type:        game.EventRoomJoined,
		RoomID:      room.ID,
		PlayerIndex: ip(0),
		TimeLimit:   ip(limit),
	})
}

func (s *GameServer) handleJoin(connID uuid.UUID, msg ClientMessage) {
	room, err := s.Rooms.Get(msg.RoomID)
	if err != nil {
		s.sendTo(connID, game.AsRoomError(err).WireEvent())
		return
	}
	idx, err := room.Join(connID, msg.AccessSecret)
	if err != nil {
		s.sendTo(connID, game.AsRoomError(err).WireEvent())
		return
	}
	s.Logger.Infof("session %s joined room %q as player %d", connID, room.ID, idx)
	s.sendTo(connID, game.Event{
		Type:        game.EventRoomJoined,
		RoomID:      room.ID,
		PlayerIndex: ip(idx),
		TimeLimit:   ip(room.TurnLimitSeconds),
	})
	room.BeginPlay()
	// Joining changes room status without touching the registry map, so
	// push the lobby explicitly.
	s.BroadcastLobby()
}

func (s *GameServer) handleMove(connID uuid.UUID, msg ClientMessage) {
	room, ok := s.Rooms.Lookup(msg.RoomID)
	if !ok || msg.Piece == nil {
		return
	}
	var pairs [2]int
	if msg.ConsecutivePairs != nil {
		pairs = *msg.ConsecutivePairs
	}
	room.ApplyMove(connID, msg.Piece.X, msg.Piece.Y, msg.Piece.Orientation, pairs)
}

func (s *GameServer) handleDeclareResult(connID uuid.UUID, msg ClientMessage) {
	room, ok := s.Rooms.Lookup(msg.RoomID)
	if !ok || msg.Winner == nil {
		return
	}
	room.DeclareResult(connID, *msg.Winner)
}

// handleDisconnect tears down every room the departing connection occupies.
func (s *GameServer) handleDisconnect(connID uuid.UUID) {
	for _, room := range s.Rooms.RoomsWithParticipant(connID) {
		room.HandleDisconnect(connID)
	}
}

// writePump drains the client's outbound queue onto the socket.
func writePump(ctx context.Context, c *websocket.Conn, cl *client, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-cl.out:
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Errorf("failed to marshal %s event for session %s: %v", ev.Type, cl.id, err)
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("write to session %s failed: %v", cl.id, err)
				return
			}
		}
	}
}

func ip(v int) *int { return &v }
