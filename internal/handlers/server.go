// internal/handlers/server.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/landolt/gomoku-server/internal/game"
	"github.com/landolt/gomoku-server/internal/middleware"
	"github.com/sirupsen/logrus"
)

// GameServer owns the room registry and the set of live session
// connections, and fans the lobby view out to all of them whenever the
// registry changes.
type GameServer struct {
	Rooms  *game.RoomStore
	Logger *logrus.Logger

	// StrictWins is copied onto every room at creation; see the room
	// engine for what it hardens.
	StrictWins bool

	mu      sync.Mutex
	clients map[uuid.UUID]*client
}

// NewGameServer builds a server with an empty registry wired to the lobby
// broadcaster.
func NewGameServer(logger *logrus.Logger) *GameServer {
	s := &GameServer{
		Rooms:   game.NewRoomStore(),
		Logger:  logger,
		clients: make(map[uuid.UUID]*client),
	}
	s.Rooms.OnChange = s.BroadcastLobby
	return s
}

// RegisterRoutes wires the HTTP surface: health, REST lobby snapshot, and
// the session WebSocket.
func (s *GameServer) RegisterRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LogMiddleware(s.Logger))
	r.Use(corsMiddleware)

	r.HandleFunc("/", s.HealthHandler)
	r.HandleFunc("/rooms", s.ListRoomsHandler)
	r.HandleFunc("/ws", s.SessionWSHandler())

	return r
}

// HealthHandler answers liveness probes.
func (s *GameServer) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ListRoomsHandler serves the same sanitized lobby view the socket pushes,
// for plain HTTP consumers.
func (s *GameServer) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Rooms.Entries()); err != nil {
		s.Logger.Warnf("failed to encode room list: %v", err)
	}
}

// BroadcastLobby pushes the current lobby view to every connection. Runs
// on every registry mutation and on join-driven phase changes.
func (s *GameServer) BroadcastLobby() {
	entries := s.Rooms.Entries()
	ev := game.Event{Type: game.EventUpdateRoomList, Rooms: &entries}

	s.mu.Lock()
	targets := make([]*client, 0, len(s.clients))
	for _, cl := range s.clients {
		targets = append(targets, cl)
	}
	s.mu.Unlock()

	for _, cl := range targets {
		cl.send(ev, s.Logger)
	}
}

// attach wires a freshly built room into this server's transport: room
// broadcasts resolve to live client channels, and finishing a room deletes
// it from the registry (which cascades into a lobby broadcast).
func (s *GameServer) attach(r *game.Room) {
	r.StrictWins = s.StrictWins
	r.BroadcastFn = func(ev game.Event) {
		// Runs with the room lock held: read Participants directly and
		// enqueue only, never re-enter the room.
		for _, p := range r.Participants {
			s.sendTo(p, ev)
		}
	}
	r.UnicastFn = s.sendTo
	r.OnFinished = func(r *game.Room) {
		s.Rooms.Delete(r.ID)
	}
}

func (s *GameServer) register(cl *client) {
	s.mu.Lock()
	if old, ok := s.clients[cl.id]; ok {
		// A newer connection takes over the session id; the old one is
		// closed with SessionReplacedError and must not tear down rooms.
		old.replaced.Store(true)
		old.cancel()
	}
	s.clients[cl.id] = cl
	s.mu.Unlock()
}

func (s *GameServer) unregister(cl *client) {
	s.mu.Lock()
	if cur, ok := s.clients[cl.id]; ok && cur == cl {
		delete(s.clients, cl.id)
	}
	s.mu.Unlock()
}

func (s *GameServer) sendTo(id uuid.UUID, ev game.Event) {
	s.mu.Lock()
	cl, ok := s.clients[id]
	s.mu.Unlock()
	if ok {
		cl.send(ev, s.Logger)
	}
}

// corsMiddleware allows any origin; WebSocket upgrades pass straight
// through untouched.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
