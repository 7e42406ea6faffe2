package app

import (
	"slices"
	"strings"
	"sync"

	"github.com/dkeye/WordGuess/internal/core"
	"github.com/dkeye/WordGuess/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomRegistry owns every live room and the connection -> room reverse index.
// Lock order is registry then room; the registry lock is never held while
// calling into a Room.
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomCode]*core.Room
	byConn map[domain.ConnRef]domain.RoomCode

	Codes *core.CodeGenerator
	// Options is handed to every new room; Words must be set.
	Options core.Options
	// MaxRoomSize caps maxPlayers at creation. Zero means no cap.
	MaxRoomSize int
}

func NewRoomRegistry(words core.WordSource, maxRoomSize int) *RoomRegistry {
	return &RoomRegistry{
		rooms:       make(map[domain.RoomCode]*core.Room),
		byConn:      make(map[domain.ConnRef]domain.RoomCode),
		Codes:       core.NewCodeGenerator(),
		Options:     core.Options{Words: words},
		MaxRoomSize: maxRoomSize,
	}
}

// Create builds a waiting room with the caller as its only player and host.
func (r *RoomRegistry) Create(hostName string, conn domain.ConnRef, maxPlayers int, category string) (*core.Room, error) {
	if maxPlayers <= 0 || (r.MaxRoomSize > 0 && maxPlayers > r.MaxRoomSize) {
		return nil, domain.ErrInvalidMaxPlayers
	}
	host, err := domain.NewPlayer(hostName, conn, true)
	if err != nil {
		return nil, err
	}
	category = strings.ToLower(strings.TrimSpace(category))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byConn[conn]; ok {
		return nil, domain.ErrAlreadyInRoom
	}
	code, err := r.Codes.Generate(func(c domain.RoomCode) bool {
		_, ok := r.rooms[c]
		return ok
	})
	if err != nil {
		return nil, err
	}
	room, err := core.NewRoom(code, host, maxPlayers, category, r.Options)
	if err != nil {
		return nil, err
	}
	r.rooms[code] = room
	r.byConn[conn] = code
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Str("host", host.Name).Int("max_players", maxPlayers).Msg("room created")
	return room, nil
}

// Lookup is an exact match; callers normalize codes first.
func (r *RoomRegistry) Lookup(code domain.RoomCode) (*core.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// Remove drops the room and every connection bound to it. Idempotent.
func (r *RoomRegistry) Remove(code domain.RoomCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[code]; !ok {
		return false
	}
	delete(r.rooms, code)
	for conn, c := range r.byConn {
		if c == code {
			delete(r.byConn, conn)
		}
	}
	log.Info().Str("module", "app.rooms").Str("room", string(code)).Msg("room removed")
	return true
}

// Bind records conn as a member of code. A code that is no longer
// registered is ignored so a join racing a close leaves no stale entry.
func (r *RoomRegistry) Bind(conn domain.ConnRef, code domain.RoomCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[code]; !ok {
		return false
	}
	r.byConn[conn] = code
	return true
}

func (r *RoomRegistry) Unbind(conn domain.ConnRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byConn, conn)
}

// FindByConnection returns the room conn is playing in and its player record.
func (r *RoomRegistry) FindByConnection(conn domain.ConnRef) (*core.Room, domain.Player, bool) {
	r.mu.RLock()
	code, ok := r.byConn[conn]
	room := r.rooms[code]
	r.mu.RUnlock()
	if !ok || room == nil {
		return nil, domain.Player{}, false
	}
	p, ok := room.PlayerByConn(conn)
	if !ok {
		return nil, domain.Player{}, false
	}
	return room, p, true
}

// List returns a snapshot of every room ordered by code.
func (r *RoomRegistry) List() []domain.RoomInfo {
	r.mu.RLock()
	rooms := make([]*core.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	out := make([]domain.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Info())
	}
	slices.SortFunc(out, func(a, b domain.RoomInfo) int { return strings.Compare(string(a.Code), string(b.Code)) })
	return out
}

func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
