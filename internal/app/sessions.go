package app

import (
	"context"
	"sync"

	"github.com/dkeye/WordGuess/internal/core"
	"github.com/dkeye/WordGuess/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Signal core.SignalConnection
	Cancel context.CancelFunc
}

// Sessions maps live connections to their outbound transport.
type Sessions struct {
	mu      sync.RWMutex
	entries map[domain.ConnRef]*sessionEntry
}

func NewSessions() *Sessions {
	return &Sessions{entries: make(map[domain.ConnRef]*sessionEntry)}
}

func (s *Sessions) Bind(conn domain.ConnRef, sig core.SignalConnection, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[conn] = &sessionEntry{Signal: sig, Cancel: cancel}
	log.Debug().Str("module", "app.sessions").Str("conn", string(conn)).Msg("bound signal")
}

func (s *Sessions) Get(conn domain.ConnRef) (core.SignalConnection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[conn]; ok {
		return e.Signal, true
	}
	return nil, false
}

func (s *Sessions) Unbind(conn domain.ConnRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[conn]; !ok {
		return false
	}
	delete(s.entries, conn)
	log.Debug().Str("module", "app.sessions").Str("conn", string(conn)).Msg("unbind signal")
	return true
}

// Kick cancels the session and closes its transport. The read loop then
// reports an ordinary disconnect.
func (s *Sessions) Kick(conn domain.ConnRef) bool {
	s.mu.RLock()
	e, ok := s.entries[conn]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	e.Signal.Close()
	log.Info().Str("module", "app.sessions").Str("conn", string(conn)).Msg("kicked session")
	return true
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
