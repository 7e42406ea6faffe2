// Package domain contains entity without logic, just meta-data
package domain

import (
	"strings"

	"github.com/google/uuid"
)

const MaxNameLen = 36

type (
	PlayerID string
	// ConnRef identifies one live transport connection.
	ConnRef string
)

type Player struct {
	ID     PlayerID
	Name   string
	Conn   ConnRef
	IsHost bool
}

// PlayerDTO is the roster entry sent to clients (no transport fields).
type PlayerDTO struct {
	ID     PlayerID `json:"id"`
	Name   string   `json:"name"`
	IsHost bool     `json:"isHost"`
}

// NewPlayer is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewPlayer(name string, conn ConnRef, host bool) (*Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	return &Player{
		ID:     PlayerID(uuid.NewString()),
		Name:   name,
		Conn:   conn,
		IsHost: host,
	}, nil
}

func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > MaxNameLen {
		return "", ErrInvalidName
	}
	return name, nil
}

func NewConnRef() ConnRef {
	return ConnRef(uuid.NewString())
}

func (p *Player) DTO() PlayerDTO {
	return PlayerDTO{ID: p.ID, Name: p.Name, IsHost: p.IsHost}
}
