package domain

import (
	"strings"
	"time"
)

type RoomCode string

// NormalizeCode upper-cases client input; stored codes are always upper-case.
func NormalizeCode(raw string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(raw)))
}

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusEnded   Status = "ended"
)

type WordAssignment struct {
	PlayerID PlayerID `json:"playerId"`
	Word     string   `json:"word"`
}

// GuessEntry records one correct submission. Name is captured at guess time
// so a ranking survives the player leaving.
type GuessEntry struct {
	PlayerID PlayerID  `json:"playerId"`
	Name     string    `json:"playerName"`
	Rank     int       `json:"rank"`
	Time     time.Time `json:"time"`
}

type ChatEntry struct {
	ID     int64     `json:"id"`
	Author string    `json:"username"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
}

// RoomInfo is a read-only view for the REST surface.
type RoomInfo struct {
	Code        RoomCode    `json:"code"`
	Host        string      `json:"host"`
	Category    string      `json:"category"`
	Status      Status      `json:"status"`
	MaxPlayers  int         `json:"maxPlayers"`
	PlayerCount int         `json:"playerCount"`
	Players     []PlayerDTO `json:"players"`
}
