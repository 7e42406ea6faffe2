package core

import "github.com/dkeye/WordGuess/internal/domain"

const (
	EventHostSuccess    = "host-success"
	EventJoinResult     = "join-result"
	EventStartResult    = "start-game-result"
	EventGuessResult    = "guess-result"
	EventPlayerJoined   = "player-joined"
	EventPlayerLeft     = "player-left"
	EventGameStarted    = "game-started"
	EventSpeakerChanged = "speaker-changed"
	EventNewMessage     = "new-message"
	EventGameEnded      = "game-ended"
	EventRoomClosed     = "room-closed"
	EventGameReset      = "game-reset"
	EventError          = "error"
	EventPong           = "pong"
)

type HostSuccess struct {
	RoomCode domain.RoomCode    `json:"roomCode"`
	PlayerID domain.PlayerID    `json:"playerId"`
	Players  []domain.PlayerDTO `json:"players"`
}

type JoinResult struct {
	Success  bool               `json:"success"`
	Error    string             `json:"error,omitempty"`
	Message  string             `json:"message,omitempty"`
	RoomCode domain.RoomCode    `json:"roomCode,omitempty"`
	Host     string             `json:"host,omitempty"`
	PlayerID domain.PlayerID    `json:"playerId,omitempty"`
	Players  []domain.PlayerDTO `json:"players,omitempty"`
}

type StartResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type GuessResult struct {
	PlayerID       domain.PlayerID `json:"playerId,omitempty"`
	IsCorrect      bool            `json:"isCorrect"`
	CorrectWord    string          `json:"correctWord,omitempty"`
	Rank           int             `json:"rank,omitempty"`
	AllGuessed     bool            `json:"allGuessed"`
	AlreadyGuessed bool            `json:"alreadyGuessed,omitempty"`
	Message        string          `json:"message,omitempty"`
}

type PlayerJoined struct {
	Player  domain.PlayerDTO   `json:"player"`
	Players []domain.PlayerDTO `json:"players"`
}

type PlayerLeft struct {
	PlayerID domain.PlayerID    `json:"playerId"`
	Players  []domain.PlayerDTO `json:"players"`
}

type GameStarted struct {
	Category            string                  `json:"category"`
	Words               []domain.WordAssignment `json:"words"`
	CurrentSpeakerIndex int                     `json:"currentSpeakerIndex"`
	Players             []domain.PlayerDTO      `json:"players"`
}

type SpeakerChanged struct {
	CurrentSpeakerIndex int             `json:"currentSpeakerIndex"`
	PlayerID            domain.PlayerID `json:"playerId"`
}

type GameEnded struct {
	Ranking []domain.GuessEntry `json:"ranking"`
}

type Notice struct {
	Message string `json:"message"`
}

// ErrorReply is the generic private failure for events without a dedicated result.
type ErrorReply struct {
	Request string `json:"request"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
