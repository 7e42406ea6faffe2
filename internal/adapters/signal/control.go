package signal

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/WordGuess/internal/app"
	"github.com/dkeye/WordGuess/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"
)

// inbound is the union of every client event's fields.
type inbound struct {
	Type       string          `json:"type"`
	RoomCode   string          `json:"roomCode"`
	Username   string          `json:"username"`
	MaxPlayers json.RawMessage `json:"maxPlayers"`
	Category   string          `json:"category"`
	PlayerID   string          `json:"playerId"`
	Guess      string          `json:"guess"`
	Message    string          `json:"message"`
}

func (ctl *SignalWSController) handleSignal(ref domain.ConnRef, limiter *rate.Limiter, data []byte) {
	var env inbound
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(ref)).Msg("bad json")
		ctl.Orch.Reject(ref, "", domain.ErrBadPayload)
		return
	}
	if !limiter.Allow() {
		ctl.Orch.Reject(ref, env.Type, domain.ErrRateLimited)
		return
	}

	orch := ctl.Orch
	switch env.Type {
	case app.RequestHostGame:
		n, err := parseMaxPlayers(env.MaxPlayers)
		if err != nil {
			orch.Reject(ref, env.Type, err)
			return
		}
		orch.HostGame(ref, env.Username, n, env.Category)
	case app.RequestJoinGame:
		orch.JoinGame(ref, env.RoomCode, env.Username)
	case app.RequestStartGame:
		orch.StartGame(ref, env.RoomCode)
	case app.RequestSubmitGuess:
		orch.SubmitGuess(ref, env.RoomCode, domain.PlayerID(env.PlayerID), env.Guess)
	case app.RequestSkipTurn:
		orch.SkipTurn(ref, env.RoomCode)
	case app.RequestSendMessage:
		orch.SendMessage(ref, env.RoomCode, env.Username, env.Message)
	case app.RequestPlayAgain:
		orch.PlayAgain(ref, env.RoomCode)
	case app.RequestPing:
		orch.Ping(ref)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		orch.Reject(ref, env.Type, domain.ErrBadPayload)
	}
}

// parseMaxPlayers accepts a JSON number or a numeric string.
func parseMaxPlayers(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, domain.ErrInvalidMaxPlayers
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidMaxPlayers, err)
	}
	switch v.(type) {
	case float64, string:
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", domain.ErrInvalidMaxPlayers, v)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidMaxPlayers, err)
	}
	if n <= 0 {
		return 0, domain.ErrInvalidMaxPlayers
	}
	return n, nil
}
