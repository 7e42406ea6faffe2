package domain

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room full")
	ErrNameTaken           = errors.New("name taken")
	ErrInvalidName         = errors.New("invalid name")
	ErrInvalidMaxPlayers   = errors.New("invalid max players")
	ErrNotHost             = errors.New("not host")
	ErrInsufficientPlayers = errors.New("insufficient players")
	ErrInsufficientWords   = errors.New("insufficient words")
	ErrRoundInProgress     = errors.New("round in progress")
	ErrNotPlaying          = errors.New("not playing")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrNoEligibleSpeaker   = errors.New("no eligible speaker")
	ErrAlreadyInRoom       = errors.New("already in room")
	ErrCapacityExhausted   = errors.New("room code capacity exhausted")
	ErrRateLimited         = errors.New("rate limited")
	ErrBadPayload          = errors.New("bad payload")
	ErrInternal            = errors.New("internal error")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrRoomNotFound, "room_not_found"},
	{ErrRoomFull, "room_full"},
	{ErrNameTaken, "name_taken"},
	{ErrInvalidName, "invalid_name"},
	{ErrInvalidMaxPlayers, "invalid_max_players"},
	{ErrNotHost, "not_host"},
	{ErrInsufficientPlayers, "insufficient_players"},
	{ErrInsufficientWords, "insufficient_words"},
	{ErrRoundInProgress, "round_in_progress"},
	{ErrNotPlaying, "not_playing"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrNoEligibleSpeaker, "no_eligible_speaker"},
	{ErrAlreadyInRoom, "already_in_room"},
	{ErrCapacityExhausted, "capacity_exhausted"},
	{ErrRateLimited, "rate_limited"},
	{ErrBadPayload, "bad_payload"},
}

// ErrorCode maps err to the code sent on the wire.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
