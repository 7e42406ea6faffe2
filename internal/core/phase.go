package core

import (
	"github.com/dkeye/WordGuess/internal/domain"
)

// phase is the closed set of room states. Round data only exists while
// playing or ended, so it cannot be read in the wrong state.
type phase interface {
	status() domain.Status
}

type waitingPhase struct{}

type playingPhase struct {
	assignment map[domain.PlayerID]string
	guessed    []domain.GuessEntry
	speaker    int
}

type endedPhase struct {
	ranking []domain.GuessEntry
}

func (waitingPhase) status() domain.Status  { return domain.StatusWaiting }
func (*playingPhase) status() domain.Status { return domain.StatusPlaying }
func (*endedPhase) status() domain.Status   { return domain.StatusEnded }

func (p *playingPhase) rankOf(id domain.PlayerID) (int, bool) {
	for _, g := range p.guessed {
		if g.PlayerID == id {
			return g.Rank, true
		}
	}
	return 0, false
}
