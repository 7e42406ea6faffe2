package core

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/WordGuess/internal/domain"
	"github.com/rs/zerolog/log"
)

const minPlayers = 2

// Options carries the collaborators a room needs. Zero Shuffle/Now use
// math/rand/v2 and time.Now.
type Options struct {
	Words   WordSource
	Shuffle func([]string)
	Now     func() time.Time
}

// Room is one game instance. It is safe for concurrent use: every operation
// holds mu for its whole mutation and computes its recipients under it.
// It never touches transport resources.
type Room struct {
	mu sync.Mutex

	code       domain.RoomCode
	host       *domain.Player
	players    []*domain.Player
	maxPlayers int
	category   string
	phase      phase
	chat       []domain.ChatEntry
	lastChatID int64
	closed     bool

	words   WordSource
	shuffle func([]string)
	now     func() time.Time
}

func NewRoom(code domain.RoomCode, host *domain.Player, maxPlayers int, category string, opts Options) (*Room, error) {
	if maxPlayers <= 0 {
		return nil, domain.ErrInvalidMaxPlayers
	}
	if host == nil || opts.Words == nil {
		return nil, fmt.Errorf("%w: room needs a host and a word source", domain.ErrInternal)
	}
	host.IsHost = true
	r := &Room{
		code:       code,
		host:       host,
		players:    []*domain.Player{host},
		maxPlayers: maxPlayers,
		category:   category,
		phase:      waitingPhase{},
		words:      opts.Words,
		shuffle:    opts.Shuffle,
		now:        opts.Now,
	}
	if r.shuffle == nil {
		r.shuffle = func(ws []string) {
			rand.Shuffle(len(ws), func(i, j int) { ws[i], ws[j] = ws[j], ws[i] })
		}
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

func (r *Room) Code() domain.RoomCode { return r.code }

func (r *Room) Info() domain.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.RoomInfo{
		Code:        r.code,
		Host:        r.host.Name,
		Category:    r.category,
		Status:      r.phase.status(),
		MaxPlayers:  r.maxPlayers,
		PlayerCount: len(r.players),
		Players:     r.rosterLocked(),
	}
}

func (r *Room) Roster() []domain.PlayerDTO {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

func (r *Room) Status() domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase.status()
}

// PlayerByConn returns a copy of the member bound to conn.
func (r *Room) PlayerByConn(conn domain.ConnRef) (domain.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexByConn(conn); i >= 0 {
		return *r.players[i], true
	}
	return domain.Player{}, false
}

func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Join appends a non-host player.
func (r *Room) Join(name string, conn domain.ConnRef) (domain.Player, Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.Player{}, Outcome{}, domain.ErrRoomNotFound
	}
	if len(r.players) >= r.maxPlayers {
		return domain.Player{}, Outcome{}, domain.ErrRoomFull
	}
	if _, ok := r.phase.(*playingPhase); ok {
		return domain.Player{}, Outcome{}, domain.ErrRoundInProgress
	}
	p, err := domain.NewPlayer(name, conn, false)
	if err != nil {
		return domain.Player{}, Outcome{}, err
	}
	for _, q := range r.players {
		if q.Name == p.Name {
			return domain.Player{}, Outcome{}, domain.ErrNameTaken
		}
	}
	if r.indexByConn(conn) >= 0 {
		return domain.Player{}, Outcome{}, domain.ErrAlreadyInRoom
	}

	existing := r.connsLocked()
	r.players = append(r.players, p)
	roster := r.rosterLocked()

	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("player", string(p.ID)).Str("name", p.Name).Msg("player joined")
	return *p, Outcome{
		Reply: &Envelope{Event: EventJoinResult, Payload: JoinResult{
			Success:  true,
			Message:  "joined",
			RoomCode: r.code,
			Host:     r.host.Name,
			PlayerID: p.ID,
			Players:  roster,
		}},
		Broadcasts: []Envelope{{
			To:      existing,
			Event:   EventPlayerJoined,
			Payload: PlayerJoined{Player: p.DTO(), Players: roster},
		}},
	}, nil
}

// Start deals one word per player and begins a round.
func (r *Room) Start(conn domain.ConnRef) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Outcome{}, domain.ErrRoomNotFound
	}
	if r.host.Conn != conn {
		return Outcome{}, domain.ErrNotHost
	}
	if _, ok := r.phase.(*playingPhase); ok {
		return Outcome{}, domain.ErrRoundInProgress
	}
	if len(r.players) < minPlayers {
		return Outcome{}, domain.ErrInsufficientPlayers
	}

	words, used := r.words.WordsFor(r.category)
	if len(words) < len(r.players) {
		return Outcome{}, fmt.Errorf("%w: category %q has %d words for %d players",
			domain.ErrInsufficientWords, used, len(words), len(r.players))
	}
	words = slices.Clone(words)
	r.shuffle(words)

	pp := &playingPhase{assignment: make(map[domain.PlayerID]string, len(r.players))}
	dealt := make([]domain.WordAssignment, 0, len(r.players))
	for i, p := range r.players {
		pp.assignment[p.ID] = words[i]
		dealt = append(dealt, domain.WordAssignment{PlayerID: p.ID, Word: words[i]})
	}
	r.phase = pp
	r.chat = nil

	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("category", used).Int("players", len(r.players)).Msg("round started")
	return Outcome{
		Reply: &Envelope{Event: EventStartResult, Payload: StartResult{Success: true}},
		Broadcasts: []Envelope{{
			To:    r.connsLocked(),
			Event: EventGameStarted,
			Payload: GameStarted{
				Category:            used,
				Words:               dealt,
				CurrentSpeakerIndex: 0,
				Players:             r.rosterLocked(),
			},
		}},
	}, nil
}

// SubmitGuess checks raw against the word assigned to id.
func (r *Room) SubmitGuess(id domain.PlayerID, raw string) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Outcome{}, domain.ErrRoomNotFound
	}
	pp, ok := r.phase.(*playingPhase)
	if !ok {
		return Outcome{}, domain.ErrNotPlaying
	}
	idx := r.indexByID(id)
	if idx < 0 {
		return Outcome{}, domain.ErrPlayerNotFound
	}
	word, ok := pp.assignment[id]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: no word assigned to player %s", domain.ErrInternal, id)
	}

	if !strings.EqualFold(strings.TrimSpace(raw), word) {
		return Outcome{Reply: &Envelope{Event: EventGuessResult, Payload: GuessResult{
			IsCorrect: false,
			Message:   "not quite, try again",
		}}}, nil
	}
	if rank, done := pp.rankOf(id); done {
		return Outcome{Reply: &Envelope{Event: EventGuessResult, Payload: GuessResult{
			PlayerID:       id,
			IsCorrect:      true,
			CorrectWord:    word,
			Rank:           rank,
			AlreadyGuessed: true,
		}}}, nil
	}

	entry := domain.GuessEntry{
		PlayerID: id,
		Name:     r.players[idx].Name,
		Rank:     len(pp.guessed) + 1,
		Time:     r.now(),
	}
	pp.guessed = append(pp.guessed, entry)
	all := r.allGuessedLocked(pp)

	out := Outcome{Broadcasts: []Envelope{{
		To:    r.connsLocked(),
		Event: EventGuessResult,
		Payload: GuessResult{
			PlayerID:    id,
			IsCorrect:   true,
			CorrectWord: word,
			Rank:        entry.Rank,
			AllGuessed:  all,
		},
	}}}
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Str("player", string(id)).Int("rank", entry.Rank).Msg("correct guess")
	if all {
		r.finishLocked(pp, &out)
	}
	return out, nil
}

// SkipTurn moves the speaker to the next player who has not finished.
// The search visits each seat at most once.
func (r *Room) SkipTurn(conn domain.ConnRef) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Outcome{}, domain.ErrRoomNotFound
	}
	pp, ok := r.phase.(*playingPhase)
	if !ok {
		return Outcome{}, domain.ErrNotPlaying
	}
	if r.indexByConn(conn) < 0 {
		return Outcome{}, domain.ErrPlayerNotFound
	}
	next, ok := r.eligibleFrom(pp, pp.speaker+1)
	if !ok {
		return Outcome{}, domain.ErrNoEligibleSpeaker
	}
	pp.speaker = next
	return Outcome{Broadcasts: []Envelope{r.speakerChangedLocked(pp)}}, nil
}

// PlayAgain returns the room to waiting. Roster and settings are kept.
func (r *Room) PlayAgain(conn domain.ConnRef) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Outcome{}, domain.ErrRoomNotFound
	}
	if r.host.Conn != conn {
		return Outcome{}, domain.ErrNotHost
	}
	r.phase = waitingPhase{}
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Msg("room reset")
	return Outcome{Broadcasts: []Envelope{{
		To:      r.connsLocked(),
		Event:   EventGameReset,
		Payload: Notice{Message: "the host is preparing a new round"},
	}}}, nil
}

// PostMessage appends to the chat log. An empty author defaults to the
// sender's display name.
func (r *Room) PostMessage(conn domain.ConnRef, author, text string) (domain.ChatEntry, Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.ChatEntry{}, Outcome{}, domain.ErrRoomNotFound
	}
	idx := r.indexByConn(conn)
	if idx < 0 {
		return domain.ChatEntry{}, Outcome{}, domain.ErrPlayerNotFound
	}
	if author == "" {
		author = r.players[idx].Name
	}
	now := r.now()
	id := now.UnixMilli()
	if id <= r.lastChatID {
		id = r.lastChatID + 1
	}
	r.lastChatID = id
	entry := domain.ChatEntry{ID: id, Author: author, Text: text, Time: now}
	r.chat = append(r.chat, entry)
	return entry, Outcome{Broadcasts: []Envelope{{
		To:      r.connsLocked(),
		Event:   EventNewMessage,
		Payload: entry,
	}}}, nil
}

// ChatLog returns a copy of the current round's messages.
func (r *Room) ChatLog() []domain.ChatEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.chat)
}

// Leave removes the member bound to conn. A departing host closes the room;
// so does the last player.
func (r *Room) Leave(conn domain.ConnRef) (domain.Player, Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.Player{}, Outcome{}, domain.ErrRoomNotFound
	}
	idx := r.indexByConn(conn)
	if idx < 0 {
		return domain.Player{}, Outcome{}, domain.ErrPlayerNotFound
	}
	p := *r.players[idx]
	r.players = slices.Delete(r.players, idx, idx+1)

	remaining := r.connsLocked()
	out := Outcome{Broadcasts: []Envelope{{
		To:      remaining,
		Event:   EventPlayerLeft,
		Payload: PlayerLeft{PlayerID: p.ID, Players: r.rosterLocked()},
	}}}
	logger := log.With().Str("module", "core.room").Str("room", string(r.code)).Str("player", string(p.ID)).Logger()

	switch {
	case p.IsHost:
		out.Broadcasts = append(out.Broadcasts, Envelope{
			To:      remaining,
			Event:   EventRoomClosed,
			Payload: Notice{Message: "the host left, the room is closed"},
		})
		r.closed = true
		out.Closed = true
		logger.Info().Msg("host left, room closed")
	case len(r.players) == 0:
		r.closed = true
		out.Closed = true
		logger.Info().Msg("last player left, room closed")
	default:
		if pp, ok := r.phase.(*playingPhase); ok {
			r.rebalanceLocked(pp, p.ID, idx, &out)
		}
		logger.Info().Int("players", len(r.players)).Msg("player left")
	}
	return p, out, nil
}

// rebalanceLocked keeps a running round consistent after the player at idx left.
func (r *Room) rebalanceLocked(pp *playingPhase, id domain.PlayerID, idx int, out *Outcome) {
	delete(pp.assignment, id)
	if r.allGuessedLocked(pp) {
		r.finishLocked(pp, out)
		return
	}
	switch {
	case idx < pp.speaker:
		pp.speaker--
	case idx == pp.speaker:
		next, ok := r.eligibleFrom(pp, idx)
		if !ok {
			next = 0
		}
		pp.speaker = next
	default:
		return
	}
	out.Broadcasts = append(out.Broadcasts, r.speakerChangedLocked(pp))
}

func (r *Room) finishLocked(pp *playingPhase, out *Outcome) {
	ranking := slices.Clone(pp.guessed)
	slices.SortStableFunc(ranking, func(a, b domain.GuessEntry) int { return a.Rank - b.Rank })
	r.phase = &endedPhase{ranking: ranking}
	out.Broadcasts = append(out.Broadcasts, Envelope{
		To:      r.connsLocked(),
		Event:   EventGameEnded,
		Payload: GameEnded{Ranking: ranking},
	})
	log.Info().Str("module", "core.room").Str("room", string(r.code)).Int("ranked", len(ranking)).Msg("round ended")
}

// eligibleFrom returns the first seat at or after start (circular) whose
// player has not guessed yet.
func (r *Room) eligibleFrom(pp *playingPhase, start int) (int, bool) {
	n := len(r.players)
	for step := range n {
		i := (start + step) % n
		if _, done := pp.rankOf(r.players[i].ID); !done {
			return i, true
		}
	}
	return 0, false
}

func (r *Room) allGuessedLocked(pp *playingPhase) bool {
	for _, p := range r.players {
		if _, done := pp.rankOf(p.ID); !done {
			return false
		}
	}
	return true
}

func (r *Room) speakerChangedLocked(pp *playingPhase) Envelope {
	return Envelope{
		To:    r.connsLocked(),
		Event: EventSpeakerChanged,
		Payload: SpeakerChanged{
			CurrentSpeakerIndex: pp.speaker,
			PlayerID:            r.players[pp.speaker].ID,
		},
	}
}

func (r *Room) rosterLocked() []domain.PlayerDTO {
	out := make([]domain.PlayerDTO, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.DTO())
	}
	return out
}

func (r *Room) connsLocked() []domain.ConnRef {
	out := make([]domain.ConnRef, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.Conn)
	}
	return out
}

func (r *Room) indexByConn(conn domain.ConnRef) int {
	return slices.IndexFunc(r.players, func(p *domain.Player) bool { return p.Conn == conn })
}

func (r *Room) indexByID(id domain.PlayerID) int {
	return slices.IndexFunc(r.players, func(p *domain.Player) bool { return p.ID == id })
}
