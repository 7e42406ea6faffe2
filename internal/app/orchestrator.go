package app

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/WordGuess/internal/core"
	"github.com/dkeye/WordGuess/internal/domain"
	"github.com/dkeye/WordGuess/internal/metrics"
	"github.com/rs/zerolog/log"
)

const orchModule = "app.orchestrator"

// Inbound event names.
const (
	RequestHostGame    = "host-game"
	RequestJoinGame    = "join-game"
	RequestStartGame   = "start-game"
	RequestSubmitGuess = "submit-guess"
	RequestSkipTurn    = "skip-turn"
	RequestSendMessage = "send-message"
	RequestPlayAgain   = "play-again"
	RequestPing        = "ping"
)

// Orchestrator turns inbound events into room operations and delivers
// their outcomes. It is the only place that knows both rooms and transports.
type Orchestrator struct {
	Rooms    *RoomRegistry
	Sessions *Sessions
	Policy   Policy
	Metrics  *metrics.Metrics
}

func NewOrchestrator(rooms *RoomRegistry, sessions *Sessions, policy Policy, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{Rooms: rooms, Sessions: sessions, Policy: policy, Metrics: m}
}

type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Connect registers a fresh transport.
func (o *Orchestrator) Connect(conn domain.ConnRef, sig core.SignalConnection, cancel func()) {
	o.Sessions.Bind(conn, sig, cancel)
	o.Metrics.Connections.Inc()
	log.Info().Str("module", orchModule).Str("conn", string(conn)).Msg("connected")
}

func (o *Orchestrator) HostGame(conn domain.ConnRef, name string, maxPlayers int, category string) {
	if _, _, ok := o.Rooms.FindByConnection(conn); ok {
		o.fail(conn, RequestHostGame, domain.ErrAlreadyInRoom)
		return
	}
	room, err := o.Rooms.Create(name, conn, maxPlayers, category)
	if err != nil {
		o.fail(conn, RequestHostGame, err)
		return
	}
	o.Metrics.RoomsActive.Inc()
	o.observe(RequestHostGame, nil)
	p, _ := room.PlayerByConn(conn)
	o.send(room.Code(), conn, core.EventHostSuccess, core.HostSuccess{
		RoomCode: room.Code(),
		PlayerID: p.ID,
		Players:  room.Roster(),
	})
}

func (o *Orchestrator) JoinGame(conn domain.ConnRef, rawCode, name string) {
	code := domain.NormalizeCode(rawCode)
	reject := func(err error) {
		o.observe(RequestJoinGame, err)
		o.send(code, conn, core.EventJoinResult, core.JoinResult{
			Error:   domain.ErrorCode(err),
			Message: err.Error(),
		})
	}
	if _, _, ok := o.Rooms.FindByConnection(conn); ok {
		reject(domain.ErrAlreadyInRoom)
		return
	}
	room, ok := o.Rooms.Lookup(code)
	if !ok {
		reject(domain.ErrRoomNotFound)
		return
	}
	_, out, err := room.Join(name, conn)
	if err != nil {
		reject(err)
		return
	}
	if !o.Rooms.Bind(conn, code) {
		// closed between Join and Bind; the room is gone for everyone
		reject(domain.ErrRoomNotFound)
		return
	}
	o.observe(RequestJoinGame, nil)
	o.deliver(code, conn, out)
}

func (o *Orchestrator) StartGame(conn domain.ConnRef, rawCode string) {
	code := domain.NormalizeCode(rawCode)
	err := o.withRoom(code, func(room *core.Room) (core.Outcome, error) {
		return room.Start(conn)
	}, conn)
	o.observe(RequestStartGame, err)
	if err != nil {
		o.send(code, conn, core.EventStartResult, core.StartResult{
			Error:   domain.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}
	o.Metrics.RoundsStarted.Inc()
}

// SubmitGuess resolves the player from the connection; a playerId in the
// request must match it.
func (o *Orchestrator) SubmitGuess(conn domain.ConnRef, rawCode string, playerID domain.PlayerID, guess string) {
	code := domain.NormalizeCode(rawCode)
	err := o.withRoom(code, func(room *core.Room) (core.Outcome, error) {
		p, ok := room.PlayerByConn(conn)
		if !ok || (playerID != "" && playerID != p.ID) {
			return core.Outcome{}, domain.ErrPlayerNotFound
		}
		out, err := room.SubmitGuess(p.ID, guess)
		if err == nil {
			o.Metrics.Guesses.WithLabelValues(guessOutcome(out)).Inc()
		}
		return out, err
	}, conn)
	if err != nil {
		o.fail(conn, RequestSubmitGuess, err)
		return
	}
	o.observe(RequestSubmitGuess, nil)
}

func guessOutcome(out core.Outcome) string {
	if out.Reply == nil {
		return "correct"
	}
	if gr, ok := out.Reply.Payload.(core.GuessResult); ok && gr.AlreadyGuessed {
		return "repeat"
	}
	return "incorrect"
}

func (o *Orchestrator) SkipTurn(conn domain.ConnRef, rawCode string) {
	code := domain.NormalizeCode(rawCode)
	o.quiet(RequestSkipTurn, conn, o.withRoom(code, func(room *core.Room) (core.Outcome, error) {
		return room.SkipTurn(conn)
	}, conn))
}

func (o *Orchestrator) SendMessage(conn domain.ConnRef, rawCode, author, text string) {
	code := domain.NormalizeCode(rawCode)
	err := o.withRoom(code, func(room *core.Room) (core.Outcome, error) {
		_, out, err := room.PostMessage(conn, author, text)
		return out, err
	}, conn)
	if err == nil {
		o.Metrics.Messages.Inc()
	}
	o.quiet(RequestSendMessage, conn, err)
}

func (o *Orchestrator) PlayAgain(conn domain.ConnRef, rawCode string) {
	code := domain.NormalizeCode(rawCode)
	o.quiet(RequestPlayAgain, conn, o.withRoom(code, func(room *core.Room) (core.Outcome, error) {
		return room.PlayAgain(conn)
	}, conn))
}

func (o *Orchestrator) Ping(conn domain.ConnRef) {
	o.observe(RequestPing, nil)
	o.send("", conn, core.EventPong, nil)
}

// Reject reports a failure detected before an event reached a room
// (bad payload, rate limit).
func (o *Orchestrator) Reject(conn domain.ConnRef, request string, err error) {
	o.fail(conn, request, err)
}

// Disconnect removes conn from its room, if any, and forgets the transport.
// Safe to call more than once.
func (o *Orchestrator) Disconnect(conn domain.ConnRef) {
	if o.Sessions.Unbind(conn) {
		o.Metrics.Connections.Dec()
	}
	room, _, ok := o.Rooms.FindByConnection(conn)
	o.Rooms.Unbind(conn)
	if !ok {
		return
	}
	p, out, err := room.Leave(conn)
	if err != nil {
		log.Debug().Str("module", orchModule).Err(err).Str("conn", string(conn)).Msg("disconnect: nothing to leave")
		return
	}
	log.Info().Str("module", orchModule).Str("conn", string(conn)).Str("room", string(room.Code())).Str("player", p.Name).Msg("disconnected")
	o.deliver(room.Code(), conn, out)
}

// withRoom runs op against the room and delivers its outcome. A room that
// closes because of op is removed from the registry.
func (o *Orchestrator) withRoom(code domain.RoomCode, op func(*core.Room) (core.Outcome, error), conn domain.ConnRef) error {
	room, ok := o.Rooms.Lookup(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	out, err := op(room)
	if err != nil {
		return err
	}
	o.deliver(code, conn, out)
	return nil
}

func (o *Orchestrator) fail(conn domain.ConnRef, request string, err error) {
	o.observe(request, err)
	ev := log.Debug()
	if domain.ErrorCode(err) == "internal" {
		ev = log.Error()
	}
	ev.Str("module", orchModule).Err(err).Str("conn", string(conn)).Str("request", request).Msg("request failed")
	o.send("", conn, core.EventError, core.ErrorReply{
		Request: request,
		Error:   domain.ErrorCode(err),
		Message: err.Error(),
	})
}

// quiet records an error for events whose failures are not reported to clients.
func (o *Orchestrator) quiet(request string, conn domain.ConnRef, err error) {
	o.observe(request, err)
	if err != nil {
		log.Debug().Str("module", orchModule).Err(err).Str("conn", string(conn)).Str("request", request).Msg("ignored")
	}
}

func (o *Orchestrator) observe(request string, err error) {
	result := "ok"
	if err != nil {
		result = domain.ErrorCode(err)
	}
	o.Metrics.Events.WithLabelValues(request, result).Inc()
}

func (o *Orchestrator) deliver(code domain.RoomCode, requester domain.ConnRef, out core.Outcome) {
	if out.Reply != nil {
		to := out.Reply.To
		if len(to) == 0 {
			to = []domain.ConnRef{requester}
		}
		o.broadcast(code, to, out.Reply.Event, out.Reply.Payload)
	}
	for _, env := range out.Broadcasts {
		o.broadcast(code, env.To, env.Event, env.Payload)
	}
	if out.Closed && o.Rooms.Remove(code) {
		o.Metrics.RoomsActive.Dec()
	}
}

func (o *Orchestrator) send(code domain.RoomCode, conn domain.ConnRef, event string, payload any) {
	o.broadcast(code, []domain.ConnRef{conn}, event, payload)
}

func (o *Orchestrator) broadcast(code domain.RoomCode, to []domain.ConnRef, event string, payload any) {
	if len(to) == 0 {
		return
	}
	b, err := json.Marshal(outbound{Type: event, Payload: payload})
	if err != nil {
		log.Error().Str("module", orchModule).Err(err).Str("event", event).Msg("marshal outbound")
		return
	}
	for _, conn := range to {
		sig, ok := o.Sessions.Get(conn)
		if !ok {
			continue
		}
		err := sig.TrySend(core.Frame(b))
		switch {
		case err == nil:
		case errors.Is(err, core.ErrBackpressure):
			o.Metrics.Dropped.Inc()
			o.onBackpressure(code, conn)
		default:
			log.Debug().Str("module", orchModule).Err(err).Str("conn", string(conn)).Str("event", event).Msg("send failed")
		}
	}
}

func (o *Orchestrator) onBackpressure(code domain.RoomCode, conn domain.ConnRef) {
	if o.Policy == nil {
		return
	}
	switch o.Policy.OnBackPressure(code, conn) {
	case KickMember:
		log.Warn().Str("module", orchModule).Str("conn", string(conn)).Str("room", string(code)).Msg("slow consumer kicked")
		o.Sessions.Kick(conn)
	case DropFrame, NoAction:
	}
}
