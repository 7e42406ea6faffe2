package app

import (
	"strings"
	"testing"

	"github.com/dkeye/WordGuess/internal/core"
	"github.com/dkeye/WordGuess/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostRoom creates a room hosted by Alice and returns its code.
func (h *harness) hostRoom(t *testing.T, maxPlayers int) (domain.RoomCode, domain.ConnRef, *fakeConn) {
	t.Helper()
	conn, fc := h.connect("alice")
	h.orch.HostGame(conn, "Alice", maxPlayers, "food")
	var res core.HostSuccess
	fc.take(t, core.EventHostSuccess, &res)
	require.Len(t, res.Players, 1)
	return res.RoomCode, conn, fc
}

func (h *harness) join(t *testing.T, code domain.RoomCode, name string) (domain.ConnRef, *fakeConn, core.JoinResult) {
	t.Helper()
	conn, fc := h.connect(strings.ToLower(name))
	h.orch.JoinGame(conn, strings.ToLower(string(code)), name)
	var res core.JoinResult
	fc.take(t, core.EventJoinResult, &res)
	return conn, fc, res
}

func TestHostGame(t *testing.T) {
	h := newHarness(t)
	code, conn, fc := h.hostRoom(t, 3)
	assert.Len(t, string(code), 6)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.m.RoomsActive))

	// second host attempt from the same connection
	h.orch.HostGame(conn, "Alice", 3, "food")
	var er core.ErrorReply
	fc.take(t, core.EventError, &er)
	assert.Equal(t, "already_in_room", er.Error)
	assert.Equal(t, RequestHostGame, er.Request)

	other, ofc := h.connect("zed")
	h.orch.HostGame(other, "Zed", 0, "food")
	ofc.take(t, core.EventError, &er)
	assert.Equal(t, "invalid_max_players", er.Error)
}

func TestJoinGame(t *testing.T) {
	h := newHarness(t)
	code, _, alice := h.hostRoom(t, 2)

	_, bob, res := h.join(t, code, "Bob")
	assert.True(t, res.Success)
	assert.Equal(t, code, res.RoomCode)
	assert.Equal(t, "Alice", res.Host)
	assert.Len(t, res.Players, 2)
	assert.NotEmpty(t, res.PlayerID)

	var pj core.PlayerJoined
	alice.take(t, core.EventPlayerJoined, &pj)
	assert.Equal(t, "Bob", pj.Player.Name)
	assert.Empty(t, bob.types(), "joiner gets no player-joined")

	_, _, res = h.join(t, code, "Cara")
	assert.False(t, res.Success)
	assert.Equal(t, "room_full", res.Error)

	_, _, res = h.join(t, "NOPE00", "Dan")
	assert.False(t, res.Success)
	assert.Equal(t, "room_not_found", res.Error)
}

func TestJoinNameTaken(t *testing.T) {
	h := newHarness(t)
	code, _, _ := h.hostRoom(t, 4)
	conn, fc := h.connect("alice2")
	h.orch.JoinGame(conn, string(code), "Alice")
	var res core.JoinResult
	fc.take(t, core.EventJoinResult, &res)
	assert.False(t, res.Success)
	assert.Equal(t, "name_taken", res.Error)
}

func TestRound(t *testing.T) {
	h := newHarness(t, "apple", "bread", "cheese")
	code, aliceConn, alice := h.hostRoom(t, 3)
	bobConn, bob, bobRes := h.join(t, code, "Bob")
	caraConn, cara, caraRes := h.join(t, code, "Cara")
	alice.reset()
	bob.reset()

	// only the host may start
	h.orch.StartGame(bobConn, string(code))
	var sr core.StartResult
	bob.take(t, core.EventStartResult, &sr)
	assert.False(t, sr.Success)
	assert.Equal(t, "not_host", sr.Error)

	h.orch.StartGame(aliceConn, strings.ToLower(string(code)))
	alice.take(t, core.EventStartResult, &sr)
	assert.True(t, sr.Success)
	var gs core.GameStarted
	cara.take(t, core.EventGameStarted, &gs)
	require.Len(t, gs.Words, 3)
	assert.Equal(t, "bread", gs.Words[1].Word)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.m.RoundsStarted))
	bob.reset()
	alice.reset()

	// Bob, cased and padded
	h.orch.SubmitGuess(bobConn, string(code), bobRes.PlayerID, "  BREAD ")
	var gr core.GuessResult
	cara.take(t, core.EventGuessResult, &gr)
	assert.True(t, gr.IsCorrect)
	assert.Equal(t, 1, gr.Rank)
	assert.Equal(t, "bread", gr.CorrectWord)
	alice.reset()
	bob.reset()

	// Cara wrong: private only
	h.orch.SubmitGuess(caraConn, string(code), caraRes.PlayerID, "bread")
	cara.take(t, core.EventGuessResult, &gr)
	assert.False(t, gr.IsCorrect)
	assert.Empty(t, alice.types())
	assert.Empty(t, bob.types())

	// spoofed player id
	h.orch.SubmitGuess(caraConn, string(code), bobRes.PlayerID, "cheese")
	var er core.ErrorReply
	cara.take(t, core.EventError, &er)
	assert.Equal(t, "player_not_found", er.Error)

	h.orch.SubmitGuess(caraConn, string(code), "", "cheese")
	bob.take(t, core.EventGuessResult, &gr)
	assert.Equal(t, 2, gr.Rank)
	assert.False(t, gr.AllGuessed)
	alice.reset()
	cara.reset()

	h.orch.SubmitGuess(aliceConn, string(code), "", "Apple")
	var ge core.GameEnded
	bob.take(t, core.EventGameEnded, &ge)
	require.Len(t, ge.Ranking, 3)
	assert.Equal(t, []string{"Bob", "Cara", "Alice"}, []string{ge.Ranking[0].Name, ge.Ranking[1].Name, ge.Ranking[2].Name})
	assert.Equal(t, float64(3), testutil.ToFloat64(h.m.Guesses.WithLabelValues("correct")))
	assert.Equal(t, float64(1), testutil.ToFloat64(h.m.Guesses.WithLabelValues("incorrect")))

	room, ok := h.orch.Rooms.Lookup(code)
	require.True(t, ok)
	assert.Equal(t, domain.StatusEnded, room.Status())

	// play-again from a guest is ignored
	alice.reset()
	h.orch.PlayAgain(bobConn, string(code))
	assert.Empty(t, alice.types())
	h.orch.PlayAgain(aliceConn, string(code))
	bob.take(t, core.EventGameReset, nil)
	assert.Equal(t, domain.StatusWaiting, room.Status())
}

func TestSkipAndChat(t *testing.T) {
	h := newHarness(t)
	code, aliceConn, alice := h.hostRoom(t, 3)
	_, bob, _ := h.join(t, code, "Bob")
	alice.reset()

	// not playing: ignored
	h.orch.SkipTurn(aliceConn, string(code))
	assert.Empty(t, alice.types())

	h.orch.StartGame(aliceConn, string(code))
	alice.reset()
	bob.reset()

	h.orch.SkipTurn(aliceConn, string(code))
	var sc core.SpeakerChanged
	bob.take(t, core.EventSpeakerChanged, &sc)
	assert.Equal(t, 1, sc.CurrentSpeakerIndex)
	alice.reset()

	// outsider is ignored
	outsider, ofc := h.connect("outsider")
	h.orch.SendMessage(outsider, string(code), "", "hi")
	assert.Empty(t, ofc.types())
	assert.Empty(t, alice.types())

	h.orch.SendMessage(aliceConn, string(code), "", "clue: red fruit")
	var msg domain.ChatEntry
	bob.take(t, core.EventNewMessage, &msg)
	assert.Equal(t, "Alice", msg.Author)
	assert.Equal(t, "clue: red fruit", msg.Text)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.m.Messages))
}

func TestDisconnect(t *testing.T) {
	t.Run("guest", func(t *testing.T) {
		h := newHarness(t)
		code, _, alice := h.hostRoom(t, 3)
		bobConn, _, _ := h.join(t, code, "Bob")
		alice.reset()

		h.orch.Disconnect(bobConn)
		var pl core.PlayerLeft
		alice.take(t, core.EventPlayerLeft, &pl)
		assert.Len(t, pl.Players, 1)
		_, ok := h.orch.Rooms.Lookup(code)
		assert.True(t, ok)

		// again: no-op
		h.orch.Disconnect(bobConn)
		assert.Empty(t, alice.types())
	})

	t.Run("host", func(t *testing.T) {
		h := newHarness(t)
		code, aliceConn, _ := h.hostRoom(t, 3)
		bobConn, bob, _ := h.join(t, code, "Bob")

		h.orch.Disconnect(aliceConn)
		assert.Equal(t, []string{core.EventPlayerLeft, core.EventRoomClosed}, bob.types())
		_, ok := h.orch.Rooms.Lookup(code)
		assert.False(t, ok)
		_, _, ok = h.orch.Rooms.FindByConnection(bobConn)
		assert.False(t, ok)
		assert.Equal(t, float64(0), testutil.ToFloat64(h.m.RoomsActive))

		// Bob can host a new room afterwards
		bob.reset()
		h.orch.HostGame(bobConn, "Bob", 2, "")
		bob.take(t, core.EventHostSuccess, nil)
	})

	t.Run("unknown connection", func(t *testing.T) {
		h := newHarness(t)
		assert.NotPanics(t, func() { h.orch.Disconnect("nobody") })
	})
}

func TestBackpressureKicks(t *testing.T) {
	h := newHarness(t)
	code, _, _ := h.hostRoom(t, 3)
	_, bob, _ := h.join(t, code, "Bob")

	bob.mu.Lock()
	bob.full = true
	bob.mu.Unlock()

	h.join(t, code, "Cara")
	assert.Equal(t, float64(1), testutil.ToFloat64(h.m.Dropped))
	bob.mu.Lock()
	defer bob.mu.Unlock()
	assert.True(t, bob.closed)
}

func TestPingAndReject(t *testing.T) {
	h := newHarness(t)
	conn, fc := h.connect("x")
	h.orch.Ping(conn)
	fc.take(t, core.EventPong, nil)

	h.orch.Reject(conn, "join-game", domain.ErrRateLimited)
	var er core.ErrorReply
	fc.take(t, core.EventError, &er)
	assert.Equal(t, "rate_limited", er.Error)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.m.Events.WithLabelValues("join-game", "rate_limited")))
}
