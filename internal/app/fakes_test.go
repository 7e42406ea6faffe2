package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/WordGuess/internal/core"
	"github.com/dkeye/WordGuess/internal/domain"
	"github.com/dkeye/WordGuess/internal/metrics"
	"github.com/stretchr/testify/require"
)

type staticWords []string

func (w staticWords) WordsFor(string) ([]string, string) { return []string(w), "test" }

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type fakeConn struct {
	mu     sync.Mutex
	frames []frame
	full   bool
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrConnClosed
	}
	if f.full {
		return core.ErrBackpressure
	}
	var decoded frame
	if err := json.Unmarshal(fr, &decoded); err != nil {
		return err
	}
	f.frames = append(f.frames, decoded)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		out = append(out, fr.Type)
	}
	return out
}

// take decodes the payload of the last frame of the given type and clears the buffer.
func (f *fakeConn) take(t *testing.T, event string, v any) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.frames) - 1; i >= 0; i-- {
		if f.frames[i].Type == event {
			if v != nil {
				require.NoError(t, json.Unmarshal(f.frames[i].Payload, v))
			}
			f.frames = nil
			return
		}
	}
	t.Fatalf("no %q frame, got %v", event, f.frames)
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

type harness struct {
	orch  *Orchestrator
	m     *metrics.Metrics
	conns map[domain.ConnRef]*fakeConn
}

func newHarness(t *testing.T, words ...string) *harness {
	t.Helper()
	if len(words) == 0 {
		words = []string{"apple", "bread", "cheese", "dates"}
	}
	rooms := NewRoomRegistry(staticWords(words), 8)
	rooms.Options.Shuffle = func([]string) {}
	m := metrics.New()
	return &harness{
		orch:  NewOrchestrator(rooms, NewSessions(), SimplePolicy{}, m),
		m:     m,
		conns: make(map[domain.ConnRef]*fakeConn),
	}
}

func (h *harness) connect(name string) (domain.ConnRef, *fakeConn) {
	conn := domain.ConnRef("conn-" + name)
	fc := &fakeConn{}
	h.conns[conn] = fc
	h.orch.Connect(conn, fc, func() {})
	return conn, fc
}
