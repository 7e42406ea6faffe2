package core

import "github.com/dkeye/WordGuess/internal/domain"

// WordSource resolves a category to its ordered word list.
// The second result is the category actually used (unknown keys fall back to "mixed").
type WordSource interface {
	WordsFor(category string) ([]string, string)
}

// Envelope is a delivery instruction produced by a room operation.
// An empty To on Outcome.Reply means "the requester".
type Envelope struct {
	To      []domain.ConnRef
	Event   string
	Payload any
}

// Outcome is what a room operation asks the transport to do.
type Outcome struct {
	Reply      *Envelope
	Broadcasts []Envelope
	// Closed reports that the room was destroyed and must leave the registry.
	Closed bool
}
