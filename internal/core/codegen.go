package core

import (
	"math/rand/v2"
	"strings"

	"github.com/dkeye/WordGuess/internal/domain"
)

const (
	CodeAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength          = 6
	DefaultCodeAttempts = 1024
)

// CodeGenerator draws uniformly random room codes until one is free.
type CodeGenerator struct {
	Alphabet    string
	Length      int
	MaxAttempts int
	// IntN returns a value in [0, n). Defaults to math/rand/v2.
	IntN func(n int) int
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{
		Alphabet:    CodeAlphabet,
		Length:      CodeLength,
		MaxAttempts: DefaultCodeAttempts,
		IntN:        rand.IntN,
	}
}

// Generate returns a code for which taken reports false.
// taken is called with the caller's registry lock held.
func (g *CodeGenerator) Generate(taken func(domain.RoomCode) bool) (domain.RoomCode, error) {
	intN := g.IntN
	if intN == nil {
		intN = rand.IntN
	}
	var sb strings.Builder
	for range g.MaxAttempts {
		sb.Reset()
		for range g.Length {
			sb.WriteByte(g.Alphabet[intN(len(g.Alphabet))])
		}
		code := domain.RoomCode(sb.String())
		if !taken(code) {
			return code, nil
		}
	}
	return "", domain.ErrCapacityExhausted
}
