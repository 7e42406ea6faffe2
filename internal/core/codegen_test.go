package core

import (
	"strings"
	"testing"

	"github.com/dkeye/WordGuess/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeGenerator(t *testing.T) {
	t.Run("codes are distinct and drawn from the alphabet", func(t *testing.T) {
		g := NewCodeGenerator()
		seen := map[domain.RoomCode]bool{}
		for range 500 {
			code, err := g.Generate(func(c domain.RoomCode) bool { return seen[c] })
			require.NoError(t, err)
			require.Len(t, string(code), CodeLength)
			for _, ch := range string(code) {
				assert.True(t, strings.ContainsRune(CodeAlphabet, ch), "unexpected rune %q", ch)
			}
			require.False(t, seen[code], "duplicate code %s", code)
			seen[code] = true
		}
	})

	t.Run("resamples until free", func(t *testing.T) {
		calls := 0
		g := &CodeGenerator{
			Alphabet:    "AB",
			Length:      2,
			MaxAttempts: 10,
			IntN: func(int) int {
				calls++
				// first code AA, second code BB
				if calls <= 2 {
					return 0
				}
				return 1
			},
		}
		code, err := g.Generate(func(c domain.RoomCode) bool { return c == "AA" })
		require.NoError(t, err)
		assert.Equal(t, domain.RoomCode("BB"), code)
	})

	t.Run("tiny alphabet exhausts", func(t *testing.T) {
		g := &CodeGenerator{Alphabet: "X", Length: 6, MaxAttempts: 8}
		first, err := g.Generate(func(domain.RoomCode) bool { return false })
		require.NoError(t, err)
		assert.Equal(t, domain.RoomCode("XXXXXX"), first)

		_, err = g.Generate(func(c domain.RoomCode) bool { return c == first })
		assert.ErrorIs(t, err, domain.ErrCapacityExhausted)
	})
}
