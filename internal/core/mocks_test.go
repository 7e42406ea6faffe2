package core

import (
	"github.com/stretchr/testify/mock"
)

// --- WordSource ---

type MockWordSource struct {
	mock.Mock
}

func (m *MockWordSource) WordsFor(category string) ([]string, string) {
	args := m.Called(category)
	return args.Get(0).([]string), args.String(1)
}

// fixedWords always returns the same list under the same category name.
type fixedWords struct {
	words []string
	used  string
}

func (f fixedWords) WordsFor(string) ([]string, string) {
	out := make([]string, len(f.words))
	copy(out, f.words)
	return out, f.used
}
