// Package words provides the read-only word bank used to deal secret words.
package words

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Mixed is the synthetic category unioning all others.
const Mixed = "mixed"

//go:embed bank.yaml
var defaultBank []byte

var ErrEmptyBank = errors.New("word bank has no categories")

type category struct {
	Key   string   `yaml:"key"`
	Words []string `yaml:"words"`
}

type bankFile struct {
	Categories []category `yaml:"categories"`
}

// Bank is an immutable category -> words mapping. Safe for concurrent use.
type Bank struct {
	order []string
	byKey map[string][]string
	mixed []string
}

// Default returns the embedded bank.
func Default() (*Bank, error) {
	return Parse(defaultBank)
}

// Load reads a bank from path, or the embedded bank when path is empty.
func Load(path string) (*Bank, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word bank %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse word bank %s: %w", path, err)
	}
	return b, nil
}

func Parse(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	b := &Bank{byKey: make(map[string][]string, len(f.Categories))}
	for _, c := range f.Categories {
		key := strings.ToLower(strings.TrimSpace(c.Key))
		if key == "" || key == Mixed {
			continue
		}
		ws := make([]string, 0, len(c.Words))
		for _, w := range c.Words {
			if w = strings.TrimSpace(w); w != "" {
				ws = append(ws, w)
			}
		}
		if _, dup := b.byKey[key]; !dup {
			b.order = append(b.order, key)
		}
		b.byKey[key] = append(b.byKey[key], ws...)
	}
	if len(b.order) == 0 {
		return nil, ErrEmptyBank
	}
	for _, key := range b.order {
		b.mixed = append(b.mixed, b.byKey[key]...)
	}
	log.Info().Str("module", "words").Int("categories", len(b.order)).Int("words", len(b.mixed)).Msg("word bank loaded")
	return b, nil
}

// WordsFor returns a copy of the list for category and the category actually used.
// Unknown categories fall back to Mixed.
func (b *Bank) WordsFor(cat string) ([]string, string) {
	ws, ok := b.byKey[strings.ToLower(cat)]
	if !ok {
		ws, cat = b.mixed, Mixed
	} else {
		cat = strings.ToLower(cat)
	}
	out := make([]string, len(ws))
	copy(out, ws)
	return out, cat
}

// Categories lists the real category keys in file order followed by Mixed.
func (b *Bank) Categories() []string {
	out := make([]string, 0, len(b.order)+1)
	out = append(out, b.order...)
	return append(out, Mixed)
}
