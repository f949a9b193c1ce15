// Package quotes supplies the text sent for a triple press.
package quotes

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a quotes file contains no usable quotes.
var ErrEmpty = errors.New("quotes: no quotes")

// builtin is used when no quotes file is configured.
var builtin = []string{
	"May your coffee be strong and your Monday be short.",
	"Today's good mood is sponsored by coffee.",
	"I put coffee in my coffee.",
	"Coffee is the best medicine.",
	"7 days without coffee makes one WEAK.",
	"Coffee, because adulting is hard.",
	"You're brew-tiful.",
	"It's coffee o'clock.",
	"Wanna hear a joke? Decaf.",
	"May your coffee kick in before reality does.",
	"Humanity runs on coffee.",
	"Espresso yourself.",
	"Life happens, coffee helps.",
	"Decaf? No, thank you.",
}

// Source picks a random quote.
type Source struct {
	quotes []string
	intn   func(n int) int
}

// file is the on-disk layout of a quotes file.
type file struct {
	Quotes []string `yaml:"quotes"`
}

// Builtin returns a Source over the built-in quote list.
func Builtin() *Source {
	return New(builtin)
}

// New returns a Source over the given quotes.
func New(quotes []string) *Source {
	return &Source{quotes: quotes, intn: rand.Intn}
}

// Load reads a YAML quotes file from fs. An empty path, or a path that does
// not exist, yields the built-in list.
func Load(fs afero.Fs, path string) (*Source, error) {
	if path == "" {
		return Builtin(), nil
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Builtin(), nil
		}
		return nil, fmt.Errorf("read quotes file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse quotes yaml: %w", err)
	}

	var quotes []string
	for _, q := range f.Quotes {
		if q = strings.TrimSpace(q); q != "" {
			quotes = append(quotes, q)
		}
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return New(quotes), nil
}

// Random returns one quote.
func (s *Source) Random() string {
	if len(s.quotes) == 0 {
		return ""
	}
	return s.quotes[s.intn(len(s.quotes))]
}

// All returns a copy of the quotes.
func (s *Source) All() []string {
	return append([]string(nil), s.quotes...)
}

// Len returns the number of quotes.
func (s *Source) Len() int {
	return len(s.quotes)
}
