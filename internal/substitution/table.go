// Package substitution implements the classical substitution ciphers.
//
// Every cipher in this package is a Table: a fixed mapping from the 26 Latin
// letters onto 26 cipher symbols, built once and never mutated. Variants such
// as Atbash, Caesar or Baconian differ only in the symbols they hand to the
// table and in how ciphertext is split back into symbols when deciphering.
package substitution

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Alphabet is the plaintext domain every table maps from.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

// ErrShortAlphabet is returned when fewer than 26 cipher symbols are supplied.
var ErrShortAlphabet = errors.New("cipher alphabet must have at least 26 symbols")

// DecodeStrategy selects how ciphertext is split into symbols on Decipher.
type DecodeStrategy int

const (
	// DecodeRunes looks every rune up on its own.
	DecodeRunes DecodeStrategy = iota
	// DecodeBlocks consumes fixed-width blocks, passing single
	// whitespace separators through.
	DecodeBlocks
)

func (s DecodeStrategy) String() string {
	switch s {
	case DecodeRunes:
		return "runes"
	case DecodeBlocks:
		return "blocks"
	default:
		return "unknown"
	}
}

// Placeholder is emitted for a block that does not decode to any letter.
const Placeholder = '?'

// Option configures a Table at construction.
type Option func(*Table)

// WithBlockDecoding makes Decipher consume blocks of width runes.
func WithBlockDecoding(width int) Option {
	return func(t *Table) {
		t.strategy = DecodeBlocks
		t.width = width
	}
}

// WithNumeralsDropped removes numeric runes from the input while enciphering.
// Nothing restores them on Decipher.
func WithNumeralsDropped() Option {
	return func(t *Table) {
		t.dropNumerals = true
	}
}

// WithFoldedDecoding decodes every block through the lowercase inverse,
// for symbol sets that have no case of their own.
func WithFoldedDecoding() Option {
	return func(t *Table) {
		t.foldDecode = true
	}
}

// Table is the shared substitution engine. It is safe for concurrent use.
type Table struct {
	symbols []string

	lower        map[rune]string
	upper        map[rune]string
	inverseLower map[string]rune
	inverseUpper map[string]rune

	strategy     DecodeStrategy
	width        int
	dropNumerals bool
	foldDecode   bool
}

// NewTable builds a table mapping Alphabet positionally onto symbols.
// Only the first 26 symbols are used.
func NewTable(symbols []string, opts ...Option) (*Table, error) {
	if len(symbols) < len(Alphabet) {
		return nil, fmt.Errorf("%w: got %d", ErrShortAlphabet, len(symbols))
	}
	return newTable(symbols, opts...), nil
}

func newTable(symbols []string, opts ...Option) *Table {
	n := len(Alphabet)
	t := &Table{
		symbols:      append([]string(nil), symbols[:n]...),
		lower:        make(map[rune]string, n),
		upper:        make(map[rune]string, n),
		inverseLower: make(map[string]rune, n),
		inverseUpper: make(map[string]rune, n),
		strategy:     DecodeRunes,
	}
	for _, opt := range opts {
		opt(t)
	}

	for i, letter := range Alphabet {
		sym := t.symbols[i]
		upperLetter := unicode.ToUpper(letter)
		upperSym := strings.ToUpper(sym)

		t.lower[letter] = sym
		t.upper[upperLetter] = upperSym

		// Shared symbols decode to the earliest letter.
		if _, ok := t.inverseLower[sym]; !ok {
			t.inverseLower[sym] = letter
		}
		if _, ok := t.inverseUpper[upperSym]; !ok {
			t.inverseUpper[upperSym] = upperLetter
		}
	}
	return t
}

// Alphabet returns a copy of the 26 mapped cipher symbols.
func (t *Table) Alphabet() []string {
	return append([]string(nil), t.symbols...)
}

// Strategy reports how Decipher splits its input.
func (t *Table) Strategy() DecodeStrategy {
	return t.strategy
}

// Bijective reports whether the symbols are a permutation of the
// lowercase Latin letters, i.e. whether every Encipher round-trips.
func (t *Table) Bijective() bool {
	seen := make(map[string]bool, len(t.symbols))
	for _, sym := range t.symbols {
		if len(sym) != 1 || sym[0] < 'a' || sym[0] > 'z' || seen[sym] {
			return false
		}
		seen[sym] = true
	}
	return true
}

// Encipher substitutes every letter, leaving other runes in place.
func (t *Table) Encipher(text string) string {
	var b strings.Builder
	b.Grow(len(text) * t.symbolWidth())

	for _, r := range text {
		switch {
		case unicode.IsLower(r):
			writeOr(&b, t.lower, r)
		case unicode.IsUpper(r):
			writeOr(&b, t.upper, r)
		case t.dropNumerals && unicode.IsNumber(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Decipher reverses Encipher according to the table's decode strategy.
// It never fails: unknown blocks decode to Placeholder.
func (t *Table) Decipher(text string) string {
	if t.strategy == DecodeBlocks {
		return t.decipherBlocks(text)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLower(r):
			b.WriteRune(lookupOr(t.inverseLower, string(r), r))
		case unicode.IsUpper(r):
			b.WriteRune(lookupOr(t.inverseUpper, string(r), r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (t *Table) decipherBlocks(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(runes)/t.width + 1)

	for i := 0; i < len(runes); {
		if isSeparator(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}

		end := min(i+t.width, len(runes))
		block := runes[i:end]

		inverse := t.inverseUpper
		if t.foldDecode || unicode.IsLower(block[0]) {
			inverse = t.inverseLower
		}
		b.WriteRune(lookupOr(inverse, string(block), Placeholder))
		i = end
	}
	return b.String()
}

func (t *Table) symbolWidth() int {
	if t.width > 1 {
		return t.width
	}
	return 1
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}

func writeOr(b *strings.Builder, m map[rune]string, r rune) {
	if sym, ok := m[r]; ok {
		b.WriteString(sym)
		return
	}
	b.WriteRune(r)
}

func lookupOr(m map[string]rune, key string, fallback rune) rune {
	if r, ok := m[key]; ok {
		return r
	}
	return fallback
}
