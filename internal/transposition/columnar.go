package transposition

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Columnar is a keyed columnar transposition. Input is reduced to uppercase
// letters before either direction; casing and punctuation are not restored.
type Columnar struct {
	key   string
	order []int
}

// NewColumnar builds a columnar cipher for key, compared case-insensitively.
func NewColumnar(key string) (*Columnar, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	upper := strings.ToUpper(key)
	return &Columnar{
		key:   upper,
		order: keyOrder([]rune(upper)),
	}, nil
}

// Key returns the normalized key.
func (c *Columnar) Key() string { return c.key }

// Order returns the column read order.
func (c *Columnar) Order() []int {
	return append([]int(nil), c.order...)
}

func (c *Columnar) Encipher(text string) string {
	return encipherGrid(normalize(text), len(c.order), c.order)
}

func (c *Columnar) Decipher(text string) string {
	return decipherGrid(normalize(text), len(c.order), c.order)
}

// Scytale wraps the message around a rod of a fixed number of columns,
// read in natural column order.
type Scytale struct {
	columns int
	order   []int
}

// DefaultScytaleColumns is used when no column count is supplied.
const DefaultScytaleColumns = 3

// NewScytale builds a scytale with the given column count.
func NewScytale(columns int) (*Scytale, error) {
	if columns < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidColumns, columns)
	}
	return &Scytale{
		columns: columns,
		order:   identityOrder(columns),
	}, nil
}

// Columns returns the column count.
func (s *Scytale) Columns() int { return s.columns }

// Encipher refuses a rod at least half as wide as the raw message.
func (s *Scytale) Encipher(text string) (string, error) {
	if s.columns >= utf8.RuneCountInString(text)/2 {
		return "", fmt.Errorf("%w: %d columns for %d characters",
			ErrKeyTooLarge, s.columns, utf8.RuneCountInString(text))
	}
	return encipherGrid(normalize(text), s.columns, s.order), nil
}

func (s *Scytale) Decipher(text string) string {
	return decipherGrid(normalize(text), s.columns, s.order)
}
