package transposition

import (
	"fmt"
	"strings"

	"cipherkit/internal/textnorm"
)

// Mode selects what a rail fence strips from its input.
type Mode int

const (
	// OmitAll keeps letters only.
	OmitAll Mode = iota
	// OmitSpaces removes whitespace and keeps everything else.
	OmitSpaces
)

func (m Mode) String() string {
	if m == OmitSpaces {
		return "omit_spaces"
	}
	return "omit_all"
}

// ParseMode accepts "omit_all" or "omit_spaces".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "omit_all", "all":
		return OmitAll, nil
	case "omit_spaces", "spaces":
		return OmitSpaces, nil
	default:
		return OmitAll, fmt.Errorf("unknown rail fence mode %q", s)
	}
}

// DefaultRails is the rail count used when none is supplied.
const DefaultRails = 3

// RailFence writes text in a zig-zag across a number of rails and reads
// it off rail by rail.
type RailFence struct {
	rows int
	mode Mode
}

// NewRailFence builds a rail fence with rows rails.
func NewRailFence(rows int, mode Mode) (*RailFence, error) {
	if rows < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRows, rows)
	}
	return &RailFence{rows: rows, mode: mode}, nil
}

// Rows returns the rail count.
func (f *RailFence) Rows() int { return f.rows }

func (f *RailFence) normalize(s string) []rune {
	if f.mode == OmitSpaces {
		return []rune(strings.ToUpper(textnorm.StripWhitespace(s)))
	}
	return normalize(s)
}

// zigzag returns the rail visited by each of n columns: 0 down to rows-1
// and back, turning whenever the top or bottom rail is reached.
func (f *RailFence) zigzag(n int) []int {
	path := make([]int, n)
	row, dir := 0, 1
	for col := 0; col < n; col++ {
		path[col] = row
		row += dir
		if row == f.rows-1 || row == 0 {
			dir = -dir
		}
	}
	return path
}

// Fence lays the normalized text out on the rails. Unused cells are zero.
func (f *RailFence) Fence(text string) [][]rune {
	s := f.normalize(text)
	rails := newGrid(f.rows, len(s))
	for col, row := range f.zigzag(len(s)) {
		rails[row][col] = s[col]
	}
	return rails
}

func (f *RailFence) Encipher(text string) string {
	var b strings.Builder
	for _, rail := range f.Fence(text) {
		for _, ch := range rail {
			if ch != empty {
				b.WriteRune(ch)
			}
		}
	}
	return b.String()
}

func (f *RailFence) Decipher(text string) string {
	s := f.normalize(text)
	n := len(s)
	if n == 0 {
		return ""
	}

	path := f.zigzag(n)
	mask := newBoolGrid(f.rows, n)
	for col, row := range path {
		mask[row][col] = true
	}

	filled := newGrid(f.rows, n)
	idx := 0
	for r := 0; r < f.rows; r++ {
		for c := 0; c < n; c++ {
			if mask[r][c] {
				filled[r][c] = s[idx]
				idx++
			}
		}
	}

	out := make([]rune, n)
	for col, row := range path {
		out[col] = filled[row][col]
	}
	return string(out)
}

func newBoolGrid(rows, cols int) [][]bool {
	grid := make([][]bool, rows)
	for r := range grid {
		grid[r] = make([]bool, cols)
	}
	return grid
}
