// Package transposition implements the grid-based transposition ciphers:
// columnar, scytale and rail fence. They rearrange letters without changing
// them and always work on normalized, uppercase text.
package transposition

import (
	"errors"
	"sort"
	"strings"

	"cipherkit/internal/textnorm"
)

var (
	// ErrEmptyKey is returned for a columnar key with no characters.
	ErrEmptyKey = errors.New("key must not be empty")
	// ErrInvalidColumns is returned for a scytale with fewer than one column.
	ErrInvalidColumns = errors.New("scytale needs at least one column")
	// ErrKeyTooLarge is returned when a scytale is wider than half its message.
	ErrKeyTooLarge = errors.New("key should be less than half size of text")
	// ErrInvalidRows is returned for a rail fence with fewer than two rails.
	ErrInvalidRows = errors.New("row count must be at least 2")
)

// empty marks an unused grid cell.
const empty rune = 0

// keyOrder returns column indices sorted by key character, ties broken by
// position so repeated letters keep their left-to-right order.
func keyOrder(key []rune) []int {
	order := make([]int, len(key))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key[order[a]] < key[order[b]]
	})
	return order
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// normalize keeps letters only, uppercased.
func normalize(s string) []rune {
	return []rune(strings.ToUpper(textnorm.LettersOnly(s)))
}

func newGrid(rows, cols int) [][]rune {
	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = make([]rune, cols)
	}
	return grid
}

func rowsFor(n, cols int) int {
	return (n + cols - 1) / cols
}

// encipherGrid writes text row by row into a cols-wide grid and reads it
// back column by column in the given order.
func encipherGrid(text []rune, cols int, order []int) string {
	grid := newGrid(rowsFor(len(text), cols), cols)
	for i, ch := range text {
		grid[i/cols][i%cols] = ch
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, c := range order {
		for r := range grid {
			if grid[r][c] != empty {
				b.WriteRune(grid[r][c])
			}
		}
	}
	return b.String()
}

// decipherGrid reverses encipherGrid. Only the first len(text) cells in
// row-major order are occupied, so short trailing columns are skipped.
func decipherGrid(text []rune, cols int, order []int) string {
	n := len(text)
	grid := newGrid(rowsFor(n, cols), cols)

	idx := 0
	for _, c := range order {
		for r := range grid {
			if r*cols+c < n {
				grid[r][c] = text[idx]
				idx++
			}
		}
	}

	var b strings.Builder
	b.Grow(n)
	for _, row := range grid {
		for _, ch := range row {
			if ch != empty {
				b.WriteRune(ch)
			}
		}
	}
	return b.String()
}
