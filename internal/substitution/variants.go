package substitution

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	// DefaultCaesarShift is the shift Caesar uses when none is given.
	DefaultCaesarShift = 3
	// Rot13Shift is the fixed shift of Rot13.
	Rot13Shift = 13
)

// ErrInvalidAlphabet is returned for a user alphabet that is not a
// permutation of a-z.
var ErrInvalidAlphabet = errors.New("cipher alphabet must be a-z and 26 characters long")

// MixedAlphabet builds a table whose alphabet starts with the keyword's
// letters in first-occurrence order, followed by the unused letters a-z.
//
// The keyword is taken as-is. Uppercase letters, digits or punctuation in it
// become cipher symbols of their own and push the alphabet past 26 entries;
// Bijective reports false for such tables.
func MixedAlphabet(keyword string) *Table {
	seen := make(map[string]bool)
	symbols := make([]string, 0, len(Alphabet)+len(keyword))

	for _, r := range keyword {
		s := string(r)
		if !seen[s] {
			seen[s] = true
			symbols = append(symbols, s)
		}
	}
	for _, r := range Alphabet {
		s := string(r)
		if !seen[s] {
			symbols = append(symbols, s)
		}
	}
	return newTable(symbols)
}

// Atbash maps the alphabet onto itself reversed.
func Atbash() *Table {
	symbols := make([]string, len(Alphabet))
	for i := range Alphabet {
		symbols[i] = string(Alphabet[len(Alphabet)-1-i])
	}
	return newTable(symbols)
}

// SimpleSubstitution builds a table from a user alphabet, which must contain
// each letter a-z exactly once (case-insensitive).
func SimpleSubstitution(alphabet string) (*Table, error) {
	letters := []rune(strings.ToLower(alphabet))
	if len(letters) != len(Alphabet) {
		return nil, fmt.Errorf("%w: got %d characters", ErrInvalidAlphabet, len(letters))
	}

	seen := make(map[rune]bool, len(letters))
	symbols := make([]string, len(letters))
	for i, r := range letters {
		if r < 'a' || r > 'z' {
			return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidAlphabet, r)
		}
		if seen[r] {
			return nil, fmt.Errorf("%w: duplicate %q", ErrInvalidAlphabet, r)
		}
		seen[r] = true
		symbols[i] = string(r)
	}
	return newTable(symbols), nil
}

// RandomSimpleSubstitution builds a table from a uniformly random
// permutation of a-z. A nil rng uses the package-level source.
func RandomSimpleSubstitution(rng *rand.Rand) *Table {
	var perm []int
	if rng != nil {
		perm = rng.Perm(len(Alphabet))
	} else {
		perm = rand.Perm(len(Alphabet))
	}

	symbols := make([]string, len(perm))
	for i, p := range perm {
		symbols[i] = string(Alphabet[p])
	}
	return newTable(symbols)
}

// Rotate shifts the alphabet by shift positions. Any integer is accepted
// and reduced modulo 26.
func Rotate(shift int) *Table {
	n := len(Alphabet)
	shift = ((shift % n) + n) % n

	symbols := make([]string, n)
	for i := range Alphabet {
		symbols[i] = string(Alphabet[(i+shift)%n])
	}
	return newTable(symbols)
}

// Caesar is Rotate; callers without a preference pass DefaultCaesarShift.
func Caesar(shift int) *Table {
	return Rotate(shift)
}

// Rot13 is Rotate(13), its own inverse.
func Rot13() *Table {
	return Rotate(Rot13Shift)
}

// Shift is Rotate under the name the command layer uses for a custom shift.
func Shift(shift int) *Table {
	return Rotate(shift)
}
