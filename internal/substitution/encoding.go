package substitution

import "fmt"

// BaconVariant selects the Baconian code table.
type BaconVariant int

const (
	// BaconModern gives each of the 26 letters its own code.
	BaconModern BaconVariant = iota
	// BaconOld is Bacon's original 24-code table where I/J and U/V share codes.
	BaconOld
)

func (v BaconVariant) String() string {
	if v == BaconOld {
		return "old"
	}
	return "modern"
}

// ParseBaconVariant accepts "modern" or "old".
func ParseBaconVariant(s string) (BaconVariant, error) {
	switch s {
	case "", "modern", "new":
		return BaconModern, nil
	case "old", "original":
		return BaconOld, nil
	default:
		return BaconModern, fmt.Errorf("unknown baconian variant %q (want modern or old)", s)
	}
}

const baconWidth = 5

var modernBacon = []string{
	"aaaaa", "aaaab", "aaaba", "aaabb", "aabaa", "aabab", "aabba", "aabbb",
	"abaaa", "abaab", "ababa", "ababb", "abbaa", "abbab", "abbba", "abbbb",
	"baaaa", "baaab", "baaba", "baabb", "babaa", "babab", "babba", "babbb",
	"bbaaa", "bbaab",
}

var oldBacon = []string{
	"aaaaa", "aaaab", "aaaba", "aaabb", "aabaa", "aabab", "aabba", "aabbb",
	"abaaa", "abaaa", // i, j
	"abaab", "ababa", "ababb", "abbaa", "abbab", "abbba", "abbbb",
	"baaaa", "baaab", "baaba",
	"baabb", "baabb", // u, v
	"babaa", "babab", "babba", "babbb",
}

// Baconian encodes each letter as a five-character a/b group. Under
// BaconOld, J deciphers as I and V as U.
func Baconian(variant BaconVariant) *Table {
	codes := modernBacon
	if variant == BaconOld {
		codes = oldBacon
	}
	return newTable(codes, WithBlockDecoding(baconWidth))
}

const polybiusWidth = 2

var polybiusSquare = []string{
	"00", "01", "02", "03", "04",
	"10", "11", "12", "13", "14",
	"20", "21", "22", "23", "24",
	"30", "31", "32", "33", "34",
	"40", "41", "42", "43", "44",
	"51",
}

// PolybiusSquare encodes each letter as its two-digit grid coordinate.
// Digits in the plaintext are dropped while enciphering and letter case
// is not recoverable: Decipher always yields lowercase.
func PolybiusSquare() *Table {
	return newTable(polybiusSquare,
		WithBlockDecoding(polybiusWidth),
		WithNumeralsDropped(),
		WithFoldedDecoding(),
	)
}
