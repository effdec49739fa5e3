// Package dispatch maps algorithm names, operations and chat-style commands
// onto the cipher packages.
package dispatch

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"cipherkit/internal/config"
	"cipherkit/internal/substitution"
	"cipherkit/internal/transposition"
)

// Cipher is the common surface of every registered algorithm.
type Cipher interface {
	Encipher(text string) (string, error)
	Decipher(text string) (string, error)
}

// ParamKind describes the single optional or required parameter an
// algorithm accepts.
type ParamKind int

const (
	ParamNone ParamKind = iota
	ParamKeyword
	ParamInt
	ParamRequiredInt
	ParamAlphabet
	ParamVariant
)

func (k ParamKind) String() string {
	switch k {
	case ParamKeyword:
		return "keyword"
	case ParamInt:
		return "[number]"
	case ParamRequiredInt:
		return "number"
	case ParamAlphabet:
		return "[alphabet]"
	case ParamVariant:
		return "[modern|old]"
	default:
		return ""
	}
}

// Required reports whether the parameter must be supplied.
func (k ParamKind) Required() bool {
	return k == ParamKeyword || k == ParamRequiredInt
}

// Family groups algorithms for help output.
type Family string

const (
	FamilySubstitution  Family = "substitution"
	FamilyEncoding      Family = "encoding"
	FamilyTransposition Family = "transposition"
)

// Algorithm is one registry entry.
type Algorithm struct {
	Name        string    `json:"name" yaml:"name" toml:"name"`
	Family      Family    `json:"family" yaml:"family" toml:"family"`
	Description string    `json:"description" yaml:"description" toml:"description"`
	Param       ParamKind `json:"-" yaml:"-" toml:"-"`
	ParamHelp   string    `json:"param,omitempty" yaml:"param,omitempty" toml:"param,omitempty"`

	build func(b builder) (Cipher, error)
}

// Usage renders "name <param>" for help text.
func (a Algorithm) Usage() string {
	if a.Param == ParamNone {
		return a.Name
	}
	return a.Name + " " + a.Param.String()
}

// builder carries what a constructor needs: the raw parameter (already
// validated against the kind), configured defaults and a random source.
type builder struct {
	param    string
	defaults config.DefaultsConfig
	rng      *rand.Rand
}

func (b builder) intOr(fallback int) (int, error) {
	if b.param == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(b.param)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", b.param)
	}
	return n, nil
}

// Registry holds the known algorithms by lowercase name.
type Registry struct {
	algorithms map[string]Algorithm
}

// NewRegistry returns the registry of every supported algorithm.
func NewRegistry() *Registry {
	r := &Registry{algorithms: make(map[string]Algorithm)}
	for _, a := range builtins() {
		r.algorithms[a.Name] = a
	}
	return r
}

// Lookup finds an algorithm case-insensitively.
func (r *Registry) Lookup(name string) (Algorithm, bool) {
	a, ok := r.algorithms[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.algorithms))
	for name := range r.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every algorithm ordered by family, then name.
func (r *Registry) All() []Algorithm {
	all := make([]Algorithm, 0, len(r.algorithms))
	for _, a := range r.algorithms {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Family != all[j].Family {
			return familyRank[all[i].Family] < familyRank[all[j].Family]
		}
		return all[i].Name < all[j].Name
	})
	return all
}

var familyRank = map[Family]int{
	FamilySubstitution:  0,
	FamilyEncoding:      1,
	FamilyTransposition: 2,
}

// table adapts a substitution table, which never fails.
type table struct{ *substitution.Table }

func (t table) Encipher(text string) (string, error) { return t.Table.Encipher(text), nil }
func (t table) Decipher(text string) (string, error) { return t.Table.Decipher(text), nil }

type columnar struct{ *transposition.Columnar }

func (c columnar) Encipher(text string) (string, error) { return c.Columnar.Encipher(text), nil }
func (c columnar) Decipher(text string) (string, error) { return c.Columnar.Decipher(text), nil }

type scytale struct{ *transposition.Scytale }

func (s scytale) Decipher(text string) (string, error) { return s.Scytale.Decipher(text), nil }

type railFence struct{ *transposition.RailFence }

func (f railFence) Encipher(text string) (string, error) { return f.RailFence.Encipher(text), nil }
func (f railFence) Decipher(text string) (string, error) { return f.RailFence.Decipher(text), nil }

func builtins() []Algorithm {
	return []Algorithm{
		{
			Name:        "atbash",
			Family:      FamilySubstitution,
			Description: "Reversed alphabet (a<->z)",
			build: func(builder) (Cipher, error) {
				return table{substitution.Atbash()}, nil
			},
		},
		{
			Name:        "caesar",
			Family:      FamilySubstitution,
			Description: "Classic Caesar shift",
			Param:       ParamInt,
			ParamHelp:   "shift, default from config (3)",
			build: func(b builder) (Cipher, error) {
				n, err := b.intOr(b.defaults.CaesarShift)
				if err != nil {
					return nil, err
				}
				return table{substitution.Caesar(n)}, nil
			},
		},
		{
			Name:        "rot13",
			Family:      FamilySubstitution,
			Description: "Rotation by 13",
			Param:       ParamInt,
			ParamHelp:   "rotation, default from config (13)",
			build: func(b builder) (Cipher, error) {
				n, err := b.intOr(b.defaults.Rot13Shift)
				if err != nil {
					return nil, err
				}
				if n == substitution.Rot13Shift {
					return table{substitution.Rot13()}, nil
				}
				return table{substitution.Rotate(n)}, nil
			},
		},
		{
			Name:        "shift",
			Family:      FamilySubstitution,
			Description: "Custom shift cipher",
			Param:       ParamRequiredInt,
			ParamHelp:   "shift, any integer",
			build: func(b builder) (Cipher, error) {
				n, err := b.intOr(0)
				if err != nil {
					return nil, err
				}
				return table{substitution.Shift(n)}, nil
			},
		},
		{
			Name:        "mixed_alphabet",
			Family:      FamilySubstitution,
			Description: "Keyword-derived alphabet",
			Param:       ParamKeyword,
			ParamHelp:   "keyword",
			build: func(b builder) (Cipher, error) {
				return table{substitution.MixedAlphabet(b.param)}, nil
			},
		},
		{
			Name:        "simple_substitution",
			Family:      FamilySubstitution,
			Description: "Arbitrary 26-letter permutation, random if omitted",
			Param:       ParamAlphabet,
			ParamHelp:   "26-letter alphabet",
			build: func(b builder) (Cipher, error) {
				if b.param == "" {
					return table{substitution.RandomSimpleSubstitution(b.rng)}, nil
				}
				t, err := substitution.SimpleSubstitution(b.param)
				if err != nil {
					return nil, err
				}
				return table{t}, nil
			},
		},
		{
			Name:        "baconian",
			Family:      FamilyEncoding,
			Description: "Bacon's five-letter A/B encoding",
			Param:       ParamVariant,
			ParamHelp:   "modern or old, default from config",
			build: func(b builder) (Cipher, error) {
				word := b.param
				if word == "" {
					word = b.defaults.BaconVariant
				}
				v, err := substitution.ParseBaconVariant(word)
				if err != nil {
					return nil, err
				}
				return table{substitution.Baconian(v)}, nil
			},
		},
		{
			Name:        "polybius",
			Family:      FamilyEncoding,
			Description: "Polybius square coordinates (digits are dropped)",
			build: func(builder) (Cipher, error) {
				return table{substitution.PolybiusSquare()}, nil
			},
		},
		{
			Name:        "columnar",
			Family:      FamilyTransposition,
			Description: "Columnar transposition keyed by a word",
			Param:       ParamKeyword,
			ParamHelp:   "key word",
			build: func(b builder) (Cipher, error) {
				c, err := transposition.NewColumnar(b.param)
				if err != nil {
					return nil, err
				}
				return columnar{c}, nil
			},
		},
		{
			Name:        "scytale",
			Family:      FamilyTransposition,
			Description: "Fixed-width cylinder transposition",
			Param:       ParamInt,
			ParamHelp:   "columns, default from config (3)",
			build: func(b builder) (Cipher, error) {
				n, err := b.intOr(b.defaults.ScytaleColumns)
				if err != nil {
					return nil, err
				}
				s, err := transposition.NewScytale(n)
				if err != nil {
					return nil, err
				}
				return scytale{s}, nil
			},
		},
		{
			Name:        "rail_fence",
			Family:      FamilyTransposition,
			Description: "Zig-zag rail fence",
			Param:       ParamInt,
			ParamHelp:   "rails, default from config (3)",
			build: func(b builder) (Cipher, error) {
				n, err := b.intOr(b.defaults.Rails)
				if err != nil {
					return nil, err
				}
				mode, err := transposition.ParseMode(b.defaults.RailMode)
				if err != nil {
					return nil, err
				}
				f, err := transposition.NewRailFence(n, mode)
				if err != nil {
					return nil, err
				}
				return railFence{f}, nil
			},
		},
	}
}
