package dispatch

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"cipherkit/internal/errors"
	"cipherkit/internal/substitution"
)

// Operation is the direction of a cipher call.
type Operation string

const (
	OpCipher   Operation = "cipher"
	OpDecipher Operation = "decipher"
)

// ParseOperation accepts cipher/encrypt and decipher/decrypt in any case.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cipher", "encrypt":
		return OpCipher, nil
	case "decipher", "decrypt":
		return OpDecipher, nil
	default:
		return "", errors.Newf(errors.InvalidOperation,
			"invalid operation %q, use: cipher, decipher, encrypt, or decrypt", s)
	}
}

// IsCipherCommand reports whether a chat command name is one of the four
// operation aliases.
func IsCipherCommand(name string) bool {
	_, err := ParseOperation(name)
	return err == nil
}

// Command is a parsed chat message such as "/encrypt caesar 5 hello".
type Command struct {
	Name string   // lowercased, without "/" or "@bot"
	Args []string // whitespace-separated tokens after the name
}

// ErrNotCommand is returned for messages that do not start with "/".
var ErrNotCommand = fmt.Errorf("message is not a command")

// ParseCommand splits a chat message into its command name and tokens.
func ParseCommand(message string) (Command, error) {
	fields := strings.Fields(message)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, ErrNotCommand
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return Command{}, ErrNotCommand
	}

	return Command{Name: strings.ToLower(name), Args: fields[1:]}, nil
}

// Text joins the tokens from index i on with single spaces.
func (c Command) Text(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

// Request is a single cipher call.
type Request struct {
	Operation string `json:"operation" yaml:"operation" toml:"operation"`
	Algorithm string `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	Param     string `json:"param,omitempty" yaml:"param,omitempty" toml:"param,omitempty"`
	Text      string `json:"text" yaml:"text" toml:"text"`
}

// RequestFromCommand resolves "/op algo [param] text..." against the
// registry. Optional parameters are consumed only when the first token
// has the right shape and text remains after it.
func RequestFromCommand(reg *Registry, cmd Command) (Request, error) {
	if !IsCipherCommand(cmd.Name) {
		return Request{}, errors.Newf(errors.InvalidOperation, "unknown command /%s", cmd.Name)
	}
	if len(cmd.Args) < 2 {
		return Request{}, errors.Newf(errors.MissingParameter, "missing algorithm or text").
			WithDetails(map[string]interface{}{
				"usage": fmt.Sprintf("/%s <algorithm> [keyword] <text>", cmd.Name),
			})
	}

	algo, ok := reg.Lookup(cmd.Args[0])
	if !ok {
		return Request{}, unsupported(reg, cmd.Args[0])
	}

	req := Request{Operation: cmd.Name, Algorithm: algo.Name}
	rest := cmd.Args[1:]

	consume := false
	switch algo.Param {
	case ParamKeyword, ParamRequiredInt:
		if len(rest) < 2 {
			return Request{}, missingParam(algo, cmd.Name)
		}
		consume = true
	case ParamInt:
		_, err := strconv.Atoi(rest[0])
		consume = len(rest) > 1 && err == nil
	case ParamAlphabet:
		consume = len(rest) > 1 && looksLikeAlphabet(rest[0])
	case ParamVariant:
		_, err := substitution.ParseBaconVariant(rest[0])
		consume = len(rest) > 1 && err == nil
	}

	if consume {
		req.Param = rest[0]
		rest = rest[1:]
	}
	req.Text = strings.Join(rest, " ")
	return req, nil
}

func looksLikeAlphabet(s string) bool {
	n := 0
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
		n++
	}
	return n == len(substitution.Alphabet)
}

func unsupported(reg *Registry, name string) *errors.CipherError {
	return errors.Newf(errors.UnsupportedAlgorithm, "algorithm '%s' not supported", strings.ToLower(name)).
		WithDetails(map[string]interface{}{"available": reg.Names()})
}

func missingParam(algo Algorithm, op string) *errors.CipherError {
	return errors.Newf(errors.MissingParameter, "%s requires %s", algo.Name, algo.ParamHelp).
		WithDetails(map[string]interface{}{
			"usage": fmt.Sprintf("/%s %s <%s> <text>", op, algo.Name, algo.Param),
		})
}
