// Package hashing computes named message digests for strings and streams.
package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// DefaultChunkSize is the read size used when streaming.
const DefaultChunkSize = 8192

// Algorithms lists every supported digest in display order.
var Algorithms = []string{
	"md5",
	"sha1",
	"sha224",
	"sha256",
	"sha384",
	"sha512",
	"sha3_224",
	"sha3_256",
	"sha3_384",
	"sha3_512",
	"blake2b",
	"blake2s",
}

// DefaultFileAlgorithms are used for streams when none are requested.
var DefaultFileAlgorithms = []string{"md5", "sha256"}

// Digest is one named hex digest.
type Digest struct {
	Algorithm string `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	Hex       string `json:"hex" yaml:"hex" toml:"hex"`
}

// New returns a fresh hash for a named algorithm.
func New(name string) (hash.Hash, error) {
	switch name {
	case "md5":
		return md5.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "sha224":
		return sha256.New224(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	case "sha3_224":
		return sha3.New224(), nil
	case "sha3_256":
		return sha3.New256(), nil
	case "sha3_384":
		return sha3.New384(), nil
	case "sha3_512":
		return sha3.New512(), nil
	case "blake2b":
		// blake2b/blake2s default to their full output size, unkeyed.
		return blake2b.New512(nil)
	case "blake2s":
		return blake2s.New256(nil)
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", name)
	}
}

// StringDigests hashes s with every algorithm. Empty input yields no digests.
func StringDigests(s string) []Digest {
	if s == "" {
		return nil
	}

	data := []byte(s)
	digests := make([]Digest, 0, len(Algorithms))
	for _, name := range Algorithms {
		h, err := New(name)
		if err != nil {
			continue
		}
		h.Write(data)
		digests = append(digests, Digest{Algorithm: name, Hex: hex.EncodeToString(h.Sum(nil))})
	}
	return digests
}

// ReaderDigests streams r once through every requested algorithm in
// chunkSize reads. A nil algos uses DefaultFileAlgorithms; chunkSize <= 0
// uses DefaultChunkSize.
func ReaderDigests(r io.Reader, algos []string, chunkSize int) ([]Digest, error) {
	if len(algos) == 0 {
		algos = DefaultFileAlgorithms
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	hashers := make([]hash.Hash, len(algos))
	writers := make([]io.Writer, len(algos))
	for i, name := range algos {
		h, err := New(name)
		if err != nil {
			return nil, err
		}
		hashers[i] = h
		writers[i] = h
	}

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(io.MultiWriter(writers...), onlyReader{r}, buf); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	digests := make([]Digest, len(algos))
	for i, name := range algos {
		digests[i] = Digest{Algorithm: name, Hex: hex.EncodeToString(hashers[i].Sum(nil))}
	}
	return digests, nil
}

// onlyReader hides WriterTo so CopyBuffer honours the chunk size.
type onlyReader struct {
	io.Reader
}

// Supported reports whether name is a known algorithm.
func Supported(name string) bool {
	for _, a := range Algorithms {
		if a == name {
			return true
		}
	}
	return false
}
