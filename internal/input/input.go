// Package input opens CLI input files, transparently decompressing gzip
// and zstd streams.
package input

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies the container a file was found in.
type Compression string

const (
	None Compression = "none"
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// MaxTextSize bounds ReadText; ciphers work on in-memory strings.
const MaxTextSize = 16 << 20

// File is an opened, possibly decompressing, input.
type File struct {
	io.Reader
	Compression Compression
	closers     []func() error
}

// Close releases the decompressor and the underlying file.
func (f *File) Close() error {
	var firstErr error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open opens path, detecting compression from its magic bytes.
func Open(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	f, err := Wrap(fh)
	if err != nil {
		_ = fh.Close()
		return nil, err
	}
	f.closers = append([]func() error{fh.Close}, f.closers...)
	return f, nil
}

// Wrap sniffs r and returns a reader over its decompressed content.
func Wrap(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip input: %w", err)
		}
		return &File{Reader: zr, Compression: Gzip, closers: []func() error{zr.Close}}, nil

	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("invalid zstd input: %w", err)
		}
		return &File{Reader: zr, Compression: Zstd, closers: []func() error{
			func() error { zr.Close(); return nil },
		}}, nil

	default:
		return &File{Reader: br, Compression: None}, nil
	}
}

// ReadText reads a whole (possibly compressed) file as a string.
func ReadText(path string) (string, error) {
	f, err := Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxTextSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > MaxTextSize {
		return "", fmt.Errorf("input exceeds %d bytes", MaxTextSize)
	}
	return string(data), nil
}
