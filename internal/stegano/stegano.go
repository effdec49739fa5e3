// Package stegano hides a payload in the least significant bits of an
// image's colour channels. PNG and BMP covers are supported; the output
// keeps the cover's format.
package stegano

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/bmp"
)

var (
	// ErrUnsupportedFormat is returned for covers that are neither PNG nor BMP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrCapacity is returned when the payload does not fit in the cover.
	ErrCapacity = errors.New("payload too large for image")
	// ErrNoPayload is returned when no valid frame is found.
	ErrNoPayload = errors.New("no embedded payload found")
)

// Channels selects which colour channels carry payload bits.
type Channels uint8

const (
	Red Channels = 1 << iota
	Green
	Blue

	RGB = Red | Green | Blue
)

// Count returns the number of selected channels.
func (c Channels) Count() int {
	n := 0
	for _, ch := range []Channels{Red, Green, Blue} {
		if c&ch != 0 {
			n++
		}
	}
	return n
}

func (c Channels) String() string {
	var b strings.Builder
	if c&Red != 0 {
		b.WriteByte('r')
	}
	if c&Green != 0 {
		b.WriteByte('g')
	}
	if c&Blue != 0 {
		b.WriteByte('b')
	}
	return b.String()
}

// ParseChannels accepts any combination of r, g and b, e.g. "rgb" or "gb".
func ParseChannels(s string) (Channels, error) {
	var c Channels
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'r':
			c |= Red
		case 'g':
			c |= Green
		case 'b':
			c |= Blue
		default:
			return 0, fmt.Errorf("unknown channel %q in %q", r, s)
		}
	}
	if c == 0 {
		return 0, fmt.Errorf("no channels selected")
	}
	return c, nil
}

// Format is a supported cover format.
type Format string

const (
	PNG Format = "png"
	BMP Format = "bmp"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

// DetectFormat sniffs the cover's magic bytes.
func DetectFormat(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return PNG, nil
	case bytes.HasPrefix(data, []byte("BM")):
		return BMP, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// headerSize is the little-endian payload length prefix.
const headerSize = 8

// Capacity returns how many payload bytes fit in img.
func Capacity(img image.Image, ch Channels) int {
	b := img.Bounds()
	bits := b.Dx() * b.Dy() * ch.Count()
	return max(bits/8-headerSize, 0)
}

// Embed hides payload in cover and returns the re-encoded image.
func Embed(cover, payload []byte, ch Channels) ([]byte, error) {
	format, err := DetectFormat(cover)
	if err != nil {
		return nil, err
	}
	src, err := decode(format, cover)
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	if headerSize+len(payload) > b.Dx()*b.Dy()*ch.Count()/8 {
		return nil, fmt.Errorf("%w: %d bytes, capacity %d", ErrCapacity, len(payload), Capacity(src, ch))
	}

	img := toNRGBA(src)
	bits := frameBits(payload)

	i := 0
	forEachChannel(img, ch, func(p *uint8) bool {
		if i >= len(bits) {
			return false
		}
		*p = (*p & 0xfe) | bits[i]
		i++
		return true
	})

	return encode(format, img)
}

// Extract recovers a payload previously hidden with the same channels.
func Extract(data []byte, ch Channels) ([]byte, error) {
	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}
	src, err := decode(format, data)
	if err != nil {
		return nil, err
	}

	img := toNRGBA(src)
	bits := make([]uint8, 0, img.Bounds().Dx()*img.Bounds().Dy()*ch.Count())
	forEachChannel(img, ch, func(p *uint8) bool {
		bits = append(bits, *p&1)
		return true
	})
	return unframe(bits)
}

func decode(format Format, data []byte) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case PNG:
		img, err = png.Decode(bytes.NewReader(data))
	case BMP:
		img, err = bmp.Decode(bytes.NewReader(data))
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", format, err)
	}
	return img, nil
}

func encode(format Format, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case PNG:
		err = png.Encode(&buf, img)
	case BMP:
		err = bmp.Encode(&buf, img)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if img, ok := src.(*image.NRGBA); ok {
		return img
	}
	b := src.Bounds()
	img := image.NewNRGBA(b)
	draw.Draw(img, b, src, b.Min, draw.Src)
	return img
}

// forEachChannel visits the selected channel bytes row-major, r before g
// before b, until fn returns false.
func forEachChannel(img *image.NRGBA, ch Channels, fn func(p *uint8) bool) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			off := img.PixOffset(x, y)
			for i, c := range []Channels{Red, Green, Blue} {
				if ch&c == 0 {
					continue
				}
				if !fn(&img.Pix[off+i]) {
					return
				}
			}
		}
	}
}

// frameBits prefixes payload with its length and spreads every byte into
// eight bits, least significant first.
func frameBits(payload []byte) []uint8 {
	frame := make([]byte, headerSize, headerSize+len(payload))
	binary.LittleEndian.PutUint64(frame, uint64(len(payload)))
	frame = append(frame, payload...)

	bits := make([]uint8, 0, len(frame)*8)
	for _, by := range frame {
		for i := 0; i < 8; i++ {
			bits = append(bits, (by>>i)&1)
		}
	}
	return bits
}

func unframe(bits []uint8) ([]byte, error) {
	data := make([]byte, 0, len(bits)/8)
	for i := 0; i+8 <= len(bits); i += 8 {
		var by byte
		for j := 0; j < 8; j++ {
			by |= bits[i+j] << j
		}
		data = append(data, by)
	}

	if len(data) < headerSize {
		return nil, ErrNoPayload
	}
	length := binary.LittleEndian.Uint64(data[:headerSize])
	if length > uint64(len(data)-headerSize) {
		return nil, fmt.Errorf("%w: frame claims %d bytes", ErrNoPayload, length)
	}
	return data[headerSize : headerSize+int(length)], nil
}
