// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package png

import (
	"encoding/binary"
	"fmt"
)

type ColorType uint8

// Color type, as stored in IHDR.
const (
	Grayscale      ColorType = 0
	Truecolor      ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	TruecolorAlpha ColorType = 6
)

func (ct ColorType) String() string {
	switch ct {
	case Grayscale:
		return "grayscale"
	case Truecolor:
		return "truecolor"
	case Indexed:
		return "indexed"
	case GrayscaleAlpha:
		return "grayscale+alpha"
	case TruecolorAlpha:
		return "truecolor+alpha"
	}
	return fmt.Sprintf("unknown(%d)", uint8(ct))
}

// Channels is the number of samples per pixel.
func (ct ColorType) Channels() int {
	switch ct {
	case Truecolor:
		return 3
	case GrayscaleAlpha:
		return 2
	case TruecolorAlpha:
		return 4
	}
	return 1
}

const headerSize = 13

type Header struct {
	Width       uint32
	Height      uint32
	BitDepth    uint8
	ColorType   ColorType
	Compression uint8
	Filter      uint8
	Interlace   uint8
}

// allowedDepths lists the legal bit depths of each color type.
var allowedDepths = map[ColorType][]uint8{
	Grayscale:      {1, 2, 4, 8, 16},
	Truecolor:      {8, 16},
	Indexed:        {1, 2, 4, 8},
	GrayscaleAlpha: {8, 16},
	TruecolorAlpha: {8, 16},
}

func ValidBitDepth(ct ColorType, depth uint8) bool {
	for _, d := range allowedDepths[ct] {
		if d == depth {
			return true
		}
	}
	return false
}

// ParseHeader decodes and validates an IHDR payload.
func ParseHeader(data []byte) (Header, error) {
	if len(data) != headerSize {
		return Header{}, formatErr(ErrMalformedHeader, "IHDR", "length %d, want %d", len(data), headerSize)
	}

	h := Header{
		Width:       binary.BigEndian.Uint32(data[0:4]),
		Height:      binary.BigEndian.Uint32(data[4:8]),
		BitDepth:    data[8],
		ColorType:   ColorType(data[9]),
		Compression: data[10],
		Filter:      data[11],
		Interlace:   data[12],
	}
	return h, h.Validate()
}

func (h *Header) Validate() error {
	if h.Width == 0 || h.Height == 0 {
		return formatErr(ErrMalformedHeader, "IHDR", "invalid dimensions %dx%d", h.Width, h.Height)
	}
	if h.Width > maxChunkLength || h.Height > maxChunkLength {
		return formatErr(ErrMalformedHeader, "IHDR", "dimensions %dx%d overflow", h.Width, h.Height)
	}
	if !ValidBitDepth(h.ColorType, h.BitDepth) {
		return formatErr(ErrInvalidBitDepth, "IHDR", "color type %d, bit depth %d", h.ColorType, h.BitDepth)
	}
	if h.Compression != 0 {
		return formatErr(ErrMalformedHeader, "IHDR", "unsupported compression method %d", h.Compression)
	}
	if h.Filter != 0 {
		return formatErr(ErrMalformedHeader, "IHDR", "unsupported filter method %d", h.Filter)
	}
	switch h.Interlace {
	case 0:
	case 1:
		return formatErr(ErrUnsupportedInterlace, "IHDR", "Adam7")
	default:
		return formatErr(ErrMalformedHeader, "IHDR", "invalid interlace method %d", h.Interlace)
	}
	return nil
}

// BitsPerPixel is the number of bits one pixel occupies in a scanline.
func (h *Header) BitsPerPixel() int {
	return int(h.BitDepth) * h.ColorType.Channels()
}

// BytesPerPixel is the filter stride, never less than 1.
func (h *Header) BytesPerPixel() int {
	return (h.BitsPerPixel() + 7) / 8
}

// RowBytes is the size of a reconstructed scanline, filter tag excluded.
func (h *Header) RowBytes() int {
	return int((uint64(h.BitsPerPixel())*uint64(h.Width) + 7) / 8)
}

// Bytes encodes the header as an IHDR payload.
func (h *Header) Bytes() []byte {
	b := make([]byte, headerSize)
	binary.BigEndian.PutUint32(b[0:4], h.Width)
	binary.BigEndian.PutUint32(b[4:8], h.Height)
	b[8] = h.BitDepth
	b[9] = uint8(h.ColorType)
	b[10] = h.Compression
	b[11] = h.Filter
	b[12] = h.Interlace
	return b
}
