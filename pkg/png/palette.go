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
	"image/color"
)

const maxPaletteEntries = 256

var opaqueBlack = color.NRGBA{A: 0xff}

// Palette holds the PLTE entries. Slots past Len are opaque black, so every
// 8 bit index resolves to some color.
type Palette struct {
	Colors [maxPaletteEntries]color.NRGBA
	Len    int
}

func ParsePalette(data []byte) (*Palette, error) {
	if len(data)%3 != 0 {
		return nil, formatErr(ErrInvalidPalette, "PLTE", "length %d is not a multiple of 3", len(data))
	}
	if len(data) == 0 || len(data) > 3*maxPaletteEntries {
		return nil, formatErr(ErrInvalidPalette, "PLTE", "%d entries", len(data)/3)
	}

	p := &Palette{Len: len(data) / 3}
	for i := range p.Colors {
		p.Colors[i] = opaqueBlack
	}
	for i := 0; i < p.Len; i++ {
		p.Colors[i] = color.NRGBA{R: data[3*i], G: data[3*i+1], B: data[3*i+2], A: 0xff}
	}
	return p, nil
}

// Transparency is the content of a tRNS chunk. Indexed images use Alpha, one
// entry per palette index. Grayscale and truecolor images use Key: samples
// equal to it (compared at the image's own bit depth) become transparent.
type Transparency struct {
	Alpha  [maxPaletteEntries]uint8
	Key    [3]uint16
	HasKey bool
}

func ParseTransparency(data []byte, h Header) (*Transparency, error) {
	t := &Transparency{}
	for i := range t.Alpha {
		t.Alpha[i] = 0xff
	}

	switch h.ColorType {
	case Indexed:
		if len(data) > maxPaletteEntries {
			return nil, formatErr(ErrInvalidTransparency, "tRNS", "%d alpha entries", len(data))
		}
		copy(t.Alpha[:], data)
	case Grayscale:
		if len(data) != 2 {
			return nil, formatErr(ErrInvalidTransparency, "tRNS", "length %d, want 2", len(data))
		}
		v := binary.BigEndian.Uint16(data)
		t.Key = [3]uint16{v, v, v}
		t.HasKey = true
	case Truecolor:
		if len(data) != 6 {
			return nil, formatErr(ErrInvalidTransparency, "tRNS", "length %d, want 6", len(data))
		}
		for i := range t.Key {
			t.Key[i] = binary.BigEndian.Uint16(data[2*i:])
		}
		t.HasKey = true
	default:
		return nil, formatErr(ErrInvalidTransparency, "tRNS", "not allowed with color type %d", h.ColorType)
	}
	return t, nil
}

// ParseGamma decodes a gAMA payload: the image gamma times 100000.
func ParseGamma(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, formatErr(ErrInvalidChunk, "gAMA", "length %d, want 4", len(data))
	}
	return binary.BigEndian.Uint32(data), nil
}

// GammaChunk builds a gAMA chunk for the encoder.
func GammaChunk(gamma uint32) Chunk {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], gamma)
	return NewChunk(TypeGAMA, b[:])
}
