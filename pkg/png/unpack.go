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

// A colorBits is a combination of color type and bit depth.
type colorBits struct {
	ct    ColorType
	depth uint8
}

var (
	cbG1     = colorBits{Grayscale, 1}
	cbG2     = colorBits{Grayscale, 2}
	cbG4     = colorBits{Grayscale, 4}
	cbG8     = colorBits{Grayscale, 8}
	cbG16    = colorBits{Grayscale, 16}
	cbTC8    = colorBits{Truecolor, 8}
	cbTC16   = colorBits{Truecolor, 16}
	cbP1     = colorBits{Indexed, 1}
	cbP2     = colorBits{Indexed, 2}
	cbP4     = colorBits{Indexed, 4}
	cbP8     = colorBits{Indexed, 8}
	cbGA8    = colorBits{GrayscaleAlpha, 8}
	cbGA16   = colorBits{GrayscaleAlpha, 16}
	cbTCA8   = colorBits{TruecolorAlpha, 8}
	cbTCA16  = colorBits{TruecolorAlpha, 16}
	grayGain = [...]uint8{1: 0xff, 2: 0x55, 4: 0x11}
)

// scale16 maps a 16 bit sample to 8 bits, rounding to nearest.
func scale16(v uint16) uint8 {
	return uint8((uint32(v)*0xff + 0x7fff) / 0xffff)
}

// subSample extracts the x-th depth-bit sample of a packed row, MSB first.
func subSample(row []byte, x int, depth uint8) uint8 {
	bit := x * int(depth)
	shift := 8 - int(depth) - bit%8
	return (row[bit/8] >> shift) & (1<<depth - 1)
}

// Unpack expands defiltered scanlines into one NRGBA value per pixel. raw
// holds whole rows of h.RowBytes() bytes; padding bits at the end of a row
// are ignored. pal is required for indexed images and trns may be nil.
func Unpack(raw []byte, h Header, pal *Palette, trns *Transparency) []color.NRGBA {
	rowBytes := h.RowBytes()
	if rowBytes == 0 {
		return nil
	}

	width := int(h.Width)
	rows := len(raw) / rowBytes
	pix := make([]color.NRGBA, 0, width*rows)

	key := func(samples ...uint16) uint8 {
		if trns == nil || !trns.HasKey {
			return 0xff
		}
		for i, s := range samples {
			if trns.Key[i] != s {
				return 0xff
			}
		}
		return 0
	}

	cb := colorBits{h.ColorType, h.BitDepth}
	if cb.ct == Indexed && pal == nil {
		return pix
	}

	for y := 0; y < rows; y++ {
		row := raw[y*rowBytes : (y+1)*rowBytes]

		switch cb {
		case cbG1, cbG2, cbG4:
			gain := grayGain[cb.depth]
			for x := 0; x < width; x++ {
				s := subSample(row, x, cb.depth)
				v := s * gain
				pix = append(pix, color.NRGBA{v, v, v, key(uint16(s))})
			}
		case cbG8:
			for _, v := range row[:width] {
				pix = append(pix, color.NRGBA{v, v, v, key(uint16(v))})
			}
		case cbG16:
			for x := 0; x < width; x++ {
				s := binary.BigEndian.Uint16(row[2*x:])
				v := scale16(s)
				pix = append(pix, color.NRGBA{v, v, v, key(s)})
			}
		case cbTC8:
			for x := 0; x < width; x++ {
				r, g, b := row[3*x], row[3*x+1], row[3*x+2]
				pix = append(pix, color.NRGBA{r, g, b, key(uint16(r), uint16(g), uint16(b))})
			}
		case cbTC16:
			for x := 0; x < width; x++ {
				r := binary.BigEndian.Uint16(row[6*x:])
				g := binary.BigEndian.Uint16(row[6*x+2:])
				b := binary.BigEndian.Uint16(row[6*x+4:])
				pix = append(pix, color.NRGBA{scale16(r), scale16(g), scale16(b), key(r, g, b)})
			}
		case cbP1, cbP2, cbP4, cbP8:
			for x := 0; x < width; x++ {
				var idx uint8
				if cb.depth == 8 {
					idx = row[x]
				} else {
					idx = subSample(row, x, cb.depth)
				}
				c := pal.Colors[idx]
				if trns != nil {
					c.A = trns.Alpha[idx]
				}
				pix = append(pix, c)
			}
		case cbGA8:
			for x := 0; x < width; x++ {
				v := row[2*x]
				pix = append(pix, color.NRGBA{v, v, v, row[2*x+1]})
			}
		case cbGA16:
			for x := 0; x < width; x++ {
				v := scale16(binary.BigEndian.Uint16(row[4*x:]))
				a := scale16(binary.BigEndian.Uint16(row[4*x+2:]))
				pix = append(pix, color.NRGBA{v, v, v, a})
			}
		case cbTCA8:
			for x := 0; x < width; x++ {
				p := row[4*x : 4*x+4]
				pix = append(pix, color.NRGBA{p[0], p[1], p[2], p[3]})
			}
		case cbTCA16:
			for x := 0; x < width; x++ {
				p := row[8*x : 8*x+8]
				pix = append(pix, color.NRGBA{
					R: scale16(binary.BigEndian.Uint16(p[0:])),
					G: scale16(binary.BigEndian.Uint16(p[2:])),
					B: scale16(binary.BigEndian.Uint16(p[4:])),
					A: scale16(binary.BigEndian.Uint16(p[6:])),
				})
			}
		default:
			return pix[:0]
		}
	}
	return pix
}
