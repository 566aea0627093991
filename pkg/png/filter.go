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
	"fmt"
	"io"
)

type FilterType uint8

// Filter type, as stored in the first byte of each scanline.
const (
	FilterNone    FilterType = 0
	FilterSub     FilterType = 1
	FilterUp      FilterType = 2
	FilterAverage FilterType = 3
	FilterPaeth   FilterType = 4
)

func (ft FilterType) String() string {
	switch ft {
	case FilterNone:
		return "none"
	case FilterSub:
		return "sub"
	case FilterUp:
		return "up"
	case FilterAverage:
		return "average"
	case FilterPaeth:
		return "paeth"
	}
	return fmt.Sprintf("unknown(%d)", uint8(ft))
}

// Paeth returns whichever of a (left), b (up) or c (upper left) is closest to
// a+b-c, preferring a, then b. Paeth(10, 20, 15) is 15 and Paeth(255, 0, 0)
// is 255.
func Paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Unfilter reverses filter ft on row in place. prev is the previous
// reconstructed row (all zeros for the first one) and has the same length.
// Unknown filter types leave the row untouched.
func Unfilter(ft FilterType, row, prev []byte, bpp int) {
	switch ft {
	case FilterSub:
		for i := bpp; i < len(row); i++ {
			row[i] += row[i-bpp]
		}
	case FilterUp:
		for i, p := range prev {
			row[i] += p
		}
	case FilterAverage:
		for i := 0; i < bpp && i < len(row); i++ {
			row[i] += prev[i] / 2
		}
		// Byte bpp is the first with a left neighbour, and uses it.
		for i := bpp; i < len(row); i++ {
			row[i] += uint8((int(row[i-bpp]) + int(prev[i])) / 2)
		}
	case FilterPaeth:
		for i := 0; i < bpp && i < len(row); i++ {
			row[i] += Paeth(0, prev[i], 0)
		}
		for i := bpp; i < len(row); i++ {
			row[i] += Paeth(row[i-bpp], prev[i], prev[i-bpp])
		}
	}
}

// Filter applies ft to row and stores the result in dst, the inverse of
// Unfilter. dst, row and prev must have the same length.
func Filter(ft FilterType, dst, row, prev []byte, bpp int) {
	var left, upLeft uint8
	for i := range row {
		if i >= bpp {
			left = row[i-bpp]
			upLeft = prev[i-bpp]
		}

		switch ft {
		case FilterSub:
			dst[i] = row[i] - left
		case FilterUp:
			dst[i] = row[i] - prev[i]
		case FilterAverage:
			dst[i] = row[i] - uint8((int(left)+int(prev[i]))/2)
		case FilterPaeth:
			dst[i] = row[i] - Paeth(left, prev[i], upLeft)
		default:
			dst[i] = row[i]
		}
	}
}

// RowDecoder reconstructs scanlines from decompressed image data, one row at
// a time. Each row depends on the one before it, so rows come out strictly in
// order.
type RowDecoder struct {
	c        *Cursor
	bpp      int
	rowBytes int

	cr []byte
	pr []byte
}

func NewRowDecoder(data []byte, rowBytes, bpp int) *RowDecoder {
	return &RowDecoder{
		c:        NewCursor(data),
		bpp:      bpp,
		rowBytes: rowBytes,
		cr:       make([]byte, rowBytes),
		pr:       make([]byte, rowBytes),
	}
}

// Next returns the next reconstructed row, or io.EOF when no data is left.
// The returned slice is only valid until the following call.
func (d *RowDecoder) Next() ([]byte, error) {
	tag, err := d.c.Next(1)
	if err != nil {
		return nil, io.EOF
	}

	filtered, err := d.c.Next(d.rowBytes)
	if err != nil {
		return nil, formatErr(ErrTruncatedImageData, "IDAT", "short scanline")
	}

	d.cr, d.pr = d.pr, d.cr
	copy(d.cr, filtered)
	Unfilter(FilterType(tag[0]), d.cr, d.pr, d.bpp)
	return d.cr, nil
}

// Defilter reconstructs exactly h.Height rows from data.
func Defilter(data []byte, h Header) ([]byte, error) {
	rowBytes := h.RowBytes()
	out := make([]byte, 0, rowBytes*int(h.Height))

	d := NewRowDecoder(data, rowBytes, h.BytesPerPixel())
	for y := 0; y < int(h.Height); y++ {
		row, err := d.Next()
		if err == io.EOF {
			return nil, formatErr(ErrTruncatedImageData, "IDAT", "got %d of %d rows", y, h.Height)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row...)
	}
	return out, nil
}
