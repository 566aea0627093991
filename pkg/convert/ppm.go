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
package convert

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/ostafen/pngkit/pkg/png"
)

var ErrInvalidPPM = errors.New("invalid PPM file")

// maxPPMDimension bounds the width and height accepted by DecodePPM.
const maxPPMDimension = 1 << 20

// EncodePPM writes img as a binary (P6) PPM. Alpha is dropped.
func EncodePPM(w io.Writer, img *png.Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", img.Width, img.Height); err != nil {
		return err
	}

	for _, c := range img.Pix {
		if _, err := bw.Write([]byte{c.R, c.G, c.B}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodePPM reads a binary (P6) PPM with a maximum value of up to 65535.
// Pixels are allocated as rows arrive, so a header announcing more data than
// the input holds fails without reserving the whole image.
func DecodePPM(r io.Reader) (*png.Image, error) {
	available := int64(-1)
	if lr, ok := r.(interface{ Len() int }); ok {
		available = int64(lr.Len())
	}
	br := bufio.NewReader(r)

	magic := make([]byte, 2)
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != "P6" {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidPPM)
	}

	var fields [3]int
	for i := range fields {
		v, err := readHeaderInt(br)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}

	width, height, maxVal := fields[0], fields[1], fields[2]
	if width <= 0 || height <= 0 || width > maxPPMDimension || height > maxPPMDimension {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrInvalidPPM, width, height)
	}
	if maxVal <= 0 || maxVal > 0xffff {
		return nil, fmt.Errorf("%w: invalid maximum value %d", ErrInvalidPPM, maxVal)
	}

	sampleBytes := 1
	if maxVal > 0xff {
		sampleBytes = 2
	}

	rowBytes := 3 * sampleBytes * width
	if available >= 0 && int64(rowBytes)*int64(height) > available {
		return nil, fmt.Errorf("%w: %dx%d pixels do not fit in %d bytes", ErrInvalidPPM, width, height, available)
	}

	img := &png.Image{Width: width, Height: height}
	buf := make([]byte, rowBytes)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidPPM, y, err)
		}

		for x := 0; x < width; x++ {
			var s [3]uint8
			for i := range s {
				var v int
				if sampleBytes == 1 {
					v = int(buf[3*x+i])
				} else {
					off := 2 * (3*x + i)
					v = int(buf[off])<<8 | int(buf[off+1])
				}
				s[i] = uint8((min(v, maxVal)*0xff + maxVal/2) / maxVal)
			}
			img.Pix = append(img.Pix, color.NRGBA{s[0], s[1], s[2], 0xff})
		}
	}
	return img, nil
}

// readHeaderInt reads one decimal header field, skipping whitespace and
// comments, and consumes the single whitespace byte that ends it.
func readHeaderInt(br *bufio.Reader) (int, error) {
	var digits []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: truncated header", ErrInvalidPPM)
		}

		switch {
		case b >= '0' && b <= '9':
			digits = append(digits, b)
		case isSpace(b) && len(digits) > 0:
			v, err := strconv.Atoi(string(digits))
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrInvalidPPM, err)
			}
			return v, nil
		case isSpace(b):
		case b == '#' && len(digits) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return 0, fmt.Errorf("%w: truncated header", ErrInvalidPPM)
			}
		default:
			return 0, fmt.Errorf("%w: unexpected byte %q in header", ErrInvalidPPM, b)
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
