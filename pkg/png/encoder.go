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
	"bufio"
	"io"

	"github.com/ostafen/pngkit/pkg/compression"
)

// Encoder writes 8 bit RGBA PNG images.
type Encoder struct {
	// Codec compresses the image data. Defaults to zlib at the default level.
	Codec compression.Codec

	// Chunks are ancillary chunks written between IDAT and IEND, in order.
	Chunks []Chunk
}

func (e *Encoder) AddChunk(c Chunk) {
	e.Chunks = append(e.Chunks, c)
}

// RemoveChunks drops every auxiliary chunk of the given type.
func (e *Encoder) RemoveChunks(typ [4]byte) {
	kept := e.Chunks[:0]
	for _, c := range e.Chunks {
		if c.Type != typ {
			kept = append(kept, c)
		}
	}
	e.Chunks = kept
}

func (e *Encoder) hasChunk(typ [4]byte) bool {
	for i := range e.Chunks {
		if e.Chunks[i].Type == typ {
			return true
		}
	}
	return false
}

// Encode writes img with the default encoder.
func Encode(w io.Writer, img *Image) error {
	var e Encoder
	return e.Encode(w, img)
}

// Encode writes img. A non-zero img.Gamma is written as a gAMA chunk ahead of
// the image data, unless the auxiliary chunks already carry one.
func (e *Encoder) Encode(w io.Writer, img *Image) error {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pix) != img.Width*img.Height {
		return formatErr(ErrInvalidImageSize, "", "%d pixels for a %dx%d image", len(img.Pix), img.Width, img.Height)
	}
	for i := range e.Chunks {
		if e.Chunks[i].IsCritical() {
			return formatErr(ErrInvalidChunk, e.Chunks[i].Name(), "auxiliary chunks must be ancillary")
		}
	}

	codec := e.Codec
	if codec == nil {
		codec = compression.Default
	}

	idat, err := codec.Compress(scanlines(img))
	if err != nil {
		return err
	}

	header := Header{
		Width:     uint32(img.Width),
		Height:    uint32(img.Height),
		BitDepth:  8,
		ColorType: TruecolorAlpha,
	}

	bw := bufio.NewWriter(w)
	if _, err := io.WriteString(bw, pngHeader); err != nil {
		return err
	}

	chunks := make([]Chunk, 0, len(e.Chunks)+4)
	chunks = append(chunks, NewChunk(TypeIHDR, header.Bytes()))
	if img.Gamma != 0 && !e.hasChunk(TypeGAMA) {
		chunks = append(chunks, GammaChunk(img.Gamma))
	}
	chunks = append(chunks, NewChunk(TypeIDAT, idat))
	chunks = append(chunks, e.Chunks...)
	chunks = append(chunks, NewChunk(TypeIEND, nil))

	for i := range chunks {
		c := chunks[i]
		// CRCs of caller supplied chunks are recomputed.
		c.CRC = ChunkChecksum(c.Type, c.Data)
		if _, err := c.WriteTo(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// scanlines lays out the pixels as filter type 0 rows of RGBA bytes.
func scanlines(img *Image) []byte {
	rowBytes := 1 + 4*img.Width
	buf := make([]byte, rowBytes*img.Height)

	for y := 0; y < img.Height; y++ {
		row := buf[y*rowBytes : (y+1)*rowBytes]
		row[0] = byte(FilterNone)
		for x, c := range img.Pix[y*img.Width : (y+1)*img.Width] {
			copy(row[1+4*x:], []byte{c.R, c.G, c.B, c.A})
		}
	}
	return buf
}
