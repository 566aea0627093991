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
package png_test

import (
	"bytes"
	"compress/zlib"
	"image/color"
	"math/rand"
	"testing"

	"github.com/ostafen/pngkit/pkg/png"
	"github.com/stretchr/testify/require"
)

const signature = "\x89PNG\r\n\x1a\n"

// buildPNG serializes the signature followed by the given chunks.
func buildPNG(t *testing.T, chunks ...png.Chunk) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString(signature)
	for i := range chunks {
		_, err := chunks[i].WriteTo(&buf)
		require.NoError(t, err)
	}
	return buf.Bytes()
}

func headerChunk(w, h uint32, depth uint8, ct png.ColorType) png.Chunk {
	hdr := png.Header{Width: w, Height: h, BitDepth: depth, ColorType: ct}
	return png.NewChunk(png.TypeIHDR, hdr.Bytes())
}

func zlibCompress(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// rawImage builds an image from unfiltered rows, prefixing each with
// filter type 0.
func rawImage(t *testing.T, rows ...[]byte) png.Chunk {
	t.Helper()

	var data []byte
	for _, r := range rows {
		data = append(data, 0)
		data = append(data, r...)
	}
	return png.NewChunk(png.TypeIDAT, zlibCompress(t, data))
}

func iendChunk() png.Chunk {
	return png.NewChunk(png.TypeIEND, nil)
}

func randomImage(rng *rand.Rand, w, h int) *png.Image {
	img := png.NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = color.NRGBA{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
			A: uint8(rng.Intn(256)),
		}
	}
	return img
}

func gray(v uint8) color.NRGBA {
	return color.NRGBA{v, v, v, 0xff}
}
