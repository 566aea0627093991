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
	"io"
	"math/rand"
	"testing"

	"github.com/ostafen/pngkit/pkg/png"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	c := png.NewCursor([]byte{0, 0, 0, 5, 'a', 'b'})

	v, err := c.Uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(5), v)
	require.Equal(t, 4, c.Offset())

	_, err = c.Next(3)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, 4, c.Offset())

	b, err := c.Next(2)
	require.NoError(t, err)
	require.Equal(t, []byte("ab"), b)
	require.Zero(t, c.Len())

	_, err = c.Next(1)
	require.ErrorIs(t, err, io.EOF)
}

func TestCheckSignature(t *testing.T) {
	require.NoError(t, png.CheckSignature([]byte(signature)))

	require.ErrorIs(t, png.CheckSignature(nil), png.ErrInvalidSignature)
	require.ErrorIs(t, png.CheckSignature([]byte(signature[:7])), png.ErrInvalidSignature)

	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		data := make([]byte, rng.Intn(64))
		rng.Read(data)
		if bytes.HasPrefix(data, []byte(signature)) {
			continue
		}

		require.ErrorIs(t, png.CheckSignature(data), png.ErrInvalidSignature)

		_, err := png.Decode(data)
		require.ErrorIs(t, err, png.ErrInvalidSignature)
	}
}

func TestChunkReader(t *testing.T) {
	data := buildPNG(t,
		headerChunk(3, 2, 8, png.Truecolor),
		png.NewChunk([4]byte{'t', 'E', 'X', 't'}, []byte("Comment\x00hi")),
		iendChunk(),
	)

	r := png.NewChunkReader(data[len(signature):])

	c, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "IHDR", c.Name())
	require.Equal(t, uint32(13), c.Length)
	require.Equal(t, int64(16), c.Offset)
	require.True(t, c.IsCritical())
	require.True(t, c.Valid())

	c, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, "tEXt", c.Name())
	require.False(t, c.IsCritical())
	require.Equal(t, []byte("Comment\x00hi"), data[c.Offset:c.Offset+int64(c.Length)])

	c, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, "IEND", c.Name())
	require.Zero(t, c.Length)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestChunkReaderTruncated(t *testing.T) {
	data := buildPNG(t, headerChunk(1, 1, 8, png.Grayscale))
	stream := data[len(signature):]

	// Every strict prefix cuts the chunk somewhere: in the length, type,
	// payload or CRC.
	for n := 1; n < len(stream); n++ {
		r := png.NewChunkReader(stream[:n])

		_, err := r.Next()
		require.ErrorIs(t, err, png.ErrMalformedChunk, "prefix %d", n)

		_, err = r.Next()
		require.ErrorIs(t, err, png.ErrMalformedChunk)
	}
}

func TestChunkReaderRejectsHugeLength(t *testing.T) {
	stream := []byte{0x80, 0, 0, 0, 'I', 'D', 'A', 'T'}

	_, err := png.NewChunkReader(stream).Next()
	require.ErrorIs(t, err, png.ErrMalformedChunk)
}

func TestChunksIterator(t *testing.T) {
	data := buildPNG(t,
		headerChunk(1, 1, 8, png.Grayscale),
		rawImage(t, []byte{7}),
		iendChunk(),
	)

	var names []string
	for c, err := range png.Chunks(data) {
		require.NoError(t, err)
		names = append(names, c.Name())
	}
	require.Equal(t, []string{"IHDR", "IDAT", "IEND"}, names)

	for _, err := range png.Chunks([]byte("GIF89a")) {
		require.ErrorIs(t, err, png.ErrInvalidSignature)
	}
}

func TestChunkWriteTo(t *testing.T) {
	c := png.NewChunk(png.TypeIEND, nil)

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(12), n)
	require.Equal(t, []byte{0, 0, 0, 0, 'I', 'E', 'N', 'D', 0xae, 0x42, 0x60, 0x82}, buf.Bytes())
}
