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
	"image"
	"image/color"
	stdpng "image/png"
	"math/rand"
	"testing"

	"github.com/ostafen/pngkit/pkg/png"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func to8(v uint16) uint8 {
	return uint8((uint32(v)*255 + 32767) / 65535)
}

func encodeStd(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, img))
	return buf.Bytes()
}

func randomPalette(rng *rand.Rand, n int, alpha bool) color.Palette {
	pal := make(color.Palette, n)
	for i := range pal {
		c := color.NRGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 0xff}
		if alpha && i%3 == 0 {
			c.A = uint8(rng.Intn(256))
		}
		pal[i] = c
	}
	return pal
}

func TestDecodeStandardEncodings(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	const w, h = 37, 11

	type testCase struct {
		name string
		src  image.Image
		want func(x, y int) color.NRGBA
	}

	var tests []testCase

	g8 := image.NewGray(image.Rect(0, 0, w, h))
	rng.Read(g8.Pix)
	tests = append(tests, testCase{"gray8", g8, func(x, y int) color.NRGBA {
		return gray(g8.GrayAt(x, y).Y)
	}})

	g16 := image.NewGray16(image.Rect(0, 0, w, h))
	rng.Read(g16.Pix)
	tests = append(tests, testCase{"gray16", g16, func(x, y int) color.NRGBA {
		return gray(to8(g16.Gray16At(x, y).Y))
	}})

	rgb := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng.Read(rgb.Pix)
	for i := 3; i < len(rgb.Pix); i += 4 {
		rgb.Pix[i] = 0xff
	}
	tests = append(tests, testCase{"rgb8", rgb, func(x, y int) color.NRGBA {
		return rgb.NRGBAAt(x, y)
	}})

	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng.Read(rgba.Pix)
	tests = append(tests, testCase{"rgba8", rgba, func(x, y int) color.NRGBA {
		return rgba.NRGBAAt(x, y)
	}})

	rgb16 := image.NewNRGBA64(image.Rect(0, 0, w, h))
	rng.Read(rgb16.Pix)
	for i := 6; i < len(rgb16.Pix); i += 8 {
		rgb16.Pix[i], rgb16.Pix[i+1] = 0xff, 0xff
	}
	tests = append(tests, testCase{"rgb16", rgb16, func(x, y int) color.NRGBA {
		c := rgb16.NRGBA64At(x, y)
		return color.NRGBA{to8(c.R), to8(c.G), to8(c.B), 0xff}
	}})

	rgba16 := image.NewNRGBA64(image.Rect(0, 0, w, h))
	rng.Read(rgba16.Pix)
	tests = append(tests, testCase{"rgba16", rgba16, func(x, y int) color.NRGBA {
		c := rgba16.NRGBA64At(x, y)
		return color.NRGBA{to8(c.R), to8(c.G), to8(c.B), to8(c.A)}
	}})

	for _, n := range []int{2, 4, 16, 256} {
		for _, alpha := range []bool{false, true} {
			pal := randomPalette(rng, n, alpha)
			p := image.NewPaletted(image.Rect(0, 0, w, h), pal)
			for i := range p.Pix {
				p.Pix[i] = uint8(rng.Intn(n))
			}

			name := "paletted"
			if alpha {
				name += "-alpha"
			}
			tests = append(tests, testCase{name, p, func(x, y int) color.NRGBA {
				return pal[p.ColorIndexAt(x, y)].(color.NRGBA)
			}})
		}
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img, err := png.Decode(encodeStd(t, tc.src))
			require.NoError(t, err)
			require.Equal(t, w, img.Width)
			require.Equal(t, h, img.Height)
			require.Len(t, img.Pix, w*h)

			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					require.Equal(t, tc.want(x, y), img.At(x, y), "pixel (%d, %d)", x, y)
				}
			}
		})
	}
}

func TestDecodeSplitImageData(t *testing.T) {
	var raw []byte
	for y := 0; y < 4; y++ {
		raw = append(raw, 0, uint8(y), uint8(y+1), uint8(y+2))
	}
	z := zlibCompress(t, raw)

	data := buildPNG(t,
		headerChunk(3, 4, 8, png.Grayscale),
		png.NewChunk(png.TypeIDAT, z[:2]),
		png.NewChunk(png.TypeIDAT, nil),
		png.NewChunk(png.TypeIDAT, z[2:]),
		iendChunk(),
	)

	img, err := png.Decode(data)
	require.NoError(t, err)
	require.Equal(t, gray(3), img.At(0, 3))
	require.Equal(t, gray(5), img.At(2, 3))
}

func findChunk(t *testing.T, data []byte, name string) png.Chunk {
	t.Helper()

	for c, err := range png.Chunks(data) {
		require.NoError(t, err)
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("chunk %s not found", name)
	return png.Chunk{}
}

func TestDecodeCorruptCriticalChunk(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, randomImage(rng, 8, 8)))
	data := buf.Bytes()

	idat := findChunk(t, data, "IDAT")

	for i := 0; i < 32; i++ {
		corrupted := bytes.Clone(data)

		// Flip a bit in the payload or in the stored CRC.
		pos := idat.Offset + rng.Int63n(int64(idat.Length)+4)
		corrupted[pos] ^= 1 << rng.Intn(8)

		_, err := png.Decode(corrupted)
		require.ErrorIs(t, err, png.ErrCRCMismatch)
	}

	hdr := findChunk(t, data, "IHDR")
	corrupted := bytes.Clone(data)
	corrupted[hdr.Offset+int64(hdr.Length)] ^= 0x80

	_, err := png.Decode(corrupted)
	require.ErrorIs(t, err, png.ErrCRCMismatch)
}

func TestDecodeSkipsCorruptAncillaryChunk(t *testing.T) {
	text := png.NewChunk([4]byte{'t', 'E', 'X', 't'}, []byte("Title\x00corrupt"))
	text.CRC ^= 0xdeadbeef
	kept := png.NewChunk([4]byte{'t', 'I', 'M', 'E'}, []byte{0x07, 0xea, 10, 17, 12, 0, 0})

	data := buildPNG(t,
		headerChunk(2, 1, 8, png.Grayscale),
		text,
		rawImage(t, []byte{1, 2}),
		kept,
		iendChunk(),
	)

	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	img, err := png.NewDecoder(png.DecoderOptions{Logger: &logger}).Decode(data)
	require.NoError(t, err)
	require.Equal(t, []color.NRGBA{gray(1), gray(2)}, img.Pix)

	require.Len(t, img.Chunks, 1)
	require.Equal(t, "tIME", img.Chunks[0].Name())
	require.Equal(t, kept.Data, img.Chunks[0].Data)

	require.Contains(t, logs.String(), "tEXt")
	require.Contains(t, logs.String(), `"level":"warn"`)
}

func TestDecodeMissingIEND(t *testing.T) {
	data := buildPNG(t,
		headerChunk(1, 1, 8, png.Grayscale),
		rawImage(t, []byte{9}),
	)

	_, err := png.Decode(data)
	require.ErrorIs(t, err, png.ErrMissingIEND)

	img, err := png.NewDecoder(png.DecoderOptions{AllowMissingIEND: true}).Decode(data)
	require.NoError(t, err)
	require.Equal(t, gray(9), img.At(0, 0))
}

func TestDecodeIgnoresTrailingData(t *testing.T) {
	data := buildPNG(t,
		headerChunk(1, 1, 8, png.Grayscale),
		rawImage(t, []byte{9}),
		iendChunk(),
	)
	data = append(data, "trailing garbage"...)

	img, err := png.Decode(data)
	require.NoError(t, err)
	require.Equal(t, gray(9), img.At(0, 0))
}

func TestDecodeStructureErrors(t *testing.T) {
	pal := png.NewChunk(png.TypePLTE, []byte{1, 2, 3})
	trns := png.NewChunk(png.TypeTRNS, []byte{0})

	tests := []struct {
		name   string
		chunks func(t *testing.T) []png.Chunk
		err    error
	}{
		{"empty", func(t *testing.T) []png.Chunk { return nil }, png.ErrMissingHeader},
		{"IHDR not first", func(t *testing.T) []png.Chunk {
			return []png.Chunk{rawImage(t, []byte{0}), headerChunk(1, 1, 8, png.Grayscale), iendChunk()}
		}, png.ErrChunkOrder},
		{"duplicate IHDR", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(1, 1, 8, png.Grayscale), headerChunk(1, 1, 8, png.Grayscale), iendChunk()}
		}, png.ErrChunkOrder},
		{"bad header", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(1, 1, 3, png.Grayscale), iendChunk()}
		}, png.ErrInvalidBitDepth},
		{"no IDAT", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(1, 1, 8, png.Grayscale), iendChunk()}
		}, png.ErrMissingImageData},
		{"no PLTE", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(1, 1, 8, png.Indexed), rawImage(t, []byte{0}), iendChunk()}
		}, png.ErrMissingPalette},
		{"PLTE after IDAT", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(1, 1, 8, png.Indexed), rawImage(t, []byte{0}), pal, iendChunk()}
		}, png.ErrChunkOrder},
		{"tRNS before PLTE", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(1, 1, 8, png.Indexed), trns, pal, rawImage(t, []byte{0}), iendChunk()}
		}, png.ErrChunkOrder},
		{"bad palette", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(1, 1, 8, png.Indexed), png.NewChunk(png.TypePLTE, []byte{1, 2}), iendChunk()}
		}, png.ErrInvalidPalette},
		{"unknown critical chunk", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(1, 1, 8, png.Grayscale), png.NewChunk([4]byte{'A', 'B', 'C', 'D'}, nil), iendChunk()}
		}, png.ErrInvalidChunk},
		{"not zlib", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(1, 1, 8, png.Grayscale), png.NewChunk(png.TypeIDAT, []byte("garbage")), iendChunk()}
		}, png.ErrDecompression},
		{"missing rows", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(2, 3, 8, png.Grayscale), rawImage(t, []byte{1, 2}, []byte{3, 4}), iendChunk()}
		}, png.ErrTruncatedImageData},
		{"excess rows", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(2, 1, 8, png.Grayscale), rawImage(t, []byte{1, 2}, []byte{3, 4}), iendChunk()}
		}, png.ErrDecompression},
		{"short row", func(t *testing.T) []png.Chunk {
			return []png.Chunk{headerChunk(4, 1, 8, png.Grayscale), rawImage(t, []byte{1, 2}), iendChunk()}
		}, png.ErrTruncatedImageData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := png.Decode(buildPNG(t, tc.chunks(t)...))
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestDecodeTruncatedStream(t *testing.T) {
	rng := rand.New(rand.NewSource(6))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, randomImage(rng, 4, 4)))
	data := buf.Bytes()

	// Cutting inside IEND leaves a malformed chunk, never a panic.
	for n := len(signature); n < len(data); n++ {
		_, err := png.Decode(data[:n])
		require.Error(t, err, "prefix %d", n)
	}
}

func TestDecodePalettedTransparency(t *testing.T) {
	data := buildPNG(t,
		headerChunk(3, 1, 8, png.Indexed),
		png.NewChunk(png.TypePLTE, []byte{255, 0, 0, 0, 255, 0}),
		png.NewChunk(png.TypeTRNS, []byte{0x80}),
		rawImage(t, []byte{0, 1, 7}),
		iendChunk(),
	)

	img, err := png.Decode(data)
	require.NoError(t, err)
	require.Equal(t, []color.NRGBA{
		{255, 0, 0, 0x80},
		{0, 255, 0, 0xff},
		{0, 0, 0, 0xff},
	}, img.Pix)
}

func TestDecodeGamma(t *testing.T) {
	data := buildPNG(t,
		headerChunk(1, 1, 8, png.Grayscale),
		png.GammaChunk(45455),
		rawImage(t, []byte{0}),
		iendChunk(),
	)

	img, err := png.DecodeReader(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, uint32(45455), img.Gamma)
	require.Empty(t, img.Chunks)
}

func TestDecodeBoundsInflatedSize(t *testing.T) {
	// A 1x1 image whose image data inflates to 64 MiB of zeros.
	bomb := zlibCompress(t, make([]byte, 64<<20))
	require.Less(t, len(bomb), 1<<20)

	data := buildPNG(t,
		headerChunk(1, 1, 8, png.Grayscale),
		png.NewChunk(png.TypeIDAT, bomb),
		iendChunk(),
	)

	_, err := png.Decode(data)
	require.ErrorIs(t, err, png.ErrDecompression)
	require.Contains(t, err.Error(), "exceeds limit")
}
