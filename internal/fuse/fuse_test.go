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
package fuse

import (
	"bytes"
	"context"
	"io"
	"testing"

	"bazil.org/fuse"
	"github.com/ostafen/pngkit/pkg/png"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T) ([]byte, *png.Image) {
	t.Helper()

	img := png.NewImage(3, 2)
	for i := range img.Pix {
		img.Pix[i].R = uint8(i)
		img.Pix[i].A = 0xff
	}

	enc := png.Encoder{}
	enc.AddChunk(png.GammaChunk(45455))

	var buf bytes.Buffer
	require.NoError(t, enc.Encode(&buf, img))
	return buf.Bytes(), img
}

func readEntry(t *testing.T, e FileEntry) []byte {
	t.Helper()

	data, err := io.ReadAll(io.NewSectionReader(e.R, 0, int64(e.Size)))
	require.NoError(t, err)
	return data
}

func TestChunkEntries(t *testing.T) {
	data, img := encodeTestImage(t)

	entries, err := ChunkEntries(data, img)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	require.Equal(t, []string{"000_IHDR", "001_IDAT", "002_gAMA", "003_IEND", ImageDataFile, ImageFile}, names)

	hdr, err := png.ParseHeader(readEntry(t, entries[0]))
	require.NoError(t, err)
	require.Equal(t, uint32(3), hdr.Width)

	require.Equal(t, []byte{0, 0, 0xb1, 0x8f}, readEntry(t, entries[2]))
	require.Empty(t, readEntry(t, entries[3]))
	require.Equal(t, readEntry(t, entries[1]), readEntry(t, entries[4]))

	ppm := readEntry(t, entries[5])
	require.True(t, bytes.HasPrefix(ppm, []byte("P6\n3 2\n255\n")))
	require.Len(t, ppm, len("P6\n3 2\n255\n")+3*6)
}

func TestChunkEntriesWithoutImage(t *testing.T) {
	data, _ := encodeTestImage(t)

	entries, err := ChunkEntries(data, nil)
	require.NoError(t, err)
	require.Equal(t, ImageDataFile, entries[len(entries)-1].Name)

	_, err = ChunkEntries([]byte("nope"), nil)
	require.ErrorIs(t, err, png.ErrInvalidSignature)
}

func TestChunkFS(t *testing.T) {
	ctx := context.Background()

	cfs := NewChunkFS([]FileEntry{
		{Name: "b", R: bytes.NewReader([]byte("hello world")), Size: 11},
		{Name: "a", R: bytes.NewReader(nil), Size: 0},
	})

	root, err := cfs.Root()
	require.NoError(t, err)
	dir := root.(*Dir)

	var attr fuse.Attr
	require.NoError(t, dir.Attr(ctx, &attr))
	require.True(t, attr.Mode.IsDir())

	dirents, err := dir.ReadDirAll(ctx)
	require.NoError(t, err)
	require.Len(t, dirents, 2)
	require.Equal(t, "a", dirents[0].Name)
	require.Equal(t, "b", dirents[1].Name)
	require.NotEqual(t, dirents[0].Inode, dirents[1].Inode)

	_, err = dir.Lookup(ctx, "missing")
	require.Equal(t, fuse.ENOENT, err)

	node, err := dir.Lookup(ctx, "b")
	require.NoError(t, err)
	f := node.(File)

	require.NoError(t, f.Attr(ctx, &attr))
	require.Equal(t, uint64(11), attr.Size)

	var resp fuse.ReadResponse
	require.NoError(t, f.Read(ctx, &fuse.ReadRequest{Offset: 6, Size: 100}, &resp))
	require.Equal(t, []byte("world"), resp.Data)

	require.NoError(t, f.Read(ctx, &fuse.ReadRequest{Offset: 11, Size: 4}, &resp))
	require.Empty(t, resp.Data)
}
