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
	"fmt"
	"io"

	"github.com/ostafen/pngkit/pkg/convert"
	"github.com/ostafen/pngkit/pkg/png"
	"github.com/ostafen/pngkit/pkg/reader"
)

const (
	ImageDataFile = "IDAT.zlib"
	ImageFile     = "image.ppm"
)

type FileEntry struct {
	Name string
	R    io.ReaderAt
	Size uint64
}

// ChunkEntries exposes a PNG stream as files: one per chunk payload, named
// after its position and type, plus the concatenated image data. When img
// is not nil, its pixels are also exposed as a PPM.
func ChunkEntries(data []byte, img *png.Image) ([]FileEntry, error) {
	src := bytes.NewReader(data)

	var (
		entries  []FileEntry
		idat     []io.ReaderAt
		idatSize []int64
	)

	i := 0
	for c, err := range png.Chunks(data) {
		if err != nil {
			return nil, err
		}

		r := io.NewSectionReader(src, c.Offset, int64(c.Length))
		entries = append(entries, FileEntry{
			Name: fmt.Sprintf("%03d_%s", i, c.Name()),
			R:    r,
			Size: uint64(c.Length),
		})
		i++

		if c.Type == png.TypeIDAT {
			idat = append(idat, r)
			idatSize = append(idatSize, int64(c.Length))
		}
		if c.Type == png.TypeIEND {
			break
		}
	}

	if len(idat) > 0 {
		mr := reader.NewMultiReaderAt(idat, idatSize)
		entries = append(entries, FileEntry{
			Name: ImageDataFile,
			R:    mr,
			Size: uint64(mr.Size()),
		})
	}

	if img != nil {
		var buf bytes.Buffer
		if err := convert.EncodePPM(&buf, img); err != nil {
			return nil, err
		}
		entries = append(entries, FileEntry{
			Name: ImageFile,
			R:    bytes.NewReader(buf.Bytes()),
			Size: uint64(buf.Len()),
		})
	}
	return entries, nil
}
