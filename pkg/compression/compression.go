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
package compression

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

var ErrLimitExceeded = errors.New("decompressed size exceeds limit")

// Codec turns a byte slice into its compressed form and back.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)

	// DecompressLimit fails with ErrLimitExceeded as soon as the output
	// grows past limit bytes.
	DecompressLimit(data []byte, limit int64) ([]byte, error)
}

// Zlib is the zlib wrapped DEFLATE codec used by PNG image data.
type Zlib struct {
	Level int
}

func NewZlib(level int) *Zlib {
	return &Zlib{Level: level}
}

var Default Codec = NewZlib(zlib.DefaultCompression)

func (z *Zlib) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, z.Level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (z *Zlib) Decompress(data []byte) ([]byte, error) {
	return z.decompress(data, -1)
}

func (z *Zlib) DecompressLimit(data []byte, limit int64) ([]byte, error) {
	if limit < 0 {
		return nil, fmt.Errorf("invalid limit %d", limit)
	}
	return z.decompress(data, limit)
}

// decompress inflates data, reading at most limit+1 bytes when limit is not
// negative.
func (z *Zlib) decompress(data []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var src io.Reader = zr
	if limit >= 0 {
		src = io.LimitReader(zr, limit+1)
	}

	var out bytes.Buffer
	if _, err := io.Copy(&out, src); err != nil {
		return nil, err
	}
	if limit >= 0 && int64(out.Len()) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrLimitExceeded, limit)
	}
	return out.Bytes(), nil
}
