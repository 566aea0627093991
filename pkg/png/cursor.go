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
	"io"
)

// Cursor hands out consecutive byte ranges of a buffer. Slices returned by
// Next alias the underlying buffer.
type Cursor struct {
	data []byte
	off  int
}

func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Next returns the following n bytes and advances the cursor. If fewer than
// n bytes remain the cursor is left untouched and io.ErrUnexpectedEOF is
// returned, or io.EOF when the buffer is already exhausted.
func (c *Cursor) Next(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.data) || c.off+n < c.off {
		if c.off >= len(c.data) {
			return nil, io.EOF
		}
		return nil, io.ErrUnexpectedEOF
	}
	c.off += n
	return c.data[c.off-n : c.off], nil
}

func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Offset is the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	return c.off
}

func (c *Cursor) Len() int {
	return len(c.data) - c.off
}
