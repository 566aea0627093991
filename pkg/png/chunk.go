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
	"errors"
	"fmt"
	"io"
	"iter"
)

const pngHeader = "\x89PNG\r\n\x1a\n"

// Chunk type tags understood by the codec.
var (
	TypeIHDR = [4]byte{'I', 'H', 'D', 'R'}
	TypePLTE = [4]byte{'P', 'L', 'T', 'E'}
	TypeIDAT = [4]byte{'I', 'D', 'A', 'T'}
	TypeIEND = [4]byte{'I', 'E', 'N', 'D'}
	TypeTRNS = [4]byte{'t', 'R', 'N', 'S'}
	TypeGAMA = [4]byte{'g', 'A', 'M', 'A'}
)

const maxChunkLength = 0x7fffffff

type Chunk struct {
	Type   [4]byte
	Data   []byte
	Length uint32
	CRC    uint32

	// Offset of Data within the stream that was parsed, signature included.
	Offset int64
}

// NewChunk builds a chunk and computes its checksum.
func NewChunk(typ [4]byte, data []byte) Chunk {
	return Chunk{
		Type:   typ,
		Data:   data,
		Length: uint32(len(data)),
		CRC:    ChunkChecksum(typ, data),
	}
}

func (c *Chunk) Name() string {
	return string(c.Type[:])
}

// IsCritical reports whether the ancillary bit (bit 5 of the first byte) is
// clear.
func (c *Chunk) IsCritical() bool {
	return c.Type[0]&0x20 == 0
}

func (c *Chunk) Valid() bool {
	return ChunkChecksum(c.Type, c.Data) == c.CRC
}

// WriteTo serializes the chunk as length, type, payload and CRC.
func (c *Chunk) WriteTo(w io.Writer) (int64, error) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(c.Data)))
	copy(hdr[4:], c.Type[:])

	var written int64
	n, err := w.Write(hdr[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	n, err = w.Write(c.Data)
	written += int64(n)
	if err != nil {
		return written, err
	}

	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], c.CRC)
	n, err = w.Write(crc[:])
	written += int64(n)
	return written, err
}

func (c Chunk) String() string {
	return fmt.Sprintf("Type: %s, Size %d, CRC: %08x", c.Name(), c.Length, c.CRC)
}

// CheckSignature verifies the 8 byte PNG magic at the start of data.
func CheckSignature(data []byte) error {
	if len(data) < len(pngHeader) || string(data[:len(pngHeader)]) != pngHeader {
		return ErrInvalidSignature
	}
	return nil
}

// ChunkReader walks the chunk stream that follows the signature. It is a
// single pass cursor: once Next has returned an error it keeps returning it.
type ChunkReader struct {
	c    *Cursor
	base int64
	err  error
}

// NewChunkReader reads chunks from data, which must start right after the
// signature.
func NewChunkReader(data []byte) *ChunkReader {
	return &ChunkReader{
		c:    NewCursor(data),
		base: int64(len(pngHeader)),
	}
}

// Next returns the following chunk, or io.EOF once the data is exhausted at a
// chunk boundary. A chunk cut short anywhere yields ErrMalformedChunk.
func (r *ChunkReader) Next() (Chunk, error) {
	if r.err != nil {
		return Chunk{}, r.err
	}

	chunk, err := r.next()
	if err != nil {
		r.err = err
	}
	return chunk, err
}

func (r *ChunkReader) next() (Chunk, error) {
	start := r.c.Offset()

	length, err := r.c.Uint32()
	if err == io.EOF {
		return Chunk{}, io.EOF
	}
	if err != nil {
		return Chunk{}, formatErr(ErrMalformedChunk, "", "truncated length at offset %d", r.base+int64(start))
	}

	typ, err := r.c.Next(4)
	if err != nil {
		return Chunk{}, formatErr(ErrMalformedChunk, "", "truncated type at offset %d", r.base+int64(start))
	}

	var chunk Chunk
	copy(chunk.Type[:], typ)
	name := chunk.Name()

	if length > maxChunkLength {
		return Chunk{}, formatErr(ErrMalformedChunk, name, "bad chunk length: %d", length)
	}

	chunk.Offset = r.base + int64(r.c.Offset())
	chunk.Length = length
	chunk.Data, err = r.c.Next(int(length))
	if err != nil {
		return Chunk{}, formatErr(ErrMalformedChunk, name, "payload of %d bytes exceeds remaining data", length)
	}

	chunk.CRC, err = r.c.Uint32()
	if err != nil {
		return Chunk{}, formatErr(ErrMalformedChunk, name, "truncated checksum")
	}
	return chunk, nil
}

// Chunks iterates over the chunks of a complete PNG stream, signature
// included. Iteration stops after the first error.
func Chunks(data []byte) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		if err := CheckSignature(data); err != nil {
			yield(Chunk{}, err)
			return
		}

		r := NewChunkReader(data[len(pngHeader):])
		for {
			chunk, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}
