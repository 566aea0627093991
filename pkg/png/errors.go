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
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature = errors.New("not a PNG file")
	ErrMalformedChunk   = errors.New("malformed chunk")
	ErrCRCMismatch      = errors.New("invalid checksum")
	ErrMalformedHeader  = errors.New("malformed IHDR")
	ErrInvalidBitDepth  = errors.New("invalid color type and bit depth combination")
	ErrInvalidPalette   = errors.New("invalid palette")
	ErrMissingIEND      = errors.New("IEND chunk not found")
	ErrDecompression    = errors.New("cannot decompress image data")
	ErrInvalidImageSize = errors.New("pixel count does not match image size")

	ErrChunkOrder           = errors.New("invalid PNG chunk order")
	ErrMissingHeader        = errors.New("IHDR chunk not found")
	ErrMissingPalette       = errors.New("PLTE chunk required by indexed image not found")
	ErrMissingImageData     = errors.New("IDAT chunk not found")
	ErrUnsupportedInterlace = errors.New("interlaced images are not supported")
	ErrTruncatedImageData   = errors.New("not enough pixel data")
	ErrInvalidTransparency  = errors.New("invalid tRNS chunk")
	ErrInvalidChunk         = errors.New("invalid chunk")
)

// A FormatError attaches the offending chunk and a detail message to one of
// the sentinel errors above. errors.Is sees through it.
type FormatError struct {
	Chunk  string
	Detail string
	Err    error
}

func (e *FormatError) Error() string {
	var prefix string
	if e.Chunk != "" {
		prefix = e.Chunk + ": "
	}
	if e.Detail == "" {
		return "png: " + prefix + e.Err.Error()
	}
	return fmt.Sprintf("png: %s%v (%s)", prefix, e.Err, e.Detail)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErr(err error, chunk string, format string, args ...any) error {
	return &FormatError{
		Chunk:  chunk,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}
