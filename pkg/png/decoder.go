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
	"bytes"
	"errors"
	"io"

	"github.com/ostafen/pngkit/pkg/compression"
	"github.com/rs/zerolog"
)

// Decoding stage. IHDR comes first, PLTE (if present) precedes the first
// IDAT, and nothing after IEND is read.
const (
	dsStart = iota
	dsSeenIHDR
	dsSeenPLTE
	dsSeenIDAT
	dsSeenIEND
)

type DecoderOptions struct {
	// AllowMissingIEND accepts streams that end without an IEND chunk.
	AllowMissingIEND bool

	// Codec decompresses the image data. Defaults to zlib.
	Codec compression.Codec

	// Logger receives warnings about tolerated defects. Defaults to a no-op
	// logger.
	Logger *zerolog.Logger
}

type Decoder struct {
	opts DecoderOptions
	log  zerolog.Logger
}

func NewDecoder(opts DecoderOptions) *Decoder {
	if opts.Codec == nil {
		opts.Codec = compression.Default
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	return &Decoder{
		opts: opts,
		log:  log,
	}
}

// Decode decodes a complete PNG held in memory with the default options. The
// returned image does not reference data.
func Decode(data []byte) (*Image, error) {
	return NewDecoder(DecoderOptions{}).Decode(data)
}

// DecodeReader reads r to the end and decodes it.
func DecodeReader(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// decodeState is the working set of a single Decode call.
type decodeState struct {
	stage  int
	header Header
	pal    *Palette
	trns   *Transparency
	idat   []byte
	img    *Image

	hasIDAT bool
}

func (d *Decoder) Decode(data []byte) (*Image, error) {
	if err := CheckSignature(data); err != nil {
		return nil, err
	}

	st := &decodeState{img: &Image{}}

	r := NewChunkReader(data[len(pngHeader):])
	for st.stage != dsSeenIEND {
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if err := d.parseChunk(st, &chunk); err != nil {
			return nil, err
		}
	}

	if st.stage == dsStart {
		return nil, ErrMissingHeader
	}
	if st.stage != dsSeenIEND {
		if !d.opts.AllowMissingIEND {
			return nil, ErrMissingIEND
		}
		d.log.Warn().Msg("stream ends without IEND chunk")
	}
	if !st.hasIDAT {
		return nil, ErrMissingImageData
	}
	if st.header.ColorType == Indexed && st.pal == nil {
		return nil, ErrMissingPalette
	}
	return d.decodeImageData(st)
}

func isCriticalType(typ [4]byte) bool {
	switch typ {
	case TypeIHDR, TypePLTE, TypeIDAT, TypeIEND:
		return true
	}
	return false
}

func (d *Decoder) parseChunk(st *decodeState, chunk *Chunk) error {
	name := chunk.Name()

	if !chunk.Valid() {
		if isCriticalType(chunk.Type) {
			return formatErr(ErrCRCMismatch, name, "stored %08x, computed %08x", chunk.CRC, ChunkChecksum(chunk.Type, chunk.Data))
		}
		d.log.Warn().
			Str("chunk", name).
			Int64("offset", chunk.Offset).
			Msg("skipping ancillary chunk with invalid checksum")
		return nil
	}

	if st.stage == dsStart && chunk.Type != TypeIHDR {
		return formatErr(ErrChunkOrder, name, "IHDR must be the first chunk")
	}

	switch chunk.Type {
	case TypeIHDR:
		if st.stage != dsStart {
			return formatErr(ErrChunkOrder, name, "duplicate IHDR")
		}
		h, err := ParseHeader(chunk.Data)
		if err != nil {
			return err
		}
		st.header = h
		st.stage = dsSeenIHDR
	case TypePLTE:
		if st.stage != dsSeenIHDR {
			return formatErr(ErrChunkOrder, name, "PLTE must precede IDAT and appear once")
		}
		pal, err := ParsePalette(chunk.Data)
		if err != nil {
			return err
		}
		st.pal = pal
		st.stage = dsSeenPLTE
	case TypeIDAT:
		st.idat = append(st.idat, chunk.Data...)
		st.hasIDAT = true
		st.stage = dsSeenIDAT
	case TypeIEND:
		st.stage = dsSeenIEND
	case TypeTRNS:
		if st.header.ColorType == Indexed && st.pal == nil {
			return formatErr(ErrChunkOrder, name, "tRNS before PLTE")
		}
		trns, err := ParseTransparency(chunk.Data, st.header)
		if err != nil {
			d.log.Warn().Err(err).Msg("ignoring tRNS chunk")
			return nil
		}
		st.trns = trns
	case TypeGAMA:
		gamma, err := ParseGamma(chunk.Data)
		if err != nil {
			d.log.Warn().Err(err).Msg("ignoring gAMA chunk")
			return nil
		}
		st.img.Gamma = gamma
	default:
		if chunk.IsCritical() {
			return formatErr(ErrInvalidChunk, name, "unknown critical chunk")
		}
		d.log.Debug().Str("chunk", name).Uint32("length", chunk.Length).Msg("keeping ancillary chunk")
		kept := *chunk
		kept.Data = bytes.Clone(chunk.Data)
		st.img.Chunks = append(st.img.Chunks, kept)
	}
	return nil
}

func (d *Decoder) decodeImageData(st *decodeState) (*Image, error) {
	h := st.header

	// Inflation is bounded by the size the header announces.
	need := int64(h.RowBytes()+1) * int64(h.Height)
	raw, err := d.opts.Codec.DecompressLimit(st.idat, need)
	if err != nil {
		return nil, &FormatError{Chunk: "IDAT", Detail: err.Error(), Err: ErrDecompression}
	}

	if int64(len(raw)) < need {
		return nil, formatErr(ErrTruncatedImageData, "IDAT", "got %d bytes, want %d", len(raw), need)
	}

	rows, err := Defilter(raw, h)
	if err != nil {
		return nil, err
	}

	img := st.img
	img.Width = int(h.Width)
	img.Height = int(h.Height)
	img.Pix = Unpack(rows, h, st.pal, st.trns)
	if len(img.Pix) != img.Width*img.Height {
		return nil, formatErr(ErrTruncatedImageData, "IDAT", "unpacked %d of %d pixels", len(img.Pix), img.Width*img.Height)
	}
	return img, nil
}
