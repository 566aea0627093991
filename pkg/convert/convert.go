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
package convert

import (
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/ostafen/pngkit/pkg/png"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Format names an image file format pngkit can read or write.
type Format string

const (
	PNG  Format = "png"
	PPM  Format = "ppm"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

var Formats = []Format{PNG, PPM, BMP, TIFF}

var ErrUnknownFormat = errors.New("unknown image format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case PNG, PPM, BMP, TIFF:
		return f, nil
	case "tif":
		return TIFF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

func Encode(w io.Writer, img *png.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case PPM:
		return EncodePPM(w, img)
	case BMP:
		return bmp.Encode(w, img.NRGBA())
	case TIFF:
		return tiff.Encode(w, img.NRGBA(), &tiff.Options{
			Compression: tiff.Deflate,
			Predictor:   true,
		})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func Decode(r io.Reader, f Format) (*png.Image, error) {
	var (
		src image.Image
		err error
	)

	switch f {
	case PNG:
		return png.DecodeReader(r)
	case PPM:
		return DecodePPM(r)
	case BMP:
		src, err = bmp.Decode(r)
	case TIFF:
		src, err = tiff.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, err
	}
	return png.FromImage(src), nil
}

// Scale resamples img to width x height with a Catmull-Rom kernel.
func Scale(img *png.Image, width, height int) *png.Image {
	if width == img.Width && height == img.Height {
		return img
	}

	src := img.NRGBA()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	out := png.FromImage(dst)
	out.Gamma = img.Gamma
	out.Chunks = img.Chunks
	return out
}
