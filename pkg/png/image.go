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
	"image"
	"image/color"
)

// Image is a decoded PNG: one non-premultiplied RGBA value per pixel in row
// major order.
type Image struct {
	Width  int
	Height int
	Pix    []color.NRGBA

	// Gamma is the gAMA value (gamma times 100000), 0 when absent.
	Gamma uint32

	// Chunks keeps the ancillary chunks that passed their CRC check, in
	// stream order, except tRNS and gAMA.
	Chunks []Chunk
}

func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]color.NRGBA, width*height),
	}
}

func (img *Image) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return color.NRGBA{}
	}
	return img.Pix[y*img.Width+x]
}

func (img *Image) Set(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return
	}
	img.Pix[y*img.Width+x] = c
}

// NRGBA copies the pixels into a standard library image.
func (img *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for i, c := range img.Pix {
		copy(out.Pix[4*i:4*i+4], []uint8{c.R, c.G, c.B, c.A})
	}
	return out
}

// FromImage converts any image.Image into an Image.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	img := NewImage(b.Dx(), b.Dy())

	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := 0; y < img.Height; y++ {
			row := nrgba.Pix[nrgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < img.Width; x++ {
				p := row[4*x : 4*x+4]
				img.Pix[y*img.Width+x] = color.NRGBA{p[0], p[1], p[2], p[3]}
			}
		}
		return img
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			img.Pix[y*img.Width+x] = c
		}
	}
	return img
}
