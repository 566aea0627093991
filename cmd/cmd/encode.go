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
package cmd

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ostafen/pngkit/internal/logger"
	"github.com/ostafen/pngkit/internal/oops"
	"github.com/ostafen/pngkit/pkg/compression"
	"github.com/ostafen/pngkit/pkg/convert"
	"github.com/ostafen/pngkit/pkg/png"
	"github.com/spf13/cobra"
)

func DefineEncodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Encode an image as an 8 bit RGBA PNG",
		Long: `The 'encode' command reads a PPM, BMP, TIFF or PNG image and writes it as a non-interlaced 8 bit RGBA PNG.
The input format is taken from --format or from the file extension.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunEncode,
	}

	cmd.Flags().StringP("output", "o", "", "output file path. Defaults to the input path with a .png extension")
	cmd.Flags().StringP("format", "f", "", "input format (ppm, bmp, tiff, png)")
	cmd.Flags().Int("level", zlib.DefaultCompression, "zlib compression level, from 0 (none) to 9 (best), -1 for the default")
	cmd.Flags().Float64("gamma", 0, "write a gAMA chunk with this image gamma (e.g. 0.45455)")
	cmd.Flags().Bool("keep-chunks", false, "copy the ancillary chunks of a PNG input to the output")
	return cmd
}

type EncodeOptions struct {
	Options

	Output     string
	Format     convert.Format
	Level      int
	Gamma      float64
	KeepChunks bool
}

func parseEncodeOptions(cmd *cobra.Command, input string) (EncodeOptions, error) {
	opts, err := parseOptions(cmd)
	if err != nil {
		return EncodeOptions{}, err
	}

	output, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")
	level, _ := cmd.Flags().GetInt("level")
	gamma, _ := cmd.Flags().GetFloat64("gamma")
	keepChunks, _ := cmd.Flags().GetBool("keep-chunks")

	var f convert.Format
	if formatName != "" {
		f, err = convert.ParseFormat(formatName)
	} else {
		f, err = convert.FormatFromPath(input)
	}
	if err != nil {
		return EncodeOptions{}, err
	}

	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		return EncodeOptions{}, fmt.Errorf("--level must be between %d and %d, got %d", zlib.HuffmanOnly, zlib.BestCompression, level)
	}
	if gamma < 0 {
		return EncodeOptions{}, fmt.Errorf("--gamma must not be negative, got %g", gamma)
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		return EncodeOptions{}, fmt.Errorf("refusing to overwrite input file %s", input)
	}

	return EncodeOptions{
		Options:    opts,
		Output:     output,
		Format:     f,
		Level:      level,
		Gamma:      gamma,
		KeepChunks: keepChunks,
	}, nil
}

func RunEncode(cmd *cobra.Command, args []string) error {
	opts, err := parseEncodeOptions(cmd, args[0])
	if err != nil {
		return err
	}
	log := opts.Logger()

	img, err := readImage(args[0], opts, log)
	if err != nil {
		log.Err(err, "encode failed")
		return err
	}

	enc := png.Encoder{
		Codec: compression.NewZlib(opts.Level),
	}
	if opts.KeepChunks {
		for _, c := range img.Chunks {
			enc.AddChunk(c)
		}
	} else {
		img.Gamma = 0
	}
	if opts.Gamma > 0 {
		enc.RemoveChunks(png.TypeGAMA)
		enc.AddChunk(png.GammaChunk(uint32(math.Round(opts.Gamma * 100000))))
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := enc.Encode(out, img); err != nil {
		return oops.New(err, "cannot encode %s", opts.Output)
	}
	if err := out.Close(); err != nil {
		return err
	}

	log.Infof("wrote %dx%d PNG to %s", img.Width, img.Height, opts.Output)
	return nil
}

func readImage(path string, opts EncodeOptions, log *logger.Logger) (*png.Image, error) {
	if opts.Format == convert.PNG {
		return decodeFile(path, opts.Options, log)
	}

	f, err := openInput(path, opts.Options)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := convert.Decode(bytes.NewReader(f.Data), opts.Format)
	if err != nil {
		return nil, oops.New(err, "cannot read %s", path)
	}
	return img, nil
}
