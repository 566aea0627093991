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
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ostafen/pngkit/internal/oops"
	"github.com/ostafen/pngkit/pkg/convert"
	utilos "github.com/ostafen/pngkit/pkg/util/os"
	"github.com/spf13/cobra"
)

func DefineDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a PNG file into another image format",
		Long: `The 'decode' command decodes a PNG file and writes its pixels as PPM, BMP, TIFF or 8 bit RGBA PNG.
The output format is taken from --format, or else from the extension of --output, and defaults to PPM.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunDecode,
	}

	cmd.Flags().StringP("output", "o", "", "output file path. If not specified, it is derived from the input name")
	cmd.Flags().StringP("format", "f", "", "output format (ppm, bmp, tiff, png)")
	cmd.Flags().StringP("out-dir", "d", ".", "directory for the derived output file, created if missing")
	cmd.Flags().Float64("scale", 1, "resize the image by this factor before writing it")
	cmd.Flags().Bool("allow-missing-iend", false, "accept files that end without an IEND chunk")
	return cmd
}

type DecodeOptions struct {
	Options

	Output string
	Format convert.Format
	Scale  float64
}

func parseDecodeOptions(cmd *cobra.Command, input string) (DecodeOptions, error) {
	opts, err := parseOptions(cmd)
	if err != nil {
		return DecodeOptions{}, err
	}

	output, _ := cmd.Flags().GetString("output")
	outDir, _ := cmd.Flags().GetString("out-dir")
	formatName, _ := cmd.Flags().GetString("format")
	scale, _ := cmd.Flags().GetFloat64("scale")

	if scale <= 0 {
		return DecodeOptions{}, fmt.Errorf("--scale must be positive, got %g", scale)
	}

	f := convert.PPM
	switch {
	case formatName != "":
		f, err = convert.ParseFormat(formatName)
	case output != "":
		f, err = convert.FormatFromPath(output)
	}
	if err != nil {
		return DecodeOptions{}, err
	}

	if output == "" {
		if _, err := utilos.EnsureDir(outDir, false); err != nil {
			return DecodeOptions{}, err
		}
		base := filepath.Base(input)
		output = filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+"."+string(f))
	}
	if filepath.Clean(output) == filepath.Clean(input) {
		return DecodeOptions{}, fmt.Errorf("refusing to overwrite input file %s", input)
	}

	return DecodeOptions{
		Options: opts,
		Output:  output,
		Format:  f,
		Scale:   scale,
	}, nil
}

func RunDecode(cmd *cobra.Command, args []string) error {
	opts, err := parseDecodeOptions(cmd, args[0])
	if err != nil {
		return err
	}
	log := opts.Logger()

	img, err := decodeFile(args[0], opts.Options, log)
	if err != nil {
		log.Err(err, "decode failed")
		return err
	}

	if opts.Scale != 1 {
		w := max(1, int(math.Round(float64(img.Width)*opts.Scale)))
		h := max(1, int(math.Round(float64(img.Height)*opts.Scale)))

		log.Debugf("scaling %dx%d to %dx%d", img.Width, img.Height, w, h)
		img = convert.Scale(img, w, h)
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := convert.Encode(out, img, opts.Format); err != nil {
		return oops.New(err, "cannot write %s", opts.Output)
	}
	if err := out.Close(); err != nil {
		return err
	}

	log.Infof("wrote %dx%d %s image to %s", img.Width, img.Height, strings.ToUpper(string(opts.Format)), opts.Output)
	return nil
}
