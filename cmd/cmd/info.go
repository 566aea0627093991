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
	"text/tabwriter"

	"github.com/ostafen/pngkit/pkg/png"
	"github.com/ostafen/pngkit/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Print the header and chunk layout of a PNG file",
		Long: `The 'info' command prints the image header of a PNG file followed by a table of its chunks.
Each row shows the chunk type, the offset of its payload, its length and stored checksum, and whether the checksum matches.
The file is then decoded and the outcome reported.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunInfo,
	}

	cmd.Flags().Bool("allow-missing-iend", false, "accept files that end without an IEND chunk")
	return cmd
}

func RunInfo(cmd *cobra.Command, args []string) error {
	opts, err := parseOptions(cmd)
	if err != nil {
		return err
	}
	log := opts.Logger()

	f, err := openInput(args[0], opts)
	if err != nil {
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:        %s (%s)\n", args[0], format.FormatBytes(int64(f.Size)))

	if err := png.CheckSignature(f.Data); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTYPE\tOFFSET\tLENGTH\tCRC\tCRITICAL\tSTATUS")

	var (
		header    *png.Header
		chunkErr  error
		numChunks int
	)
	for c, err := range png.Chunks(f.Data) {
		if err != nil {
			chunkErr = err
			break
		}

		status := "ok"
		if !c.Valid() {
			status = "bad checksum"
		}
		if c.Type == png.TypeIHDR && header == nil {
			if h, err := png.ParseHeader(c.Data); err == nil {
				header = &h
			} else {
				status = err.Error()
			}
		}

		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%08x\t%t\t%s\n",
			numChunks,
			c.Name(),
			c.Offset,
			c.Length,
			c.CRC,
			c.IsCritical(),
			status,
		)
		numChunks++

		if c.Type == png.TypeIEND {
			break
		}
	}

	if header != nil {
		fmt.Fprintf(out, "Dimensions:  %dx%d\n", header.Width, header.Height)
		fmt.Fprintf(out, "Color type:  %s (%d bit)\n", header.ColorType, header.BitDepth)
		fmt.Fprintf(out, "Interlace:   %d\n", header.Interlace)
	}
	fmt.Fprintf(out, "Chunks:      %d\n\n", numChunks)

	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	if chunkErr != nil {
		fmt.Fprintf(out, "Chunk stream: %v\n", chunkErr)
	}

	img, err := opts.Decoder(log).Decode(f.Data)
	if err != nil {
		fmt.Fprintf(out, "Decode:      FAILED (%v)\n", err)
		return nil
	}

	fmt.Fprintf(out, "Decode:      ok\n")
	if img.Gamma != 0 {
		fmt.Fprintf(out, "Gamma:       %.5f\n", float64(img.Gamma)/100000)
	}
	return nil
}
