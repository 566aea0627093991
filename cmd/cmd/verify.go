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
	"os"
	"text/tabwriter"

	"github.com/ostafen/pngkit/pkg/pbar"
	"github.com/ostafen/pngkit/pkg/util/format"
	"github.com/spf13/cobra"
)

func DefineVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>...",
		Short: "Check that PNG files decode cleanly",
		Long: `The 'verify' command fully decodes every given PNG file, checking signatures, chunk checksums and order, and image data.
A report line is printed for each file. The command fails if any file is invalid.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE:         RunVerify,
	}

	cmd.Flags().Bool("allow-missing-iend", false, "accept files that end without an IEND chunk")
	cmd.Flags().Bool("no-progress", false, "do not render the progress bar")
	return cmd
}

type verifyResult struct {
	path   string
	size   int64
	detail string
	ok     bool
}

func RunVerify(cmd *cobra.Command, args []string) error {
	opts, err := parseOptions(cmd)
	if err != nil {
		return err
	}
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	log := opts.Logger()

	pbs := pbar.NewProgressBarState(cmd.ErrOrStderr(), len(args))

	results := make([]verifyResult, 0, len(args))
	for _, path := range args {
		res := verifyResult{path: path}
		if fi, err := os.Stat(path); err == nil {
			res.size = fi.Size()
		}

		img, err := decodeFile(path, opts, log)
		if err != nil {
			log.Err(err, "invalid file")
			res.detail = err.Error()
		} else {
			res.ok = true
			res.detail = fmt.Sprintf("%dx%d", img.Width, img.Height)
		}
		results = append(results, res)

		pbs.Done(res.size, res.ok)
		if !noProgress {
			pbs.Render(false)
		}
	}
	if !noProgress {
		pbs.Finish()
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSIZE\tSTATUS\tDETAIL")
	for _, res := range results {
		status := "OK"
		if !res.ok {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.path, format.FormatBytes(res.size), status, res.detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if pbs.FailedFiles > 0 {
		return fmt.Errorf("%d of %d files failed verification", pbs.FailedFiles, len(args))
	}
	return nil
}
