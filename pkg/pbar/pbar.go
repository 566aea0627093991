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
package pbar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ostafen/pngkit/pkg/util/format"
)

const MinRefreshRate = time.Millisecond * 500

// ProgressBarState holds all the data needed to render the progress bar
type ProgressBarState struct {
	TotalFiles     int
	ProcessedFiles int
	FailedFiles    int
	ProcessedBytes int64
	StartTime      time.Time
	LastUpdateTime time.Time

	out io.Writer
}

// NewProgressBarState initializes a new ProgressBarState writing to out
func NewProgressBarState(out io.Writer, totalFiles int) *ProgressBarState {
	return &ProgressBarState{
		TotalFiles: totalFiles,
		StartTime:  time.Now(),
		out:        out,
	}
}

// Done records one processed file of the given size.
func (pbs *ProgressBarState) Done(size int64, ok bool) {
	pbs.ProcessedFiles++
	pbs.ProcessedBytes += size
	if !ok {
		pbs.FailedFiles++
	}
}

// Render updates and prints the progress bar line
func (pbs *ProgressBarState) Render(force bool) {
	if !force && time.Since(pbs.LastUpdateTime) < MinRefreshRate {
		return
	}

	percentage := 100.0
	if pbs.TotalFiles > 0 {
		percentage = float64(pbs.ProcessedFiles) / float64(pbs.TotalFiles) * 100
	}

	barLength := 20
	filledLen := int(float64(barLength) * percentage / 100)
	var bar string
	if filledLen >= barLength {
		bar = strings.Repeat("=", barLength)
	} else {
		bar = strings.Repeat("=", filledLen) + ">" + strings.Repeat(" ", barLength-filledLen-1)
	}

	elapsed := time.Since(pbs.StartTime)
	speedMBps := float64(pbs.ProcessedBytes) / (1024 * 1024) / max(elapsed.Seconds(), 1e-9)

	pbs.LastUpdateTime = time.Now()

	// \r moves the cursor to the beginning of the line
	// We print spaces to clear any leftover characters from a previous longer line
	fmt.Fprintf(pbs.out, "\r[INFO] Progress: [%s] %3.0f%% (%d/%d files, %s) | Failed: %d | @ %.2fMB/s    ",
		bar,
		percentage,
		pbs.ProcessedFiles,
		pbs.TotalFiles,
		format.FormatBytes(pbs.ProcessedBytes),
		pbs.FailedFiles,
		speedMBps)
}

// Finish prints a newline, effectively finishing the progress bar output
func (pbs *ProgressBarState) Finish() {
	pbs.Render(true)
	fmt.Fprintln(pbs.out)
}
