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

	"github.com/ostafen/pngkit/internal/logger"
	"github.com/ostafen/pngkit/internal/mmap"
	"github.com/ostafen/pngkit/internal/oops"
	"github.com/ostafen/pngkit/pkg/png"
	"github.com/ostafen/pngkit/pkg/util/format"
	"github.com/spf13/cobra"
)

// Options are the settings shared by every command.
type Options struct {
	LogLevel         logger.Level
	DisableLog       bool
	MaxSize          int64
	AllowMissingIEND bool
}

func parseOptions(cmd *cobra.Command) (Options, error) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	disableLog, _ := cmd.Flags().GetBool("no-log")
	allowMissingIEND, _ := cmd.Flags().GetBool("allow-missing-iend")

	maxSize, err := getBytes(cmd, "max-size")
	if err != nil {
		return Options{}, err
	}

	return Options{
		LogLevel:         logger.ParseLevel(logLevel),
		DisableLog:       disableLog,
		MaxSize:          maxSize,
		AllowMissingIEND: allowMissingIEND,
	}, nil
}

func getBytes(cmd *cobra.Command, name string) (int64, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return 0, nil
	}

	v, err := format.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}

func (opts Options) Logger() *logger.Logger {
	if opts.DisableLog {
		return logger.Nop()
	}
	return logger.New(os.Stderr, opts.LogLevel)
}

func (opts Options) Decoder(log *logger.Logger) *png.Decoder {
	return png.NewDecoder(png.DecoderOptions{
		AllowMissingIEND: opts.AllowMissingIEND,
		Logger:           log.Zerolog(),
	})
}

// openInput maps path. Files over the --max-size limit are refused before
// they are mapped.
func openInput(path string, opts Options) (*mmap.File, error) {
	finfo, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if opts.MaxSize > 0 && finfo.Size() > opts.MaxSize {
		return nil, fmt.Errorf("%s is %s, larger than the %s limit",
			path, format.FormatBytes(finfo.Size()), format.FormatBytes(opts.MaxSize))
	}
	return mmap.Open(path)
}

// decodeFile decodes the PNG at path.
func decodeFile(path string, opts Options, log *logger.Logger) (*png.Image, error) {
	f, err := openInput(path, opts)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	log.Debugf("decoding %s (%s)", path, format.FormatBytes(int64(f.Size)))

	img, err := opts.Decoder(log).Decode(f.Data)
	if err != nil {
		return nil, oops.New(err, "cannot decode %s", path)
	}
	return img, nil
}
