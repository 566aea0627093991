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
	"path/filepath"
	"strings"

	"github.com/ostafen/pngkit/internal/fuse"
	"github.com/spf13/cobra"
)

func DefineMountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <file>",
		Short: "Mount a PNG file as a directory of its chunks",
		Long: `The 'mount' command exposes a PNG file through FUSE as a read-only directory.
It holds one file per chunk payload, named after the chunk index and type (e.g. 000_IHDR), the concatenated
image data stream (IDAT.zlib) and, when the file decodes, its pixels as a PPM image (image.ppm).`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         RunMount,
	}

	cmd.Flags().StringP("mountpoint", "m", "", "Absolute path to the directory where the filesystem will be mounted. If not specified, a default will be generated.")
	cmd.Flags().Bool("allow-missing-iend", false, "accept files that end without an IEND chunk")
	return cmd
}

func RunMount(cmd *cobra.Command, args []string) error {
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

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = getMountpoint(args[0])
	}

	img, err := opts.Decoder(log).Decode(f.Data)
	if err != nil {
		log.Warnf("%s does not decode, %s will not be available: %v", args[0], fuse.ImageFile, err)
	}

	entries, err := fuse.ChunkEntries(f.Data, img)
	if err != nil {
		return err
	}
	return fuse.Mount(mountpoint, entries, log)
}

// getMountpoint generates a mountpoint name from a file name by stripping the extension.
// If the extension is empty, "_mnt" is added.
func getMountpoint(fileName string) string {
	baseName := filepath.Base(fileName)
	ext := filepath.Ext(baseName)
	baseName = strings.TrimSuffix(baseName, ext)
	mountpoint := baseName
	if ext == "" {
		mountpoint += "_mnt"
	}
	return mountpoint
}
