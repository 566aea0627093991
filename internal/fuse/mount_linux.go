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
package fuse

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/ostafen/pngkit/internal/logger"
	utilos "github.com/ostafen/pngkit/pkg/util/os"
)

// Mount serves entries at mountpoint until a termination signal unmounts it.
func Mount(mountpoint string, entries []FileEntry, log *logger.Logger) error {
	created, err := PrepareMountpoint(mountpoint)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("pngkit"))
	if err != nil {
		return err
	}
	defer c.Close()

	errc := make(chan error, 1)
	go func() {
		srv := fusefs.New(c, nil)
		errc <- srv.Serve(NewChunkFS(entries))
	}()

	log.Infof("mounted %d files at %s", len(entries), mountpoint)
	return waitForUmount(mountpoint, errc, log)
}

func waitForUmount(mountpoint string, errc <-chan error, log *logger.Logger) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	log.Info("Waiting for termination signal...")

	const maxUnmountRetries = 3

	unmountAttempts := 0
	for {
		select {
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("serve error: %w", err)
			}
			return nil
		case sig := <-sigc:
			log.Infof("Signal received: %v.", sig)

			if unmountAttempts >= maxUnmountRetries-1 {
				return fmt.Errorf("maximum unmount retries (%d) exceeded, still unable to unmount %s",
					maxUnmountRetries, mountpoint)
			}

			log.Infof("Attempting unmount of %s (attempt %d/%d)...", mountpoint, unmountAttempts+1, maxUnmountRetries)
			err := fuse.Unmount(mountpoint)
			if err == nil {
				log.Info("Unmounted successfully, exiting.")
				return nil
			}

			unmountAttempts++
			log.Warnf("Unmount failed: %v. Remaining retries: %d. Waiting for another signal to retry...", err, maxUnmountRetries-unmountAttempts)
		}
	}
}

// PrepareMountpoint ensures the given path is an empty directory suitable for
// FUSE mounting, creating it if needed. It reports whether it was created.
func PrepareMountpoint(mountpoint string) (bool, error) {
	return utilos.EnsureDir(mountpoint, true)
}
