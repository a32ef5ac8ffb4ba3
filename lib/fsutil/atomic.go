// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to path with the given mode. Readers never
// see a partial file: the data goes to a temporary file in the same
// directory, which is fsynced, chmodded and renamed over path. The
// parent directory must already exist.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteAtomicFrom(path, bytes.NewReader(data), perm)
}

// WriteAtomicFrom is WriteAtomic for streamed content, used when
// installing a binary straight out of a release archive.
func WriteAtomicFrom(path string, source io.Reader, perm os.FileMode) error {
	directory := filepath.Dir(path)
	file, err := os.CreateTemp(directory, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	temporaryPath := file.Name()

	// Write, sync, chmod, close, in that order. If any step fails,
	// remove the temporary file and report the first error.
	if _, err := io.Copy(file, source); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary file for %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary file for %s: %w", path, err)
	}
	// CreateTemp uses 0600; umask does not apply to Chmod.
	if err := file.Chmod(perm); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("setting mode on temporary file for %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary file for %s: %w", path, err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming %s into place: %w", path, err)
	}

	parentDirectory, err := os.Open(directory)
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}
