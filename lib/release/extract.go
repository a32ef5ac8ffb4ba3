// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/relaykit/codexbridge/lib/fsutil"
)

// maxEntrySize caps any single archive entry. The proxy binary is
// tens of megabytes.
const maxEntrySize = 512 << 20

// Extract unpacks a gzip-compressed tar stream into destination.
// Only directories and regular files are materialized; links and
// device nodes are skipped. Entries that would land outside
// destination are rejected.
func Extract(source io.Reader, destination string) error {
	decompressor, err := gzip.NewReader(source)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer decompressor.Close()

	archive := tar.NewReader(decompressor)
	for {
		header, err := archive.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		target, err := entryPath(destination, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("extracting %s: %w", header.Name, err)
			}
		case tar.TypeReg:
			if header.Size > maxEntrySize {
				return fmt.Errorf("archive entry %s is %d bytes, over the %d byte limit", header.Name, header.Size, maxEntrySize)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("extracting %s: %w", header.Name, err)
			}
			if err := writeEntry(target, archive, os.FileMode(header.Mode).Perm()); err != nil {
				return fmt.Errorf("extracting %s: %w", header.Name, err)
			}
		}
	}
}

func entryPath(destination, name string) (string, error) {
	target := filepath.Join(destination, name)
	relative, err := filepath.Rel(destination, target)
	if err != nil || relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the extraction directory", name)
	}
	return target, nil
}

func writeEntry(path string, source io.Reader, perm os.FileMode) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm|0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, io.LimitReader(source, maxEntrySize)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// InstallBinary extracts the archive into a scratch directory under
// stagingParent, finds the file named binaryName anywhere in it, and
// atomically installs it at target with mode 0755. The scratch
// directory is removed afterwards.
func InstallBinary(source io.Reader, stagingParent, binaryName, target string) error {
	staging, err := os.MkdirTemp(stagingParent, ".release-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := Extract(source, staging); err != nil {
		return err
	}
	found, err := fsutil.FindFile(staging, binaryName)
	if err != nil {
		return fmt.Errorf("release archive: %w", err)
	}
	binary, err := os.Open(found)
	if err != nil {
		return fmt.Errorf("opening extracted binary: %w", err)
	}
	defer binary.Close()

	return fsutil.WriteAtomicFrom(target, binary, 0o755)
}
