// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// ArchiveEntry is one file in an archive built by TarGz. Names ending
// in "/" become directories.
type ArchiveEntry struct {
	Name    string
	Content string
	Mode    int64
}

// TarGz builds a gzip-compressed tar archive from entries.
func TarGz(t *testing.T, entries ...ArchiveEntry) []byte {
	t.Helper()
	var buffer bytes.Buffer
	compressor := gzip.NewWriter(&buffer)
	archive := tar.NewWriter(compressor)
	for _, entry := range entries {
		header := &tar.Header{Name: entry.Name, Mode: entry.Mode, Typeflag: tar.TypeReg, Size: int64(len(entry.Content))}
		if header.Mode == 0 {
			header.Mode = 0o644
		}
		if n := len(entry.Name); n > 0 && entry.Name[n-1] == '/' {
			header.Typeflag = tar.TypeDir
			header.Size = 0
			header.Mode = 0o755
		}
		if err := archive.WriteHeader(header); err != nil {
			t.Fatalf("writing tar header %s: %v", entry.Name, err)
		}
		if header.Typeflag == tar.TypeReg {
			if _, err := archive.Write([]byte(entry.Content)); err != nil {
				t.Fatalf("writing tar entry %s: %v", entry.Name, err)
			}
		}
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	if err := compressor.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	return buffer.Bytes()
}
