// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
)

// Exists reports whether path names an existing file or directory.
// Errors other than not-exist (permission denied on a parent, for
// example) are treated as existing so callers do not skip cleanup.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// EnsureDirs creates each directory and its parents with mode 0755.
// Existing directories are left as they are.
func EnsureDirs(paths ...string) error {
	for _, path := range paths {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", path, err)
		}
	}
	return nil
}

// Remove deletes a file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// RemoveTree deletes a directory and everything below it. A missing
// directory is not an error.
func RemoveTree(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// BackupPath returns the timestamped backup name for path:
// "<path>.backup.<unix-milliseconds>".
func BackupPath(path string, now time.Time) string {
	return path + ".backup." + strconv.FormatInt(now.UnixMilli(), 10)
}

// Backup copies the current content of path to BackupPath(path, now)
// with the original's permission bits and returns the backup path.
// When that name is taken (two backups within one millisecond) the
// timestamp is bumped until a free name is found, so an earlier
// backup is never overwritten.
func Backup(path string, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("backing up %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("backing up %s: %w", path, err)
	}
	backupPath := BackupPath(path, now)
	for Exists(backupPath) {
		now = now.Add(time.Millisecond)
		backupPath = BackupPath(path, now)
	}
	if err := WriteAtomic(backupPath, data, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("backing up %s: %w", path, err)
	}
	return backupPath, nil
}
