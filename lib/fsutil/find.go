// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

var errFound = errors.New("found")

// FindFile walks root and returns the path of the first regular file
// whose base name is name, in lexical walk order. Release archives
// nest the binary under a versioned directory whose name changes
// between releases, so callers search rather than guess.
func FindFile(root, name string) (string, error) {
	var match string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.Type().IsRegular() && entry.Name() == name {
			match = path
			return errFound
		}
		return nil
	})
	if errors.Is(err, errFound) {
		return match, nil
	}
	if err != nil {
		return "", fmt.Errorf("searching %s for %s: %w", root, name, err)
	}
	return "", fmt.Errorf("searching %s for %s: %w", root, name, fs.ErrNotExist)
}
