// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/relaykit/codexbridge/lib/clock"
	"github.com/relaykit/codexbridge/lib/fsutil"
)

// Patcher applies read-modify-write changes to one settings file.
type Patcher struct {
	Path string

	// Clock stamps backup names.
	Clock clock.Clock

	// Logger receives one record per write. Nil disables logging.
	Logger *slog.Logger
}

// Result describes what a patch did.
type Result struct {
	// Changed is false when the patched document equalled the
	// original and nothing was written.
	Changed bool

	// BackupPath is the backup taken before writing, or empty when
	// the file did not exist or nothing changed.
	BackupPath string

	// Written is what Apply reported for an install. Passing it back
	// as Desired.Written lets Uninstall remove exactly those keys.
	Written []string
}

// Install converges the file toward desired.
func (p *Patcher) Install(desired Desired) (Result, error) {
	var written []string
	result, err := p.patch(func(document Document) error {
		var err error
		written, err = document.Apply(desired)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	result.Written = written
	return result, nil
}

// Uninstall removes the keys Install owns. A missing file stays
// missing.
func (p *Patcher) Uninstall(desired Desired) (Result, error) {
	return p.patch(func(document Document) error { return document.Strip(desired) })
}

func (p *Patcher) patch(mutate func(Document) error) (Result, error) {
	document, exists, err := Read(p.Path)
	if err != nil {
		return Result{}, err
	}
	before, err := document.Encode()
	if err != nil {
		return Result{}, err
	}

	if err := mutate(document); err != nil {
		return Result{}, fmt.Errorf("%s: %w", p.Path, err)
	}
	after, err := document.Encode()
	if err != nil {
		return Result{}, err
	}

	if bytes.Equal(before, after) {
		return Result{}, nil
	}
	// Stripping a missing file must not create one.
	if !exists && len(document) == 0 {
		return Result{}, nil
	}

	var result Result
	result.Changed = true
	if exists {
		result.BackupPath, err = fsutil.Backup(p.Path, p.Clock.Now())
		if err != nil {
			return Result{}, err
		}
	} else if err := fsutil.EnsureDirs(filepath.Dir(p.Path)); err != nil {
		return Result{}, err
	}

	if err := fsutil.WriteAtomic(p.Path, after, 0o600); err != nil {
		return Result{}, err
	}
	if p.Logger != nil {
		p.Logger.Info("updated settings", "path", p.Path, "backup", result.BackupPath)
	}
	return result, nil
}

// ReadBaseURL returns env.ANTHROPIC_BASE_URL from the file at path, or
// empty when the file or key is absent.
func ReadBaseURL(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	document, _, err := Read(path)
	if err != nil {
		return "", err
	}
	return document.EnvString(KeyBaseURL), nil
}
