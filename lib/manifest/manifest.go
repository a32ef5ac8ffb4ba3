// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/zeebo/blake3"

	"github.com/relaykit/codexbridge/lib/fsutil"
)

// SchemaVersion identifies the manifest layout.
const SchemaVersion = 1

// Manifest records what install wrote, so status can tell when a
// generated file was edited or removed afterwards.
type Manifest struct {
	SchemaVersion int       `json:"schema_version"`
	InstalledAt   time.Time `json:"installed_at"`
	Port          int       `json:"port"`

	// ProxyVersion is the version the installed binary reported, or
	// empty when it could not be determined.
	ProxyVersion string `json:"proxy_version,omitempty"`

	Artifacts []Entry `json:"artifacts"`

	// SettingsKeys are the timeout and flag keys install added to the
	// Claude settings. Uninstall removes only these.
	SettingsKeys []string `json:"settings_keys"`
}

// Entry is one generated file and the BLAKE3 digest of its content at
// install time.
type Entry struct {
	Path   string `json:"path"`
	BLAKE3 string `json:"blake3"`
}

// Digest returns the hex BLAKE3-256 digest of the file at path.
func Digest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Build hashes every path into a new manifest.
func Build(paths []string, port int, proxyVersion string, installedAt time.Time) (Manifest, error) {
	manifest := Manifest{
		SchemaVersion: SchemaVersion,
		InstalledAt:   installedAt.UTC(),
		Port:          port,
		ProxyVersion:  proxyVersion,
	}
	for _, path := range paths {
		digest, err := Digest(path)
		if err != nil {
			return Manifest{}, err
		}
		manifest.Artifacts = append(manifest.Artifacts, Entry{Path: path, BLAKE3: digest})
	}
	return manifest, nil
}

// Write stores the manifest atomically with mode 0600.
func Write(path string, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return fsutil.WriteAtomic(path, append(data, '\n'), 0o600)
}

// Read loads the manifest at path. A missing file returns an error
// wrapping fs.ErrNotExist.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if manifest.SchemaVersion != SchemaVersion {
		return Manifest{}, fmt.Errorf("manifest %s has schema version %d, want %d", path, manifest.SchemaVersion, SchemaVersion)
	}
	return manifest, nil
}

// DriftKind says how an artifact departed from the manifest.
type DriftKind string

const (
	DriftModified DriftKind = "modified"
	DriftMissing  DriftKind = "missing"
)

// Drift is one artifact that no longer matches the manifest.
type Drift struct {
	Path string    `json:"path"`
	Kind DriftKind `json:"kind"`
}

// Check re-hashes every recorded artifact and returns those that
// changed or disappeared, in manifest order. Unreadable files other
// than missing ones count as modified.
func (m Manifest) Check() []Drift {
	var drifted []Drift
	for _, entry := range m.Artifacts {
		digest, err := Digest(entry.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			drifted = append(drifted, Drift{Path: entry.Path, Kind: DriftMissing})
		case err != nil || digest != entry.BLAKE3:
			drifted = append(drifted, Drift{Path: entry.Path, Kind: DriftModified})
		}
	}
	return drifted
}
