// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Home creates an empty temporary home directory and returns its
// path. It is removed when the test completes.
func Home(t *testing.T) string {
	t.Helper()
	home := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("creating home: %v", err)
	}
	return home
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// ReadFile returns the content of path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// ReadJSON decodes the JSON object stored at path.
func ReadJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	var document map[string]any
	if err := json.Unmarshal([]byte(ReadFile(t, path)), &document); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return document
}
