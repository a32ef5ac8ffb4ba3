// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfoMarksDirtyBuilds(t *testing.T) {
	originalDirty, originalCommit := GitDirty, GitCommit
	t.Cleanup(func() { GitDirty, GitCommit = originalDirty, originalCommit })

	GitCommit = "abc1234"
	GitDirty = "true"
	if got := Info(); !strings.Contains(got, "abc1234-dirty") {
		t.Errorf("Info() = %q, want it to contain %q", got, "abc1234-dirty")
	}

	GitDirty = "false"
	if got := Info(); strings.Contains(got, "-dirty") {
		t.Errorf("Info() = %q, should not be marked dirty", got)
	}
}

func TestFullIncludesPlatform(t *testing.T) {
	if got := Full(); !strings.Contains(got, "Platform: ") {
		t.Errorf("Full() = %q, want a Platform line", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "codexbridge/"+Version {
		t.Errorf("UserAgent() = %q, want %q", got, "codexbridge/"+Version)
	}
}
