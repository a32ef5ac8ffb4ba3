// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the
// codexbridge binary.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//	go build -ldflags "-X github.com/relaykit/codexbridge/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// They default to "unknown" / "0.3.0-dev" in development builds and
// test runs. [Info] and [Full] format them for the version command;
// [UserAgent] identifies the installer to the release feed.
package version
