// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package release downloads and installs CLIProxyAPI builds.
//
// [Client] reads the GitHub "latest release" metadata and streams
// assets. [SelectAsset] picks the archive for the host platform by name
// suffix. [InstallBinary] unpacks the tar.gz, searches it for the
// binary and installs it atomically. [ParseVersion] reads the version
// a binary reports about itself so stale installs can be detected.
package release
