// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest records the BLAKE3 digest of every file install
// generates and later reports which of them drifted. The manifest is
// advisory: nothing depends on it for correctness, and re-running
// install rewrites it.
package manifest
