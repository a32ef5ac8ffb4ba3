// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [Home] builds a throwaway home directory so installer tests never
// touch the real ~/.claude or ~/Library. [WriteFile] and [ReadJSON]
// shorten fixture setup and assertions against it.
//
// [TarGz] builds an in-memory release archive in the same format the
// proxy's release feed publishes, and [CodexAuth] builds a Codex CLI
// credential file with a signed-looking id_token.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
