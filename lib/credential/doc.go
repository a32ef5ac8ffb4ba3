// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential inspects the Codex CLI's ~/.codex/auth.json: which
// token fields are present and the account email inside the id_token.
// The email is baked into the sync script so the mirrored credential
// names its account.
package credential
