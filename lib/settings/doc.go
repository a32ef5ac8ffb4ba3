// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package settings merges the installer's keys into the Claude CLI's
// ~/.claude/settings.json.
//
// The file belongs to the user. It is handled as an opaque [Document]
// and only a fixed set of env keys is touched: the base URL, a
// placeholder token, the three per-tier default models, four timeout
// minimums (raised, never lowered) and two flags (added only when
// absent). Every write is preceded by a timestamped backup and goes
// through an atomic rename with mode 0600. A patch that changes
// nothing writes nothing.
//
// Content that cannot be parsed as a JSON object, or whose "env" is
// not an object, fails with [ErrMalformed] and the file is left as it
// was. That includes // comments and trailing commas, which a rewrite
// would lose.
//
// Install reports which timeout and flag keys it actually added.
// Handing that list back through [Desired] makes uninstall remove
// only those.
package settings
