// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for codexbridge.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. The tree is assembled in cmd/codexbridge/commands and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3), prints usage to stderr, and
// returns a [UsageError].
//
// [FlagsFromParams] binds flags from struct tags; [NewCommandLogger]
// builds the slog logger commands report progress through; [ExitError]
// carries an exit code for commands that already printed their output.
package cli
