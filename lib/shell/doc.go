// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package shell runs external processes behind the narrow [Runner]
// interface.
//
// Every call states up front whether failure is acceptable through
// [Command].Tolerant. A tolerant call never returns an error for a
// nonzero exit; a non-tolerant one returns an [*ExitError] carrying the
// captured stdout and stderr so the caller can report what the tool
// said.
package shell
