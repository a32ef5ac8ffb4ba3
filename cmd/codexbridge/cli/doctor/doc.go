// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor renders checklists for codexbridge's inspection
// commands.
//
// Each check produces a [Result] built with [Pass], [Fail],
// [FailWithHint], [Warn] or [Skip]. [PrintChecklist] writes the
// human-readable form with lipgloss status badges and [BuildJSON]
// the machine-readable one. What to check lives in the command
// package; this package only formats.
package doctor
