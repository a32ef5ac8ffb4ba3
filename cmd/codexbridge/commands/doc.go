// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the codexbridge command tree: install (the
// default), start, stop, status, uninstall, purge and version. Each
// command loads the configuration, wires a reconcile.Reconciler through
// [Environment.NewOperations] and prints a short human summary; status
// renders a checklist.
package commands
