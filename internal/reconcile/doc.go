// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile sequences codexbridge's operations over the lib
// services.
//
// [Reconciler.Install] converges the machine to a verified state in a
// fixed order: preconditions (macOS, supported architecture, a
// complete Codex credential), port resolution, teardown of any previous
// install, the proxy binary, the proxy config and sync script, one
// synchronous credential sync, the two LaunchAgents, a health wait,
// the Claude CLI settings, per-tier effort verification, and finally
// the drift manifest. Any failure stops the sequence with a
// [failure.Error] whose kind decides how the binary reports it.
//
// [Reconciler.Start], [Reconciler.Stop], [Reconciler.Uninstall] and
// [Reconciler.Purge] manage the installed services; [Reconciler.Status]
// only reads.
//
// Every external effect goes through an injected collaborator
// (shell.Runner, Prober, ReleaseSource, clock.Clock, port probes), so
// the whole sequence runs in tests against a temporary home.
package reconcile
