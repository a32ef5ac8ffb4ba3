// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package launchd drives per-user LaunchAgents with the modern
// launchctl verbs (bootstrap, bootout, kickstart, print) in the
// gui/<uid> domain. Descriptor rendering lives in lib/artifact; this
// package only issues commands through a [shell.Runner].
package launchd
