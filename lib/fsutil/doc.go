// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package fsutil holds the filesystem primitives every installer write
// goes through: atomic replace ([WriteAtomic], [WriteAtomicFrom]),
// timestamped backups, and not-exist-tolerant removal.
//
// An interrupted install therefore leaves each file either in its old
// state or its new state, never truncated. Re-running install is the
// recovery path for anything in between.
package fsutil
