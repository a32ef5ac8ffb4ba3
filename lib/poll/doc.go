// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package poll runs a function repeatedly until it succeeds or a
// bounded [Policy] runs out. Health checks use a time bound, tier
// verification and release downloads use an attempt bound; all three
// share [Until].
//
// Waits go through an injected [clock.Clock], so tests drive the loop
// with a fake clock instead of sleeping.
package poll
