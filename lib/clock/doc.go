// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// The installer's only time-dependent behavior is bounded polling
// (health checks, effort verification, download retries) and
// timestamped backup names. Code that needs either accepts a [Clock]
// instead of calling the time package directly. In production, [Real]
// provides the standard library behavior. In tests, [Fake] provides a
// deterministic clock that advances only when Advance is called.
//
// When a goroutine calls Sleep or After on a FakeClock it registers a
// pending waiter. Use WaitForTimers to block until the waiter is
// registered before calling Advance; this removes the race between
// registration and advancement.
package clock
