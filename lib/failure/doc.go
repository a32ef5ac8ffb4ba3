// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package failure provides the categorized error type returned by the
// reconciler. Lower layers return plain wrapped errors; the reconciler
// classifies them at the step boundary with the kind constructors
// ([Precondition], [External], [Malformed], and so on) and the binary
// prints "error: <kind>: <message>".
package failure
