// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package failure

import (
	"errors"
	"fmt"
)

// Kind classifies installer errors so the command layer can print a
// stable category prefix and tests can assert on the class of failure
// without matching message text.
type Kind string

const (
	// KindPrecondition indicates the host is not ready for the
	// operation: the Codex credential is missing, or start was run
	// before install. The user should fix the environment and re-run.
	KindPrecondition Kind = "precondition"

	// KindExternal indicates an external tool or service misbehaved:
	// launchctl rejected a descriptor, the sync script exited nonzero,
	// the proxy never became healthy, or a tier did not verify.
	KindExternal Kind = "external"

	// KindMalformed indicates a file the installer reads but does not
	// own could not be parsed, such as a settings file that is not a
	// JSON object.
	KindMalformed Kind = "malformed"

	// KindTransient indicates a network failure talking to the release
	// feed. Re-running install may succeed.
	KindTransient Kind = "transient"

	// KindUnsupported indicates the host OS or architecture has no
	// supported proxy build.
	KindUnsupported Kind = "unsupported"

	// KindInternal indicates an unexpected error: local I/O failures
	// and bugs.
	KindInternal Kind = "internal"
)

// Error is a categorized error. It wraps an inner error so errors.Is
// and errors.As still see the full chain.
type Error struct {
	// Kind classifies the error for reporting.
	Kind Kind

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying message. The kind is rendered
// separately by the command layer.
func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Precondition creates a precondition error.
func Precondition(format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Err: fmt.Errorf(format, args...)}
}

// External creates an external-dependency error.
func External(format string, args ...any) *Error {
	return &Error{Kind: KindExternal, Err: fmt.Errorf(format, args...)}
}

// Malformed creates a malformed-data error.
func Malformed(format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient network error.
func Transient(format string, args ...any) *Error {
	return &Error{Kind: KindTransient, Err: fmt.Errorf(format, args...)}
}

// Unsupported creates an unsupported-platform error.
func Unsupported(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupported, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain, or
// KindInternal when err carries no classification. KindOf(nil) is "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindInternal
}

// Is reports whether err's chain contains an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
