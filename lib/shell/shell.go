// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Command describes one external process invocation.
type Command struct {
	// Name is the executable, resolved through PATH when it contains
	// no slash.
	Name string

	Args []string

	// Env entries ("KEY=value") are appended to the parent's
	// environment.
	Env []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Tolerant makes a nonzero exit (or a failure to start) a normal
	// outcome: Run returns the Result and a nil error. Deregistering a
	// service that is not registered is the typical tolerant call.
	Tolerant bool

	// Timeout bounds the process lifetime. Zero means only the
	// caller's context applies.
	Timeout time.Duration
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a process that ran.
type Result struct {
	// ExitStatus is the process exit code, or -1 when the process
	// could not be started or was killed.
	ExitStatus int
	Stdout     string
	Stderr     string
}

// Output returns stderr when non-empty, else stdout, trimmed. Tools
// disagree about which stream carries their diagnostics.
func (r Result) Output() string {
	if text := strings.TrimSpace(r.Stderr); text != "" {
		return text
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner executes external commands. The reconciler only talks to
// launchctl, the sync script and the proxy binary through a Runner, so
// tests substitute a [Fake].
type Runner interface {
	Run(ctx context.Context, command Command) (Result, error)
}

// ExitError is returned by Run for a non-tolerant command that exited
// nonzero. It carries the captured output so callers can surface it.
type ExitError struct {
	Command Command
	Result  Result
}

func (e *ExitError) Error() string {
	output := e.Result.Output()
	if output == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.Result.ExitStatus)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.Result.ExitStatus, output)
}
