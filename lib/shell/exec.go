// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Exec is the production Runner backed by os/exec.
type Exec struct {
	// Logger receives one debug record per command. Nil disables
	// logging.
	Logger *slog.Logger
}

// Run starts the command, waits for it, and captures both output
// streams.
func (e Exec) Run(ctx context.Context, command Command) (Result, error) {
	if command.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, command.Timeout)
		defer cancel()
	}

	process := exec.CommandContext(ctx, command.Name, command.Args...)
	process.Dir = command.Dir
	if len(command.Env) > 0 {
		process.Env = append(os.Environ(), command.Env...)
	}
	var stdout, stderr bytes.Buffer
	process.Stdout = &stdout
	process.Stderr = &stderr
	// Grandchildren holding the output pipes must not outlive a
	// cancelled context.
	process.WaitDelay = time.Second

	if e.Logger != nil {
		e.Logger.Debug("running command", "command", command.String(), "tolerant", command.Tolerant)
	}

	runErr := process.Run()
	result := Result{
		ExitStatus: process.ProcessState.ExitCode(),
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
	}
	if runErr == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		// The process never started (missing binary, bad directory)
		// or the context ended before it could.
		result.ExitStatus = -1
		if command.Tolerant {
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%s: %w", command, ctxErr)
		}
		return result, fmt.Errorf("%s: %w", command, runErr)
	}

	if command.Tolerant {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s: %w", command, ctxErr)
	}
	return result, &ExitError{Command: command, Result: result}
}
