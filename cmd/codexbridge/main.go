// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// codexbridge installs and manages a local CLIProxyAPI that lets the
// Claude CLI run on a Codex subscription.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/relaykit/codexbridge/cmd/codexbridge/cli"
	"github.com/relaykit/codexbridge/cmd/codexbridge/commands"
	"github.com/relaykit/codexbridge/lib/failure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], commands.DefaultEnvironment())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, env commands.Environment) int {
	err := commands.Root(env).Execute(ctx, commands.StripLegacyFlags(args))
	return exitCode(ctx, err, env.Stderr)
}

// exitCode reports err on stderr and maps it to the process exit code:
// 0 on success, 2 when a signal cancelled the run, 1 otherwise.
func exitCode(ctx context.Context, err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	// Commands that print their own output (status --strict) return
	// an ExitError; don't add an "error:" line for those.
	if coder, ok := err.(interface{ ExitCode() int }); ok {
		return coder.ExitCode()
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "error: interrupted; re-run install to finish")
		return 2
	}
	var usage *cli.UsageError
	if errors.As(err, &usage) {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stderr, "error: %s: %v\n", failure.KindOf(err), err)
	return 1
}
