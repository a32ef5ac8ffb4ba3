// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExecCapturesOutput(t *testing.T) {
	result, err := Exec{}.Run(context.Background(), Command{
		Name: "/bin/sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.ExitStatus != 0 {
		t.Errorf("ExitStatus = %d, want 0", result.ExitStatus)
	}
	if result.Stdout != "out\n" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "out\n")
	}
	if result.Stderr != "err\n" {
		t.Errorf("Stderr = %q, want %q", result.Stderr, "err\n")
	}
}

func TestExecNonzeroExit(t *testing.T) {
	command := Command{Name: "/bin/sh", Args: []string{"-c", "echo missing token >&2; exit 3"}}
	result, err := Exec{}.Run(context.Background(), command)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run() error = %v, want *ExitError", err)
	}
	if result.ExitStatus != 3 {
		t.Errorf("ExitStatus = %d, want 3", result.ExitStatus)
	}
	if !strings.Contains(err.Error(), "missing token") {
		t.Errorf("error %q does not include stderr", err)
	}
}

func TestExecTolerantNonzeroExit(t *testing.T) {
	result, err := Exec{}.Run(context.Background(), Command{
		Name:     "/bin/sh",
		Args:     []string{"-c", "exit 5"},
		Tolerant: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for tolerant command", err)
	}
	if result.ExitStatus != 5 {
		t.Errorf("ExitStatus = %d, want 5", result.ExitStatus)
	}
}

func TestExecMissingBinary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")
	if _, err := (Exec{}).Run(context.Background(), Command{Name: missing}); err == nil {
		t.Error("Run() of missing binary succeeded, want error")
	}
	result, err := Exec{}.Run(context.Background(), Command{Name: missing, Tolerant: true})
	if err != nil {
		t.Errorf("tolerant Run() of missing binary error = %v", err)
	}
	if result.ExitStatus != -1 {
		t.Errorf("ExitStatus = %d, want -1", result.ExitStatus)
	}
}

func TestExecTimeout(t *testing.T) {
	_, err := Exec{}.Run(context.Background(), Command{
		Name:    "/bin/sh",
		Args:    []string{"-c", "exec sleep 10"},
		Timeout: 50 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
}

func TestExecEnvAndDir(t *testing.T) {
	directory := t.TempDir()
	result, err := Exec{}.Run(context.Background(), Command{
		Name: "/bin/sh",
		Args: []string{"-c", `printf '%s %s' "$CODEXBRIDGE_TEST" "$(pwd -P)"`},
		Env:  []string{"CODEXBRIDGE_TEST=value"},
		Dir:  directory,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(directory)
	if want := "value " + resolved; result.Stdout != want {
		t.Errorf("Stdout = %q, want %q", result.Stdout, want)
	}
}

func TestFakeAppliesTolerance(t *testing.T) {
	fake := &Fake{Handler: func(_ context.Context, command Command) (Result, error) {
		return Result{ExitStatus: 1, Stderr: "Boot-out failed: 3: No such process"}, nil
	}}

	if _, err := fake.Run(context.Background(), Command{Name: "launchctl", Tolerant: true}); err != nil {
		t.Errorf("tolerant Run() error = %v", err)
	}
	_, err := fake.Run(context.Background(), Command{Name: "launchctl"})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Errorf("Run() error = %v, want *ExitError", err)
	}
	if got := len(fake.Commands()); got != 2 {
		t.Errorf("len(Commands()) = %d, want 2", got)
	}
}
