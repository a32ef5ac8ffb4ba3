// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package launchd

import (
	"context"
	"fmt"
	"time"

	"github.com/relaykit/codexbridge/lib/shell"
)

// DefaultLaunchctl is the launchctl binary on every supported macOS
// release.
const DefaultLaunchctl = "/bin/launchctl"

// Controller registers and deregisters per-user LaunchAgents in the
// gui/<uid> domain through launchctl.
type Controller struct {
	Runner shell.Runner

	// UID selects the gui/<uid> domain.
	UID int

	// Launchctl overrides the launchctl path. Empty means
	// DefaultLaunchctl.
	Launchctl string

	// Timeout bounds each launchctl invocation. Zero means none.
	Timeout time.Duration
}

func (c Controller) domain() string { return fmt.Sprintf("gui/%d", c.UID) }

func (c Controller) target(label string) string { return c.domain() + "/" + label }

func (c Controller) command(tolerant bool, args ...string) shell.Command {
	name := c.Launchctl
	if name == "" {
		name = DefaultLaunchctl
	}
	return shell.Command{Name: name, Args: args, Tolerant: tolerant, Timeout: c.Timeout}
}

// Bootstrap loads the descriptor at plistPath into the user's GUI
// domain. launchd refuses to bootstrap a label that is already loaded,
// so callers Bootout first.
func (c Controller) Bootstrap(ctx context.Context, plistPath string) error {
	if _, err := c.Runner.Run(ctx, c.command(false, "bootstrap", c.domain(), plistPath)); err != nil {
		return fmt.Errorf("registering %s: %w", plistPath, err)
	}
	return nil
}

// Bootout unloads label. It never fails: the label not being loaded is
// the normal case on a fresh machine.
func (c Controller) Bootout(ctx context.Context, label string) {
	c.Runner.Run(ctx, c.command(true, "bootout", c.target(label)))
}

// Kickstart restarts label, killing any running instance first (-k).
func (c Controller) Kickstart(ctx context.Context, label string) error {
	if _, err := c.Runner.Run(ctx, c.command(false, "kickstart", "-k", c.target(label))); err != nil {
		return fmt.Errorf("starting %s: %w", label, err)
	}
	return nil
}

// Reload is the start sequence for one service: Bootout, Bootstrap,
// Kickstart.
func (c Controller) Reload(ctx context.Context, label, plistPath string) error {
	c.Bootout(ctx, label)
	if err := c.Bootstrap(ctx, plistPath); err != nil {
		return err
	}
	return c.Kickstart(ctx, label)
}

// Loaded reports whether launchd knows about label. launchctl print
// exits 0 only for loaded services.
func (c Controller) Loaded(ctx context.Context, label string) bool {
	result, _ := c.Runner.Run(ctx, c.command(true, "print", c.target(label)))
	return result.ExitStatus == 0
}
