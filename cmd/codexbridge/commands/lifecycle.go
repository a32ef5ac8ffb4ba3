// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/relaykit/codexbridge/cmd/codexbridge/cli"
)

func startCommand(env Environment) *cli.Command {
	return &cli.Command{
		Name:    "start",
		Summary: "Start the installed services and wait for the proxy",
		Run: noArgs("start", func(ctx context.Context) error {
			session, err := env.open("start")
			if err != nil {
				return err
			}
			if err := session.operations.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, "Proxy is running.")
			return nil
		}),
	}
}

func stopCommand(env Environment) *cli.Command {
	return &cli.Command{
		Name:    "stop",
		Summary: "Stop both services (files stay in place)",
		Run: noArgs("stop", func(ctx context.Context) error {
			session, err := env.open("stop")
			if err != nil {
				return err
			}
			if err := session.operations.Stop(ctx); err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, "Services stopped.")
			return nil
		}),
	}
}

func uninstallCommand(env Environment) *cli.Command {
	return &cli.Command{
		Name:    "uninstall",
		Summary: "Remove the services and the Claude CLI settings keys",
		Description: `Remove the services and the Claude CLI settings keys.

The proxy binary, its configuration and logs are kept so a later
install is fast. Use purge to remove those too.`,
		Run: noArgs("uninstall", func(ctx context.Context) error {
			session, err := env.open("uninstall")
			if err != nil {
				return err
			}
			if err := session.operations.Uninstall(ctx); err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, "Uninstalled. The proxy binary and configuration were kept.")
			return nil
		}),
	}
}

func purgeCommand(env Environment) *cli.Command {
	return &cli.Command{
		Name:    "purge",
		Summary: "Uninstall and delete the proxy binary, configuration and logs",
		Run: noArgs("purge", func(ctx context.Context) error {
			session, err := env.open("purge")
			if err != nil {
				return err
			}
			if err := session.operations.Purge(ctx); err != nil {
				return err
			}
			fmt.Fprintln(env.Stdout, "Purged.")
			return nil
		}),
	}
}
