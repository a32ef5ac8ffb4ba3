// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/relaykit/codexbridge/cmd/codexbridge/cli"
	"github.com/relaykit/codexbridge/internal/reconcile"
)

func installCommand(env Environment) *cli.Command {
	return &cli.Command{
		Name:    "install",
		Summary: "Install, configure and verify the proxy (the default)",
		Description: `Install, configure and verify the proxy.

Downloads the proxy when it is missing or older than the supported
minimum, writes its configuration and the credential sync script,
registers both LaunchAgents, waits for the proxy to answer, points the
Claude CLI at it, and checks each model tier is routed with the
expected reasoning effort. A previous installation is torn down first,
so re-running install is also the way to repair one.`,
		Examples: []cli.Example{
			{Description: "Install or repair", Command: "codexbridge"},
			{Description: "Keep an older pinned proxy binary", Command: "CODEXBRIDGE_PIN_VERSION=1 codexbridge install"},
		},
		Run: noArgs("install", func(ctx context.Context) error {
			session, err := env.open("install")
			if err != nil {
				return err
			}
			report, err := session.operations.Install(ctx)
			if err != nil {
				return err
			}
			printInstallSummary(env.Stdout, session.config.Target.SettingsPath, report)
			return nil
		}),
	}
}

func printInstallSummary(w io.Writer, settingsPath string, report reconcile.InstallReport) {
	fmt.Fprintln(w, "codexbridge is installed.")
	fmt.Fprintln(w)

	binary := report.Binary.Version
	if binary == "" {
		binary = "version unknown"
	}
	if report.Binary.Downloaded {
		binary += ", just downloaded"
	}
	settings := settingsPath
	if report.SettingsBackup != "" {
		settings += " (previous version saved to " + report.SettingsBackup + ")"
	}

	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  proxy\t%s\n", report.BaseURL)
	fmt.Fprintf(tw, "  binary\t%s\n", binary)
	if report.Email != "" {
		fmt.Fprintf(tw, "  account\t%s\n", report.Email)
	}
	fmt.Fprintf(tw, "  settings\t%s\n", settings)
	for _, tier := range report.Tiers {
		fmt.Fprintf(tw, "  %s\t%s, effort %s\n", tier.Name, tier.Selector, tier.Effort)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Start a new Claude CLI session to pick up the settings.")
}
