// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/relaykit/codexbridge/cmd/codexbridge/cli"
	"github.com/relaykit/codexbridge/cmd/codexbridge/cli/doctor"
	"github.com/relaykit/codexbridge/internal/reconcile"
)

type statusParams struct {
	JSON   bool `flag:"json" desc:"print the checklist and full report as JSON"`
	Strict bool `flag:"strict" desc:"exit 1 when any check fails"`
}

func statusCommand(env Environment) *cli.Command {
	var params statusParams
	return &cli.Command{
		Name:    "status",
		Summary: "Show proxy, service, binary, credential and settings state",
		Description: `Show proxy, service, binary, credential and settings state.

Status only reads. It exits 0 whatever it finds unless --strict is
given, in which case any failing check exits 1.`,
		Usage: "codexbridge status [--json] [--strict]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("status", &params)
		},
		Examples: []cli.Example{
			{Description: "Use in scripts", Command: "codexbridge status --strict --json"},
		},
		Run: noArgs("status", func(ctx context.Context) error {
			session, err := env.open("status")
			if err != nil {
				return err
			}
			report := session.operations.Status(ctx)
			results := checklist(report)

			if params.JSON {
				data, err := json.MarshalIndent(doctor.BuildJSON(results, report), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintf(env.Stdout, "%s\n", data)
			} else {
				doctor.PrintChecklist(env.Stdout, doctor.NewStyles(env.Stdout, env.Color), results)
			}

			if params.Strict && doctor.Failed(results) {
				return &cli.ExitError{Code: 1}
			}
			return nil
		}),
	}
}

// checklist turns a status report into checklist rows.
func checklist(report reconcile.Report) []doctor.Result {
	var results []doctor.Result

	if report.Healthy {
		results = append(results, doctor.Pass("proxy health", report.BaseURL+" answers"))
	} else {
		results = append(results, doctor.FailWithHint("proxy health", "no answer on "+report.BaseURL,
			"run `codexbridge start`, or `codexbridge install` if it was never installed"))
	}
	if report.GOOS != "darwin" {
		return append(results, doctor.Skip("services", "launchd checks need macOS; this host runs "+report.GOOS))
	}

	for _, service := range report.Services {
		switch {
		case !service.Present:
			results = append(results, doctor.FailWithHint(service.Label, "descriptor "+service.Descriptor+" missing", "run `codexbridge install`"))
		case !service.Loaded:
			results = append(results, doctor.FailWithHint(service.Label, "not loaded", "run `codexbridge start`"))
		default:
			results = append(results, doctor.Pass(service.Label, "loaded"))
		}
	}

	if binary := report.Binary; binary != nil {
		switch {
		case !binary.Present:
			results = append(results, doctor.FailWithHint("proxy binary", binary.Path+" not found", "run `codexbridge install`"))
		case binary.Version == "":
			results = append(results, doctor.Warn("proxy binary", "version unknown"))
		case binary.BelowMinimum:
			results = append(results, doctor.Warn("proxy binary", "version "+binary.Version+" is below the supported minimum"))
		default:
			results = append(results, doctor.Pass("proxy binary", "version "+binary.Version))
		}
	}

	if credential := report.Credential; credential != nil {
		switch {
		case !credential.Present:
			results = append(results, doctor.FailWithHint("codex credential", credential.Path+" not found", "run `codex login`"))
		case credential.Error != "":
			results = append(results, doctor.FailWithHint("codex credential", credential.Error, "run `codex login`"))
		case !credential.Complete:
			results = append(results, doctor.FailWithHint("codex credential", "missing "+strings.Join(credential.Missing, ", "), "run `codex login`"))
		default:
			message := "complete"
			if credential.Email != "" {
				message = credential.Email
			}
			results = append(results, doctor.Pass("codex credential", message))
		}
	}

	if settings := report.Settings; settings != nil {
		switch {
		case settings.Error != "":
			results = append(results, doctor.FailWithHint("claude settings", settings.Error, "fix or move "+settings.Path))
		case settings.BaseURL == "":
			results = append(results, doctor.FailWithHint("claude settings", "no proxy base URL", "run `codexbridge install`"))
		case !settings.Matches:
			results = append(results, doctor.FailWithHint("claude settings",
				"points at "+settings.BaseURL+", want "+report.BaseURL, "run `codexbridge install`"))
		default:
			results = append(results, doctor.Pass("claude settings", "points at the proxy"))
		}
	}

	if manifest := report.Manifest; manifest != nil {
		switch {
		case !manifest.Present:
			results = append(results, doctor.Warn("installed files", "no install manifest"))
		case manifest.Error != "":
			results = append(results, doctor.Warn("installed files", manifest.Error))
		case len(manifest.Drift) > 0:
			drifted := make([]string, 0, len(manifest.Drift))
			for _, drift := range manifest.Drift {
				drifted = append(drifted, fmt.Sprintf("%s (%s)", drift.Path, drift.Kind))
			}
			results = append(results, doctor.FailWithHint("installed files",
				"changed since install: "+strings.Join(drifted, ", "), "re-run `codexbridge install`"))
		default:
			results = append(results, doctor.Pass("installed files", "unchanged since install"))
		}
	}

	return results
}
