// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/relaykit/codexbridge/cmd/codexbridge/cli"
	"github.com/relaykit/codexbridge/internal/reconcile"
	"github.com/relaykit/codexbridge/lib/config"
	"github.com/relaykit/codexbridge/lib/failure"
	"github.com/relaykit/codexbridge/lib/probe"
	"github.com/relaykit/codexbridge/lib/release"
	"github.com/relaykit/codexbridge/lib/shell"
	"github.com/relaykit/codexbridge/lib/version"
)

// Operations is what the command tree drives. *reconcile.Reconciler
// implements it.
type Operations interface {
	Install(ctx context.Context) (reconcile.InstallReport, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status(ctx context.Context) reconcile.Report
	Uninstall(ctx context.Context) error
	Purge(ctx context.Context) error
}

// Environment is everything the command tree takes from the process.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Color enables status badge colours on Stdout.
	Color bool

	DetectHost func() (config.Host, error)

	// NewOperations wires the operations for one invocation.
	NewOperations func(cfg *config.Config, logger *slog.Logger) Operations
}

// DefaultEnvironment is the production environment.
func DefaultEnvironment() Environment {
	return Environment{
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Getenv:        os.Getenv,
		Color:         cli.IsTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "",
		DetectHost:    config.DetectHost,
		NewOperations: NewReconciler,
	}
}

// NewReconciler wires a Reconciler to the real process runner, HTTP
// prober and release feed.
func NewReconciler(cfg *config.Config, logger *slog.Logger) Operations {
	return reconcile.New(reconcile.Options{
		Config: cfg,
		Runner: shell.Exec{Logger: logger},
		Prober: &probe.Prober{
			Token:         cfg.AuthToken,
			HealthTimeout: cfg.Timings.HealthProbeTimeout,
			EffortTimeout: cfg.Timings.VerifyProbeTimeout,
			Logger:        logger,
		},
		Releases: &release.Client{
			Feed:      cfg.ReleaseFeed,
			UserAgent: version.UserAgent(),
		},
		Logger: logger,
	})
}

// session is the per-invocation state shared by every command: the
// loaded configuration, its logger and the wired operations.
type session struct {
	config     *config.Config
	logger     *slog.Logger
	operations Operations
}

func (e Environment) open(command string) (*session, error) {
	host, err := e.DetectHost()
	if err != nil {
		return nil, failure.Internal("%w", err)
	}
	cfg, err := config.Load(host, e.Getenv)
	if err != nil {
		return nil, failure.Malformed("%w", err)
	}
	logger := cli.NewCommandLogger(e.Stderr, cfg.Debug).With("command", command)
	if cfg.OverridesPath != "" {
		logger.Debug("applied overrides", "path", cfg.OverridesPath)
	}
	return &session{config: cfg, logger: logger, operations: e.NewOperations(cfg, logger)}, nil
}

// Root builds the codexbridge command tree.
func Root(env Environment) *cli.Command {
	install := installCommand(env)
	root := &cli.Command{
		Name: "codexbridge",
		Description: `codexbridge: route the Claude CLI through a local CLIProxyAPI that
reuses your Codex login.

Running it without a command installs (or repairs) everything: the
proxy binary, its configuration, two LaunchAgents, and the Claude CLI
settings. Every command is safe to re-run.`,
		Usage:  "codexbridge [command] [flags]",
		Stdout: env.Stdout,
		Stderr: env.Stderr,
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Usagef("unexpected argument %q", args[0])
			}
			return install.Run(ctx, args)
		},
		Subcommands: []*cli.Command{
			install,
			startCommand(env),
			stopCommand(env),
			statusCommand(env),
			uninstallCommand(env),
			purgeCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					if len(args) > 0 {
						return cli.Usagef("version takes no arguments")
					}
					fmt.Fprintf(env.Stdout, "codexbridge %s\n", version.Full())
					return nil
				},
			},
		},
	}
	return root
}

// StripLegacyFlags drops --yes and -y, which older releases used to
// skip confirmation prompts. Nothing prompts any more, so they are
// accepted anywhere and ignored.
func StripLegacyFlags(args []string) []string {
	kept := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--yes" || arg == "-y" {
			continue
		}
		kept = append(kept, arg)
	}
	return kept
}

// noArgs wraps a Run function that takes no positional arguments.
func noArgs(name string, run func(ctx context.Context) error) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		if len(args) > 0 {
			return cli.Usagef("%s takes no arguments (got %q)", name, args[0])
		}
		return run(ctx)
	}
}
