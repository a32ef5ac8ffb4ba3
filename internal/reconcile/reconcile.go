// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"

	"github.com/relaykit/codexbridge/lib/artifact"
	"github.com/relaykit/codexbridge/lib/clock"
	"github.com/relaykit/codexbridge/lib/config"
	"github.com/relaykit/codexbridge/lib/failure"
	"github.com/relaykit/codexbridge/lib/launchd"
	"github.com/relaykit/codexbridge/lib/manifest"
	"github.com/relaykit/codexbridge/lib/probe"
	"github.com/relaykit/codexbridge/lib/release"
	"github.com/relaykit/codexbridge/lib/settings"
	"github.com/relaykit/codexbridge/lib/shell"
)

// Prober checks the running proxy. *probe.Prober implements it.
type Prober interface {
	Healthy(ctx context.Context, port int) bool
	Effort(ctx context.Context, port int, model string) (string, error)
}

// ReleaseSource provides proxy builds. *release.Client implements it.
type ReleaseSource interface {
	Latest(ctx context.Context) (release.Release, error)
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Options wires a Reconciler to its collaborators. Config, Runner,
// Prober and Releases are required.
type Options struct {
	Config   *config.Config
	Runner   shell.Runner
	Prober   Prober
	Releases ReleaseSource

	// Clock drives polling waits and timestamps. Nil means
	// clock.Real().
	Clock clock.Clock

	// Logger receives one record per step. Nil discards.
	Logger *slog.Logger

	// PortFree reports whether port can be bound on the loopback
	// interface. Nil means trying net.Listen.
	PortFree func(port int) bool

	// EphemeralPort returns a port the OS considers free. Nil means
	// listening on 127.0.0.1:0.
	EphemeralPort func() (int, error)
}

// Reconciler sequences the install, start, stop, status, uninstall
// and purge operations. It is the only component that orders steps;
// everything it calls is a single-shot service.
type Reconciler struct {
	config   *config.Config
	target   config.Target
	runner   shell.Runner
	prober   Prober
	releases ReleaseSource
	clock    clock.Clock
	logger   *slog.Logger
	launchd  launchd.Controller
	settings *settings.Patcher

	portFree      func(int) bool
	ephemeralPort func() (int, error)
}

// New builds a Reconciler from options.
func New(options Options) *Reconciler {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if options.PortFree == nil {
		options.PortFree = loopbackPortFree
	}
	if options.EphemeralPort == nil {
		options.EphemeralPort = loopbackEphemeralPort
	}
	cfg := options.Config
	return &Reconciler{
		config:   cfg,
		target:   cfg.Target,
		runner:   options.Runner,
		prober:   options.Prober,
		releases: options.Releases,
		clock:    options.Clock,
		logger:   options.Logger,
		launchd: launchd.Controller{
			Runner:  options.Runner,
			UID:     cfg.Host.UID,
			Timeout: cfg.Timings.CommandTimeout,
		},
		settings: &settings.Patcher{
			Path:   cfg.Target.SettingsPath,
			Clock:  options.Clock,
			Logger: options.Logger,
		},
		portFree:      options.PortFree,
		ephemeralPort: options.EphemeralPort,
	}
}

// desiredSettings is the settings state for a proxy on port.
func (r *Reconciler) desiredSettings(port int) settings.Desired {
	models := make(map[string]string, len(r.config.Tiers))
	for _, tier := range r.config.Tiers {
		models[tier.EnvKey()] = tier.Selector
	}
	return settings.Desired{
		BaseURL:   probe.BaseURL(port),
		AuthToken: r.config.AuthToken,
		Models:    models,
	}
}

// configuredPort is the port in the proxy config, or the default when
// the config is missing or unreadable.
func (r *Reconciler) configuredPort() (int, bool) {
	if port, ok := artifact.ReadPort(r.target.ConfigPath); ok {
		return port, true
	}
	return r.config.DefaultPort, false
}

func (r *Reconciler) requireDarwin(operation string) error {
	if r.config.Host.GOOS != "darwin" {
		return failure.Unsupported("%s needs macOS launchd; this host runs %s", operation, r.config.Host.GOOS)
	}
	return nil
}

// stripSettings removes every owned settings key and returns the
// backup taken, if any. Malformed content is fatal. It must run before
// the install directory, and the manifest in it, is removed.
func (r *Reconciler) stripSettings() (string, error) {
	desired := r.desiredSettings(r.config.DefaultPort)
	desired.Written = r.writtenSettingsKeys()
	result, err := r.settings.Uninstall(desired)
	if err != nil {
		return "", classifySettings(err)
	}
	if result.Changed {
		r.logger.Info("removed proxy settings", "path", r.target.SettingsPath, "backup", result.BackupPath)
	}
	return result.BackupPath, nil
}

// writtenSettingsKeys returns the settings keys the last install
// recorded, or nil when no manifest records them.
func (r *Reconciler) writtenSettingsKeys() []string {
	recorded, err := manifest.Read(r.target.ManifestPath)
	if err != nil {
		return nil
	}
	return recorded.SettingsKeys
}

func classifySettings(err error) error {
	if errors.Is(err, settings.ErrMalformed) {
		return failure.Malformed("%w; fix or move the file and re-run", err)
	}
	return failure.Internal("updating settings: %w", err)
}

// classify wraps err as an internal failure unless it already carries
// a kind or is a cancellation, which the binary reports separately.
func classify(err error, format string, args ...any) error {
	wrapped := fmt.Errorf(format+": %w", append(args, err)...)
	var classified *failure.Error
	if errors.As(err, &classified) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return wrapped
	}
	return &failure.Error{Kind: failure.KindInternal, Err: wrapped}
}

func loopbackPortFree(port int) bool {
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

func loopbackEphemeralPort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("allocating a loopback port: %w", err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}
