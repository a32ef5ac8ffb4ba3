// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"fmt"

	"github.com/relaykit/codexbridge/lib/config"
	"github.com/relaykit/codexbridge/lib/failure"
	"github.com/relaykit/codexbridge/lib/fsutil"
	"github.com/relaykit/codexbridge/lib/poll"
	"github.com/relaykit/codexbridge/lib/release"
	"github.com/relaykit/codexbridge/lib/shell"
)

// BinaryState is what install found and did about the proxy binary.
type BinaryState struct {
	// Version is what the binary reported after this step, or empty
	// when it reported nothing parseable.
	Version string

	// Downloaded is true when a release was fetched and installed.
	Downloaded bool

	// Reason explains the decision, for the summary.
	Reason string
}

// binaryVersion asks the installed binary for its version. A binary
// that ignores --version and starts serving is cut off by the
// timeout, which reads as unknown.
func (r *Reconciler) binaryVersion(ctx context.Context) (release.Version, bool) {
	result, _ := r.runner.Run(ctx, shell.Command{
		Name:     r.target.BinaryPath,
		Args:     []string{"--version"},
		Tolerant: true,
		Timeout:  r.config.Timings.VersionTimeout,
	})
	if version, ok := release.ParseVersion(result.Stdout); ok {
		return version, true
	}
	return release.ParseVersion(result.Stderr)
}

// ensureBinary makes sure a recent enough proxy binary is installed.
func (r *Reconciler) ensureBinary(ctx context.Context) (BinaryState, error) {
	minimum := r.config.MinVersion()

	var reason string
	switch {
	case !fsutil.Exists(r.target.BinaryPath):
		reason = "not installed"
	default:
		current, known := r.binaryVersion(ctx)
		switch {
		case known && !current.Less(minimum):
			return BinaryState{Version: current.String(), Reason: "up to date"}, nil
		case known && r.config.PinVersion:
			r.logger.Warn("keeping pinned proxy below the minimum version",
				"version", current.String(), "minimum", minimum.String())
			return BinaryState{Version: current.String(), Reason: "pinned"}, nil
		case known:
			reason = fmt.Sprintf("version %s is older than %s", current, minimum)
		case r.config.ForceUpdate:
			reason = "version unknown, update forced"
		default:
			r.logger.Warn("cannot determine proxy version; leaving the binary alone",
				"path", r.target.BinaryPath, "hint", config.EnvForceUpdate+"=1 replaces it")
			return BinaryState{Reason: "version unknown"}, nil
		}
	}

	r.logger.Info("downloading proxy", "step", "binary", "reason", reason)
	if err := r.download(ctx); err != nil {
		return BinaryState{}, err
	}
	state := BinaryState{Downloaded: true, Reason: reason}
	if version, ok := r.binaryVersion(ctx); ok {
		state.Version = version.String()
	}
	return state, nil
}

// download fetches the latest release for the host and installs its
// binary. Network steps are retried; a release without a build for
// this host is not.
func (r *Reconciler) download(ctx context.Context) error {
	arch := r.config.Host.Arch
	if !release.SupportedArch(arch) {
		return failure.Unsupported("no proxy build for architecture %q (supported: arm64, amd64)", arch)
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timings.DownloadTimeout)
	defer cancel()
	policy := poll.Policy{Interval: r.config.Timings.DownloadBackoff, Attempts: r.config.Timings.DownloadAttempts}

	var latest release.Release
	err := poll.Until(ctx, r.clock, policy, func(ctx context.Context) error {
		var err error
		latest, err = r.releases.Latest(ctx)
		return err
	})
	if err != nil {
		return failure.Transient("fetching release metadata from %s: %w", r.config.ReleaseFeed, err)
	}

	asset, err := release.SelectAsset(latest, "darwin", arch)
	if err != nil {
		return failure.Unsupported("%w", err)
	}

	err = poll.Until(ctx, r.clock, policy, func(ctx context.Context) error {
		body, err := r.releases.Download(ctx, asset.URL)
		if err != nil {
			return err
		}
		defer body.Close()
		return release.InstallBinary(body, r.target.BinDir, config.ProxyBinaryName, r.target.BinaryPath)
	})
	if err != nil {
		return failure.Transient("installing %s from %s: %w", asset.Name, latest.Tag, err)
	}
	r.logger.Info("installed proxy", "release", latest.Tag, "path", r.target.BinaryPath)
	return nil
}
