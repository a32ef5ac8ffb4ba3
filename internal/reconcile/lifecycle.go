// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"

	"github.com/relaykit/codexbridge/lib/failure"
	"github.com/relaykit/codexbridge/lib/fsutil"
)

// Start re-registers and starts both services from the descriptors
// on disk, then waits for the proxy to answer.
func (r *Reconciler) Start(ctx context.Context) error {
	if err := r.requireDarwin("start"); err != nil {
		return err
	}
	if fsutil.Exists(r.target.SyncDescriptor) {
		if err := r.launchd.Reload(ctx, r.target.SyncLabel, r.target.SyncDescriptor); err != nil {
			return failure.External("%w", err)
		}
	}
	if !fsutil.Exists(r.target.ProxyDescriptor) {
		return failure.Precondition("%s is missing; run install first", r.target.ProxyDescriptor)
	}
	if err := r.launchd.Reload(ctx, r.target.ProxyLabel, r.target.ProxyDescriptor); err != nil {
		return failure.External("%w", err)
	}

	port, _ := r.configuredPort()
	r.logger.Info("waiting for proxy", "step", "health", "port", port)
	return r.waitHealthy(ctx, port)
}

// Stop deregisters both services. Services that are not running are
// not an error.
func (r *Reconciler) Stop(ctx context.Context) error {
	r.launchd.Bootout(ctx, r.target.ProxyLabel)
	r.launchd.Bootout(ctx, r.target.SyncLabel)
	r.logger.Info("stopped services", "proxy", r.target.ProxyLabel, "sync", r.target.SyncLabel)
	return nil
}

// Uninstall deregisters the services, deletes their descriptors and
// removes the installer's keys from the Claude settings. The binary,
// proxy config and install directory stay. Uninstalling when nothing
// is installed succeeds.
func (r *Reconciler) Uninstall(ctx context.Context) error {
	if err := r.Stop(ctx); err != nil {
		return err
	}
	for _, path := range []string{r.target.ProxyDescriptor, r.target.SyncDescriptor} {
		if err := fsutil.Remove(path); err != nil {
			return classify(err, "uninstall")
		}
	}
	_, err := r.stripSettings()
	return err
}

// Purge is Uninstall plus deletion of the install directory and the
// proxy binary.
func (r *Reconciler) Purge(ctx context.Context) error {
	if err := r.Uninstall(ctx); err != nil {
		return err
	}
	if err := fsutil.RemoveTree(r.target.InstallDir); err != nil {
		return classify(err, "purge")
	}
	if err := fsutil.Remove(r.target.BinaryPath); err != nil {
		return classify(err, "purge")
	}
	r.logger.Info("removed installation", "dir", r.target.InstallDir, "binary", r.target.BinaryPath)
	return nil
}
