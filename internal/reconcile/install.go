// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/relaykit/codexbridge/lib/artifact"
	"github.com/relaykit/codexbridge/lib/credential"
	"github.com/relaykit/codexbridge/lib/failure"
	"github.com/relaykit/codexbridge/lib/fsutil"
	"github.com/relaykit/codexbridge/lib/manifest"
	"github.com/relaykit/codexbridge/lib/poll"
	"github.com/relaykit/codexbridge/lib/probe"
	"github.com/relaykit/codexbridge/lib/release"
	"github.com/relaykit/codexbridge/lib/shell"
)

// InstallReport summarizes a successful install.
type InstallReport struct {
	Port    int
	BaseURL string
	Email   string
	Binary  BinaryState

	// SettingsBackup is the earliest settings backup taken by this
	// run, the copy of the file as it was before install touched it.
	// Empty when the file was created or already up to date.
	SettingsBackup string

	// Tiers lists each verified tier with the effort the proxy
	// applied.
	Tiers []TierResult
}

// TierResult is one verified tier.
type TierResult struct {
	Name     string
	Selector string
	Effort   string
}

// Install converges the machine to a running, verified proxy with the
// Claude CLI pointed at it. Re-running it is always safe: previous
// artifacts are torn down first, so the result does not depend on
// what an earlier, possibly interrupted, run left behind.
func (r *Reconciler) Install(ctx context.Context) (InstallReport, error) {
	codex, err := r.checkPreconditions()
	if err != nil {
		return InstallReport{}, err
	}

	r.logger.Info("resolving port", "step", "port")
	port, err := r.resolvePort(ctx)
	if err != nil {
		return InstallReport{}, classify(err, "resolving port")
	}

	previousSettings, err := r.cleanup(ctx)
	if err != nil {
		return InstallReport{}, err
	}

	if err := fsutil.EnsureDirs(r.target.InstallDir, r.target.AuthDir, r.target.LogDir,
		r.target.BinDir, r.target.LaunchAgentsDir); err != nil {
		return InstallReport{}, classify(err, "creating directories")
	}

	binary, err := r.ensureBinary(ctx)
	if err != nil {
		return InstallReport{}, classify(err, "installing proxy binary")
	}

	r.logger.Info("writing proxy config and sync script", "step", "artifacts", "port", port)
	if err := r.writeArtifacts(port, codex.Email); err != nil {
		return InstallReport{}, classify(err, "writing artifacts")
	}

	r.logger.Info("mirroring Codex credential", "step", "sync")
	if err := r.runSync(ctx); err != nil {
		return InstallReport{}, err
	}

	r.logger.Info("registering services", "step", "services")
	if err := r.registerServices(ctx); err != nil {
		return InstallReport{}, err
	}

	r.logger.Info("waiting for proxy", "step", "health", "port", port)
	if err := r.waitHealthy(ctx, port); err != nil {
		return InstallReport{}, err
	}

	r.logger.Info("updating Claude settings", "step", "settings")
	patched, err := r.settings.Install(r.desiredSettings(port))
	if err != nil {
		return InstallReport{}, classifySettings(err)
	}

	r.logger.Info("verifying tier routing", "step", "verify")
	tiers, err := r.verifyTiers(ctx, port)
	if err != nil {
		return InstallReport{}, err
	}

	r.writeManifest(port, binary.Version, patched.Written)

	// On a re-install the backup worth reporting is the one cleanup
	// took: it still holds the settings as the user left them.
	if previousSettings == "" {
		previousSettings = patched.BackupPath
	}
	return InstallReport{
		Port:           port,
		BaseURL:        probe.BaseURL(port),
		Email:          codex.Email,
		Binary:         binary,
		SettingsBackup: previousSettings,
		Tiers:          tiers,
	}, nil
}

// checkPreconditions fails before any state is touched.
func (r *Reconciler) checkPreconditions() (credential.Codex, error) {
	if err := r.requireDarwin("install"); err != nil {
		return credential.Codex{}, err
	}
	if !release.SupportedArch(r.config.Host.Arch) {
		return credential.Codex{}, failure.Unsupported("no proxy build for architecture %q (supported: arm64, amd64)", r.config.Host.Arch)
	}

	codex, err := credential.Read(r.target.CredentialPath)
	if errors.Is(err, fs.ErrNotExist) {
		return credential.Codex{}, failure.Precondition("Codex credential %s not found; run `codex login` first", r.target.CredentialPath)
	}
	if err != nil {
		return credential.Codex{}, failure.Precondition("%w", err)
	}
	if !codex.Complete() {
		return credential.Codex{}, failure.Precondition("Codex credential %s lacks %v; run `codex login` again", r.target.CredentialPath, codex.Missing)
	}
	return codex, nil
}

// cleanup removes everything a previous install left, so install
// starts from nothing. The binary is kept; ensureBinary decides about
// it. It returns the settings backup taken while stripping, if any.
func (r *Reconciler) cleanup(ctx context.Context) (string, error) {
	if !fsutil.Exists(r.target.InstallDir) && !fsutil.Exists(r.target.ProxyDescriptor) && !fsutil.Exists(r.target.SyncDescriptor) {
		return "", nil
	}
	r.logger.Info("removing previous installation", "step", "cleanup")

	r.launchd.Bootout(ctx, r.target.SyncLabel)
	r.launchd.Bootout(ctx, r.target.ProxyLabel)
	for _, path := range []string{r.target.SyncDescriptor, r.target.ProxyDescriptor} {
		if err := fsutil.Remove(path); err != nil {
			return "", classify(err, "cleanup")
		}
	}
	backup, err := r.stripSettings()
	if err != nil {
		return "", err
	}
	if err := fsutil.RemoveTree(r.target.InstallDir); err != nil {
		return "", classify(err, "cleanup")
	}
	return backup, nil
}

func (r *Reconciler) writeArtifacts(port int, email string) error {
	proxyConfig, err := artifact.NewProxyConfig(r.config, port).Render()
	if err != nil {
		return err
	}
	if err := fsutil.WriteAtomic(r.target.ConfigPath, proxyConfig, 0o600); err != nil {
		return err
	}
	script, err := artifact.NewSyncScript(r.target, email).Render()
	if err != nil {
		return err
	}
	return fsutil.WriteAtomic(r.target.SyncScriptPath, script, 0o700)
}

func (r *Reconciler) runSync(ctx context.Context) error {
	_, err := r.runner.Run(ctx, shell.Command{
		Name:    "/bin/sh",
		Args:    []string{r.target.SyncScriptPath},
		Dir:     r.target.InstallDir,
		Timeout: r.config.Timings.CommandTimeout,
	})
	if err != nil {
		var exitErr *shell.ExitError
		if errors.As(err, &exitErr) {
			return failure.External("credential sync script failed: %w", err)
		}
		return classify(err, "running credential sync script")
	}
	return nil
}

// registerServices writes both descriptors and (re)starts the sync job
// first, so the mirror exists before the proxy loads its auth dir.
func (r *Reconciler) registerServices(ctx context.Context) error {
	agents := []struct {
		agent artifact.LaunchAgent
		path  string
	}{
		{artifact.SyncAgent(r.target), r.target.SyncDescriptor},
		{artifact.ProxyAgent(r.target), r.target.ProxyDescriptor},
	}
	for _, entry := range agents {
		rendered, err := entry.agent.Render()
		if err != nil {
			return classify(err, "rendering service descriptor")
		}
		if err := fsutil.WriteAtomic(entry.path, rendered, 0o644); err != nil {
			return classify(err, "writing service descriptor")
		}
	}
	for _, entry := range agents {
		if err := r.launchd.Reload(ctx, entry.agent.Label, entry.path); err != nil {
			return failure.External("%w", err)
		}
	}
	return nil
}

func (r *Reconciler) waitHealthy(ctx context.Context, port int) error {
	policy := poll.Policy{Interval: r.config.Timings.HealthInterval, Timeout: r.config.Timings.HealthTimeout}
	err := poll.Until(ctx, r.clock, policy, func(ctx context.Context) error {
		if r.prober.Healthy(ctx, port) {
			return nil
		}
		return fmt.Errorf("no healthy response on port %d", port)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return failure.External("proxy did not become healthy on port %d within %s; check %s",
			port, r.config.Timings.HealthTimeout, r.target.ProxyLog)
	}
	return nil
}

// verifyTiers sends one request per tier and checks the proxy applied
// that tier's effort. The first request after a restart often lands
// while the proxy is still loading credentials, hence the retries.
func (r *Reconciler) verifyTiers(ctx context.Context, port int) ([]TierResult, error) {
	policy := poll.Policy{Interval: r.config.Timings.VerifyBackoff, Attempts: r.config.Timings.VerifyAttempts}
	results := make([]TierResult, 0, len(r.config.Tiers))
	for _, tier := range r.config.Tiers {
		var applied string
		err := poll.Until(ctx, r.clock, policy, func(ctx context.Context) error {
			effort, err := r.prober.Effort(ctx, port, tier.Selector)
			if err != nil {
				return err
			}
			applied = effort
			if effort != tier.Effort {
				return fmt.Errorf("proxy applied effort %q, want %q", effort, tier.Effort)
			}
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, failure.External("%s tier (%s) did not verify: %w; check %s",
				tier.Name, tier.Selector, err, r.target.ProxyLog)
		}
		r.logger.Info("tier verified", "tier", tier.Name, "model", tier.Selector, "effort", applied)
		results = append(results, TierResult{Name: tier.Name, Selector: tier.Selector, Effort: applied})
	}
	return results, nil
}

// writeManifest records artifact digests. It never fails install; a
// missing manifest only costs status its drift report.
func (r *Reconciler) writeManifest(port int, proxyVersion string, settingsKeys []string) {
	paths := []string{
		r.target.ConfigPath,
		r.target.SyncScriptPath,
		r.target.SyncDescriptor,
		r.target.ProxyDescriptor,
		r.target.BinaryPath,
	}
	built, err := manifest.Build(paths, port, proxyVersion, r.clock.Now())
	if err == nil {
		built.SettingsKeys = settingsKeys
		err = manifest.Write(r.target.ManifestPath, built)
	}
	if err != nil {
		r.logger.Warn("could not write install manifest", "path", r.target.ManifestPath, "error", err)
	}
}
