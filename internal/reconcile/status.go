// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"io/fs"

	"github.com/relaykit/codexbridge/lib/credential"
	"github.com/relaykit/codexbridge/lib/fsutil"
	"github.com/relaykit/codexbridge/lib/manifest"
	"github.com/relaykit/codexbridge/lib/probe"
	"github.com/relaykit/codexbridge/lib/settings"
)

// Report is a read-only snapshot of the installation. Status never
// changes anything, so every field is best effort: a component that
// cannot be inspected reports an Error string instead of failing the
// whole report.
type Report struct {
	GOOS string `json:"goos"`

	Port int `json:"port"`

	// PortConfigured is false when no proxy config exists and Port is
	// the default.
	PortConfigured bool   `json:"port_configured"`
	BaseURL        string `json:"base_url"`
	Healthy        bool   `json:"healthy"`

	// The remaining sections are only filled on macOS.
	Services   []ServiceStatus   `json:"services,omitempty"`
	Binary     *BinaryStatus     `json:"binary,omitempty"`
	Credential *CredentialStatus `json:"credential,omitempty"`
	Settings   *SettingsStatus   `json:"settings,omitempty"`
	Manifest   *ManifestStatus   `json:"manifest,omitempty"`
}

type ServiceStatus struct {
	Label      string `json:"label"`
	Descriptor string `json:"descriptor"`
	Present    bool   `json:"present"`
	Loaded     bool   `json:"loaded"`
}

type BinaryStatus struct {
	Path    string `json:"path"`
	Present bool   `json:"present"`
	Version string `json:"version,omitempty"`

	// BelowMinimum is set when Version parsed and is older than the
	// configured minimum.
	BelowMinimum bool `json:"below_minimum"`
}

type CredentialStatus struct {
	Path     string   `json:"path"`
	Present  bool     `json:"present"`
	Complete bool     `json:"complete"`
	Email    string   `json:"email,omitempty"`
	Missing  []string `json:"missing,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type SettingsStatus struct {
	Path    string `json:"path"`
	BaseURL string `json:"base_url,omitempty"`

	// Matches is true when the settings point at the proxy's URL.
	Matches bool   `json:"matches"`
	Error   string `json:"error,omitempty"`
}

type ManifestStatus struct {
	Path    string           `json:"path"`
	Present bool             `json:"present"`
	Drift   []manifest.Drift `json:"drift,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// OK reports whether everything an installed, running proxy needs is
// in place. status --strict exits non-zero when it is false.
func (r Report) OK() bool {
	if !r.Healthy {
		return false
	}
	if r.Settings != nil && !r.Settings.Matches {
		return false
	}
	for _, service := range r.Services {
		if !service.Present || !service.Loaded {
			return false
		}
	}
	if r.Manifest != nil && len(r.Manifest.Drift) > 0 {
		return false
	}
	return true
}

// Status inspects the installation without modifying it.
func (r *Reconciler) Status(ctx context.Context) Report {
	port, configured := r.configuredPort()
	report := Report{
		GOOS:           r.config.Host.GOOS,
		Port:           port,
		PortConfigured: configured,
		BaseURL:        probe.BaseURL(port),
		Healthy:        r.prober.Healthy(ctx, port),
	}
	if r.config.Host.GOOS != "darwin" {
		return report
	}

	for _, service := range []struct{ label, descriptor string }{
		{r.target.ProxyLabel, r.target.ProxyDescriptor},
		{r.target.SyncLabel, r.target.SyncDescriptor},
	} {
		report.Services = append(report.Services, ServiceStatus{
			Label:      service.label,
			Descriptor: service.descriptor,
			Present:    fsutil.Exists(service.descriptor),
			Loaded:     r.launchd.Loaded(ctx, service.label),
		})
	}

	report.Binary = r.binaryStatus(ctx)
	report.Credential = r.credentialStatus()
	report.Settings = r.settingsStatus(report.BaseURL)
	report.Manifest = r.manifestStatus()
	return report
}

func (r *Reconciler) binaryStatus(ctx context.Context) *BinaryStatus {
	status := &BinaryStatus{Path: r.target.BinaryPath, Present: fsutil.Exists(r.target.BinaryPath)}
	if !status.Present {
		return status
	}
	if version, ok := r.binaryVersion(ctx); ok {
		status.Version = version.String()
		status.BelowMinimum = version.Less(r.config.MinVersion())
	}
	return status
}

func (r *Reconciler) credentialStatus() *CredentialStatus {
	status := &CredentialStatus{Path: r.target.CredentialPath}
	codex, err := credential.Read(r.target.CredentialPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return status
	case err != nil:
		status.Present = true
		status.Error = err.Error()
		return status
	}
	status.Present = true
	status.Complete = codex.Complete()
	status.Email = codex.Email
	status.Missing = codex.Missing
	return status
}

func (r *Reconciler) settingsStatus(want string) *SettingsStatus {
	status := &SettingsStatus{Path: r.target.SettingsPath}
	baseURL, err := settings.ReadBaseURL(r.target.SettingsPath)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.BaseURL = baseURL
	status.Matches = baseURL == want
	return status
}

func (r *Reconciler) manifestStatus() *ManifestStatus {
	status := &ManifestStatus{Path: r.target.ManifestPath}
	recorded, err := manifest.Read(r.target.ManifestPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return status
	case err != nil:
		status.Present = true
		status.Error = err.Error()
		return status
	}
	status.Present = true
	status.Drift = recorded.Check()
	return status
}
