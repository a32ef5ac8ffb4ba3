// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"

	"github.com/relaykit/codexbridge/lib/config"
)

// LaunchAgent is a per-user launchd job descriptor.
type LaunchAgent struct {
	Label            string
	ProgramArguments []string
	WorkingDirectory string

	// WatchPaths starts the job whenever one of these paths changes.
	WatchPaths []string

	RunAtLoad bool
	KeepAlive bool

	// ProcessType is launchd's scheduling class; empty leaves the
	// default.
	ProcessType string

	// LogPath receives both stdout and stderr.
	LogPath string
}

// Render produces the property list XML.
func (a LaunchAgent) Render() ([]byte, error) {
	if a.Label == "" || len(a.ProgramArguments) == 0 {
		return nil, fmt.Errorf("launch agent needs a label and a program")
	}
	data, err := render("launchagent.plist.tmpl", a)
	if err != nil {
		return nil, fmt.Errorf("rendering %s descriptor: %w", a.Label, err)
	}
	return data, nil
}

// ProxyAgent describes the long-running proxy: started at login and
// restarted whenever it exits.
func ProxyAgent(target config.Target) LaunchAgent {
	return LaunchAgent{
		Label:            target.ProxyLabel,
		ProgramArguments: []string{target.BinaryPath, "--config", target.ConfigPath},
		WorkingDirectory: target.InstallDir,
		RunAtLoad:        true,
		KeepAlive:        true,
		LogPath:          target.ProxyLog,
	}
}

// SyncAgent describes the credential mirror job: run once at load and
// again every time the Codex credential file changes.
func SyncAgent(target config.Target) LaunchAgent {
	return LaunchAgent{
		Label:            target.SyncLabel,
		ProgramArguments: []string{"/bin/sh", target.SyncScriptPath},
		WorkingDirectory: target.InstallDir,
		WatchPaths:       []string{target.CredentialPath},
		RunAtLoad:        true,
		ProcessType:      "Background",
		LogPath:          target.SyncLog,
	}
}
