// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"strings"
)

// ProxyBinaryName is the name of the proxy executable, both inside the
// release archive and once installed.
const ProxyBinaryName = "cli-proxy-api"

// Target is every filesystem location and service label the installer
// manages. It is derived from the home directory and user name and
// never persisted.
type Target struct {
	InstallDir     string
	ConfigPath     string
	AuthDir        string
	MirrorPath     string
	SyncScriptPath string
	LogDir         string
	ProxyLog       string
	SyncLog        string
	ManifestPath   string

	BinDir     string
	BinaryPath string

	LaunchAgentsDir string
	ProxyLabel      string
	SyncLabel       string
	ProxyDescriptor string
	SyncDescriptor  string

	SettingsPath   string
	CredentialPath string
}

// NewTarget derives the install layout for a user.
func NewTarget(home, username string) Target {
	name := SanitizeName(username)
	installDir := filepath.Join(home, ".cli-proxy-api")
	authDir := filepath.Join(installDir, "auths")
	logDir := filepath.Join(installDir, "logs")
	binDir := filepath.Join(home, ".local", "bin")
	agentsDir := filepath.Join(home, "Library", "LaunchAgents")
	proxyLabel := "com." + name + ".cli-proxy-api"
	syncLabel := proxyLabel + ".codex-sync"

	return Target{
		InstallDir:     installDir,
		ConfigPath:     filepath.Join(installDir, "config.yaml"),
		AuthDir:        authDir,
		MirrorPath:     filepath.Join(authDir, "codex-"+name+".json"),
		SyncScriptPath: filepath.Join(installDir, "sync-codex-token.sh"),
		LogDir:         logDir,
		ProxyLog:       filepath.Join(logDir, "proxy.log"),
		SyncLog:        filepath.Join(logDir, "sync-codex-token.log"),
		ManifestPath:   filepath.Join(installDir, "manifest.json"),

		BinDir:     binDir,
		BinaryPath: filepath.Join(binDir, ProxyBinaryName),

		LaunchAgentsDir: agentsDir,
		ProxyLabel:      proxyLabel,
		SyncLabel:       syncLabel,
		ProxyDescriptor: filepath.Join(agentsDir, proxyLabel+".plist"),
		SyncDescriptor:  filepath.Join(agentsDir, syncLabel+".plist"),

		SettingsPath:   filepath.Join(home, ".claude", "settings.json"),
		CredentialPath: filepath.Join(home, ".codex", "auth.json"),
	}
}

// SanitizeName replaces every character outside [A-Za-z0-9._-] with
// '-' so a user name is safe inside a launchd label and a file name.
// An empty name becomes "user".
func SanitizeName(username string) string {
	if username == "" {
		return "user"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		default:
			return '-'
		}
	}, username)
}
