// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strconv"
)

// Host describes the machine and account the installer runs as.
type Host struct {
	Home     string
	Username string
	UID      int

	// GOOS is the operating system, as runtime.GOOS.
	GOOS string

	// Arch is the normalized CPU architecture of the machine (not of
	// the running binary, which may be translated by Rosetta).
	Arch string
}

// DetectHost resolves the current user and machine.
func DetectHost() (Host, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Host{}, fmt.Errorf("resolving home directory: %w", err)
	}

	username := os.Getenv("USER")
	if current, err := user.Current(); err == nil {
		username = current.Username
	}

	return Host{
		Home:     home,
		Username: username,
		UID:      os.Getuid(),
		GOOS:     runtime.GOOS,
		Arch:     NormalizeArch(machineArch()),
	}, nil
}

// NormalizeArch maps kernel machine names onto release asset
// architectures. Unknown names pass through unchanged so they can be
// reported.
func NormalizeArch(machine string) string {
	switch machine {
	case "arm64", "aarch64":
		return "arm64"
	case "x86_64", "amd64", "x64":
		return "amd64"
	default:
		return machine
	}
}

func (h Host) String() string {
	return h.Username + " (uid " + strconv.Itoa(h.UID) + ") on " + h.GOOS + "/" + h.Arch
}
