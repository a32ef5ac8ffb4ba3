// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package config

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// machineArch returns uname(2)'s machine field, falling back to the
// compile-time architecture.
func machineArch() string {
	var name unix.Utsname
	if err := unix.Uname(&name); err != nil {
		return runtime.GOARCH
	}
	machine := unix.ByteSliceToString(name.Machine[:])
	if machine == "" {
		return runtime.GOARCH
	}
	return machine
}
