// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package config

import "runtime"

func machineArch() string { return runtime.GOARCH }
