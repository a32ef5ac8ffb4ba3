// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config builds the immutable per-invocation configuration.
//
// [Default] returns the built-in values: tier mapping, port range,
// timings, release feed. [Load] layers an optional YAML overrides file
// on top (CODEXBRIDGE_CONFIG, else ~/.config/codexbridge/config.yaml;
// a missing default file is not an error), expands ${HOME} and
// ${VAR:-default} in string fields, reads the CODEXBRIDGE_PIN_VERSION,
// CODEXBRIDGE_FORCE_UPDATE and CODEXBRIDGE_DEBUG toggles, and runs
// [Config.Validate], which reports every problem at once.
//
// [Target] holds every path and launchd label the installer manages,
// derived from the home directory and a sanitized user name.
//
// An example overrides file:
//
//	port: 8400
//	tiers:
//	  opus:
//	    upstream: gpt-5.1-codex-max
//	    effort: high
package config
