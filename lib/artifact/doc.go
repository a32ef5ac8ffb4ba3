// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact renders every file the installer generates: the
// proxy's YAML configuration ([ProxyConfig]), the credential sync
// script ([SyncScript]) and the two launchd descriptors
// ([LaunchAgent]). Rendering is pure and deterministic; writing is the
// caller's job, through lib/fsutil.
//
// The script and plist layouts are embedded templates.
package artifact
