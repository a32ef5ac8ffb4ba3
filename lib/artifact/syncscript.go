// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"fmt"

	"github.com/relaykit/codexbridge/lib/config"
)

// DefaultPlutil reads JSON values on every macOS install without
// requiring jq or python.
const DefaultPlutil = "/usr/bin/plutil"

// SyncScript is the shell script that copies the Codex OAuth tokens
// into the proxy's credential mirror.
type SyncScript struct {
	CredentialPath string
	MirrorPath     string

	// Email is written into the mirror verbatim. It comes from the
	// id_token at install time.
	Email string

	// Plutil is the JSON reader the script shells out to.
	Plutil string
}

// NewSyncScript builds the script for target.
func NewSyncScript(target config.Target, email string) SyncScript {
	return SyncScript{
		CredentialPath: target.CredentialPath,
		MirrorPath:     target.MirrorPath,
		Email:          email,
		Plutil:         DefaultPlutil,
	}
}

// Render produces the script text.
func (s SyncScript) Render() ([]byte, error) {
	data, err := render("sync-codex-token.sh.tmpl", s)
	if err != nil {
		return nil, fmt.Errorf("rendering sync script: %w", err)
	}
	return data, nil
}
