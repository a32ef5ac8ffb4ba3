// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Codex is what the installer needs to know about the Codex CLI's
// OAuth credential. Token values themselves are never held here; the
// sync script copies them without the installer reading them.
type Codex struct {
	// Email is the account email from the id_token claims, or empty
	// when the token carries none.
	Email string

	AccountID   string
	LastRefresh string

	// Missing lists token fields the sync script requires but the file
	// lacks.
	Missing []string
}

// Complete reports whether every field the sync script extracts is
// present.
func (c Codex) Complete() bool { return len(c.Missing) == 0 }

type authFile struct {
	Tokens *struct {
		IDToken      string `json:"id_token"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		AccountID    string `json:"account_id"`
	} `json:"tokens"`
	LastRefresh string `json:"last_refresh"`
}

// Read inspects the Codex auth.json at path. A missing file returns an
// error wrapping os.ErrNotExist.
func Read(path string) (Codex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Codex{}, fmt.Errorf("reading Codex credential: %w", err)
	}
	return Parse(data)
}

// Parse inspects auth.json content.
func Parse(data []byte) (Codex, error) {
	var file authFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Codex{}, fmt.Errorf("parsing Codex credential: %w", err)
	}

	var result Codex
	result.LastRefresh = file.LastRefresh
	if file.Tokens == nil {
		result.Missing = []string{"tokens"}
		return result, nil
	}
	result.AccountID = file.Tokens.AccountID

	for _, field := range []struct{ name, value string }{
		{"tokens.access_token", file.Tokens.AccessToken},
		{"tokens.refresh_token", file.Tokens.RefreshToken},
		{"tokens.id_token", file.Tokens.IDToken},
		{"tokens.account_id", file.Tokens.AccountID},
	} {
		if field.value == "" {
			result.Missing = append(result.Missing, field.name)
		}
	}
	if file.Tokens.IDToken != "" {
		// An undecodable id_token only loses the email; the proxy
		// does not need it to refresh.
		result.Email, _ = EmailFromIDToken(file.Tokens.IDToken)
	}
	return result, nil
}

// EmailFromIDToken returns the email claim of a JWT without verifying
// its signature.
func EmailFromIDToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", errors.New("id_token is not a three-part JWT")
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return "", fmt.Errorf("decoding id_token payload: %w", err)
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", fmt.Errorf("parsing id_token claims: %w", err)
	}
	return claims.Email, nil
}
