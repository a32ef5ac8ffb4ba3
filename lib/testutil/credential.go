// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

// IDToken returns an unsigned JWT whose payload carries email. The
// header and signature segments are placeholders; nothing in the
// installer verifies signatures.
func IDToken(t *testing.T, email string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"email": email, "sub": "user-123"})
	if err != nil {
		t.Fatalf("marshaling claims: %v", err)
	}
	encode := base64.RawURLEncoding.EncodeToString
	return encode([]byte(`{"alg":"none"}`)) + "." + encode(payload) + ".c2ln"
}

// CodexAuth returns the content of a Codex CLI auth.json for email.
func CodexAuth(t *testing.T, email string) string {
	t.Helper()
	document := map[string]any{
		"OPENAI_API_KEY": nil,
		"tokens": map[string]any{
			"id_token":      IDToken(t, email),
			"access_token":  "access-token-value",
			"refresh_token": "refresh-token-value",
			"account_id":    "account-123",
		},
		"last_refresh": "2026-01-01T00:00:00Z",
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		t.Fatalf("marshaling auth.json: %v", err)
	}
	return string(data)
}
