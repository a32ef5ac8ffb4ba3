// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Env keys owned outright: set on install, removed on uninstall.
const (
	KeyBaseURL   = "ANTHROPIC_BASE_URL"
	KeyAuthToken = "ANTHROPIC_AUTH_TOKEN"
)

// Minimum is an env key whose numeric value is raised to at least
// Value and never lowered.
type Minimum struct {
	Key   string
	Value int64
}

// Minimums are the timeout keys the proxy needs raised. Reasoning
// models at high effort routinely take minutes per response.
var Minimums = []Minimum{
	{Key: "API_TIMEOUT_MS", Value: 3000000},
	{Key: "BASH_DEFAULT_TIMEOUT_MS", Value: 300000},
	{Key: "BASH_MAX_TIMEOUT_MS", Value: 1200000},
	{Key: "MCP_TIMEOUT", Value: 60000},
}

// Flags are env keys set to "1" only when absent.
var Flags = []string{
	"CLAUDE_CODE_DISABLE_NONESSENTIAL_TRAFFIC",
	"DISABLE_NON_ESSENTIAL_MODEL_CALLS",
}

// Global model overrides that would bypass the per-tier defaults.
var (
	strippedTopLevel = []string{"model"}
	strippedEnv      = []string{"ANTHROPIC_MODEL", "ANTHROPIC_SMALL_FAST_MODEL"}
)

// Desired is the settings state install converges to.
type Desired struct {
	BaseURL   string
	AuthToken string

	// Models maps each per-tier env key (ANTHROPIC_DEFAULT_OPUS_MODEL
	// and so on) to the selector the proxy routes.
	Models map[string]string

	// Written lists the timeout and flag keys an earlier Apply set,
	// as it reported them. Strip only removes those. Nil means no
	// record exists, and Strip then treats every timeout or flag key
	// still holding the value Apply writes as its own, including one
	// the user happened to set to that same value.
	Written []string
}

func (d Desired) wrote(key string) bool {
	return d.Written == nil || slices.Contains(d.Written, key)
}

// Apply patches d toward desired: sets the base URL, placeholder token
// and per-tier model keys, removes global model overrides, raises the
// timeout minimums and adds absent flags. Unrelated keys are
// untouched. It returns the timeout and flag keys it set, never nil.
func (d Document) Apply(desired Desired) ([]string, error) {
	env, err := d.env(true)
	if err != nil {
		return nil, err
	}

	for _, key := range strippedTopLevel {
		delete(d, key)
	}
	for _, key := range strippedEnv {
		delete(env, key)
	}

	env[KeyBaseURL] = desired.BaseURL
	env[KeyAuthToken] = desired.AuthToken
	for key, model := range desired.Models {
		env[key] = model
	}

	written := []string{}
	for _, minimum := range Minimums {
		current, ok := integer(env[minimum.Key])
		if !ok || current < minimum.Value {
			env[minimum.Key] = strconv.FormatInt(minimum.Value, 10)
			written = append(written, minimum.Key)
		}
	}
	for _, key := range Flags {
		if _, ok := env[key]; !ok {
			env[key] = "1"
			written = append(written, key)
		}
	}
	return written, nil
}

// Strip removes the keys Apply owns. The base URL, token and model
// keys always go. A timeout or flag key goes only when desired.Written
// names it and it still holds the value Apply wrote, so values the
// user set before install or changed since survive. env is dropped when it
// ends up empty. Stripping a document that holds none of the keys is a
// no-op.
func (d Document) Strip(desired Desired) error {
	env, err := d.env(false)
	if err != nil || env == nil {
		return err
	}

	delete(env, KeyBaseURL)
	delete(env, KeyAuthToken)
	for key := range desired.Models {
		delete(env, key)
	}
	for _, minimum := range Minimums {
		if !desired.wrote(minimum.Key) {
			continue
		}
		if current, ok := integer(env[minimum.Key]); ok && current == minimum.Value {
			delete(env, minimum.Key)
		}
	}
	for _, key := range Flags {
		if !desired.wrote(key) {
			continue
		}
		if value, ok := env[key].(string); ok && value == "1" {
			delete(env, key)
		}
	}

	if len(env) == 0 {
		delete(d, "env")
	}
	return nil
}

// integer interprets a settings value as a decimal integer. Strings
// of digits and integral JSON numbers qualify; anything else is
// treated as absent.
func integer(value any) (int64, bool) {
	var text string
	switch typed := value.(type) {
	case string:
		text = strings.TrimSpace(typed)
	case json.Number:
		text = typed.String()
	case float64:
		if typed != float64(int64(typed)) {
			return 0, false
		}
		return int64(typed), true
	default:
		return 0, false
	}
	parsed, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
