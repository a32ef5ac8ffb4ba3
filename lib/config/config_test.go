// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/relaykit/codexbridge/lib/testutil"
)

func testHost(t *testing.T) Host {
	return Host{Home: testutil.Home(t), Username: "alice", UID: 501, GOOS: "darwin", Arch: "arm64"}
}

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestDefaultValidates(t *testing.T) {
	if err := Default(testHost(t)).Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestDefaultTiers(t *testing.T) {
	cfg := Default(testHost(t))
	want := []struct{ name, selector, effort, envKey string }{
		{"opus", "codex-opus", "xhigh", "ANTHROPIC_DEFAULT_OPUS_MODEL"},
		{"sonnet", "codex-sonnet", "high", "ANTHROPIC_DEFAULT_SONNET_MODEL"},
		{"haiku", "codex-haiku", "medium", "ANTHROPIC_DEFAULT_HAIKU_MODEL"},
	}
	if len(cfg.Tiers) != len(want) {
		t.Fatalf("len(Tiers) = %d, want %d", len(cfg.Tiers), len(want))
	}
	for i, tier := range cfg.Tiers {
		if tier.Name != want[i].name || tier.Selector != want[i].selector || tier.Effort != want[i].effort {
			t.Errorf("Tiers[%d] = %+v, want %+v", i, tier, want[i])
		}
		if got := tier.EnvKey(); got != want[i].envKey {
			t.Errorf("Tiers[%d].EnvKey() = %q, want %q", i, got, want[i].envKey)
		}
	}
}

func TestLoadWithoutOverridesFile(t *testing.T) {
	host := testHost(t)
	cfg, err := Load(host, env(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OverridesPath != "" {
		t.Errorf("OverridesPath = %q, want empty", cfg.OverridesPath)
	}
	if cfg.DefaultPort != 8317 {
		t.Errorf("DefaultPort = %d, want 8317", cfg.DefaultPort)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	host := testHost(t)
	path := DefaultOverridesPath(host.Home)
	testutil.WriteFile(t, path, `
port: 8400
release_feed: ${MIRROR:-https://mirror.example}/latest
tiers:
  opus:
    upstream: gpt-5.1-codex-max
    effort: high
`, 0o644)

	cfg, err := Load(host, env(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OverridesPath != path {
		t.Errorf("OverridesPath = %q, want %q", cfg.OverridesPath, path)
	}
	if cfg.DefaultPort != 8400 {
		t.Errorf("DefaultPort = %d, want 8400", cfg.DefaultPort)
	}
	if cfg.ReleaseFeed != "https://mirror.example/latest" {
		t.Errorf("ReleaseFeed = %q", cfg.ReleaseFeed)
	}
	opus := cfg.Tiers[0]
	if opus.Upstream != "gpt-5.1-codex-max" || opus.Effort != "high" || opus.Selector != "codex-opus" {
		t.Errorf("opus tier = %+v", opus)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	host := testHost(t)
	_, err := Load(host, env(map[string]string{EnvConfig: filepath.Join(host.Home, "absent.yaml")}))
	if err == nil {
		t.Fatal("Load() with missing explicit overrides file succeeded")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	host := testHost(t)
	testutil.WriteFile(t, DefaultOverridesPath(host.Home), "prot: 8400\n", 0o644)
	if _, err := Load(host, env(nil)); err == nil {
		t.Fatal("Load() accepted a misspelled key")
	}
}

func TestLoadEmptyOverridesFile(t *testing.T) {
	host := testHost(t)
	testutil.WriteFile(t, DefaultOverridesPath(host.Home), "", 0o644)
	if _, err := Load(host, env(nil)); err != nil {
		t.Fatalf("Load() with empty overrides error = %v", err)
	}
}

func TestLoadEnvironmentToggles(t *testing.T) {
	cfg, err := Load(testHost(t), env(map[string]string{
		EnvPinVersion:  "1",
		EnvForceUpdate: "1",
		EnvDebug:       "0",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.PinVersion || !cfg.ForceUpdate || cfg.Debug {
		t.Errorf("toggles = pin %v force %v debug %v, want true true false", cfg.PinVersion, cfg.ForceUpdate, cfg.Debug)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default(testHost(t))
	cfg.DefaultPort = 70000
	cfg.Tiers[1].Selector = "*"
	cfg.Tiers[2].Effort = "maximum"
	cfg.MinProxyVersion = "six"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}
	for _, fragment := range []string{"port 70000", `selector "*"`, `effort "maximum"`, `"six"`} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("Validate() error missing %q:\n%v", fragment, err)
		}
	}
}

func TestValidateDuplicateSelectors(t *testing.T) {
	cfg := Default(testHost(t))
	cfg.Tiers[2].Selector = cfg.Tiers[0].Selector
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "share selector") {
		t.Errorf("Validate() = %v, want shared selector error", err)
	}
}

func TestNewTarget(t *testing.T) {
	target := NewTarget("/Users/alice", "alice")
	tests := map[string]struct{ got, want string }{
		"ConfigPath":      {target.ConfigPath, "/Users/alice/.cli-proxy-api/config.yaml"},
		"MirrorPath":      {target.MirrorPath, "/Users/alice/.cli-proxy-api/auths/codex-alice.json"},
		"SyncScriptPath":  {target.SyncScriptPath, "/Users/alice/.cli-proxy-api/sync-codex-token.sh"},
		"ProxyLog":        {target.ProxyLog, "/Users/alice/.cli-proxy-api/logs/proxy.log"},
		"BinaryPath":      {target.BinaryPath, "/Users/alice/.local/bin/cli-proxy-api"},
		"ProxyLabel":      {target.ProxyLabel, "com.alice.cli-proxy-api"},
		"SyncLabel":       {target.SyncLabel, "com.alice.cli-proxy-api.codex-sync"},
		"ProxyDescriptor": {target.ProxyDescriptor, "/Users/alice/Library/LaunchAgents/com.alice.cli-proxy-api.plist"},
		"SettingsPath":    {target.SettingsPath, "/Users/alice/.claude/settings.json"},
		"CredentialPath":  {target.CredentialPath, "/Users/alice/.codex/auth.json"},
	}
	for field, test := range tests {
		if test.got != test.want {
			t.Errorf("%s = %q, want %q", field, test.got, test.want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"alice":          "alice",
		"first.last":     "first.last",
		"DOMAIN\\user":   "DOMAIN-user",
		"name with 空格": "name-with---",
		"":               "user",
	}
	for input, want := range tests {
		if got := SanitizeName(input); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeArch(t *testing.T) {
	tests := map[string]string{"arm64": "arm64", "aarch64": "arm64", "x86_64": "amd64", "ppc64le": "ppc64le"}
	for input, want := range tests {
		if got := NormalizeArch(input); got != want {
			t.Errorf("NormalizeArch(%q) = %q, want %q", input, got, want)
		}
	}
}
