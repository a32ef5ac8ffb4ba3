// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relaykit/codexbridge/lib/config"
	"github.com/relaykit/codexbridge/lib/shell"
	"github.com/relaykit/codexbridge/lib/testutil"
)

func testConfig(t *testing.T) *config.Config {
	return config.Default(config.Host{Home: "/Users/alice", Username: "alice", UID: 501, GOOS: "darwin", Arch: "arm64"})
}

func TestProxyConfigRender(t *testing.T) {
	rendered, err := NewProxyConfig(testConfig(t), 8317).Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	text := string(rendered)
	for _, fragment := range []string{
		"port: 8317\n",
		"auth-dir: /Users/alice/.cli-proxy-api/auths\n",
		"api-keys:\n  - codexbridge-local\n",
		"request-retry: 3\n",
		"max-retry-interval: 30\n",
		"streaming:\n  keepalive-seconds: 15\n  bootstrap-retries: 2\n",
		"oauth-model-alias:\n  codex:\n    - name: gpt-5-codex\n      alias: codex-opus\n",
		"reasoning.effort: xhigh\n",
	} {
		if !strings.Contains(text, fragment) {
			t.Errorf("rendered config missing %q:\n%s", fragment, text)
		}
	}
}

func TestProxyConfigRenderIsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	first, err := NewProxyConfig(cfg, 8317).Render()
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := NewProxyConfig(cfg, 8317).Render()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Render() output differs between calls")
		}
	}
}

func TestProxyConfigRuleOrder(t *testing.T) {
	cfg := testConfig(t)
	rendered, err := NewProxyConfig(cfg, 9000).Render()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseProxyConfig(rendered)
	if err != nil {
		t.Fatalf("ParseProxyConfig() error = %v", err)
	}

	rules := parsed.Payload.Override
	if len(rules) != len(cfg.Tiers)+1 {
		t.Fatalf("len(rules) = %d, want %d", len(rules), len(cfg.Tiers)+1)
	}
	for i, tier := range cfg.Tiers {
		if rules[i].Models[0].Name != tier.Selector {
			t.Errorf("rule %d model = %q, want %q", i, rules[i].Models[0].Name, tier.Selector)
		}
	}
	if last := rules[len(rules)-1]; last.Models[0].Name != "*" || last.Params["reasoning.effort"] != "medium" {
		t.Errorf("last rule = %+v, want wildcard fallback", last)
	}

	for _, tier := range cfg.Tiers {
		if effort, ok := parsed.EffortFor(tier.Selector); !ok || effort != tier.Effort {
			t.Errorf("EffortFor(%q) = %q, %v; want %q", tier.Selector, effort, ok, tier.Effort)
		}
	}
	if effort, _ := parsed.EffortFor("gpt-5"); effort != "medium" {
		t.Errorf("EffortFor(unlisted) = %q, want fallback medium", effort)
	}
}

func TestReadPort(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "config.yaml")
	if _, ok := ReadPort(path); ok {
		t.Error("ReadPort(missing) ok = true")
	}

	rendered, _ := NewProxyConfig(testConfig(t), 8321).Render()
	testutil.WriteFile(t, path, string(rendered), 0o600)
	if port, ok := ReadPort(path); !ok || port != 8321 {
		t.Errorf("ReadPort() = %d, %v; want 8321, true", port, ok)
	}

	testutil.WriteFile(t, path, "port: [", 0o600)
	if _, ok := ReadPort(path); ok {
		t.Error("ReadPort(garbage) ok = true")
	}
}

// plistDocument decodes enough of a property list to check its shape.
type plistDocument struct {
	Dict struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"dict"`
}

func TestLaunchAgentsRender(t *testing.T) {
	target := testConfig(t).Target

	proxy, err := ProxyAgent(target).Render()
	if err != nil {
		t.Fatalf("ProxyAgent.Render() error = %v", err)
	}
	var document plistDocument
	if err := xml.Unmarshal(proxy, &document); err != nil {
		t.Fatalf("proxy plist is not well-formed XML: %v\n%s", err, proxy)
	}
	text := string(proxy)
	for _, fragment := range []string{
		"<string>com.alice.cli-proxy-api</string>",
		"<string>/Users/alice/.local/bin/cli-proxy-api</string>\n\t\t<string>--config</string>\n\t\t<string>/Users/alice/.cli-proxy-api/config.yaml</string>",
		"<key>KeepAlive</key>\n\t<true/>",
		"<key>RunAtLoad</key>\n\t<true/>",
		"<string>/Users/alice/.cli-proxy-api/logs/proxy.log</string>",
	} {
		if !strings.Contains(text, fragment) {
			t.Errorf("proxy plist missing %q:\n%s", fragment, text)
		}
	}

	sync, err := SyncAgent(target).Render()
	if err != nil {
		t.Fatalf("SyncAgent.Render() error = %v", err)
	}
	text = string(sync)
	if strings.Contains(text, "KeepAlive") {
		t.Error("sync plist must not keep the job alive")
	}
	if !strings.Contains(text, "<key>WatchPaths</key>\n\t<array>\n\t\t<string>/Users/alice/.codex/auth.json</string>") {
		t.Errorf("sync plist does not watch the credential:\n%s", text)
	}
}

func TestLaunchAgentEscapesXML(t *testing.T) {
	rendered, err := LaunchAgent{Label: "com.a&b", ProgramArguments: []string{"/bin/<x>"}, LogPath: "/tmp/log"}.Render()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(rendered), "com.a&amp;b") || !strings.Contains(string(rendered), "/bin/&lt;x&gt;") {
		t.Errorf("special characters not escaped:\n%s", rendered)
	}
	if _, err := (LaunchAgent{Label: "x"}).Render(); err == nil {
		t.Error("Render() without a program succeeded")
	}
}

func TestShellQuote(t *testing.T) {
	tests := map[string]string{
		"/Users/alice/.codex/auth.json": `'/Users/alice/.codex/auth.json'`,
		"it's":                          `'it'\''s'`,
		"":                              `''`,
	}
	for input, want := range tests {
		if got := shellQuote(input); got != want {
			t.Errorf("shellQuote(%q) = %s, want %s", input, got, want)
		}
	}
}

// fakePlutil answers "plutil -extract <keypath> raw -o - <file>" from
// a fixed table. Keys not in the table fail the way plutil does.
func fakePlutil(t *testing.T, directory string, values map[string]string) string {
	t.Helper()
	var script strings.Builder
	script.WriteString("#!/bin/sh\ncase \"$2\" in\n")
	for key, value := range values {
		script.WriteString("\t" + key + ") printf '%s' " + shellQuote(value) + " ;;\n")
	}
	script.WriteString("\t*) echo \"Could not extract value\" >&2; exit 1 ;;\nesac\n")
	path := filepath.Join(directory, "plutil")
	testutil.WriteFile(t, path, script.String(), 0o755)
	return path
}

func runSyncScript(t *testing.T, values map[string]string) (string, error) {
	t.Helper()
	directory := t.TempDir()
	credential := filepath.Join(directory, "auth.json")
	testutil.WriteFile(t, credential, "{}", 0o600)
	mirror := filepath.Join(directory, "codex-alice.json")

	script := SyncScript{
		CredentialPath: credential,
		MirrorPath:     mirror,
		Email:          `alice"quoted"@example.com`,
		Plutil:         fakePlutil(t, directory, values),
	}
	rendered, err := script.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	scriptPath := filepath.Join(directory, "sync-codex-token.sh")
	testutil.WriteFile(t, scriptPath, string(rendered), 0o700)

	_, err = shell.Exec{}.Run(context.Background(), shell.Command{Name: "/bin/sh", Args: []string{scriptPath}})
	return mirror, err
}

func TestSyncScriptWritesMirror(t *testing.T) {
	mirror, err := runSyncScript(t, map[string]string{
		"tokens.access_token":  "access-value",
		"tokens.refresh_token": "refresh-value",
		"tokens.id_token":      "id.token.value",
		"tokens.account_id":    "account-123",
		"last_refresh":         "2026-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("sync script failed: %v", err)
	}

	file, err := os.Open(mirror)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	data, _ := io.ReadAll(file)
	var document map[string]any
	if err := json.Unmarshal(data, &document); err != nil {
		t.Fatalf("mirror is not JSON: %v\n%s", err, data)
	}
	want := map[string]any{
		"access_token":  "access-value",
		"account_id":    "account-123",
		"disabled":      false,
		"email":         `alice"quoted"@example.com`,
		"expired":       "",
		"id_token":      "id.token.value",
		"last_refresh":  "2026-01-01T00:00:00Z",
		"refresh_token": "refresh-value",
		"type":          "codex",
	}
	for key, value := range want {
		if document[key] != value {
			t.Errorf("mirror[%s] = %v, want %v", key, document[key], value)
		}
	}
	if len(document) != len(want) {
		t.Errorf("mirror has %d fields, want %d", len(document), len(want))
	}

	info, _ := os.Stat(mirror)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mirror mode = %o, want 600", info.Mode().Perm())
	}
	leftovers, _ := filepath.Glob(mirror + ".*")
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestSyncScriptFailsOnMissingToken(t *testing.T) {
	mirror, err := runSyncScript(t, map[string]string{
		"tokens.access_token": "access-value",
		"tokens.id_token":     "id.token.value",
		"tokens.account_id":   "account-123",
	})
	if err == nil {
		t.Fatal("sync script succeeded without a refresh token")
	}
	if !strings.Contains(err.Error(), "tokens.refresh_token") {
		t.Errorf("error %q does not name the missing field", err)
	}
	if _, statErr := os.Stat(mirror); !os.IsNotExist(statErr) {
		t.Error("mirror written despite missing token")
	}
}
