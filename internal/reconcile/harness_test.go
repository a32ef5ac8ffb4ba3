// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/relaykit/codexbridge/lib/artifact"
	"github.com/relaykit/codexbridge/lib/config"
	"github.com/relaykit/codexbridge/lib/failure"
	"github.com/relaykit/codexbridge/lib/launchd"
	"github.com/relaykit/codexbridge/lib/release"
	"github.com/relaykit/codexbridge/lib/shell"
	"github.com/relaykit/codexbridge/lib/testutil"
)

const (
	testEmail      = "dev@example.com"
	releaseVersion = "6.3.0"
	testUID        = 501
)

// steppingClock never blocks: every wait moves time forward by the
// requested duration and fires at once.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	channel := make(chan time.Time, 1)
	channel <- c.now
	return channel
}

func (c *steppingClock) Sleep(d time.Duration) { <-c.After(d) }

// machine simulates launchd, the proxy binary, the sync script and the
// proxy's HTTP surface on top of a temporary home directory.
type machine struct {
	t      *testing.T
	config *config.Config
	target config.Target
	clock  *steppingClock
	runner *shell.Fake

	mu     sync.Mutex
	loaded map[string]bool
	busy   map[int]bool

	syncFails    bool
	neverHealthy bool

	// efforts overrides what the proxy applies for a model.
	efforts map[string]string
	// effortErrors fails this many Effort calls before answering.
	effortErrors int
	effortCalls  map[string]int

	latestCalls   int
	downloadCalls int
	assets        []release.Asset
	archive       []byte
}

func newMachine(t *testing.T) *machine {
	t.Helper()
	host := config.Host{
		Home:     testutil.Home(t),
		Username: "tester",
		UID:      testUID,
		GOOS:     "darwin",
		Arch:     "arm64",
	}
	cfg := config.Default(host)
	m := &machine{
		t:           t,
		config:      cfg,
		target:      cfg.Target,
		clock:       &steppingClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		loaded:      make(map[string]bool),
		busy:        make(map[int]bool),
		efforts:     make(map[string]string),
		effortCalls: make(map[string]int),
		assets: []release.Asset{
			{Name: "CLIProxyAPI_" + releaseVersion + "_darwin_amd64.tar.gz", URL: "https://releases.example/amd64"},
			{Name: "CLIProxyAPI_" + releaseVersion + "_darwin_arm64.tar.gz", URL: "https://releases.example/arm64"},
		},
		archive: testutil.TarGz(t,
			testutil.ArchiveEntry{Name: "CLIProxyAPI_" + releaseVersion + "_darwin_arm64/"},
			testutil.ArchiveEntry{Name: "CLIProxyAPI_" + releaseVersion + "_darwin_arm64/README.md", Content: "readme"},
			testutil.ArchiveEntry{
				Name:    "CLIProxyAPI_" + releaseVersion + "_darwin_arm64/" + config.ProxyBinaryName,
				Content: "CLIProxyAPI Version: " + releaseVersion + ", Commit: abc123\n",
				Mode:    0o755,
			},
		),
	}
	m.runner = &shell.Fake{Handler: m.handle}
	return m
}

func (m *machine) reconciler() *Reconciler {
	return New(Options{
		Config:        m.config,
		Runner:        m.runner,
		Prober:        m,
		Releases:      m,
		Clock:         m.clock,
		PortFree:      m.portFree,
		EphemeralPort: func() (int, error) { return 54321, nil },
	})
}

func (m *machine) writeCredential() {
	m.t.Helper()
	testutil.WriteFile(m.t, m.target.CredentialPath, testutil.CodexAuth(m.t, testEmail), 0o600)
}

func (m *machine) writeBinary(content string) {
	m.t.Helper()
	testutil.WriteFile(m.t, m.target.BinaryPath, content, 0o755)
}

func (m *machine) install() InstallReport {
	m.t.Helper()
	report, err := m.reconciler().Install(context.Background())
	if err != nil {
		m.t.Fatalf("Install: %v", err)
	}
	return report
}

func (m *machine) isLoaded(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded[label]
}

func (m *machine) setBusy(ports ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, port := range ports {
		m.busy[port] = true
	}
}

func (m *machine) portFree(port int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.busy[port]
}

func (m *machine) handle(_ context.Context, command shell.Command) (shell.Result, error) {
	switch {
	case command.Name == launchd.DefaultLaunchctl:
		return m.launchctl(command.Args), nil
	case command.Name == m.target.BinaryPath:
		data, err := os.ReadFile(command.Name)
		if err != nil {
			return shell.Result{}, err
		}
		return shell.Result{Stdout: string(data)}, nil
	case command.Name == "/bin/sh" && len(command.Args) == 1 && command.Args[0] == m.target.SyncScriptPath:
		if m.syncFails {
			return shell.Result{ExitStatus: 1, Stderr: m.target.CredentialPath + " has no tokens.refresh_token\n"}, nil
		}
		if err := os.WriteFile(m.target.MirrorPath, []byte(`{"type":"codex"}`), 0o600); err != nil {
			return shell.Result{}, err
		}
		return shell.Result{}, nil
	}
	return shell.Result{}, fmt.Errorf("unexpected command %s", command)
}

func (m *machine) launchctl(args []string) shell.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	domain := fmt.Sprintf("gui/%d", testUID)
	label := func(serviceTarget string) string { return strings.TrimPrefix(serviceTarget, domain+"/") }

	switch args[0] {
	case "bootstrap":
		name := strings.TrimSuffix(filepath.Base(args[2]), ".plist")
		if m.loaded[name] {
			return shell.Result{ExitStatus: 5, Stderr: "Bootstrap failed: 5: Input/output error"}
		}
		m.loaded[name] = true
	case "bootout":
		name := label(args[1])
		if !m.loaded[name] {
			return shell.Result{ExitStatus: 3, Stderr: "Boot-out failed: 3: No such process"}
		}
		delete(m.loaded, name)
	case "kickstart", "print":
		if !m.loaded[label(args[len(args)-1])] {
			return shell.Result{ExitStatus: 113, Stderr: "Could not find service"}
		}
	}
	return shell.Result{}
}

// Healthy answers while the proxy service is loaded.
func (m *machine) Healthy(_ context.Context, _ int) bool {
	return !m.neverHealthy && m.isLoaded(m.target.ProxyLabel)
}

// Effort answers from the rendered proxy config, the way the proxy
// itself resolves payload overrides.
func (m *machine) Effort(_ context.Context, _ int, model string) (string, error) {
	m.mu.Lock()
	m.effortCalls[model]++
	if m.effortErrors > 0 {
		m.effortErrors--
		m.mu.Unlock()
		return "", errors.New("HTTP 503: auth not loaded")
	}
	override, overridden := m.efforts[model]
	m.mu.Unlock()
	if overridden {
		return override, nil
	}

	data, err := os.ReadFile(m.target.ConfigPath)
	if err != nil {
		return "", err
	}
	parsed, err := artifact.ParseProxyConfig(data)
	if err != nil {
		return "", err
	}
	effort, _ := parsed.EffortFor(model)
	return effort, nil
}

func (m *machine) Latest(context.Context) (release.Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latestCalls++
	return release.Release{Tag: "v" + releaseVersion, Assets: m.assets}, nil
}

func (m *machine) Download(_ context.Context, url string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadCalls++
	return io.NopCloser(bytes.NewReader(m.archive)), nil
}

func requireKind(t *testing.T, err error, want failure.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s failure", want)
	}
	if got := failure.KindOf(err); got != want {
		t.Fatalf("KindOf(%v) = %q, want %q", err, got, want)
	}
}

func requireMissing(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s exists (stat error %v), want missing", path, err)
		}
	}
}

func requirePresent(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s: %v", path, err)
		}
	}
}

func envOf(t *testing.T, document map[string]any) map[string]any {
	t.Helper()
	env, _ := document["env"].(map[string]any)
	return env
}
