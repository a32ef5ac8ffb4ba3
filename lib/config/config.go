// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relaykit/codexbridge/lib/release"
)

// Tier maps one Claude model tier onto a Codex upstream model and the
// reasoning effort the proxy forces for it.
type Tier struct {
	// Name is the Claude tier: opus, sonnet or haiku.
	Name string

	// Selector is the model name the Claude CLI sends. The proxy
	// aliases it to Upstream and applies Effort.
	Selector string

	Upstream string
	Effort   string
}

// EnvKey is the settings.json env key the Claude CLI reads the tier's
// default model from, for example ANTHROPIC_DEFAULT_OPUS_MODEL.
func (t Tier) EnvKey() string {
	return "ANTHROPIC_DEFAULT_" + strings.ToUpper(t.Name) + "_MODEL"
}

// Timings collects every bound the installer waits on.
type Timings struct {
	HealthTimeout      time.Duration
	HealthInterval     time.Duration
	HealthProbeTimeout time.Duration
	VerifyAttempts     int
	VerifyBackoff      time.Duration
	VerifyProbeTimeout time.Duration
	CommandTimeout     time.Duration
	VersionTimeout     time.Duration
	DownloadTimeout    time.Duration
	DownloadAttempts   int
	DownloadBackoff    time.Duration
}

// Config is the immutable configuration of one invocation. It is
// built once by [Load] (or [Default] in tests) and passed by pointer to
// every component; nothing mutates it afterwards.
type Config struct {
	Host   Host
	Target Target

	DefaultPort      int
	PortScanAttempts int

	// Tiers are rendered in order; order decides routing rule
	// precedence.
	Tiers []Tier

	// FallbackEffort applies to any model no tier selector matches.
	FallbackEffort string

	// AuthToken is the placeholder API key shared by the proxy config
	// and the Claude CLI settings. It only gates loopback access.
	AuthToken string

	MinProxyVersion string
	ReleaseFeed     string

	// PinVersion keeps an existing binary even when it is older than
	// MinProxyVersion.
	PinVersion bool

	// ForceUpdate replaces an existing binary whose version cannot be
	// determined.
	ForceUpdate bool

	// Debug lowers the log level to debug.
	Debug bool

	// OverridesPath is the overrides file that was applied, or empty.
	OverridesPath string

	Timings Timings
}

// Efforts the proxy accepts for reasoning.effort.
var validEfforts = []string{"minimal", "low", "medium", "high", "xhigh"}

// Default returns the built-in configuration for host.
func Default(host Host) *Config {
	return &Config{
		Host:             host,
		Target:           NewTarget(host.Home, host.Username),
		DefaultPort:      8317,
		PortScanAttempts: 20,
		Tiers: []Tier{
			{Name: "opus", Selector: "codex-opus", Upstream: "gpt-5-codex", Effort: "xhigh"},
			{Name: "sonnet", Selector: "codex-sonnet", Upstream: "gpt-5-codex", Effort: "high"},
			{Name: "haiku", Selector: "codex-haiku", Upstream: "gpt-5-codex", Effort: "medium"},
		},
		FallbackEffort:  "medium",
		AuthToken:       "codexbridge-local",
		MinProxyVersion: "6.0.0",
		ReleaseFeed:     "https://api.github.com/repos/router-for-me/CLIProxyAPI/releases/latest",
		Timings: Timings{
			HealthTimeout:      10 * time.Second,
			HealthInterval:     250 * time.Millisecond,
			HealthProbeTimeout: 2 * time.Second,
			VerifyAttempts:     6,
			VerifyBackoff:      time.Second,
			VerifyProbeTimeout: 20 * time.Second,
			CommandTimeout:     30 * time.Second,
			VersionTimeout:     5 * time.Second,
			DownloadTimeout:    5 * time.Minute,
			DownloadAttempts:   3,
			DownloadBackoff:    2 * time.Second,
		},
	}
}

// Environment variables read by Load.
const (
	EnvConfig      = "CODEXBRIDGE_CONFIG"
	EnvPinVersion  = "CODEXBRIDGE_PIN_VERSION"
	EnvForceUpdate = "CODEXBRIDGE_FORCE_UPDATE"
	EnvDebug       = "CODEXBRIDGE_DEBUG"
)

// DefaultOverridesPath returns ~/.config/codexbridge/config.yaml.
func DefaultOverridesPath(home string) string {
	return filepath.Join(home, ".config", "codexbridge", "config.yaml")
}

// Load builds the configuration for host: defaults, then the
// overrides file (CODEXBRIDGE_CONFIG, else the default path; a missing
// file is skipped), then variable expansion, then the environment
// toggles. The result is validated. getenv is os.Getenv in production.
func Load(host Host, getenv func(string) string) (*Config, error) {
	cfg := Default(host)

	path := getenv(EnvConfig)
	explicit := path != ""
	if !explicit {
		path = DefaultOverridesPath(host.Home)
	}
	if err := cfg.loadOverrides(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else {
		cfg.OverridesPath = path
	}

	cfg.expandVariables(getenv)

	cfg.PinVersion = getenv(EnvPinVersion) == "1"
	cfg.ForceUpdate = getenv(EnvForceUpdate) == "1"
	cfg.Debug = getenv(EnvDebug) == "1"

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Overrides is the schema of the optional overrides file. Zero values
// leave the default in place.
type Overrides struct {
	Port            int                     `yaml:"port"`
	AuthToken       string                  `yaml:"auth_token"`
	MinProxyVersion string                  `yaml:"min_proxy_version"`
	ReleaseFeed     string                  `yaml:"release_feed"`
	FallbackEffort  string                  `yaml:"fallback_effort"`
	Tiers           map[string]TierOverride `yaml:"tiers"`
}

// TierOverride replaces fields of the tier with the same name.
type TierOverride struct {
	Selector string `yaml:"selector"`
	Upstream string `yaml:"upstream"`
	Effort   string `yaml:"effort"`
}

func (c *Config) loadOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading overrides %s: %w", path, err)
	}

	var overrides Overrides
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty file decodes to io.EOF and means no overrides.
	if err := decoder.Decode(&overrides); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing overrides %s: %w", path, err)
	}

	if overrides.Port != 0 {
		c.DefaultPort = overrides.Port
	}
	if overrides.AuthToken != "" {
		c.AuthToken = overrides.AuthToken
	}
	if overrides.MinProxyVersion != "" {
		c.MinProxyVersion = overrides.MinProxyVersion
	}
	if overrides.ReleaseFeed != "" {
		c.ReleaseFeed = overrides.ReleaseFeed
	}
	if overrides.FallbackEffort != "" {
		c.FallbackEffort = overrides.FallbackEffort
	}

	for name, override := range overrides.Tiers {
		index := c.tierIndex(name)
		if index < 0 {
			return fmt.Errorf("overrides %s: unknown tier %q (want opus, sonnet or haiku)", path, name)
		}
		tier := &c.Tiers[index]
		if override.Selector != "" {
			tier.Selector = override.Selector
		}
		if override.Upstream != "" {
			tier.Upstream = override.Upstream
		}
		if override.Effort != "" {
			tier.Effort = override.Effort
		}
	}
	return nil
}

func (c *Config) tierIndex(name string) int {
	for i, tier := range c.Tiers {
		if tier.Name == name {
			return i
		}
	}
	return -1
}

// expandVariables expands ${VAR} and ${VAR:-default} in the string
// fields an overrides file can set.
func (c *Config) expandVariables(getenv func(string) string) {
	vars := map[string]string{"HOME": c.Host.Home}
	c.AuthToken = expandVars(c.AuthToken, vars, getenv)
	c.ReleaseFeed = expandVars(c.ReleaseFeed, vars, getenv)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string, getenv func(string) string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]

		// Provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem at
// once.
func (c *Config) Validate() error {
	var errs []error

	if c.Host.Home == "" {
		errs = append(errs, fmt.Errorf("home directory is unknown"))
	}
	if c.DefaultPort < 1 || c.DefaultPort > 65535 {
		errs = append(errs, fmt.Errorf("port %d is outside 1-65535", c.DefaultPort))
	}
	if c.PortScanAttempts < 1 {
		errs = append(errs, fmt.Errorf("port scan attempts must be positive"))
	}
	if len(c.Tiers) == 0 {
		errs = append(errs, fmt.Errorf("at least one tier is required"))
	}

	seen := make(map[string]string)
	for _, tier := range c.Tiers {
		if tier.Selector == "" || tier.Selector == "*" {
			errs = append(errs, fmt.Errorf("tier %s: selector %q is not a model name", tier.Name, tier.Selector))
		}
		if other, ok := seen[tier.Selector]; ok {
			errs = append(errs, fmt.Errorf("tiers %s and %s share selector %q", other, tier.Name, tier.Selector))
		}
		seen[tier.Selector] = tier.Name
		if tier.Upstream == "" {
			errs = append(errs, fmt.Errorf("tier %s: upstream model is required", tier.Name))
		}
		if !contains(validEfforts, tier.Effort) {
			errs = append(errs, fmt.Errorf("tier %s: effort %q must be one of %v", tier.Name, tier.Effort, validEfforts))
		}
	}
	if !contains(validEfforts, c.FallbackEffort) {
		errs = append(errs, fmt.Errorf("fallback effort %q must be one of %v", c.FallbackEffort, validEfforts))
	}
	if c.AuthToken == "" {
		errs = append(errs, fmt.Errorf("auth token is required"))
	}
	if _, ok := release.ParseVersion(c.MinProxyVersion); !ok {
		errs = append(errs, fmt.Errorf("min proxy version %q is not X.Y.Z", c.MinProxyVersion))
	}
	if c.ReleaseFeed == "" {
		errs = append(errs, fmt.Errorf("release feed is required"))
	}

	return errors.Join(errs...)
}

// MinVersion returns MinProxyVersion parsed. Validate guarantees it
// parses.
func (c *Config) MinVersion() release.Version {
	version, _ := release.ParseVersion(c.MinProxyVersion)
	return version
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
