// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/relaykit/codexbridge/lib/config"
)

// ProxyConfig is the CLIProxyAPI configuration file. Field names and
// nesting follow the proxy's kebab-case YAML schema.
type ProxyConfig struct {
	Port             int          `yaml:"port"`
	AuthDir          string       `yaml:"auth-dir"`
	APIKeys          []string     `yaml:"api-keys"`
	RequestRetry     int          `yaml:"request-retry"`
	MaxRetryInterval int          `yaml:"max-retry-interval"`
	Streaming        Streaming    `yaml:"streaming"`
	ModelAliases     ModelAliases `yaml:"oauth-model-alias"`
	Payload          Payload      `yaml:"payload"`
}

// Streaming tunes server-sent event delivery.
type Streaming struct {
	KeepaliveSeconds int `yaml:"keepalive-seconds"`
	BootstrapRetries int `yaml:"bootstrap-retries"`
}

// ModelAliases exposes upstream models under additional names, per
// OAuth provider.
type ModelAliases struct {
	Codex []ModelAlias `yaml:"codex"`
}

// ModelAlias makes upstream model Name reachable as Alias.
type ModelAlias struct {
	Name  string `yaml:"name"`
	Alias string `yaml:"alias"`
}

// Payload rewrites request bodies before they go upstream.
type Payload struct {
	// Override rules are evaluated in order; the first rule whose
	// model pattern matches wins.
	Override []PayloadRule `yaml:"override"`
}

// PayloadRule forces Params on requests for any of Models.
type PayloadRule struct {
	Models []PayloadModel     `yaml:"models"`
	Params map[string]string `yaml:"params"`
}

// PayloadModel matches a requested model name (glob patterns allowed)
// on one upstream protocol.
type PayloadModel struct {
	Name     string `yaml:"name"`
	Protocol string `yaml:"protocol"`
}

const (
	effortParam   = "reasoning.effort"
	codexProtocol = "codex"
	wildcardModel = "*"
)

// NewProxyConfig builds the proxy configuration for cfg on port: one
// alias and one effort rule per tier in tier order, then the wildcard
// fallback rule last.
func NewProxyConfig(cfg *config.Config, port int) ProxyConfig {
	proxy := ProxyConfig{
		Port:             port,
		AuthDir:          cfg.Target.AuthDir,
		APIKeys:          []string{cfg.AuthToken},
		RequestRetry:     3,
		MaxRetryInterval: 30,
		Streaming:        Streaming{KeepaliveSeconds: 15, BootstrapRetries: 2},
	}
	for _, tier := range cfg.Tiers {
		proxy.ModelAliases.Codex = append(proxy.ModelAliases.Codex, ModelAlias{Name: tier.Upstream, Alias: tier.Selector})
		proxy.Payload.Override = append(proxy.Payload.Override, effortRule(tier.Selector, tier.Effort))
	}
	proxy.Payload.Override = append(proxy.Payload.Override, effortRule(wildcardModel, cfg.FallbackEffort))
	return proxy
}

func effortRule(model, effort string) PayloadRule {
	return PayloadRule{
		Models: []PayloadModel{{Name: model, Protocol: codexProtocol}},
		Params: map[string]string{effortParam: effort},
	}
}

// Render produces the YAML document. Output is deterministic: struct
// fields keep declaration order and map keys are sorted.
func (p ProxyConfig) Render() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	if err := encoder.Encode(p); err != nil {
		return nil, fmt.Errorf("rendering proxy config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("rendering proxy config: %w", err)
	}
	return buffer.Bytes(), nil
}

// ParseProxyConfig decodes a proxy configuration file. Unknown keys
// are ignored so hand-added proxy settings do not break reading.
func ParseProxyConfig(data []byte) (ProxyConfig, error) {
	var proxy ProxyConfig
	if err := yaml.Unmarshal(data, &proxy); err != nil {
		return ProxyConfig{}, fmt.Errorf("parsing proxy config: %w", err)
	}
	return proxy, nil
}

// ReadPort returns the port recorded in the proxy configuration at
// configPath. ok is false when the file is missing, unparseable, or
// holds no valid port.
func ReadPort(configPath string) (port int, ok bool) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return 0, false
	}
	proxy, err := ParseProxyConfig(data)
	if err != nil || proxy.Port < 1 || proxy.Port > 65535 {
		return 0, false
	}
	return proxy.Port, true
}

// EffortFor returns the reasoning effort the first matching codex rule
// forces for model, the way the proxy evaluates Payload.Override.
func (p ProxyConfig) EffortFor(model string) (string, bool) {
	for _, rule := range p.Payload.Override {
		for _, candidate := range rule.Models {
			if candidate.Protocol != codexProtocol {
				continue
			}
			if matched, err := path.Match(candidate.Name, model); err == nil && matched {
				effort, ok := rule.Params[effortParam]
				return effort, ok
			}
		}
	}
	return "", false
}
