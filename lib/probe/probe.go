// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/relaykit/codexbridge/lib/netutil"
)

// Prober talks to a proxy listening on the loopback interface.
type Prober struct {
	// HTTPClient performs requests. Nil means a client with no
	// overall timeout; each probe sets its own deadline.
	HTTPClient *http.Client

	// Token is sent as a bearer credential on verification requests.
	Token string

	// HealthTimeout bounds one health probe.
	HealthTimeout time.Duration

	// EffortTimeout bounds one verification request. Reasoning
	// models answer slowly even for a one-word prompt.
	EffortTimeout time.Duration

	// Logger receives debug records for each probe. Nil disables
	// logging.
	Logger *slog.Logger
}

// BaseURL returns the loopback URL of a proxy on port.
func BaseURL(port int) string {
	return "http://127.0.0.1:" + strconv.Itoa(port)
}

func (p *Prober) client() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return http.DefaultClient
}

func (p *Prober) debug(message string, args ...any) {
	if p.Logger != nil {
		p.Logger.Debug(message, args...)
	}
}

// modelList is the OpenAI-style body of GET /v1/models. Only the
// proxy answers it, and only for the configured token.
type modelList struct {
	Object string `json:"object"`
	Data   []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Healthy reports whether the proxy answers an authenticated
// GET /v1/models on port within HealthTimeout with a 2xx status and a
// model list. Any other listener, including a web server answering
// 2xx with some other body, is not healthy.
func (p *Prober) Healthy(ctx context.Context, port int) bool {
	if p.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.HealthTimeout)
		defer cancel()
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, BaseURL(port)+"/v1/models", nil)
	if err != nil {
		return false
	}
	request.Header.Set("Authorization", "Bearer "+p.Token)
	response, err := p.client().Do(request)
	if err != nil {
		p.debug("health probe failed", "port", port, "error", err)
		return false
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(response.Body, netutil.MaxResponseSize))
		p.debug("health probe", "port", port, "status", response.StatusCode, "healthy", false)
		return false
	}
	var models modelList
	if err := netutil.DecodeResponse(response.Body, &models); err != nil || models.Object != "list" || models.Data == nil {
		p.debug("health probe: not a model list", "port", port, "error", err)
		return false
	}
	p.debug("health probe", "port", port, "status", response.StatusCode, "models", len(models.Data), "healthy", true)
	return true
}

type effortRequest struct {
	Model           string `json:"model"`
	Input           string `json:"input"`
	MaxOutputTokens int    `json:"max_output_tokens"`
}

type effortResponse struct {
	Reasoning struct {
		Effort string `json:"effort"`
	} `json:"reasoning"`
}

// Effort sends a minimal Responses API request for model and returns
// the reasoning effort the proxy reports it applied. Transport
// failures, non-2xx statuses and undecodable bodies are errors.
func (p *Prober) Effort(ctx context.Context, port int, model string) (string, error) {
	if p.EffortTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.EffortTimeout)
		defer cancel()
	}

	body, err := json.Marshal(effortRequest{Model: model, Input: "ping", MaxOutputTokens: 16})
	if err != nil {
		return "", fmt.Errorf("encoding verification request: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, BaseURL(port)+"/v1/responses", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building verification request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+p.Token)

	response, err := p.client().Do(request)
	if err != nil {
		return "", fmt.Errorf("verifying %s: %w", model, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", fmt.Errorf("verifying %s: HTTP %d: %s", model, response.StatusCode, netutil.ErrorBody(response.Body))
	}

	var decoded effortResponse
	if err := netutil.DecodeResponse(response.Body, &decoded); err != nil {
		return "", fmt.Errorf("verifying %s: %w", model, err)
	}
	p.debug("verification probe", "model", model, "effort", decoded.Reasoning.Effort)
	return decoded.Reasoning.Effort, nil
}
