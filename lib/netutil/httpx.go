// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response helpers.
//
// ReadResponse, DecodeResponse and ErrorBody cap body reads at
// MaxResponseSize so a misbehaving server (a stale process squatting on
// the proxy port, a captive portal in front of the release feed) cannot
// exhaust memory. They are for JSON API responses, not for release
// archives, which are streamed straight into the extractor.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MaxResponseSize bounds JSON response reads: 8 MB. Release metadata
// and proxy responses are a few kilobytes.
const MaxResponseSize int64 = 8 << 20

// maxErrorBody bounds how much of an error response is quoted in an
// error message.
const maxErrorBody = 512

// ReadResponse reads a JSON API response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON API response body (up to MaxResponseSize
// bytes) and JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ErrorBody reads an HTTP error response body and returns a trimmed,
// truncated string for diagnostic error messages. Read errors are
// ignored; a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	text := strings.TrimSpace(string(data))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}
