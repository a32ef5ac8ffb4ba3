// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		result Result
		want   Status
	}{
		{Pass("a", "ok"), StatusPass},
		{Fail("a", "broken"), StatusFail},
		{FailWithHint("a", "broken", "run install"), StatusFail},
		{Warn("a", "heads up"), StatusWarn},
		{Skip("a", "not applicable"), StatusSkip},
	}
	for _, test := range tests {
		if test.result.Status != test.want {
			t.Errorf("status = %q, want %q", test.result.Status, test.want)
		}
	}
}

func TestFailedIgnoresWarnings(t *testing.T) {
	if Failed([]Result{Pass("a", ""), Warn("b", ""), Skip("c", "")}) {
		t.Error("Failed = true without failures")
	}
	if !Failed([]Result{Pass("a", ""), Fail("b", "")}) {
		t.Error("Failed = false with a failure")
	}
}

func TestPrintChecklistPlain(t *testing.T) {
	var buffer bytes.Buffer
	results := []Result{
		Pass("proxy health", "http://127.0.0.1:8317 answers"),
		FailWithHint("proxy service", "not loaded", "run codexbridge start"),
		Skip("binary", "not on macOS"),
	}

	PrintChecklist(&buffer, NewStyles(&buffer, false), results)

	output := buffer.String()
	for _, want := range []string{
		"[PASS ]  proxy health",
		"[FAIL ]  proxy service",
		"hint: run codexbridge start",
		"[SKIP ]  binary",
		"1 check(s) failed.",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\x1b[") {
		t.Errorf("plain output contains escape sequences: %q", output)
	}
}

func TestPrintChecklistAllPassed(t *testing.T) {
	var buffer bytes.Buffer
	PrintChecklist(&buffer, NewStyles(&buffer, false), []Result{Pass("a", "ok"), Warn("b", "meh")})
	if !strings.HasSuffix(buffer.String(), "All checks passed.\n") {
		t.Errorf("output = %q", buffer.String())
	}
}

func TestBuildJSON(t *testing.T) {
	output := BuildJSON([]Result{Pass("a", "ok"), FailWithHint("b", "bad", "fix it")}, map[string]int{"port": 8317})
	if output.OK {
		t.Error("OK = true with a failure")
	}
	data, err := json.Marshal(output)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Checks []map[string]string `json:"checks"`
		Detail map[string]int      `json:"detail"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Checks[1]["hint"] != "fix it" || decoded.Detail["port"] != 8317 {
		t.Errorf("decoded = %+v", decoded)
	}
}
