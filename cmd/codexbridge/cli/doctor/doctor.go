// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
	StatusSkip Status = "skip"
)

// Result holds the outcome of a single check. Failures may carry a
// Hint telling the user which command repairs them.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Pass creates a passing check result.
func Pass(name, message string) Result {
	return Result{Name: name, Status: StatusPass, Message: message}
}

// Fail creates a failing check result.
func Fail(name, message string) Result {
	return Result{Name: name, Status: StatusFail, Message: message}
}

// FailWithHint creates a failing check result with repair guidance.
func FailWithHint(name, message, hint string) Result {
	return Result{Name: name, Status: StatusFail, Message: message, Hint: hint}
}

// Warn creates a warning. Warnings never count as failures.
func Warn(name, message string) Result {
	return Result{Name: name, Status: StatusWarn, Message: message}
}

// Skip creates a skipped check result, used when a prerequisite check
// failed or the check does not apply to this host.
func Skip(name, message string) Result {
	return Result{Name: name, Status: StatusSkip, Message: message}
}

// Failed reports whether any result failed.
func Failed(results []Result) bool {
	for _, result := range results {
		if result.Status == StatusFail {
			return true
		}
	}
	return false
}

// JSONOutput is the --json output of checklist commands. Detail
// carries the command's full structured report.
type JSONOutput struct {
	Checks []Result `json:"checks"`
	OK     bool     `json:"ok"`
	Detail any      `json:"detail,omitempty"`
}

// BuildJSON assembles the JSON output for results.
func BuildJSON(results []Result, detail any) JSONOutput {
	return JSONOutput{Checks: results, OK: !Failed(results), Detail: detail}
}
