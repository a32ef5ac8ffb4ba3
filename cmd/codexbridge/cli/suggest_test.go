// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"ab", "abc", 1},
		{"abc", "bac", 2},
		{"kitten", "sitting", 3},
		{"install", "instal", 1},
		{"purge", "prgue", 2},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
		if reverse := levenshtein(test.b, test.a); reverse != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.b, test.a, reverse, test.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "install"}, {Name: "uninstall"}, {Name: "start"}, {Name: "stop"}}
	tests := []struct {
		input, want string
	}{
		{"instal", "install"},
		{"uninstal", "uninstall"},
		{"strat", "start"},
		{"zzzzzzzz", ""},
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
	flagSet.Bool("json", false, "")
	flagSet.Bool("strict", false, "")

	if got := suggestFlag([]string{"--jsno"}, flagSet); got != "--json" {
		t.Errorf("suggestFlag(--jsno) = %q, want --json", got)
	}
	if got := suggestFlag([]string{"--json", "--completely-different"}, flagSet); got != "" {
		t.Errorf("suggestFlag = %q, want no suggestion", got)
	}
}
