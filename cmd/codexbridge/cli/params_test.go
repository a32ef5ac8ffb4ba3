// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Name     string        `flag:"name" desc:"the name"`
		Verbose  bool          `flag:"verbose,v" desc:"enable verbose output"`
		Count    int           `flag:"count" desc:"number of items" default:"7"`
		Timeout  time.Duration `flag:"timeout" desc:"request timeout" default:"5s"`
		Untagged string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if p.Count != 7 || p.Timeout != 5*time.Second {
		t.Errorf("defaults = %d/%s, want 7/5s", p.Count, p.Timeout)
	}

	if err := flagSet.Parse([]string{"--name", "proxy", "-v", "--count", "42", "--timeout", "30s"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Name != "proxy" || !p.Verbose || p.Count != 42 || p.Timeout != 30*time.Second {
		t.Errorf("params = %+v", p)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlags_Embedded(t *testing.T) {
	type Common struct {
		JSON bool `flag:"json" desc:"json output"`
	}
	type params struct {
		Common
		Strict bool `flag:"strict" desc:"strict"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"--json", "--strict"}); err != nil {
		t.Fatal(err)
	}
	if !p.JSON || !p.Strict {
		t.Errorf("params = %+v", p)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	var notPointer struct{}
	if err := BindFlags(notPointer, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags(non-pointer) = nil error")
	}

	type unsupported struct {
		Rate float32 `flag:"rate"`
	}
	err := BindFlags(&unsupported{}, pflag.NewFlagSet("x", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("error = %v, want unsupported type", err)
	}

	type badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("bad default accepted")
	}
}
