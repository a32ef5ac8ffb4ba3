// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles renders the status badges. Colour is dropped entirely when
// the output is not a terminal.
type Styles struct {
	badges map[Status]lipgloss.Style
	hint   lipgloss.Style
}

// NewStyles builds badge styles for output written to w. color false
// forces plain ASCII regardless of what w is.
func NewStyles(w io.Writer, color bool) Styles {
	var renderer *lipgloss.Renderer
	if color {
		renderer = lipgloss.NewRenderer(w)
	} else {
		renderer = lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
	}
	badge := func(color string) lipgloss.Style {
		return renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
	}
	return Styles{
		badges: map[Status]lipgloss.Style{
			StatusPass: badge("2"),
			StatusFail: badge("1"),
			StatusWarn: badge("3"),
			StatusSkip: renderer.NewStyle().Faint(true),
		},
		hint: renderer.NewStyle().Faint(true),
	}
}

// PrintChecklist writes results as a checklist, one line per check:
//
//	[PASS ]  proxy health                      http://127.0.0.1:8317 answers
//
// followed by a summary line.
func PrintChecklist(w io.Writer, styles Styles, results []Result) {
	failed := 0
	for _, result := range results {
		badge := fmt.Sprintf("[%-5s]", strings.ToUpper(string(result.Status)))
		if style, ok := styles.badges[result.Status]; ok {
			badge = style.Render(badge)
		}
		fmt.Fprintf(w, "%s  %-32s  %s\n", badge, result.Name, result.Message)
		if result.Status == StatusFail {
			failed++
			if result.Hint != "" {
				fmt.Fprintf(w, "         %-32s  %s\n", "", styles.hint.Render("hint: "+result.Hint))
			}
		}
	}

	fmt.Fprintln(w)
	if failed > 0 {
		fmt.Fprintf(w, "%d check(s) failed.\n", failed)
		return
	}
	fmt.Fprintln(w, "All checks passed.")
}
