// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"bytes"
	"embed"
	"encoding/xml"
	"strings"
	"text/template"
)

//go:embed templates/launchagent.plist.tmpl templates/sync-codex-token.sh.tmpl
var templateFiles embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"xml":   xmlEscape,
	"quote": shellQuote,
}).ParseFS(templateFiles, "templates/*.tmpl"))

func render(name string, data any) ([]byte, error) {
	var buffer bytes.Buffer
	if err := templates.ExecuteTemplate(&buffer, name, data); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func xmlEscape(s string) string {
	var buffer strings.Builder
	// Writing to a strings.Builder cannot fail.
	_ = xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}

// shellQuote wraps s in single quotes for POSIX sh, closing and
// reopening the quote around embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
