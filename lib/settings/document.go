// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/tidwall/jsonc"
)

// ErrMalformed is wrapped by every error caused by the content of the
// settings file rather than by I/O.
var ErrMalformed = errors.New("malformed settings")

// Document is the settings file as an opaque JSON object. Only the
// keys this package owns are ever inspected; everything else round
// trips untouched. Numbers decode as json.Number so their text is
// preserved exactly.
type Document map[string]any

// Read loads the settings file at path. A missing or blank file is an
// empty Document with exists reporting whether the file was there.
func Read(path string) (document Document, exists bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	document, err = Parse(data)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", path, err)
	}
	return document, true, nil
}

// Parse decodes settings content. The top level must be a JSON object.
// Comments and trailing commas are rejected: the file is written back
// as plain JSON, which would silently drop them.
func Parse(data []byte) (Document, error) {
	if line, ok := jsoncLine(data); ok {
		return nil, fmt.Errorf("%w: line %d: comments and trailing commas are not JSON; remove them and re-run", ErrMalformed, line)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing content after the top-level object", ErrMalformed)
	}
	object, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %s, want an object", ErrMalformed, kind(value))
	}
	return Document(object), nil
}

// jsoncLine reports the first line holding a comment or trailing
// comma. jsonc.ToJSON blanks those in place and keeps every other byte
// at its offset, so any difference marks one.
func jsoncLine(data []byte) (int, bool) {
	stripped := jsonc.ToJSON(data)
	for offset := range min(len(data), len(stripped)) {
		if data[offset] != stripped[offset] {
			return 1 + bytes.Count(data[:offset], []byte("\n")), true
		}
	}
	if len(data) != len(stripped) {
		return 1 + bytes.Count(data, []byte("\n")), true
	}
	return 0, false
}

// Encode renders the document the way it is written to disk: two
// space indentation, keys sorted, no HTML escaping, trailing newline.
func (d Document) Encode() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(map[string]any(d)); err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return buffer.Bytes(), nil
}

// env returns the "env" object, creating it when create is set. A
// missing env without create returns nil. An env that is not an
// object is malformed.
func (d Document) env(create bool) (map[string]any, error) {
	value, ok := d["env"]
	if !ok {
		if !create {
			return nil, nil
		}
		env := make(map[string]any)
		d["env"] = env
		return env, nil
	}
	env, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: \"env\" is %s, want an object", ErrMalformed, kind(value))
	}
	return env, nil
}

// EnvString returns env[key] when it is a string.
func (d Document) EnvString(key string) string {
	env, err := d.env(false)
	if err != nil || env == nil {
		return ""
	}
	text, _ := env[key].(string)
	return text
}

func kind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case json.Number, float64:
		return "a number"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
