/*
Copyright 2015 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package jsonescape

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"k8s.io/klog/v2"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

// escapeSequences are the backslash sequences that mark text as escaped JSON.
var escapeSequences = []string{`\"`, `\\`, `\b`, `\f`, `\n`, `\r`, `\t`, `\u`}

// ContainsEscapeCharacters reports whether text contains a textual backslash escape
// such as `\"` or `\n`. Real control characters do not count.
func ContainsEscapeCharacters(text string) bool {
	for _, seq := range escapeSequences {
		if strings.Contains(text, seq) {
			return true
		}
	}
	return false
}

// IsBeautified reports whether text looks like indented multi-line JSON: it has
// a line break, a `": "` member separator and at least one indented line.
func IsBeautified(text string) bool {
	if !strings.Contains(text, "\n") || !strings.Contains(text, `": `) {
		return false
	}
	for _, line := range strings.Split(text, "\n") {
		if isIndented(line) {
			return true
		}
	}
	return false
}

func isIndented(line string) bool {
	if line == "" || (line[0] != ' ' && line[0] != '\t') {
		return false
	}
	return strings.TrimSpace(line) != ""
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Escape turns text into the payload of a JSON string literal (without the
// enclosing quotes). Indented multi-line text keeps its line layout, anything
// else is escaped the way a JSON encoder escapes strings. On failure the
// input is returned unchanged.
func Escape(text string) string {
	escaped, err := EscapeE(text)
	if err != nil {
		klog.Warningf("failed to escape JSON text, keeping it as is: %v", err)
		return text
	}
	return escaped
}

// EscapeE is Escape reporting failures instead of absorbing them.
func EscapeE(text string) (string, error) {
	if isBlank(text) {
		return text, nil
	}
	if IsBeautified(text) {
		return escapeKeepingLayout(text), nil
	}
	quoted, err := jsondoc.Quote(text)
	if err != nil {
		return text, fmt.Errorf("failed to encode text as JSON string: %w", err)
	}
	return quoted[1 : len(quoted)-1], nil
}

// escapeKeepingLayout escapes only backslashes and double quotes so that line
// breaks and indentation survive as real characters. All other bytes are
// copied as they are, invalid UTF-8 included.
func escapeKeepingLayout(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/8)
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape removes exactly one level of escaping. Text without escape
// sequences is returned as is, as is text that cannot be decoded.
func Unescape(text string) string {
	unescaped, err := UnescapeE(text)
	if err != nil {
		klog.Warningf("failed to unescape JSON text, keeping it as is: %v", err)
		return text
	}
	return unescaped
}

// UnescapeE is Unescape reporting failures instead of absorbing them.
func UnescapeE(text string) (string, error) {
	if isBlank(text) || !ContainsEscapeCharacters(text) {
		return text, nil
	}
	if IsBeautified(text) {
		return unescapeKeepingLayout(text), nil
	}
	var s string
	if err := json.Unmarshal([]byte(`"`+text+`"`), &s); err != nil {
		return text, fmt.Errorf("failed to decode text as JSON string: %w", err)
	}
	return s, nil
}

// unescapeKeepingLayout decodes only `\"` and `\\`. Every other backslash is
// copied literally, so `\n` stays the two characters '\' and 'n'.
func unescapeKeepingLayout(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\\' && i+1 < len(text) {
			switch text[i+1] {
			case '"':
				b.WriteByte('"')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// FullyUnescape unescapes repeatedly until no escape sequences are left or a
// round does not change the text anymore.
func FullyUnescape(text string) string {
	current := text
	for ContainsEscapeCharacters(current) {
		next := Unescape(current)
		if next == current {
			break
		}
		current = next
	}
	return current
}
