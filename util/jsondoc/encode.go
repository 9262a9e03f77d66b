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

package jsondoc

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Quote encodes s as a JSON string literal including the enclosing quotes.
// '<', '>' and '&' are kept as they are.
func Quote(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	b := buf.Bytes()
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	return string(b), nil
}

// AppendQuoted appends the JSON string literal of s to dst.
func AppendQuoted(dst []byte, s string) ([]byte, error) {
	q, err := Quote(s)
	if err != nil {
		return dst, err
	}
	return append(dst, q...), nil
}

// AppendCompact appends the single-line rendering of v without any
// insignificant whitespace. Member order is kept.
func AppendCompact(dst []byte, v Value) ([]byte, error) {
	var err error
	switch t := v.(type) {
	case nil:
		return append(dst, "null"...), nil
	case Null:
		return append(dst, "null"...), nil
	case Bool:
		if t {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case Number:
		return append(dst, t...), nil
	case String:
		return AppendQuoted(dst, string(t))
	case Array:
		dst = append(dst, '[')
		for i, e := range t {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = AppendCompact(dst, e); err != nil {
				return dst, err
			}
		}
		return append(dst, ']'), nil
	case Object:
		dst = append(dst, '{')
		for i, m := range t {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = AppendQuoted(dst, m.Name); err != nil {
				return dst, err
			}
			dst = append(dst, ':')
			if dst, err = AppendCompact(dst, m.Value); err != nil {
				return dst, err
			}
		}
		return append(dst, '}'), nil
	default:
		return dst, fmt.Errorf("unsupported value type %T", v)
	}
}

// Compact is AppendCompact into a string. Values that cannot be rendered show up as their Go syntax.
func Compact(v Value) string {
	b, err := AppendCompact(nil, v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}

// FromGo converts any value goccy/go-json can marshal into a Value. Map keys come out sorted.
func FromGo(v interface{}) (Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Parse(string(b))
}
