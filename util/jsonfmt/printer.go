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

package jsonfmt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

// precomputedDepths is the number of nesting levels whose line prefixes a
// printer prepares up front. Deeper levels are built on demand.
const precomputedDepths = 32

type printerKey struct {
	indent        int
	compactArrays bool
}

// prettyPrinter renders values in multi-line layout. It is immutable once
// built and therefore shared between concurrent callers.
type prettyPrinter struct {
	key printerKey
	// prefixes[d] is the newline plus indentation starting a line at depth d
	prefixes []string
}

func newPrettyPrinter(key printerKey) *prettyPrinter {
	p := &prettyPrinter{key: key, prefixes: make([]string, precomputedDepths)}
	for d := range p.prefixes {
		p.prefixes[d] = "\n" + strings.Repeat(" ", d*key.indent)
	}
	return p
}

func (p *prettyPrinter) newline(dst []byte, depth int) []byte {
	if depth < len(p.prefixes) {
		return append(dst, p.prefixes[depth]...)
	}
	dst = append(dst, '\n')
	return append(dst, strings.Repeat(" ", depth*p.key.indent)...)
}

func (p *prettyPrinter) print(v jsondoc.Value, sortKeys bool) (string, error) {
	b, err := p.appendValue(nil, v, 0, sortKeys)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *prettyPrinter) appendValue(dst []byte, v jsondoc.Value, depth int, sortKeys bool) ([]byte, error) {
	switch t := v.(type) {
	case jsondoc.Array:
		if p.key.compactArrays {
			return p.appendInlineArray(dst, t, depth, sortKeys)
		}
		return p.appendArray(dst, t, depth, sortKeys)
	case jsondoc.Object:
		return p.appendObject(dst, t, depth, sortKeys)
	case nil, jsondoc.Null, jsondoc.Bool, jsondoc.Number, jsondoc.String:
		return jsondoc.AppendCompact(dst, v)
	default:
		return dst, fmt.Errorf("unsupported value type %T", v)
	}
}

func (p *prettyPrinter) appendArray(dst []byte, arr jsondoc.Array, depth int, sortKeys bool) ([]byte, error) {
	if len(arr) == 0 {
		return append(dst, "[]"...), nil
	}
	var err error
	dst = append(dst, '[')
	for i, e := range arr {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = p.newline(dst, depth+1)
		if dst, err = p.appendValue(dst, e, depth+1, sortKeys); err != nil {
			return dst, err
		}
	}
	dst = p.newline(dst, depth)
	return append(dst, ']'), nil
}

// appendInlineArray keeps the elements on the line of the opening bracket.
// Nested objects still break lines, indented one level below the array.
func (p *prettyPrinter) appendInlineArray(dst []byte, arr jsondoc.Array, depth int, sortKeys bool) ([]byte, error) {
	if len(arr) == 0 {
		return append(dst, "[]"...), nil
	}
	var err error
	dst = append(dst, "[ "...)
	for i, e := range arr {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		if dst, err = p.appendValue(dst, e, depth+1, sortKeys); err != nil {
			return dst, err
		}
	}
	return append(dst, " ]"...), nil
}

func (p *prettyPrinter) appendObject(dst []byte, obj jsondoc.Object, depth int, sortKeys bool) ([]byte, error) {
	if len(obj) == 0 {
		return append(dst, "{}"...), nil
	}
	if sortKeys {
		obj = sortedMembers(obj)
	}
	var err error
	dst = append(dst, '{')
	for i, m := range obj {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = p.newline(dst, depth+1)
		if dst, err = jsondoc.AppendQuoted(dst, m.Name); err != nil {
			return dst, err
		}
		dst = append(dst, ": "...)
		if dst, err = p.appendValue(dst, m.Value, depth+1, sortKeys); err != nil {
			return dst, err
		}
	}
	dst = p.newline(dst, depth)
	return append(dst, '}'), nil
}

// sortedMembers returns a copy of obj ordered by name. Members sharing a name
// keep their relative order.
func sortedMembers(obj jsondoc.Object) jsondoc.Object {
	sorted := make(jsondoc.Object, len(obj))
	copy(sorted, obj)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}
