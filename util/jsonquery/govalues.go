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

package jsonquery

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

// containerID identifies a map or a non-empty slice by the memory backing it.
type containerID struct {
	ptr uintptr
	len int
}

// goValues is the plain Go rendition of a document (maps, slices, float64)
// that remembers which document node every container and number came from.
// Results of expressions that select parts of the document are turned back
// into those nodes, keeping member order and number literals.
type goValues struct {
	root interface{}

	containers map[containerID]jsondoc.Value
	// numbers maps a float to its literal; nil marks floats that stand for
	// several different literals
	numbers map[float64]*jsondoc.Number
}

func newGoValues(doc jsondoc.Value) *goValues {
	g := &goValues{
		containers: make(map[containerID]jsondoc.Value),
		numbers:    make(map[float64]*jsondoc.Number),
	}
	g.root = g.toGo(doc)
	return g
}

func (g *goValues) toGo(v jsondoc.Value) interface{} {
	switch t := v.(type) {
	case nil, jsondoc.Null:
		return nil
	case jsondoc.Bool:
		return bool(t)
	case jsondoc.Number:
		// out of range literals become ±Inf and are found again by their literal
		f, _ := t.Float64()
		g.rememberNumber(f, t)
		return f
	case jsondoc.String:
		return string(t)
	case jsondoc.Array:
		arr := make([]interface{}, len(t))
		for i, e := range t {
			arr[i] = g.toGo(e)
		}
		if len(arr) > 0 {
			g.containers[idOf(arr)] = t
		}
		return arr
	case jsondoc.Object:
		obj := make(map[string]interface{}, len(t))
		for _, m := range t {
			obj[m.Name] = g.toGo(m.Value)
		}
		g.containers[idOf(obj)] = t
		return obj
	default:
		panic(fmt.Sprintf("internal error - unknown value type: %#v", v))
	}
}

func (g *goValues) rememberNumber(f float64, n jsondoc.Number) {
	known, found := g.numbers[f]
	switch {
	case !found:
		g.numbers[f] = &n
	case known != nil && *known != n:
		g.numbers[f] = nil
	}
}

func idOf(container interface{}) containerID {
	v := reflect.ValueOf(container)
	return containerID{v.Pointer(), v.Len()}
}

// fromGo converts an expression result back into a document value. Maps and
// slices taken unchanged from the document yield the original nodes. Numbers
// get their literal back unless several literals share the same float value.
// Everything built by the expression itself gets sorted members.
func (g *goValues) fromGo(v interface{}) (jsondoc.Value, error) {
	switch t := v.(type) {
	case nil:
		return jsondoc.Null{}, nil
	case bool:
		return jsondoc.Bool(t), nil
	case string:
		return jsondoc.String(t), nil
	case float64:
		if n := g.numbers[t]; n != nil {
			return *n, nil
		}
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, fmt.Errorf("number %v cannot be represented in JSON", t)
		}
		return jsondoc.NumberFromFloat(t), nil
	case []interface{}:
		if len(t) > 0 {
			if orig, found := g.containers[idOf(t)]; found {
				return orig, nil
			}
		}
		arr := make(jsondoc.Array, len(t))
		for i, e := range t {
			converted, err := g.fromGo(e)
			if err != nil {
				return nil, err
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]interface{}:
		if orig, found := g.containers[idOf(t)]; found {
			return orig, nil
		}
		names := make([]string, 0, len(t))
		for name := range t {
			names = append(names, name)
		}
		sort.Strings(names)
		obj := make(jsondoc.Object, 0, len(t))
		for _, name := range names {
			converted, err := g.fromGo(t[name])
			if err != nil {
				return nil, err
			}
			obj = append(obj, jsondoc.Member{Name: name, Value: converted})
		}
		return obj, nil
	default:
		return jsondoc.FromGo(v)
	}
}
