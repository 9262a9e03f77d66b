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
	"errors"
	"fmt"
	"strings"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

// ErrNoMatch is returned when a query executes fine but selects nothing.
var ErrNoMatch = errors.New("query matched nothing")

// EngineKind selects the query language.
type EngineKind int

const (
	JSONPath EngineKind = iota
	JMESPath
)

var engineNames = map[EngineKind]string{
	JSONPath: "JSONPATH",
	JMESPath: "JMESPATH",
}

// ParseEngineKind maps an engine name, case-insensitively, to its kind.
// Unknown names yield JSONPath.
func ParseEngineKind(s string) EngineKind {
	name := strings.ToUpper(strings.TrimSpace(s))
	for kind, n := range engineNames {
		if n == name {
			return kind
		}
	}
	return JSONPath
}

// IsEngineName reports whether s names an engine, so that settings can
// reject typos instead of silently falling back.
func IsEngineName(s string) bool {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, n := range engineNames {
		if n == name {
			return true
		}
	}
	return false
}

func (k EngineKind) String() string {
	if name, ok := engineNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EngineKind(%d)", int(k))
}

// Set implements pflag.Value.
func (k *EngineKind) Set(s string) error {
	*k = ParseEngineKind(s)
	return nil
}

// Type implements pflag.Value.
func (k *EngineKind) Type() string { return "engine" }

// Engine compiles expressions of one query language.
type Engine interface {
	Compile(expr string) (Compiled, error)
}

// Compiled is an expression ready to be run against documents. Evaluate
// returns ErrNoMatch if the expression selects nothing.
type Compiled interface {
	Evaluate(doc jsondoc.Value) (jsondoc.Value, error)
}

func engineFor(kind EngineKind) (Engine, error) {
	switch kind {
	case JSONPath:
		return jsonPathEngine{}, nil
	case JMESPath:
		return jmesPathEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown query engine %s", kind)
	}
}
