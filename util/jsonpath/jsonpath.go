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

package jsonpath

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"k8s.io/klog/v2"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

// astDumper prints compiled queries when tracing above debugLevel.
var astDumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}

// Query is a compiled JSONPath query.
type Query struct {
	expr   string
	parser *queryParser

	allowMissingKeys bool

	functions functionRegistry
	debug     bool
}

// Compile parses expr. A missing leading '$' is implied; anything after the
// last segment is a syntax error.
func Compile(expr string) (*Query, error) {
	q := &Query{
		expr:             expr,
		parser:           newQueryParser("JSONPathQueryParser"),
		allowMissingKeys: true,
		functions:        newFunctionRegistry(),
	}
	if err := q.parser.parse(expr); err != nil {
		return nil, err
	}
	return q, nil
}

// MustCompile is like Compile but panics if expr cannot be parsed.
func MustCompile(expr string) *Query {
	q, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("jsonpath: Compile(%q): %v", expr, err))
	}
	return q
}

func (q *Query) String() string {
	return q.expr
}

// IsDefinite reports whether the query selects at most one node whatever the
// document looks like.
func (q *Query) IsDefinite() bool {
	return q.parser.isSingular
}

// AllowMissingKeys allows a caller to specify whether they want an error if a field or index
// cannot be located, or simply an empty result. The receiver is returned for chaining.
func (q *Query) AllowMissingKeys(allow bool) *Query {
	q.allowMissingKeys = allow
	return q
}

// RegisterFunction adds a function usable in filters of this query. Names of
// built-in functions cannot be overridden.
func (q *Query) RegisterFunction(name string, f QueryFunction) error {
	return q.functions.register(name, f)
}

// EnableDebugMsgs traces the evaluation at klog verbosity 5. At verbosity 6
// the compiled query is dumped as well.
func (q *Query) EnableDebugMsgs() *Query {
	q.debug = true
	return q
}

// Find evaluates the query against root and returns the selected nodes in
// document order. A query selecting nothing returns an empty slice.
func (q *Query) Find(root jsondoc.Value) ([]jsondoc.Value, error) {
	if root == nil {
		return nil, ExecutionError{q.parser.name, "no document to query"}
	}
	if q.debug && klog.V(debugLevel+1).Enabled() {
		klog.Infof("jsonpath '%s': compiled %q as\n%s", q.parser.name, q.expr, astDumper.Sdump(q.parser.root))
	}
	results, err := executeQuery(q.parser, root, root, false, q.allowMissingKeys, q.functions, q.debug)
	if err != nil {
		return nil, err
	}
	return results.Elems, nil
}
