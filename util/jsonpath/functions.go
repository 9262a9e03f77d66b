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
	"regexp"
	"unicode/utf8"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

// QueryResult is what filter expressions and functions evaluate to: either a
// ResultSet of nodes or a Singular value.
type QueryResult interface {
	qryResultInheritanceLimiter()
}

// ResultSet holds the nodes selected by a (filter) query, in document order.
type ResultSet struct {
	Elems []jsondoc.Value
}

func (ResultSet) qryResultInheritanceLimiter() {}

// Singular is a single value produced by a literal, a comparison, a logical
// operator, a function or a singular query. A nil *Singular means "nothing".
type Singular struct {
	Value jsondoc.Value
}

func (Singular) qryResultInheritanceLimiter() {}

// QueryFunction implements a function callable from filters. It gets the
// evaluated arguments and returns a ResultSet, a Singular or nil for
// "nothing". Returning an error aborts the query.
type QueryFunction func(args ...QueryResult) (QueryResult, error)

type functionRegistry map[string]QueryFunction

func newFunctionRegistry() functionRegistry {
	return functionRegistry{
		"count":  count,
		"length": length,
		"match":  match,
		"search": search,
		"value":  value,
	}
}

func (r functionRegistry) register(name string, f QueryFunction) error {
	if _, exists := r[name]; exists {
		return fmt.Errorf("function '%s' already defined", name)
	}
	r[name] = f
	return nil
}

// singularValue extracts the single value of a Singular or of a ResultSet
// with exactly one node. found is false for nil, empty results and "nothing".
func singularValue(r QueryResult) (v jsondoc.Value, found bool, err error) {
	switch t := r.(type) {
	case nil:
		return nil, false, nil
	case *ResultSet:
		switch len(t.Elems) {
		case 0:
			return nil, false, nil
		case 1:
			return t.Elems[0], true, nil
		default:
			return nil, false, fmt.Errorf("expected a single value, got %d nodes", len(t.Elems))
		}
	case *Singular:
		if t == nil || t.Value == nil {
			return nil, false, nil
		}
		return t.Value, true, nil
	default:
		panic(fmt.Sprintf("unknown type of QueryResult: %#v", r))
	}
}

func singularString(r QueryResult) (string, bool, error) {
	v, found, err := singularValue(r)
	if err != nil || !found {
		return "", false, err
	}
	s, ok := v.(jsondoc.String)
	return string(s), ok, nil
}

// count returns the number of nodes of a ResultSet.
func count(args ...QueryResult) (QueryResult, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("invalid nr of args to function 'count' - requires exactly ONE argument")
	}
	switch arg := args[0].(type) {
	case nil:
		return nil, nil
	case *ResultSet:
		return &Singular{jsondoc.NumberFromInt(int64(len(arg.Elems)))}, nil
	default:
		return nil, fmt.Errorf("count - only defined for query results, got: %#v", arg)
	}
}

// length returns the number of characters of a string, elements of an array
// or members of an object. Other values have no length.
func length(args ...QueryResult) (QueryResult, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("invalid nr of args to function 'length' - requires exactly ONE argument")
	}
	v, found, err := singularValue(args[0])
	if err != nil || !found {
		return nil, err
	}
	switch t := v.(type) {
	case jsondoc.String:
		return &Singular{jsondoc.NumberFromInt(int64(utf8.RuneCountInString(string(t))))}, nil
	case jsondoc.Array:
		return &Singular{jsondoc.NumberFromInt(int64(len(t)))}, nil
	case jsondoc.Object:
		return &Singular{jsondoc.NumberFromInt(int64(len(t)))}, nil
	default:
		return nil, nil
	}
}

// match reports whether the whole first argument matches the regular
// expression given as second argument.
func match(args ...QueryResult) (QueryResult, error) {
	return regexpTest("match", `\A(?:%s)\z`, args)
}

// search reports whether some substring of the first argument matches the
// regular expression given as second argument.
func search(args ...QueryResult) (QueryResult, error) {
	return regexpTest("search", `%s`, args)
}

func regexpTest(name string, pattern string, args []QueryResult) (QueryResult, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("invalid nr of args to function '%s' - requires exactly TWO arguments", name)
	}
	target, ok, err := singularString(args[0])
	if err != nil || !ok {
		return &Singular{jsondoc.Bool(false)}, err
	}
	expr, ok, err := singularString(args[1])
	if err != nil || !ok {
		return &Singular{jsondoc.Bool(false)}, err
	}
	re, err := regexp.Compile(fmt.Sprintf(pattern, expr))
	if err != nil {
		return nil, fmt.Errorf("%s - invalid regular expression: %v", name, err)
	}
	return &Singular{jsondoc.Bool(re.MatchString(target))}, nil
}

// value turns a query result with exactly one node into that node's value.
// Anything else is "nothing".
func value(args ...QueryResult) (QueryResult, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("invalid nr of args to function 'value' - requires exactly ONE argument")
	}
	if rs, ok := args[0].(*ResultSet); ok && len(rs.Elems) != 1 {
		return nil, nil
	}
	v, found, err := singularValue(args[0])
	if err != nil || !found {
		return nil, err
	}
	return &Singular{v}, nil
}
