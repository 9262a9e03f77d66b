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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

func str(s string) *Singular { return &Singular{jsondoc.String(s)} }
func num(i int64) *Singular  { return &Singular{jsondoc.NumberFromInt(i)} }
func nodes(values ...jsondoc.Value) *ResultSet {
	return &ResultSet{values}
}

func TestCount(t *testing.T) {
	result, err := count(nodes(jsondoc.String("a"), jsondoc.Number("1"), jsondoc.Null{}))
	require.Nilf(t, err, "unexpected error: %#v", err)
	require.Equal(t, num(3), result)
}

func TestCountEmpty(t *testing.T) {
	result, err := count(nodes())
	require.Nilf(t, err, "unexpected error: %#v", err)
	require.Equal(t, num(0), result, "count=0 for empty result set")
}

func TestCountSingular(t *testing.T) {
	_, err := count(num(3))
	require.NotNil(t, err, "no count on singular")
}

func TestCountTooManyArgs(t *testing.T) {
	_, err := count(nodes(), str("abc"))
	require.NotNil(t, err, "too many args")
}

func TestCountTooFewArgs(t *testing.T) {
	_, err := count()
	require.NotNil(t, err, "missing arg")
}

func TestLength(t *testing.T) {
	tests := []struct {
		name     string
		arg      QueryResult
		expected QueryResult
	}{
		{"string as singular", str("abc"), num(3)},
		{"string counts characters", str("€ü"), num(2)},
		{"string as single node", nodes(jsondoc.String("abc")), num(3)},
		{"array", nodes(jsondoc.Array{jsondoc.String("a"), jsondoc.String("bc"), jsondoc.String("d")}), num(3)},
		{"object", nodes(jsondoc.Object{{Name: "a", Value: jsondoc.Number("1")}, {Name: "bc", Value: jsondoc.Null{}}}), num(2)},
		{"number has no length", num(1), nil},
		{"bool has no length", &Singular{jsondoc.Bool(true)}, nil},
		{"nothing", nodes(), nil},
		{"nil singular", (*Singular)(nil), nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(subT *testing.T) {
			result, err := length(test.arg)
			require.Nilf(subT, err, "unexpected error: %#v", err)
			require.Equal(subT, test.expected, result)
		})
	}
}

func TestLengthSeveralNodes(t *testing.T) {
	_, err := length(nodes(jsondoc.String("a"), jsondoc.String("b")))
	require.NotNil(t, err, "length of several nodes")
}

func TestLengthTooManyArgs(t *testing.T) {
	_, err := length(nodes(), str("abc"))
	require.NotNil(t, err, "too many args")
}

func TestLengthTooFewArgs(t *testing.T) {
	_, err := length()
	require.NotNil(t, err, "missing arg")
}

func TestMatch(t *testing.T) {
	result, err := match(str("abbbbbc"), str("ab+c"))
	require.Nilf(t, err, "unexpected error: %#v", err)
	require.Equal(t, &Singular{jsondoc.Bool(true)}, result, "matches")
}

func TestMatchFailSubstringOnly(t *testing.T) {
	result, err := match(str("abbbbbc"), str("b+"))
	require.Nilf(t, err, "unexpected error: %#v", err)
	require.Equal(t, &Singular{jsondoc.Bool(false)}, result, "no match on substrings")
}

func TestMatchAlternationIsAnchored(t *testing.T) {
	result, err := match(str("xb"), str("a|b"))
	require.Nil(t, err)
	require.Equal(t, &Singular{jsondoc.Bool(false)}, result)
}

func TestMatchNonString(t *testing.T) {
	result, err := match(num(1), str("1"))
	require.Nil(t, err)
	require.Equal(t, &Singular{jsondoc.Bool(false)}, result, "numbers never match")
	result, err = match(nodes(), str("1"))
	require.Nil(t, err)
	require.Equal(t, &Singular{jsondoc.Bool(false)}, result, "nothing never matches")
}

func TestMatchInvalidRegexp(t *testing.T) {
	_, err := match(str("a"), str("("))
	require.NotNil(t, err)
}

func TestSearch(t *testing.T) {
	result, err := search(str("abbbbbc"), str("b+"))
	require.Nilf(t, err, "unexpected error: %#v", err)
	require.Equal(t, &Singular{jsondoc.Bool(true)}, result, "find substring that matches")
}

func TestSearchTooFewArgs(t *testing.T) {
	_, err := search(str("abc"))
	require.NotNil(t, err, "missing arg")
}

func TestValue(t *testing.T) {
	result, err := value(nodes(jsondoc.Number("7")))
	require.Nil(t, err)
	require.Equal(t, &Singular{jsondoc.Number("7")}, result)

	result, err = value(nodes(jsondoc.Number("7"), jsondoc.Number("8")))
	require.Nil(t, err)
	require.Nil(t, result, "several nodes have no value")

	result, err = value(nodes())
	require.Nil(t, err)
	require.Nil(t, result, "nothing has no value")
}

func TestRegistry(t *testing.T) {
	r := newFunctionRegistry()
	for _, name := range []string{"count", "length", "match", "search", "value"} {
		require.Contains(t, r, name)
	}
	require.NotNil(t, r.register("count", count), "built-ins cannot be replaced")
	require.Nil(t, r.register("other", count))
}
