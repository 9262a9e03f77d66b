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
	"sync"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sthielo/jsonhelper/util/jsondoc"
	"github.com/sthielo/jsonhelper/util/jsonfmt"
	"github.com/sthielo/jsonhelper/util/jsonpath"
)

type queryTest struct {
	name     string
	json     string
	expr     string
	kind     EngineKind
	expected string
	found    bool
}

var queryTests = []queryTest{
	{"jsonpath definite hit", `{"a":{"b":1}}`, `$.a.b`, JSONPath, `1`, true},
	{"jsonpath definite miss", `{"a":{"b":1}}`, `$.a.c`, JSONPath, ``, false},
	{"jsonpath definite null value", `{"a":null}`, `$.a`, JSONPath, `null`, true},
	{"jsonpath indefinite hit", `{"list":[1,2,3]}`, `$.list[*]`, JSONPath, `[1,2,3]`, true},
	{"jsonpath indefinite miss", `{"list":[1,2,3]}`, `$..x`, JSONPath, `[]`, true},
	{"jsonpath filter", `{"l":[{"n":"a","v":1},{"n":"b","v":2}]}`, `$.l[?@.v > 1].n`, JSONPath, `["b"]`, true},
	{"jsonpath keeps member order", `{"a":{"z":1,"b":2}}`, `$.a`, JSONPath, `{"z":1,"b":2}`, true},
	{"jsonpath keeps number literals", `{"price":1.50}`, `$.price`, JSONPath, `1.50`, true},
	{"jsonpath invalid expression", `{"a":1}`, `$.[`, JSONPath, ``, false},
	{"jmespath hit", `{"foo":{"bar":[1,2]}}`, `foo.bar`, JMESPath, `[1,2]`, true},
	{"jmespath miss", `{"foo":{"bar":[1,2]}}`, `foo.baz`, JMESPath, ``, false},
	{"jmespath function", `{"foo":{"bar":[1,2]}}`, `length(foo.bar)`, JMESPath, `2`, true},
	{"jmespath projection", `{"people":[{"name":"a","age":3},{"name":"b","age":40}]}`, `people[?age > ` + "`18`" + `].name`, JMESPath, `["b"]`, true},
	{"jmespath keeps member order", `{"foo":{"z":1,"a":"<b>"}}`, `foo`, JMESPath, `{"z":1,"a":"<b>"}`, true},
	{"jmespath sorts built objects", `{"foo":{"z":1,"a":"<b>"}}`, `{z: foo.z, a: foo.a}`, JMESPath, `{"a":"<b>","z":1}`, true},
	{"jmespath keeps big integers", `{"id":9007199254740993}`, `id`, JMESPath, `9007199254740993`, true},
	{"jmespath keeps integers beyond int64", `{"id":12345678901234567890}`, `id`, JMESPath, `12345678901234567890`, true},
	{"jmespath keeps number literals", `{"a":[1.0,2.50]}`, `a`, JMESPath, `[1.0,2.50]`, true},
	{"jmespath keeps literals in projections", `{"l":[{"v":2.50},{"v":3}]}`, `l[*].v`, JMESPath, `[2.50,3]`, true},
	{"jmespath keeps out of range numbers", `{"a":1e400}`, `a`, JMESPath, `1e400`, true},
	{"jmespath shared float value falls back to canonical number", `{"a":1.0,"b":1}`, `a`, JMESPath, `1`, true},
	{"jmespath computed number", `{"a":[1.50,"x"]}`, `length(a)`, JMESPath, `2`, true},
	{"jmespath invalid expression", `{"foo":1}`, `foo[`, JMESPath, ``, false},
	{"invalid document", `{bad json}`, `$.a`, JSONPath, ``, false},
	{"trailing data in document", `{"a":1}x`, `a`, JMESPath, ``, false},
}

func TestQuery(t *testing.T) {
	d := NewDispatcher(nil)
	for _, test := range queryTests {
		t.Run(test.name, func(subT *testing.T) {
			result, found := d.Query(test.json, test.expr, test.kind)
			require.Equal(subT, test.found, found)
			require.Equal(subT, test.expected, result)
		})
	}
}

func TestEvaluateExplainsMissingResults(t *testing.T) {
	d := NewDispatcher(nil)

	_, err := d.Evaluate(`{"a":1}`, `$.b`, JSONPath)
	require.True(t, errors.Is(err, ErrNoMatch), "unexpected error: %v", err)

	_, err = d.Evaluate(`{"a":1}`, `b`, JMESPath)
	require.True(t, errors.Is(err, ErrNoMatch), "unexpected error: %v", err)

	_, err = d.Evaluate(`{bad json}`, `$.a`, JSONPath)
	require.True(t, errors.Is(err, jsondoc.ErrInvalid), "unexpected error: %v", err)

	_, err = d.Evaluate(`{"a":1}`, `$.a b`, JSONPath)
	var syntaxErr jsonpath.SyntaxError
	require.True(t, errors.As(err, &syntaxErr), "unexpected error: %v", err)
	assert.Equal(t, 4, syntaxErr.Pos())
	assert.False(t, errors.Is(err, ErrNoMatch))
}

func TestUnknownEngine(t *testing.T) {
	d := NewDispatcher(nil)
	_, err := d.Evaluate(`{"a":1}`, `a`, EngineKind(42))
	require.NotNil(t, err)
	require.False(t, d.IsValidExpression(`a`, EngineKind(42)))
}

func TestIsValidExpression(t *testing.T) {
	tests := []struct {
		expr  string
		kind  EngineKind
		valid bool
	}{
		{`$.a.b`, JSONPath, true},
		{`$..book[?(@.price < 10)]`, JSONPath, true},
		{`$.[`, JSONPath, false},
		{``, JSONPath, false},
		{`$.a b`, JSONPath, false},
		{`foo.bar`, JMESPath, true},
		{`foo[?bar > ` + "`1`" + `]`, JMESPath, true},
		{`foo[`, JMESPath, false},
	}
	d := NewDispatcher(nil)
	for _, test := range tests {
		t.Run(test.kind.String()+" "+test.expr, func(subT *testing.T) {
			require.Equal(subT, test.valid, d.IsValidExpression(test.expr, test.kind))
		})
	}
}

func TestWithResultMode(t *testing.T) {
	d := NewDispatcher(jsonfmt.NewFormatter(jsonfmt.StaticConfig(jsonfmt.Config{IndentSize: 4})), WithResultMode(jsonfmt.Prettify))
	result, found := d.Query(`{"a":{"b":[1,2]}}`, `$.a`, JSONPath)
	require.True(t, found)
	require.Equal(t, "{\n    \"b\": [\n        1,\n        2\n    ]\n}", result)
}

func TestConcurrentQueries(t *testing.T) {
	d := NewDispatcher(nil, WithResultMode(jsonfmt.PrettifyCompact))
	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kind := JSONPath
			expr := `$.a`
			if i%2 == 1 {
				kind, expr = JMESPath, `a`
			}
			results[i], _ = d.Query(`{"a":{"l":[1,2]}}`, expr, kind)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		require.Equal(t, "{\n  \"l\": [ 1, 2 ]\n}", r)
	}
}

func TestParseEngineKind(t *testing.T) {
	tests := []struct {
		name     string
		expected EngineKind
	}{
		{"JSONPATH", JSONPath},
		{"jsonpath", JSONPath},
		{" JmesPath ", JMESPath},
		{"xpath", JSONPath},
		{"", JSONPath},
	}
	for _, test := range tests {
		t.Run(test.name, func(subT *testing.T) {
			require.Equal(subT, test.expected, ParseEngineKind(test.name))
		})
	}
	assert.True(t, IsEngineName("jmespath"))
	assert.False(t, IsEngineName("xpath"))
	assert.Equal(t, "JMESPATH", JMESPath.String())
}

func TestEngineKindFlag(t *testing.T) {
	kind := JSONPath
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&kind, "engine", "query language")
	require.Nil(t, fs.Parse([]string{"--engine=jmespath"}))
	require.Equal(t, JMESPath, kind)
}

func TestCompiledExpressionsAreCached(t *testing.T) {
	d := NewDispatcher(nil, WithCacheSize(1))
	require.True(t, d.IsValidExpression(`$.a`, JSONPath))
	first, found := d.cached(compiledKey{JSONPath, `$.a`})
	require.True(t, found)

	result, ok := d.Query(`{"a":[1]}`, `$.a`, JSONPath)
	require.True(t, ok)
	require.Equal(t, `[1]`, result)
	again, found := d.cached(compiledKey{JSONPath, `$.a`})
	require.True(t, found)
	require.Equal(t, first, again)

	require.True(t, d.IsValidExpression(`a`, JMESPath))
	_, found = d.cached(compiledKey{JSONPath, `$.a`})
	require.False(t, found, "least recently used expression is evicted")

	require.False(t, d.IsValidExpression(`$.[`, JSONPath))
	_, found = d.cached(compiledKey{JSONPath, `$.[`})
	require.False(t, found, "invalid expressions are not cached")
}

func TestCacheCanBeDisabled(t *testing.T) {
	d := NewDispatcher(nil, WithCacheSize(0))
	result, found := d.Query(`{"a":1}`, `a`, JMESPath)
	require.True(t, found)
	require.Equal(t, `1`, result)
	_, found = d.cached(compiledKey{JMESPath, `a`})
	require.False(t, found)
}
