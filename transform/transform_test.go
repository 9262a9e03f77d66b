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

package transform

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sthielo/jsonhelper/config"
	"github.com/sthielo/jsonhelper/util/jsonescape"
	"github.com/sthielo/jsonhelper/util/jsonfmt"
	"github.com/sthielo/jsonhelper/util/jsonquery"
)

func TestPrettifyOrUglify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		mode     jsonfmt.Mode
		expected string
	}{
		{"plain prettify", `{"a":1}`, jsonfmt.Prettify, "{\n  \"a\": 1\n}"},
		{"plain uglify", "{\n  \"a\": [ 1, 2 ]\n}", jsonfmt.Uglify, `{"a":[1,2]}`},
		{"escaped is unescaped first", `{\"a\":[1,2]}`, jsonfmt.Uglify, `{"a":[1,2]}`},
		{"escaped prettify compact", `{\"list\":[1,2,3]}`, jsonfmt.PrettifyCompact, "{\n  \"list\": [ 1, 2, 3 ]\n}"},
		{"escaped sorted", `{\"z\":1,\"a\":2}`, jsonfmt.PrettifySorted, "{\n  \"a\": 2,\n  \"z\": 1\n}"},
		{"valid document with escaped quote in beautified layout", "{\n  \"a\": \"x\\\"y\"\n}", jsonfmt.Uglify, `{"a":"x\"y"}`},
		{"valid document with escaped quote prettified", "{\n  \"a\": \"x\\\"y\"\n}", jsonfmt.Prettify, "{\n  \"a\": \"x\\\"y\"\n}"},
		{"invalid passthrough", `{bad json}`, jsonfmt.Prettify, `{bad json}`},
		{"blank passthrough", "  ", jsonfmt.Uglify, "  "},
		{"truncated literal passthrough", `nul`, jsonfmt.Prettify, `nul`},
		{"leading zero passthrough", `{"a":01}`, jsonfmt.Prettify, `{"a":01}`},
		{"trailing dot passthrough", `[1.]`, jsonfmt.Uglify, `[1.]`},
		{"huge exponent kept", `{"a":1e400}`, jsonfmt.Prettify, "{\n  \"a\": 1e400\n}"},
	}
	tr := New(nil)
	for _, test := range tests {
		t.Run(test.name, func(subT *testing.T) {
			require.Equal(subT, test.expected, tr.PrettifyOrUglify(test.text, test.mode))
		})
	}
}

func TestPrettifyOrUglifyMultiLevelEscapes(t *testing.T) {
	doc := `{"a":[1,"two"],"b":{"c":null}}`
	escaped := jsonescape.Escape(jsonescape.Escape(jsonescape.Escape(doc)))
	tr := New(nil)
	assert.Equal(t, doc, tr.PrettifyOrUglify(escaped, jsonfmt.Uglify))
	assert.Equal(t, doc, tr.FullyUnescape(escaped))
}

func TestEscapeUnescape(t *testing.T) {
	tr := New(nil)
	escaped := tr.Escape(`{"a":"b"}`)
	assert.Equal(t, `{\"a\":\"b\"}`, escaped)
	assert.Equal(t, `{"a":"b"}`, tr.Unescape(escaped))
	assert.True(t, tr.IsValid(`{"a":1}`))
	assert.False(t, tr.IsValid(`{"a":1}trailing`))
}

func TestSettingsAreReadPerCall(t *testing.T) {
	store := config.NewStore(config.Default())
	tr := New(store.Provider())
	require.Equal(t, "{\n  \"b\": 1,\n  \"a\": 2\n}", tr.PrettifyOrUglify(`{"b":1,"a":2}`, jsonfmt.Prettify))

	require.Nil(t, store.Set(config.Config{IndentSize: 4, SortKeys: true, QueryEngine: "JSONPATH"}))
	assert.Equal(t, "{\n    \"a\": 2,\n    \"b\": 1\n}", tr.PrettifyOrUglify(`{"b":1,"a":2}`, jsonfmt.Prettify))
	assert.Equal(t, "{\n    \"b\": 1,\n    \"a\": 2\n}", tr.FormatSorted(`{"b":1,"a":2}`, jsonfmt.Prettify, false))
}

func TestQueryUsesConfiguredEngine(t *testing.T) {
	store := config.NewStore(config.Default())
	tr := New(store.Provider())
	doc := `{"foo":{"bar":[1,2]}}`

	result, found := tr.Query(doc, `$.foo.bar`)
	require.True(t, found)
	assert.Equal(t, "[\n  1,\n  2\n]", result)
	assert.True(t, tr.IsValidExpression(`$.foo`))

	require.Nil(t, store.Set(config.Config{IndentSize: 2, QueryEngine: "JMESPATH"}))
	result, found = tr.Query(doc, `foo.bar[0]`)
	require.True(t, found)
	assert.Equal(t, "1", result)
	assert.False(t, tr.IsValidExpression(`foo[`))
}

func TestQueryWith(t *testing.T) {
	tr := New(nil)
	_, found := tr.QueryWith(`{"a":1}`, `$.b`, jsonquery.JSONPath)
	assert.False(t, found, "no match yields no result")

	_, err := tr.Evaluate(`{"a":1}`, `b`, jsonquery.JMESPath)
	assert.ErrorIs(t, err, jsonquery.ErrNoMatch)

	result, found := tr.QueryWith(`{"a":{"b":true}}`, `a.b`, jsonquery.JMESPath)
	require.True(t, found)
	assert.Equal(t, "true", result)
	assert.True(t, tr.IsValidExpressionWith(`a.b`, jsonquery.JMESPath))
	assert.False(t, tr.IsValidExpressionWith(`$.[`, jsonquery.JSONPath))
}

func TestDiff(t *testing.T) {
	tr := New(config.Static(config.Config{IndentSize: 1, QueryEngine: "JSONPATH"}))
	res, err := tr.Diff(`{"b":1,"a":2}`, `{"a":2,"b":1}`)
	require.Nil(t, err)
	assert.True(t, res.Equal)
	assert.Equal(t, "{\n \"a\": 2,\n \"b\": 1\n}", res.Left)

	_, err = tr.Diff(`{}`, `{bad json}`)
	require.NotNil(t, err)
}

func TestApplyPatch(t *testing.T) {
	tr := New(nil)
	left := `{"a":1,"big":12345678901234567890,"c":{"d":true}}`
	right := `{"a":2,"big":12345678901234567890,"c":{}}`
	res, err := tr.Diff(left, right)
	require.Nil(t, err)
	require.Equal(t, `{"a":2,"c":{"d":null}}`, res.MergePatch)

	patched, err := tr.ApplyPatch(left, res.MergePatch)
	require.Nil(t, err)
	assert.Equal(t, right, patched)
}

func TestConcurrentUse(t *testing.T) {
	tr := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mode := jsonfmt.Mode(i % 4)
			out := tr.PrettifyOrUglify(`{\"l\":[1,{\"x\":2}]}`, mode)
			assert.True(t, tr.IsValid(out), "mode %s produced invalid JSON: %s", mode, out)
		}(i)
	}
	wg.Wait()
}
