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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

// examples from https://datatracker.ietf.org/doc/draft-ietf-jsonpath-base/

const (
	book0   = `{"category": "reference", "author": "Nigel Rees", "title": "Sayings of the Century", "price": 8.95}`
	book1   = `{"category": "fiction", "author": "Evelyn Waugh", "title": "Sword of Honour", "price": 12.99}`
	book2   = `{"category": "fiction", "author": "Herman Melville", "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99}`
	book3   = `{"category": "fiction", "author": "J. R. R. Tolkien", "title": "The Lord of the Rings", "isbn": "0-395-19395-8", "price": 22.99}`
	bicycle = `{"color": "red", "price": 399}`
	books   = `[` + book0 + `, ` + book1 + `, ` + book2 + `, ` + book3 + `]`
	store   = `{"book": ` + books + `, "bicycle": ` + bicycle + `}`

	storeData            = `{"store": ` + store + `}`
	nameSelectorData     = `{"o": {"j j": {"k.k": 3}}, "'": {"@": 2}}`
	wildcardSelectorData = `{"o": {"j": 1, "k": 2}, "a": [5, 3]}`
	indexSelectorData    = `["a", "b"]`
	sliceSelectorData    = `["a", "b", "c", "d", "e", "f", "g"]`
	comparisonA          = `[3, 5, 1, 2, 4, 6, {"b": "j"}, {"b": "k"}, {"b": {}}, {"b": "kilo"}]`
	comparisonO          = `{"p": 1, "q": 2, "r": 3, "s": 5, "t": {"u": 6}}`
	comparisonData       = `{"a": ` + comparisonA + `, "o": ` + comparisonO + `, "e": "f"}`
	descendantData       = `{"o": {"j": 1, "k": 2}, "a": [5, 3, [{"j": 4}, {"k": 6}]]}`
	nullData             = `{"a": null, "b": [null], "c": [{}], "null": 1}`
)

func jsonArray(elems ...string) string {
	return "[" + strings.Join(elems, ", ") + "]"
}

// bookMembers lists the member values of a book in document order.
func bookMembers(book string) []string {
	v, err := jsondoc.Parse(book)
	if err != nil {
		panic(err)
	}
	obj := v.(jsondoc.Object)
	members := make([]string, len(obj))
	for i, m := range obj {
		members[i] = jsondoc.Compact(m.Value)
	}
	return members
}

type rfcExampleTest struct {
	query            string
	name             string
	data             string
	allowMissingKeys bool
	expected         string
	ordered          bool
}

func allStoreElementsAndMembers() string {
	elems := []string{store, books, book0}
	elems = append(elems, bookMembers(book0)...)
	elems = append(elems, book1)
	elems = append(elems, bookMembers(book1)...)
	elems = append(elems, book2)
	elems = append(elems, bookMembers(book2)...)
	elems = append(elems, book3)
	elems = append(elems, bookMembers(book3)...)
	elems = append(elems, bicycle, `"red"`, `399`)
	return jsonArray(elems...)
}

var allDescendantValues = `[{"j": 1, "k": 2}, 1, 2, [5, 3, [{"j": 4}, {"k": 6}]], 5, 3, [{"j": 4}, {"k": 6}], {"j": 4}, 4, {"k": 6}, 6]`

var rfcExampleTests = []rfcExampleTest{
	// === general examples
	{`$.store.book[*].author`, "the authors of all books in the store", storeData, false, `["Nigel Rees", "Evelyn Waugh", "Herman Melville", "J. R. R. Tolkien"]`, true},
	{`$..author`, "all authors", storeData, false, `["Nigel Rees", "Evelyn Waugh", "Herman Melville", "J. R. R. Tolkien"]`, true},
	{`$.store.*`, "all things in store, which are some books and a red bicycle", storeData, false, jsonArray(books, bicycle), true},
	{`$.store..price`, "the prices of everything in the store", storeData, false, `[8.95, 12.99, 8.99, 22.99, 399]`, true},
	{`$..book[2]`, "the third book", storeData, false, jsonArray(book2), true},
	{`$..book[-1]`, "the last book in order", storeData, false, jsonArray(book3), true},
	{`$..book[0,1]`, "the first two books", storeData, false, jsonArray(book0, book1), true},
	{`$..book[:2]`, "the first two books (2)", storeData, false, jsonArray(book0, book1), true},
	{`$..book[?(@.isbn)]`, "all books with an ISBN number", storeData, true, jsonArray(book2, book3), true},
	{`$..book[?(@.price<10)]`, "all books cheaper than 10", storeData, false, jsonArray(book0, book2), true},
	{`$..*`, "all member values and array elements contained in the input value", storeData, false, allStoreElementsAndMembers(), false},

	// === name selector
	{`$.o['j j']['k.k']`, "Named value in nested object", nameSelectorData, false, `[3]`, true},
	{`$.o["j j"]["k.k"]`, "Named value in nested object (2)", nameSelectorData, false, `[3]`, true},
	{`$["'"]["@"]`, "Unusual member names", nameSelectorData, false, `[2]`, true},

	// === wildcard selector
	{`$[*]`, "Object values", wildcardSelectorData, false, `[{"j": 1, "k": 2}, [5, 3]]`, true},
	{`$.o[*]`, "Object values (2)", wildcardSelectorData, false, `[1, 2]`, true},
	{`$.o[*, *]`, "Object values (3)", wildcardSelectorData, false, `[1, 2, 2, 1]`, false},
	{`$.a[*]`, "Array members", wildcardSelectorData, false, `[5, 3]`, true},

	// === index selector
	{`$[1]`, "Element of array", indexSelectorData, false, `["b"]`, true},
	{`$[-2]`, "Element of array, from the end", indexSelectorData, false, `["a"]`, true},

	// === array slice selector
	{`$[1:3]`, "Slice with default step", sliceSelectorData, false, `["b", "c"]`, true},
	{`$[5:]`, "Slice with no end index", sliceSelectorData, false, `["f", "g"]`, true},
	{`$[1:5:2]`, "Slice with step 2", sliceSelectorData, false, `["b", "d"]`, true},
	{`$[5:1:-2]`, "Slice with negative step", sliceSelectorData, false, `["f", "d"]`, true},
	{`$[::-1]`, "Slice in reverse order", sliceSelectorData, false, `["g", "f", "e", "d", "c", "b", "a"]`, true},
	{`$[-100:100]`, "Slice bounds are clamped", sliceSelectorData, false, sliceSelectorData, true},

	// === filter selector
	{`$.a[?@.b == 'kilo']`, "Member value comparison", comparisonData, true, `[{"b": "kilo"}]`, true},
	{`$.a[?@>3.5] `, "Array value comparison", comparisonData, false, `[5, 4, 6]`, true},
	{`$.a[?@.b]`, "Array value existence", comparisonData, true, `[{"b": "j"}, {"b": "k"}, {"b": {}}, {"b": "kilo"}]`, true},
	{`$[?@.*]`, "Existence of non-singular queries", comparisonData, false, jsonArray(comparisonA, comparisonO), true},
	{`$[?@[?@.b]]`, "Nested filters", comparisonData, true, jsonArray(comparisonA), true},
	{`$.o[?@<3, ?@<3]`, "Non-deterministic ordering", comparisonData, false, `[1, 2, 2, 1]`, false},
	{`$.a[?@<2 || @.b == "k"]`, "Array value logical OR", comparisonData, true, `[1, {"b": "k"}]`, true},
	{`$.a[?match(@.b, "[jk]")]`, "Array value regular expression match", comparisonData, true, `[{"b": "j"}, {"b": "k"}]`, true},
	{`$.a[?search(@.b, "[jk]")]`, "Array value regular expression search", comparisonData, true, `[{"b": "j"}, {"b": "k"}, {"b": "kilo"}]`, true},
	{`$.o[?@>1 && @<4]`, "Object value logical AND", comparisonData, false, `[2, 3]`, true},
	{`$.o[?@.u || @.x]`, "Object value logical OR", comparisonData, true, `[{"u": 6}]`, true},
	{`$.a[?(@.b == $.x)]`, "Comparison of queries with no values", comparisonData, true, `[3, 5, 1, 2, 4, 6]`, true},
	{`$.a[?(@ == @)]`, "Comparisons of primitive and of structured values", comparisonData, false, comparisonA, true},

	// === function extensions
	{`$[?length(@) < 3]`, "length of strings and structures", comparisonData, false, `["f"]`, true},
	{`$[?count(@.*) > 5]`, "count of nodes", comparisonData, false, jsonArray(comparisonA), true},
	{`$.a[?value(@.b) == 'k']`, "value of a singular node", comparisonData, true, `[{"b": "k"}]`, true},

	// === descendant segment
	{`$..j`, "Object values", descendantData, false, `[1, 4]`, false},
	{`$..[0]`, "Array values", descendantData, false, `[5, {"j": 4}]`, false},
	{`$..[*]`, "All values", descendantData, false, allDescendantValues, false},
	{`$..*`, "All values (2)", descendantData, false, allDescendantValues, false},
	{`$..o`, "Input value is visited", descendantData, false, `[{"j": 1, "k": 2}]`, false},
	{`$.o..[*, *]`, "Non-deterministic ordering", descendantData, false, `[1, 2, 2, 1]`, false},
	{`$.a..[0, 1]`, "Multiple segments", descendantData, false, `[5, 3, {"j": 4}, {"k": 6}]`, false},

	// === null semantics
	{`$.a`, "Object value", nullData, false, `[null]`, true},
	{`$.a[0]`, "null used as array", nullData, true, `[]`, true},
	{`$.a.d`, "null used as object", nullData, true, `[]`, true},
	{`$.b[0]`, "Array value", nullData, false, `[null]`, true},
	{`$.b[*]`, "Array value (2)", nullData, false, `[null]`, true},
	{`$.b[?@] `, "Existence", nullData, false, `[null]`, true},
	{`$.b[?@==null]`, "Comparison", nullData, false, `[null]`, true},
	{`$.c[?(@.d==null)]`, "Comparison with 'missing' value", nullData, true, `[]`, true},
	{`$.null`, "Not JSON null at all, just a member name string", nullData, false, `[1]`, true},
}

func TestRFCExamples(t *testing.T) {
	for _, test := range rfcExampleTests {
		t.Run(test.name, func(subT *testing.T) {
			q, err := Compile(test.query)
			require.Nilf(subT, err, "failed to initialize test - while parsing the query - with unexpected error: %v", err)

			results, err := q.AllowMissingKeys(test.allowMissingKeys).Find(mustParse(subT, test.data))
			require.Nilf(subT, err, "failed with unexpected error: %v", err)
			requireResults(subT, test.expected, results, test.ordered)
		})
	}
}
