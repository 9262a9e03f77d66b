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
	"github.com/sthielo/jsonhelper/util/jsondoc"
	"github.com/sthielo/jsonhelper/util/jsonpath"
)

type jsonPathEngine struct{}

func (jsonPathEngine) Compile(expr string) (Compiled, error) {
	q, err := jsonpath.Compile(expr)
	if err != nil {
		return nil, err
	}
	return compiledJSONPath{q.AllowMissingKeys(true)}, nil
}

type compiledJSONPath struct {
	query *jsonpath.Query
}

// Evaluate returns the matched value for definite paths and an array of all
// matches, possibly empty, for any other path.
func (c compiledJSONPath) Evaluate(doc jsondoc.Value) (jsondoc.Value, error) {
	results, err := c.query.Find(doc)
	if err != nil {
		return nil, err
	}
	if !c.query.IsDefinite() {
		return jsondoc.Array(results), nil
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}
	return results[0], nil
}
