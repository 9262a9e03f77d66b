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

	"github.com/jmespath/go-jmespath"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

type jmesPathEngine struct{}

func (jmesPathEngine) Compile(expr string) (Compiled, error) {
	c, err := jmespath.Compile(expr)
	if err != nil {
		return nil, err
	}
	return compiledJMESPath{c}, nil
}

type compiledJMESPath struct {
	expr *jmespath.JMESPath
}

// Evaluate runs the expression on the plain Go rendition of doc. Parts of
// doc selected by the expression come back with their member order and
// number literals; objects the expression builds have sorted members.
func (c compiledJMESPath) Evaluate(doc jsondoc.Value) (jsondoc.Value, error) {
	values := newGoValues(doc)
	result, err := c.expr.Search(values.root)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrNoMatch
	}
	v, err := values.fromGo(result)
	if err != nil {
		return nil, fmt.Errorf("failed to convert JMESPath result: %w", err)
	}
	return v, nil
}
