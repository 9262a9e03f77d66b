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
	"strings"
)

// SyntaxError reports a query that cannot be compiled. Its message marks the
// position in the query where parsing stopped.
type SyntaxError struct {
	parserName string
	msg        string
	input      string
	pos        int
}

func (e SyntaxError) Error() string {
	posMarker := strings.Repeat(" ", e.pos) + "^"
	return fmt.Sprintf("jsonpath '%s' - syntax error (at pos %d): %s\n%s\n%s", e.parserName, e.pos, e.msg, e.input, posMarker)
}

// Pos is the byte offset in the query at which the error was detected.
func (e SyntaxError) Pos() int { return e.pos }

// ExecutionError reports a failure while evaluating a compiled query against
// a document, e.g. a missing key when missing keys are not allowed.
type ExecutionError struct {
	queryName string
	msg       string
}

func (e ExecutionError) Error() string {
	return fmt.Sprintf("jsonpath '%s' - execution error: %s", e.queryName, e.msg)
}
