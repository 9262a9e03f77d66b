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

// Package jsonpath evaluates JSONPath queries following
// https://datatracker.ietf.org/doc/draft-ietf-jsonpath-base/ against parsed
// JSON documents.
//
// Supported are child and descendant segments with name, wildcard, index,
// slice and filter selectors. Filters know the comparison operators, '&&',
// '||', '!' and the functions length, count, match, search and value; more
// can be added per query with RegisterFunction.
//
// Deviations:
//   - a name selector picks the last member when an object repeats a name
//   - comparisons never convert between strings and numbers
//   - filter queries on their own are existence tests and stop at the first hit
package jsonpath
