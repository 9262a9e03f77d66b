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

// Package jsondiff compares two JSON documents by structure rather than by
// text.
package jsondiff

import (
	"fmt"
	"sort"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/sthielo/jsonhelper/util/jsondoc"
	"github.com/sthielo/jsonhelper/util/jsonfmt"
)

// contextLines is the number of unchanged lines around each change in
// UnifiedDiff.
const contextLines = 3

// Result describes how right differs from left.
type Result struct {
	// Equal ignores member order and formatting. Numbers compare by their
	// exact value.
	Equal bool
	// MergePatch is the RFC 7386 merge patch turning left into right, with
	// sorted members and number literals taken from right. For documents that
	// are not both objects it is right itself. It is "{}" exactly when Equal
	// holds for two objects.
	MergePatch string
	// Left and Right are the documents prettified with sorted keys.
	Left  string
	Right string
	// UnifiedDiff compares Left and Right line by line; empty if they are
	// the same.
	UnifiedDiff string
}

// Compare parses both documents and computes their differences. A nil
// formatter means one with default settings.
func Compare(f *jsonfmt.Formatter, left, right string) (*Result, error) {
	if f == nil {
		f = jsonfmt.NewFormatter(nil)
	}
	l, err := jsondoc.Parse(left)
	if err != nil {
		return nil, fmt.Errorf("left document: %w", err)
	}
	r, err := jsondoc.Parse(right)
	if err != nil {
		return nil, fmt.Errorf("right document: %w", err)
	}

	res := &Result{
		Equal:      jsondoc.Equal(l, r),
		MergePatch: jsondoc.Compact(mergePatch(l, r)),
	}
	if res.Left, err = f.Render(l, jsonfmt.PrettifySorted); err != nil {
		return nil, fmt.Errorf("left document: %w", err)
	}
	if res.Right, err = f.Render(r, jsonfmt.PrettifySorted); err != nil {
		return nil, fmt.Errorf("right document: %w", err)
	}
	if res.UnifiedDiff, err = unifiedDiff(res.Left, res.Right); err != nil {
		return nil, err
	}
	return res, nil
}

// mergePatch computes the patch on the parsed documents so that numbers are
// never rounded through float64.
func mergePatch(l, r jsondoc.Value) jsondoc.Value {
	lo, leftIsObject := l.(jsondoc.Object)
	ro, rightIsObject := r.(jsondoc.Object)
	if !leftIsObject || !rightIsObject {
		return r
	}
	patch := make(jsondoc.Object, 0)
	for _, name := range memberNames(lo, ro) {
		lv, inLeft := lo.Get(name)
		rv, inRight := ro.Get(name)
		switch {
		case !inRight:
			patch = append(patch, jsondoc.Member{Name: name, Value: jsondoc.Null{}})
		case !inLeft:
			patch = append(patch, jsondoc.Member{Name: name, Value: rv})
		case !jsondoc.Equal(lv, rv):
			patch = append(patch, jsondoc.Member{Name: name, Value: mergePatch(lv, rv)})
		}
	}
	return patch
}

// memberNames returns the distinct member names of both objects, sorted.
func memberNames(objs ...jsondoc.Object) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, o := range objs {
		for _, m := range o {
			if _, dup := seen[m.Name]; !dup {
				seen[m.Name] = struct{}{}
				names = append(names, m.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// ApplyMergePatch applies an RFC 7386 merge patch to doc and returns the
// compact result. Members of patched objects come out sorted by name; values
// the patch does not touch keep their number literals.
func ApplyMergePatch(doc, patch string) (string, error) {
	d, err := jsondoc.Parse(doc)
	if err != nil {
		return "", fmt.Errorf("document: %w", err)
	}
	p, err := jsondoc.Parse(patch)
	if err != nil {
		return "", fmt.Errorf("patch: %w", err)
	}
	// a patch that is not an object replaces the whole document
	if _, ok := p.(jsondoc.Object); !ok {
		return jsondoc.Compact(p), nil
	}
	if _, ok := d.(jsondoc.Object); !ok {
		doc = "{}"
	}
	patched, err := jsonpatch.MergePatch([]byte(doc), []byte(patch))
	if err != nil {
		return "", fmt.Errorf("failed to apply merge patch: %w", err)
	}
	v, err := jsondoc.Parse(string(patched))
	if err != nil {
		return "", fmt.Errorf("merge patch produced invalid JSON: %w", err)
	}
	return jsondoc.Compact(v), nil
}

func unifiedDiff(left, right string) (string, error) {
	if left == right {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(left + "\n"),
		B:        difflib.SplitLines(right + "\n"),
		FromFile: "left",
		ToFile:   "right",
		Context:  contextLines,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to diff documents: %w", err)
	}
	return text, nil
}
