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

// Package transform bundles the JSON text operations editors and command
// line tools offer: formatting, escaping, validation, querying and diffing.
package transform

import (
	"k8s.io/klog/v2"

	"github.com/sthielo/jsonhelper/config"
	"github.com/sthielo/jsonhelper/util/jsondiff"
	"github.com/sthielo/jsonhelper/util/jsondoc"
	"github.com/sthielo/jsonhelper/util/jsonescape"
	"github.com/sthielo/jsonhelper/util/jsonfmt"
	"github.com/sthielo/jsonhelper/util/jsonquery"
)

// Transformer is safe for concurrent use. Settings are read anew for every
// call.
type Transformer struct {
	settings   config.Provider
	formatter  *jsonfmt.Formatter
	dispatcher *jsonquery.Dispatcher
}

// New returns a Transformer reading its settings from settings; nil means the
// defaults.
func New(settings config.Provider) *Transformer {
	if settings == nil {
		settings = config.Static(config.Default())
	}
	formatter := jsonfmt.NewFormatter(func() jsonfmt.Config {
		return settings().FormatConfig()
	})
	return &Transformer{
		settings:   settings,
		formatter:  formatter,
		dispatcher: jsonquery.NewDispatcher(formatter, jsonquery.WithResultMode(jsonfmt.Prettify)),
	}
}

// PrettifyOrUglify formats text in mode. Escaped text is fully unescaped
// first. Should that break a document that was valid as it was, the original
// text is formatted instead. Text that cannot be formatted comes back as is.
func (t *Transformer) PrettifyOrUglify(text string, mode jsonfmt.Mode) string {
	if !jsonescape.ContainsEscapeCharacters(text) {
		return t.formatter.Format(text, mode)
	}
	unescaped := jsonescape.FullyUnescape(text)
	if unescaped != text && !jsondoc.Valid(unescaped) && jsondoc.Valid(text) {
		klog.V(4).Infof("unescaped text is no valid JSON anymore, formatting it as is")
		return t.formatter.Format(text, mode)
	}
	return t.formatter.Format(unescaped, mode)
}

// FormatSorted formats text without unescaping it, deciding explicitly
// about sorting object members.
func (t *Transformer) FormatSorted(text string, mode jsonfmt.Mode, sortKeys bool) string {
	return t.formatter.FormatSorted(text, mode, sortKeys)
}

func (t *Transformer) Escape(text string) string {
	return jsonescape.Escape(text)
}

func (t *Transformer) Unescape(text string) string {
	return jsonescape.Unescape(text)
}

func (t *Transformer) FullyUnescape(text string) string {
	return jsonescape.FullyUnescape(text)
}

func (t *Transformer) IsValid(text string) bool {
	return jsondoc.Valid(text)
}

// Query runs expr with the configured query language. See
// jsonquery.Dispatcher.Query.
func (t *Transformer) Query(json, expr string) (string, bool) {
	return t.dispatcher.Query(json, expr, t.settings().Engine())
}

func (t *Transformer) QueryWith(json, expr string, kind jsonquery.EngineKind) (string, bool) {
	return t.dispatcher.Query(json, expr, kind)
}

// Evaluate is QueryWith reporting why there is no result.
func (t *Transformer) Evaluate(json, expr string, kind jsonquery.EngineKind) (string, error) {
	return t.dispatcher.Evaluate(json, expr, kind)
}

// IsValidExpression checks expr against the configured query language.
func (t *Transformer) IsValidExpression(expr string) bool {
	return t.dispatcher.IsValidExpression(expr, t.settings().Engine())
}

func (t *Transformer) IsValidExpressionWith(expr string, kind jsonquery.EngineKind) bool {
	return t.dispatcher.IsValidExpression(expr, kind)
}

// Diff compares two documents, rendering them with the configured indent.
func (t *Transformer) Diff(left, right string) (*jsondiff.Result, error) {
	return jsondiff.Compare(t.formatter, left, right)
}

// ApplyPatch applies an RFC 7386 merge patch, as produced by Diff, to doc.
func (t *Transformer) ApplyPatch(doc, patch string) (string, error) {
	return jsondiff.ApplyMergePatch(doc, patch)
}
