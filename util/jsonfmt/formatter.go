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

package jsonfmt

import (
	"fmt"
	"strings"
	"sync"

	"k8s.io/klog/v2"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

// Formatter renders JSON text. It is safe for concurrent use; the only state
// it keeps is its cache of pretty printers.
type Formatter struct {
	config ConfigProvider

	lock     sync.Mutex
	printers map[printerKey]*prettyPrinter
}

// NewFormatter returns a Formatter reading its settings from config. A nil
// config means DefaultConfig.
func NewFormatter(config ConfigProvider) *Formatter {
	if config == nil {
		config = StaticConfig(DefaultConfig())
	}
	return &Formatter{
		config:   config,
		printers: make(map[printerKey]*prettyPrinter),
	}
}

// printerFor returns the printer for key, building it on first use. Only one
// printer is ever built per key.
func (f *Formatter) printerFor(key printerKey) *prettyPrinter {
	f.lock.Lock()
	defer f.lock.Unlock()
	p, found := f.printers[key]
	if !found {
		p = newPrettyPrinter(key)
		f.printers[key] = p
		klog.V(5).Infof("built pretty printer indent=%d compactArrays=%t", key.indent, key.compactArrays)
	}
	return p
}

// Format renders text in the given mode, sorting keys if the mode asks for it
// or the configured default says so.
func (f *Formatter) Format(text string, mode Mode) string {
	return f.format(text, mode, nil)
}

// FormatSorted is Format with an explicit decision about key sorting. The
// decision is ignored for PrettifySorted (always sorted) and Uglify (never).
func (f *Formatter) FormatSorted(text string, mode Mode, sortKeys bool) string {
	return f.format(text, mode, &sortKeys)
}

func (f *Formatter) format(text string, mode Mode, sortOverride *bool) (result string) {
	if strings.TrimSpace(text) == "" {
		return text
	}
	defer func() {
		if r := recover(); r != nil {
			klog.Warningf("formatting JSON failed, keeping input: %v", r)
			result = text
		}
	}()

	v, err := jsondoc.Parse(text)
	if err != nil {
		klog.V(4).Infof("not formatting invalid JSON: %v", err)
		return text
	}
	cfg := f.config()
	rendered, err := f.render(v, effectiveMode(mode, sortOverride, cfg), cfg)
	if err != nil {
		klog.Warningf("rendering JSON failed, keeping input: %v", err)
		return text
	}
	return rendered
}

// effectiveMode resolves whether keys get sorted. Sorting turns any pretty
// mode into PrettifySorted.
func effectiveMode(mode Mode, sortOverride *bool, cfg Config) Mode {
	switch {
	case mode == Uglify || mode == PrettifySorted:
		return mode
	case sortOverride != nil:
		if *sortOverride {
			return PrettifySorted
		}
		return mode
	case cfg.SortKeysDefault:
		return PrettifySorted
	default:
		return mode
	}
}

// Render renders an already parsed value exactly in the given mode, using
// the configured indentation.
func (f *Formatter) Render(v jsondoc.Value, mode Mode) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rendering JSON failed: %v", r)
		}
	}()
	return f.render(v, mode, f.config())
}

func (f *Formatter) render(v jsondoc.Value, mode Mode, cfg Config) (string, error) {
	if !mode.UsesPrettyPrinting() {
		b, err := jsondoc.AppendCompact(nil, v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	p := f.printerFor(printerKey{indent: cfg.indent(), compactArrays: mode.UsesCompactArrays()})
	return p.print(v, mode.UsesSorting())
}
