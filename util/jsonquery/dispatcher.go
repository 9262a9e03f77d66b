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
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"
	"k8s.io/klog/v2"

	"github.com/sthielo/jsonhelper/util/jsondoc"
	"github.com/sthielo/jsonhelper/util/jsonfmt"
)

// Dispatcher runs query expressions against JSON text with the engine the
// caller picks. It is safe for concurrent use.
type Dispatcher struct {
	formatter  *jsonfmt.Formatter
	resultMode jsonfmt.Mode

	// lock guards compiled, which is nil when caching is disabled
	lock     sync.Mutex
	compiled *lru.Cache
}

// DefaultCacheSize is the number of compiled expressions a Dispatcher keeps.
const DefaultCacheSize = 64

type compiledKey struct {
	kind EngineKind
	expr string
}

type Option func(*Dispatcher)

// WithCacheSize sets how many compiled expressions are kept for reuse. Zero
// disables the cache.
func WithCacheSize(size int) Option {
	return func(d *Dispatcher) {
		if size <= 0 {
			d.compiled = nil
			return
		}
		d.compiled = lru.New(size)
	}
}

// WithResultMode sets how results are rendered. The default is Uglify.
func WithResultMode(mode jsonfmt.Mode) Option {
	return func(d *Dispatcher) {
		d.resultMode = mode
	}
}

// NewDispatcher returns a Dispatcher rendering its results with formatter. A
// nil formatter means one with default settings.
func NewDispatcher(formatter *jsonfmt.Formatter, opts ...Option) *Dispatcher {
	if formatter == nil {
		formatter = jsonfmt.NewFormatter(nil)
	}
	d := &Dispatcher{formatter: formatter, resultMode: jsonfmt.Uglify, compiled: lru.New(DefaultCacheSize)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query runs expr against json. The boolean is false whenever there is no
// usable result: nothing matched, the expression or the document is invalid
// or the evaluation failed. Failures are logged, never returned.
func (d *Dispatcher) Query(json, expr string, kind EngineKind) (string, bool) {
	result, err := d.Evaluate(json, expr, kind)
	switch {
	case err == nil:
		return result, true
	case errors.Is(err, ErrNoMatch):
		klog.V(4).Infof("%s query %q matched nothing", kind, expr)
	default:
		klog.Warningf("%s query %q failed: %v", kind, expr, err)
	}
	return "", false
}

// Evaluate is Query telling why there is no result: ErrNoMatch if the
// expression selected nothing, a wrapped error otherwise.
func (d *Dispatcher) Evaluate(json, expr string, kind EngineKind) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = "", fmt.Errorf("%s query %q failed: %v", kind, expr, r)
		}
	}()

	if _, err := engineFor(kind); err != nil {
		return "", err
	}
	doc, err := jsondoc.Parse(json)
	if err != nil {
		return "", fmt.Errorf("invalid document: %w", err)
	}
	compiled, err := d.compile(kind, expr)
	if err != nil {
		return "", fmt.Errorf("invalid %s expression %q: %w", kind, expr, err)
	}
	v, err := compiled.Evaluate(doc)
	if err != nil {
		return "", err
	}
	return d.formatter.Render(v, d.resultMode)
}

// IsValidExpression reports whether expr compiles for kind. No document is
// needed.
func (d *Dispatcher) IsValidExpression(expr string, kind EngineKind) (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			klog.Warningf("compiling %s expression %q failed: %v", kind, expr, r)
			valid = false
		}
	}()
	_, err := d.compile(kind, expr)
	return err == nil
}

// compile returns the compiled expression, reusing an earlier compilation if
// the cache still holds it. Failed compilations are not cached.
func (d *Dispatcher) compile(kind EngineKind, expr string) (Compiled, error) {
	key := compiledKey{kind, expr}
	if c, found := d.cached(key); found {
		return c, nil
	}
	engine, err := engineFor(kind)
	if err != nil {
		return nil, err
	}
	c, err := engine.Compile(expr)
	if err != nil {
		return nil, err
	}
	if d.compiled != nil {
		d.lock.Lock()
		d.compiled.Add(key, c)
		d.lock.Unlock()
	}
	return c, nil
}

func (d *Dispatcher) cached(key compiledKey) (Compiled, bool) {
	if d.compiled == nil {
		return nil, false
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	v, found := d.compiled.Get(key)
	if !found {
		return nil, false
	}
	return v.(Compiled), true
}
