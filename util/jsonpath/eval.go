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

	"k8s.io/klog/v2"

	"github.com/sthielo/jsonhelper/util/jsondoc"
)

// debugLevel is the klog verbosity evaluation traces are logged at.
const debugLevel = 5

type qryExecContext struct {
	name              string
	dataRoot          jsondoc.Value
	evalExistenceOnly bool
	allowMissingKeys  bool
	remainingSegments []segment
	functions         functionRegistry
	debug             bool
	curSegment        segment
	curSelector       selector
}

func (ctx qryExecContext) areMissingKeysAllowed() bool {
	return ctx.allowMissingKeys || (ctx.curSegment != nil && ctx.curSegment.getType() != childSegmentType)
}

func (ctx qryExecContext) isDescending() bool {
	return ctx.curSegment != nil && ctx.curSegment.getType() == descendantSegmentType
}

func (ctx qryExecContext) withoutFirstSegment() qryExecContext {
	next := ctx
	next.remainingSegments = ctx.remainingSegments[1:]
	return next
}

func emptyResultSet() *ResultSet {
	return &ResultSet{[]jsondoc.Value{}}
}

func (ctx qryExecContext) dbgMsgf(msgFormat string, args ...interface{}) {
	if !ctx.debug || !klog.V(debugLevel).Enabled() {
		return
	}
	converted := make([]interface{}, len(args))
	for i, a := range args {
		switch t := a.(type) {
		case *ResultSet:
			converted[i] = jsondoc.Compact(jsondoc.Array(t.Elems))
		case *Singular:
			if t == nil {
				converted[i] = "nothing"
			} else {
				converted[i] = jsondoc.Compact(t.Value)
			}
		case jsondoc.Value:
			converted[i] = jsondoc.Compact(t)
		default:
			converted[i] = a
		}
	}
	klog.V(debugLevel).Infof("jsonpath '"+ctx.name+"': "+msgFormat, converted...)
}

func executeQuery(p *queryParser, rootDataNode jsondoc.Value, currDataNode jsondoc.Value, evalExistenceOnly bool, allowMissingKeys bool, fcts functionRegistry, debug bool) (*ResultSet, error) {
	qryRoot := currDataNode
	switch p.root.nodeIdentifierSymbol {
	case rootNodeSymbol:
		qryRoot = rootDataNode
	case currentNodeSymbol:
	default:
		panic(fmt.Sprintf("internal error - unknown nodeIdentifierSymbol: %d", p.root.nodeIdentifierSymbol))
	}

	ctx := qryExecContext{
		name:              p.name,
		dataRoot:          rootDataNode,
		evalExistenceOnly: evalExistenceOnly,
		allowMissingKeys:  allowMissingKeys,
		remainingSegments: p.root.segments,
		functions:         fcts,
		debug:             debug,
	}
	ctx.dbgMsgf("entering query %s on %s", p.string(), qryRoot)
	results, err := findResults(ctx, qryRoot)
	if err != nil {
		ctx.dbgMsgf("query %s failed: %v", p.string(), err)
		return nil, err
	}
	ctx.dbgMsgf("query %s (evalExistenceOnly=%t) resulted in %s", p.string(), evalExistenceOnly, results)
	return results, nil
}

func findResults(ctx qryExecContext, curNode jsondoc.Value) (*ResultSet, error) {
	if len(ctx.remainingSegments) == 0 {
		return &ResultSet{[]jsondoc.Value{curNode}}, nil
	}

	results := make([]jsondoc.Value, 0, 4)
	ctx.curSegment = ctx.remainingSegments[0]
	ctx.dbgMsgf("entering segment %s", ctx.curSegment.string())
	for _, sel := range ctx.curSegment.getSelectors() {
		ctx.curSelector = sel
		nodeResults, err := selectChildrenAndFindResultsForThem(ctx.withoutFirstSegment(), curNode)
		if err != nil {
			return nil, err
		}
		if len(nodeResults.Elems) > 0 {
			if ctx.evalExistenceOnly {
				return nodeResults, nil
			}
			results = append(results, nodeResults.Elems...)
		}
	}
	return &ResultSet{results}, nil
}

func selectChildrenAndFindResultsForThem(ctx qryExecContext, curNode jsondoc.Value) (*ResultSet, error) {
	switch sel := ctx.curSelector.(type) {
	case *wildcardSelector:
		return walkChildren(ctx, curNode, false, func(jsondoc.Kind, jsondoc.Value, int) (bool, error) {
			return true, nil
		})
	case *nameSelector:
		return selectChildByName(ctx, curNode, sel)
	case *indexSelector:
		return selectChildByIndex(ctx, curNode, sel)
	case *arraySliceSelector:
		return selectChildrenBySlice(ctx, curNode, sel)
	case *filterSelector:
		return walkChildren(ctx, curNode, false, func(_ jsondoc.Kind, child jsondoc.Value, _ int) (bool, error) {
			return evalTest(ctx, child, sel.expr)
		})
	default:
		panic(fmt.Sprintf("internal error - unknown selectorType: %#v", ctx.curSelector))
	}
}

// selectChildByName selects the member called sel.name. With duplicate names
// the last member wins.
func selectChildByName(ctx qryExecContext, curNode jsondoc.Value, sel *nameSelector) (*ResultSet, error) {
	selected := -1
	if obj, ok := curNode.(jsondoc.Object); ok {
		for i, m := range obj {
			if m.Name == sel.name {
				selected = i
			}
		}
	}
	if selected < 0 && !ctx.areMissingKeysAllowed() {
		return nil, ExecutionError{ctx.name, fmt.Sprintf("missing key '%s' in %s", sel.name, curNode.Kind())}
	}
	return walkChildren(ctx, curNode, false, func(parent jsondoc.Kind, _ jsondoc.Value, index int) (bool, error) {
		return parent == jsondoc.ObjectKind && index == selected, nil
	})
}

func selectChildByIndex(ctx qryExecContext, curNode jsondoc.Value, sel *indexSelector) (*ResultSet, error) {
	selected := -1
	if arr, ok := curNode.(jsondoc.Array); ok {
		selected = sel.index
		if selected < 0 {
			selected += len(arr)
		}
		if selected >= len(arr) {
			selected = -1
		}
	}
	if selected < 0 && !ctx.areMissingKeysAllowed() {
		return nil, ExecutionError{ctx.name, fmt.Sprintf("missing index %d in %s", sel.index, curNode.Kind())}
	}
	return walkChildren(ctx, curNode, false, func(parent jsondoc.Kind, _ jsondoc.Value, index int) (bool, error) {
		return parent == jsondoc.ArrayKind && index == selected, nil
	})
}

func selectChildrenBySlice(ctx qryExecContext, curNode jsondoc.Value, sel *arraySliceSelector) (*ResultSet, error) {
	arr, ok := curNode.(jsondoc.Array)
	if !ok {
		if !ctx.areMissingKeysAllowed() {
			return nil, ExecutionError{ctx.name, fmt.Sprintf("slice %s applied to %s", sel.string(), curNode.Kind())}
		}
		return walkChildren(ctx, curNode, false, func(jsondoc.Kind, jsondoc.Value, int) (bool, error) {
			return false, nil
		})
	}

	indices := sel.indices(len(arr))
	if len(indices) == 0 {
		ctx.dbgMsgf("empty slice %s for array of length %d", sel.string(), len(arr))
	}
	next := 0
	return walkChildren(ctx, curNode, sel.step < 0, func(_ jsondoc.Kind, _ jsondoc.Value, index int) (bool, error) {
		if next < len(indices) && indices[next] == index {
			next++
			return true, nil
		}
		return false, nil
	})
}

func hasChildren(v jsondoc.Value) bool {
	switch v.(type) {
	case jsondoc.Array, jsondoc.Object:
		return true
	default:
		return false
	}
}

func doWithSelected(ctx qryExecContext, selected jsondoc.Value) (*ResultSet, error) {
	results := make([]jsondoc.Value, 0, 1)
	if len(ctx.remainingSegments) == 0 {
		ctx.dbgMsgf("found a result: %s", selected)
		if ctx.evalExistenceOnly {
			return &ResultSet{[]jsondoc.Value{selected}}, nil
		}
		results = append(results, selected)
	} else {
		childResults, err := findResults(ctx, selected)
		if err != nil {
			return nil, err
		}
		if len(childResults.Elems) > 0 {
			if ctx.evalExistenceOnly {
				return childResults, nil
			}
			results = append(results, childResults.Elems...)
		}
	}

	if ctx.isDescending() && hasChildren(selected) {
		descendantResults, err := selectChildrenAndFindResultsForThem(ctx, selected)
		if err != nil {
			return nil, err
		}
		results = append(results, descendantResults.Elems...)
	}
	return &ResultSet{results}, nil
}

func doWithNotSelected(ctx qryExecContext, notSelected jsondoc.Value) (*ResultSet, error) {
	if ctx.isDescending() && hasChildren(notSelected) {
		return selectChildrenAndFindResultsForThem(ctx, notSelected)
	}
	return emptyResultSet(), nil
}

// selectorEvalFct decides whether the child at index (array position or
// member position) of a parent of the given kind is selected.
type selectorEvalFct func(parentKind jsondoc.Kind, child jsondoc.Value, index int) (bool, error)

// walkChildren applies selFct to every child of curNode. Selected children
// continue with the remaining segments; in descendant segments all children
// are searched further with the same selector.
func walkChildren(ctx qryExecContext, curNode jsondoc.Value, reverseOrder bool, selFct selectorEvalFct) (*ResultSet, error) {
	results := make([]jsondoc.Value, 0, 8)

	// visit returns true once the walk can stop early
	visit := func(parentKind jsondoc.Kind, child jsondoc.Value, index int) (bool, error) {
		isSelected, err := selFct(parentKind, child, index)
		if err != nil {
			return false, err
		}
		var childResults *ResultSet
		if isSelected {
			childResults, err = doWithSelected(ctx, child)
		} else {
			childResults, err = doWithNotSelected(ctx, child)
		}
		if err != nil {
			return false, err
		}
		results = append(results, childResults.Elems...)
		return ctx.evalExistenceOnly && len(results) > 0, nil
	}

	switch n := curNode.(type) {
	case jsondoc.Object:
		for i, m := range n {
			stop, err := visit(jsondoc.ObjectKind, m.Value, i)
			if err != nil {
				return nil, err
			}
			if stop {
				break
			}
		}
	case jsondoc.Array:
		for k := range n {
			i := k
			if reverseOrder {
				i = len(n) - 1 - k
			}
			stop, err := visit(jsondoc.ArrayKind, n[i], i)
			if err != nil {
				return nil, err
			}
			if stop {
				break
			}
		}
	}
	return &ResultSet{results}, nil
}

// evalExpr evaluates a filter expression for curNode.
func evalExpr(ctx qryExecContext, curNode jsondoc.Value, expr filterExpr) (result QueryResult, err error) {
	ctx.dbgMsgf("entering filterExpr %s for node %s", expr.string(), curNode)
	defer func() {
		if err != nil {
			ctx.dbgMsgf("filterExpr %s failed: %v", expr.string(), err)
		} else {
			ctx.dbgMsgf("filterExpr %s evaluated to %s", expr.string(), result)
		}
	}()

	switch e := expr.(type) {
	case *logicalExpr:
		return evalLogicalExpr(ctx, curNode, e)
	case *compareExpr:
		return evalCompareExpr(ctx, curNode, e)
	case *filterQry:
		return evalFilterQryExpr(ctx, curNode, e)
	case *functionExpr:
		return evalFunctionExpr(ctx, curNode, e)
	case *parenExpr:
		return evalExpr(ctx, curNode, e.inner)
	case *stringLiteral:
		return &Singular{jsondoc.String(e.val)}, nil
	case *boolLiteral:
		return &Singular{jsondoc.Bool(e.val)}, nil
	case *nullLiteral:
		return &Singular{jsondoc.Null{}}, nil
	case *intLiteral:
		return &Singular{jsondoc.NumberFromInt(e.val)}, nil
	case *floatLiteral:
		return &Singular{jsondoc.NumberFromFloat(e.val)}, nil
	default:
		panic(fmt.Sprintf("internal error - unknown filterExpr: %#v", expr))
	}
}

// evalTest evaluates expr as a test: a query tests for existence, a logical
// value is taken as is and "nothing" is false.
func evalTest(ctx qryExecContext, curNode jsondoc.Value, expr filterExpr) (bool, error) {
	result, err := evalExpr(ctx, curNode, expr)
	if err != nil {
		return false, err
	}
	switch r := result.(type) {
	case nil:
		return false, nil
	case *ResultSet:
		return len(r.Elems) > 0, nil
	case *Singular:
		if r == nil {
			return false, nil
		}
		b, ok := r.Value.(jsondoc.Bool)
		if !ok {
			return false, ExecutionError{ctx.name, fmt.Sprintf("expected a logical value from %s, got %s", expr.string(), jsondoc.Compact(r.Value))}
		}
		return bool(b), nil
	default:
		panic(fmt.Sprintf("unknown result type: %#v", result))
	}
}

func evalLogicalExpr(ctx qryExecContext, curNode jsondoc.Value, expr *logicalExpr) (*Singular, error) {
	left, err := evalTest(ctx, curNode, expr.left)
	if err != nil {
		return nil, err
	}
	switch {
	case expr.logicalOp == notOp:
		return &Singular{jsondoc.Bool(!left)}, nil
	case !left && expr.logicalOp == andOp:
		return &Singular{jsondoc.Bool(false)}, nil
	case left && expr.logicalOp == orOp:
		return &Singular{jsondoc.Bool(true)}, nil
	}
	right, err := evalTest(ctx, curNode, expr.right)
	if err != nil {
		return nil, err
	}
	return &Singular{jsondoc.Bool(right)}, nil
}

// evalSingularExpr evaluates a comparison operand. nil means the operand
// selected nothing.
func evalSingularExpr(ctx qryExecContext, curNode jsondoc.Value, expr filterExpr) (*Singular, error) {
	result, err := evalExpr(ctx, curNode, expr)
	if err != nil {
		return nil, err
	}
	switch r := result.(type) {
	case nil:
		return nil, nil
	case *ResultSet:
		switch len(r.Elems) {
		case 0:
			return nil, nil
		case 1:
			return &Singular{r.Elems[0]}, nil
		default:
			return nil, ExecutionError{ctx.name, fmt.Sprintf("%s selected %d nodes where one value is needed for comparison", expr.string(), len(r.Elems))}
		}
	case *Singular:
		return r, nil
	default:
		panic(fmt.Sprintf("unknown result type: %#v", result))
	}
}

func evalCompareExpr(ctx qryExecContext, curNode jsondoc.Value, expr *compareExpr) (*Singular, error) {
	left, err := evalSingularExpr(ctx, curNode, expr.left)
	if err != nil {
		return nil, err
	}
	right, err := evalSingularExpr(ctx, curNode, expr.right)
	if err != nil {
		return nil, err
	}
	return &Singular{jsondoc.Bool(compareValues(left, right, expr.compareOp))}, nil
}

func evalFunctionExpr(ctx qryExecContext, curNode jsondoc.Value, expr *functionExpr) (QueryResult, error) {
	fct, exists := ctx.functions[expr.fct]
	if !exists {
		return nil, ExecutionError{ctx.name, fmt.Sprintf("function '%s' does not exist", expr.fct)}
	}
	args := make([]QueryResult, len(expr.args))
	for i, a := range expr.args {
		r, err := evalExpr(ctx, curNode, a)
		if err != nil {
			return nil, err
		}
		args[i] = r
	}
	result, err := fct(args...)
	if err != nil {
		return nil, ExecutionError{ctx.name, fmt.Sprintf("function '%s' failed: %v", expr.fct, err)}
	}
	return result, nil
}

func evalFilterQryExpr(ctx qryExecContext, curNode jsondoc.Value, expr *filterQry) (QueryResult, error) {
	allowMissingKeys := ctx.allowMissingKeys
	if !allowMissingKeys && expr.parser.root.nodeIdentifierSymbol == currentNodeSymbol {
		// relative queries within descendant segments meet all kinds of nodes
		allowMissingKeys = ctx.areMissingKeysAllowed()
	}
	return executeQuery(expr.parser, ctx.dataRoot, curNode, expr.evalExistenceOnly, allowMissingKeys, ctx.functions, ctx.debug)
}

// compareValues compares two comparison operands, nil standing for
// "nothing". Only numbers with numbers and strings with strings are ordered,
// any other pairing is neither less nor greater.
func compareValues(left, right *Singular, op comparisonOpTypeEnum) bool {
	switch op {
	case eqOp:
		return isEqual(left, right)
	case neOp:
		return !isEqual(left, right)
	case ltOp:
		return isLess(left, right)
	case gtOp:
		return isLess(right, left)
	case leOp:
		return isLess(left, right) || isEqual(left, right)
	case geOp:
		return isLess(right, left) || isEqual(left, right)
	default:
		panic(fmt.Sprintf("internal error - unknown comparison operator: %s", op))
	}
}

func isNothing(s *Singular) bool {
	return s == nil || s.Value == nil
}

func isEqual(left, right *Singular) bool {
	if isNothing(left) || isNothing(right) {
		return isNothing(left) && isNothing(right)
	}
	return jsondoc.Equal(left.Value, right.Value)
}

func isLess(left, right *Singular) bool {
	if isNothing(left) || isNothing(right) {
		return false
	}
	switch l := left.Value.(type) {
	case jsondoc.Number:
		r, ok := right.Value.(jsondoc.Number)
		if !ok {
			return false
		}
		lf, lerr := l.Float64()
		rf, rerr := r.Float64()
		return lerr == nil && rerr == nil && lf < rf
	case jsondoc.String:
		r, ok := right.Value.(jsondoc.String)
		return ok && string(l) < string(r)
	default:
		return false
	}
}
