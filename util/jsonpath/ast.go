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
	"strconv"
	"strings"
)

type nodeIdentifierSymbol rune

const (
	rootNodeSymbol    nodeIdentifierSymbol = '$'
	currentNodeSymbol nodeIdentifierSymbol = '@'
)

type nodeIdentifier struct {
	nodeIdentifierSymbol nodeIdentifierSymbol
	segments             []segment
}

func (i *nodeIdentifier) appendSegment(s segment) {
	i.segments = append(i.segments, s)
}

func (i nodeIdentifier) string() string {
	var b strings.Builder
	b.WriteRune(rune(i.nodeIdentifierSymbol))
	for _, s := range i.segments {
		b.WriteString(s.string())
	}
	return b.String()
}

// isSingular reports whether the query can select at most one node: no
// descendant segments and exactly one name or index selector per segment.
func (i nodeIdentifier) isSingular() bool {
	for _, s := range i.segments {
		if s.getType() == descendantSegmentType || len(s.getSelectors()) != 1 {
			return false
		}
		switch s.getSelectors()[0].(type) {
		case *nameSelector, *indexSelector:
		default:
			return false
		}
	}
	return true
}

type segmentTypeEnum uint

const (
	childSegmentType segmentTypeEnum = iota + 10
	descendantSegmentType
)

type segment interface {
	getType() segmentTypeEnum
	getSelectors() []selector
	append(selector)
	string() string
}

type segmentImpl struct {
	segmentType segmentTypeEnum
	selectors   []selector
}

func (s segmentImpl) getType() segmentTypeEnum  { return s.segmentType }
func (s segmentImpl) getSelectors() []selector  { return s.selectors }
func (s *segmentImpl) append(selector selector) { s.selectors = append(s.selectors, selector) }

func (s segmentImpl) string() string {
	var b strings.Builder
	if s.segmentType == descendantSegmentType {
		b.WriteString("..")
	}
	b.WriteByte('[')
	for i, sel := range s.selectors {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(sel.string())
	}
	b.WriteByte(']')
	return b.String()
}

type selector interface {
	string() string
}

type wildcardSelector struct{}

func (wildcardSelector) string() string { return "*" }

type nameSelector struct {
	name string
}

func (s nameSelector) string() string { return strconv.Quote(s.name) }

type indexSelector struct {
	index int
}

func (s indexSelector) string() string { return strconv.Itoa(s.index) }

type optionalInt struct {
	isDefined bool
	intValue  int
}

var undefinedOptionalInt = optionalInt{false, 0}

type arraySliceSelector struct {
	start optionalInt
	end   optionalInt
	step  int
}

func (a arraySliceSelector) string() string {
	result := ""
	if a.start.isDefined {
		result += strconv.Itoa(a.start.intValue)
	}
	result += ":"
	if a.end.isDefined {
		result += strconv.Itoa(a.end.intValue)
	}
	return result + ":" + strconv.Itoa(a.step)
}

// indices returns the array positions selected for an array of length n, in
// selection order.
func (a arraySliceSelector) indices(n int) []int {
	step := a.step
	if step == 0 {
		return nil
	}
	normalize := func(i int) int {
		if i < 0 {
			return n + i
		}
		return i
	}
	clamp := func(i, lower, upper int) int {
		if i < lower {
			return lower
		}
		if i > upper {
			return upper
		}
		return i
	}

	var result []int
	if step > 0 {
		start, end := 0, n
		if a.start.isDefined {
			start = clamp(normalize(a.start.intValue), 0, n)
		}
		if a.end.isDefined {
			end = clamp(normalize(a.end.intValue), 0, n)
		}
		for i := start; i < end; i += step {
			result = append(result, i)
		}
		return result
	}
	start, end := n-1, -1
	if a.start.isDefined {
		start = clamp(normalize(a.start.intValue), -1, n-1)
	}
	if a.end.isDefined {
		end = clamp(normalize(a.end.intValue), -1, n-1)
	}
	for i := start; i > end; i += step {
		result = append(result, i)
	}
	return result
}

type filterSelector struct {
	expr filterExpr
}

func newFilterSelector(expr filterExpr) *filterSelector {
	fe := expr
	if pe, ok := fe.(*parenExpr); ok {
		fe = pe.inner
	}
	if fq, ok := fe.(*filterQry); ok {
		fq.evalExistenceOnly = true
	}
	return &filterSelector{fe}
}

func (s filterSelector) string() string { return "?" + s.expr.string() }

type filterExprTypeEnum uint

const (
	logicalExprType  filterExprTypeEnum = iota + 30 // bool
	compareExprType                                 // bool
	filterQryType                                   // nodes, or bool when only tested for existence
	functionExprType                                // depends on the function
	parenExprType                                   // bool
	stringLiteralType
	intLiteralType
	floatLiteralType
	boolLiteralType
	nullLiteralType
)

type filterExpr interface {
	getType() filterExprTypeEnum
	string() string
}

type filterQry struct {
	// true unless the query is an operand of a comparison
	evalExistenceOnly bool

	parser *queryParser
}

func (filterQry) getType() filterExprTypeEnum { return filterQryType }
func (fq filterQry) string() string {
	return fmt.Sprintf("{evalExistenceOnly=%t}%s", fq.evalExistenceOnly, fq.parser.string())
}

type functionExpr struct {
	fct  string
	args []filterExpr
}

func newFunctionExpr(fctName string, args []filterExpr) *functionExpr {
	unwrapped := make([]filterExpr, len(args))
	for i, a := range args {
		if pe, ok := a.(*parenExpr); ok {
			unwrapped[i] = pe.inner
		} else {
			unwrapped[i] = a
		}
	}
	return &functionExpr{fctName, unwrapped}
}

func (functionExpr) getType() filterExprTypeEnum { return functionExprType }
func (fe functionExpr) string() string {
	args := make([]string, len(fe.args))
	for i, a := range fe.args {
		args[i] = a.string()
	}
	return fe.fct + "(" + strings.Join(args, ",") + ")"
}

type logicalOpTypeEnum string

const (
	andOp logicalOpTypeEnum = "&&"
	orOp  logicalOpTypeEnum = "||"
	notOp logicalOpTypeEnum = "!"
)

type logicalExpr struct {
	left, right filterExpr
	logicalOp   logicalOpTypeEnum
}

// markExistenceOnly makes queries used as logical operands stop at their
// first match.
func markExistenceOnly(expr filterExpr) {
	switch e := expr.(type) {
	case *filterQry:
		e.evalExistenceOnly = true
	case *parenExpr:
		if fq, ok := e.inner.(*filterQry); ok {
			fq.evalExistenceOnly = true
		}
	}
}

func newLogicalExpr(left filterExpr, right filterExpr, op logicalOpTypeEnum) *logicalExpr {
	markExistenceOnly(left)
	if op != notOp {
		markExistenceOnly(right)
	}
	return &logicalExpr{left, right, op}
}

func (logicalExpr) getType() filterExprTypeEnum { return logicalExprType }
func (le logicalExpr) string() string {
	if le.logicalOp == notOp {
		return string(le.logicalOp) + le.left.string()
	}
	return le.left.string() + string(le.logicalOp) + le.right.string()
}

type comparisonOpTypeEnum string

const (
	eqOp comparisonOpTypeEnum = "=="
	ltOp comparisonOpTypeEnum = "<"
	gtOp comparisonOpTypeEnum = ">"
	leOp comparisonOpTypeEnum = "<="
	geOp comparisonOpTypeEnum = ">="
	neOp comparisonOpTypeEnum = "!="
)

func (op comparisonOpTypeEnum) isValid() bool {
	switch op {
	case eqOp, ltOp, gtOp, leOp, geOp, neOp:
		return true
	}
	return false
}

type compareExpr struct {
	left, right filterExpr
	compareOp   comparisonOpTypeEnum
}

// newCompareExpr checks that both operands yield at most one value. Queries
// compared must be singular; a query in parentheses is an existence test.
func newCompareExpr(left filterExpr, right filterExpr, op comparisonOpTypeEnum) (*compareExpr, error) {
	for _, operand := range []filterExpr{left, right} {
		switch e := operand.(type) {
		case *filterQry:
			if !e.parser.root.isSingular() {
				return nil, fmt.Errorf("expected singular-query for comparison, got: %s", e.parser.root.string())
			}
			e.evalExistenceOnly = false
		case *parenExpr:
			markExistenceOnly(e)
		case *compareExpr:
			return nil, fmt.Errorf("chained comparisons are not allowed: %s", e.string())
		case *logicalExpr:
			return nil, fmt.Errorf("a logical expression cannot be compared (hint: use parentheses): %s", e.string())
		}
	}
	return &compareExpr{left, right, op}, nil
}

func (compareExpr) getType() filterExprTypeEnum { return compareExprType }
func (ce compareExpr) string() string {
	return ce.left.string() + string(ce.compareOp) + ce.right.string()
}

type parenExpr struct {
	inner filterExpr
}

// newParenExpr drops parentheses around expressions that are values anyway.
func newParenExpr(expr filterExpr) filterExpr {
	switch expr.getType() {
	case parenExprType, functionExprType, stringLiteralType, intLiteralType, floatLiteralType, boolLiteralType, nullLiteralType:
		return expr
	default:
		return &parenExpr{expr}
	}
}

func (parenExpr) getType() filterExprTypeEnum { return parenExprType }
func (pe parenExpr) string() string           { return "(" + pe.inner.string() + ")" }

type stringLiteral struct {
	val string
}

func (stringLiteral) getType() filterExprTypeEnum { return stringLiteralType }
func (sl stringLiteral) string() string           { return strconv.Quote(sl.val) }

type intLiteral struct {
	val int64
}

func (intLiteral) getType() filterExprTypeEnum { return intLiteralType }
func (il intLiteral) string() string           { return strconv.FormatInt(il.val, 10) }

type floatLiteral struct {
	val float64
}

func (floatLiteral) getType() filterExprTypeEnum { return floatLiteralType }
func (fl floatLiteral) string() string           { return strconv.FormatFloat(fl.val, 'e', -1, 64) }

type boolLiteral struct {
	val bool
}

func (boolLiteral) getType() filterExprTypeEnum { return boolLiteralType }
func (bl boolLiteral) string() string           { return strconv.FormatBool(bl.val) }

type nullLiteral struct{}

func (nullLiteral) getType() filterExprTypeEnum { return nullLiteralType }
func (nullLiteral) string() string              { return "null" }
