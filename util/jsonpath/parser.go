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
	"unicode"
)

type queryParser struct {
	name string
	root *nodeIdentifier

	// set for queries that select at most one node; only those may be
	// compared within filters
	isSingular bool

	s *scanner
}

func newQueryParser(name string) *queryParser {
	return &queryParser{name: name}
}

// parse compiles a complete query. Anything left after the last segment is a
// syntax error.
func (p *queryParser) parse(query string) error {
	if strings.TrimSpace(query) == "" {
		return SyntaxError{p.name, "invalid query - empty", query, 0}
	}
	p.s = newScanner(query)
	if err := p.parseNodeIdentifier(true); err != nil {
		return err
	}
	if r := p.s.peekSkippingBlanks(); r != eof {
		return p.syntaxErrorf("unexpected character '%c' after end of query", r)
	}
	p.isSingular = p.root.isSingular()
	return nil
}

func (p *queryParser) string() string {
	return fmt.Sprintf("{name=%s,singular=%t}%s", p.name, p.isSingular, p.root.string())
}

func (p *queryParser) syntaxErrorf(format string, args ...interface{}) SyntaxError {
	return SyntaxError{p.name, fmt.Sprintf(format, args...), p.s.input, p.s.pos}
}

// asSyntaxError keeps syntax errors of nested parsers and wraps anything else.
func (p *queryParser) asSyntaxError(err error) error {
	if _, ok := err.(SyntaxError); ok {
		return err
	}
	return p.syntaxErrorf("%s", err.Error())
}

// parseInnerQuery parses a query embedded in a filter, sharing the scanner of
// the enclosing query. Without a leading '$' or '@' the query is relative to
// the current node.
func parseInnerQuery(name string, s *scanner) (*queryParser, error) {
	p := &queryParser{name: name, s: s}
	if err := p.parseNodeIdentifier(false); err != nil {
		return nil, err
	}
	p.isSingular = p.root.isSingular()
	return p, nil
}

func (p *queryParser) parseNodeIdentifier(absDefaultContext bool) error {
	symbol := currentNodeSymbol
	if absDefaultContext {
		symbol = rootNodeSymbol
	}
	r := p.s.peekSkippingBlanks()
	switch r {
	case rune(rootNodeSymbol), rune(currentNodeSymbol):
		p.s.consumeNext()
		symbol = nodeIdentifierSymbol(r)
	}
	p.root = &nodeIdentifier{symbol, make([]segment, 0, 8)}
	// a top level query may start with a bare member name: 'a.b' is '$.a.b'
	if absDefaultContext && isAlphaNumeric(r) {
		name, err := p.parseName()
		if err != nil {
			return err
		}
		p.root.appendSegment(&segmentImpl{childSegmentType, []selector{&nameSelector{name}}})
	}
	return p.parseSegments()
}

func (p *queryParser) parseSegments() error {
	for {
		switch p.s.peekSkippingBlanks() {
		case '[':
			segment := &segmentImpl{childSegmentType, make([]selector, 0, 1)}
			if err := p.parseSquareSelectors(segment); err != nil {
				return err
			}
			p.root.appendSegment(segment)
		case '.':
			if err := p.parseDot(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// parseDot parses a segment starting with '.' or '..'.
func (p *queryParser) parseDot() error {
	p.s.consumeNext()
	segType := childSegmentType
	if p.s.peek() == '.' {
		p.s.consumeNext()
		segType = descendantSegmentType
	}
	switch r := p.s.peek(); {
	case r == '[':
		if segType != descendantSegmentType {
			return p.syntaxErrorf("unexpected '[' (hint: use EITHER '.' or '[]' notation for child-segments. only descendant-segments may use '..' followed by '[]'-selector)")
		}
		segment := &segmentImpl{segType, make([]selector, 0, 1)}
		if err := p.parseSquareSelectors(segment); err != nil {
			return err
		}
		p.root.appendSegment(segment)
	case r == '*':
		p.s.consumeNext()
		p.root.appendSegment(&segmentImpl{segType, []selector{&wildcardSelector{}}})
	case r == '"' || r == '\'':
		name, err := p.s.parseQuote()
		if err != nil {
			return p.asSyntaxError(err)
		}
		p.root.appendSegment(&segmentImpl{segType, []selector{&nameSelector{name}}})
	case isAlphaNumeric(r):
		name, err := p.parseName()
		if err != nil {
			return err
		}
		p.root.appendSegment(&segmentImpl{segType, []selector{&nameSelector{name}}})
	default:
		return p.syntaxErrorf("no valid selector found after '.'")
	}
	return nil
}

// parseSquareSelectors parses a comma separated selector list in brackets.
func (p *queryParser) parseSquareSelectors(segment segment) error {
	_, err := p.s.unwrapByDelimiters('[', ']', func() (interface{}, error) {
		for {
			if err := p.parseSelector(segment); err != nil {
				return nil, err
			}
			if p.s.peekSkippingBlanks() != ',' {
				return nil, nil
			}
			p.s.consumeNext()
		}
	})
	if err != nil {
		return p.asSyntaxError(err)
	}
	return nil
}

func (p *queryParser) parseSelector(segment segment) error {
	switch r := p.s.peekSkippingBlanks(); {
	case r == '"' || r == '\'':
		name, err := p.s.parseQuote()
		if err != nil {
			return p.asSyntaxError(err)
		}
		segment.append(&nameSelector{name})
	case r == '*':
		p.s.consumeNext()
		segment.append(&wildcardSelector{})
	case r == '+' || r == '-' || unicode.IsDigit(r) || r == ':':
		return p.parseIndexOrArraySliceSelector(segment)
	case r == '?':
		p.s.consumeNext()
		expr, err := p.parseFilterExpressions()
		if err != nil {
			return err
		}
		segment.append(newFilterSelector(expr))
	case isAlphaNumeric(r):
		name, err := p.parseName()
		if err != nil {
			return err
		}
		segment.append(&nameSelector{name})
	default:
		return p.syntaxErrorf("no valid selector detected")
	}
	return nil
}

// parseIndexOrArraySliceSelector parses an index selector or an array slice
// selector.
func (p *queryParser) parseIndexOrArraySliceSelector(segment segment) error {
	start := undefinedOptionalInt
	if p.s.peekSkippingBlanks() != ':' {
		i, err := p.s.parseInteger()
		if err != nil {
			return p.asSyntaxError(err)
		}
		if p.s.peekSkippingBlanks() != ':' {
			segment.append(&indexSelector{i})
			return nil
		}
		start = optionalInt{true, i}
	}
	p.s.consumeNext()
	end, step, err := p.parseArraySliceValues()
	if err != nil {
		return err
	}
	segment.append(&arraySliceSelector{start, end, step})
	return nil
}

// parseArraySliceValues parses the '<end>:<step>' part of a slice selector
// after its first colon.
func (p *queryParser) parseArraySliceValues() (optionalInt, int, error) {
	end := undefinedOptionalInt
	switch p.s.peekSkippingBlanks() {
	case '+', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		v, err := p.s.parseInteger()
		if err != nil {
			return end, 0, p.asSyntaxError(err)
		}
		end = optionalInt{true, v}
	}

	if p.s.peekSkippingBlanks() != ':' {
		return end, 1, nil
	}
	p.s.consumeNext()

	switch p.s.peekSkippingBlanks() {
	case '+', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		step, err := p.s.parseInteger()
		if err != nil {
			return end, 0, p.asSyntaxError(err)
		}
		return end, step, nil
	}
	return end, 1, nil
}

// parseFilterExpressions parses a chain of filter expressions combined by
// comparison and logical operators.
func (p *queryParser) parseFilterExpressions() (filterExpr, error) {
	var expr filterExpr
	var err error
	if p.s.peekSkippingBlanks() == '!' {
		p.s.consumeNext()
		if expr, err = p.parseFilterExpr(); err != nil {
			return nil, err
		}
		expr = newLogicalExpr(expr, nil, notOp)
	} else if expr, err = p.parseFilterExpr(); err != nil {
		return nil, err
	}
	return p.parseFilterOpAndRightExpr(expr)
}

// parseFilterOpAndRightExpr continues an already parsed expression with a
// following operator, if any. Comparisons bind stronger than '&&', which
// binds stronger than '||'.
func (p *queryParser) parseFilterOpAndRightExpr(leftExpr filterExpr) (filterExpr, error) {
	var expr filterExpr
	switch r := p.s.peekSkippingBlanks(); r {
	case '<', '=', '>', '!':
		p.s.next()
		if p.s.peek() == '=' {
			p.s.next()
		}
		op := comparisonOpTypeEnum(p.s.consume())
		if !op.isValid() {
			return nil, p.syntaxErrorf("invalid compare-operator '%s' (hint: use '==' for equality. valid ops: ==, !=, <, <=, >, >=)", op)
		}
		// only the next single expression is compared
		rightExpr, err := p.parseFilterExpr()
		if err != nil {
			return nil, err
		}
		if expr, err = newCompareExpr(leftExpr, rightExpr, op); err != nil {
			return nil, p.asSyntaxError(err)
		}

	case '&', '|':
		p.s.next()
		if r2 := p.s.peek(); r2 != r {
			return nil, p.syntaxErrorf("invalid logical operator (hint: did you mean %s?)", string(r)+string(r))
		}
		p.s.next()
		op := logicalOpTypeEnum(p.s.consume())
		rightExpr, err := p.parseFilterExpressions()
		if err != nil {
			return nil, err
		}
		// restore '&&' before '||' when the right hand side already is an or-chain
		if op == andOp {
			if right, ok := rightExpr.(*logicalExpr); ok && right.logicalOp == orOp {
				expr = newLogicalExpr(newLogicalExpr(leftExpr, right.left, andOp), right.right, orOp)
				break
			}
		}
		expr = newLogicalExpr(leftExpr, rightExpr, op)

	default:
		return leftExpr, nil
	}
	return p.parseFilterOpAndRightExpr(expr)
}

// parseFilterExpr parses a single filter expression: a query, a parenthesized
// expression, a literal or a function call.
func (p *queryParser) parseFilterExpr() (filterExpr, error) {
	switch p.s.peekSkippingBlanks() {
	case '@', '$', '.', '[':
		return p.parseFilterQryExpr()
	case '(':
		exprs, err := p.parseParenthesisExpr(false)
		if err != nil {
			return nil, err
		}
		return exprs[0], nil
	}
	return p.parseTextExpr()
}

// parseParenthesisExpr parses one expression in parentheses, or a comma
// separated list of them for function arguments.
func (p *queryParser) parseParenthesisExpr(allowMultiple bool) ([]filterExpr, error) {
	result, err := p.s.unwrapByDelimiters('(', ')', func() (interface{}, error) {
		exprs := make([]filterExpr, 0, 2)
		if allowMultiple && p.s.peekSkippingBlanks() == ')' {
			return exprs, nil
		}
		for {
			expr, err := p.parseFilterExpressions()
			if err != nil {
				return nil, err
			}
			if !allowMultiple {
				return append(exprs, newParenExpr(expr)), nil
			}
			exprs = append(exprs, expr)
			switch p.s.peekSkippingBlanks() {
			case ',':
				p.s.consumeNext()
			case ')':
				return exprs, nil
			default:
				return nil, p.syntaxErrorf("invalid syntax - ',' or ')' expected")
			}
		}
	})
	if err != nil {
		if _, ok := err.(SyntaxError); ok {
			return nil, err
		}
		return nil, p.syntaxErrorf("%s (hint: text literals in filters must be quoted, otherwise they are taken as function names)", err.Error())
	}
	return result.([]filterExpr), nil
}

// parseTextExpr parses a literal or a function call.
func (p *queryParser) parseTextExpr() (filterExpr, error) {
	switch r := p.s.peekSkippingBlanks(); {
	case r == '"' || r == '\'':
		s, err := p.s.parseQuote()
		if err != nil {
			return nil, p.asSyntaxError(err)
		}
		return &stringLiteral{s}, nil

	case unicode.IsDigit(r) || r == '-' || r == '+':
		return p.parseNumberLiteral()

	case isAlphaNumeric(r):
		s := p.parseAlphaNumeric()
		switch s {
		case "true", "false":
			v, _ := strconv.ParseBool(s)
			return &boolLiteral{v}, nil
		case "null":
			return &nullLiteral{}, nil
		}
		args, err := p.parseParenthesisExpr(true)
		if err != nil {
			return nil, err
		}
		return newFunctionExpr(s, args), nil
	}
	return nil, p.syntaxErrorf("unexpected char")
}

func (p *queryParser) parseNumberLiteral() (filterExpr, error) {
	switch p.s.peek() {
	case '-', '+':
		p.s.next()
	}
	decimalSep, expSep := false, false
Loop:
	for {
		switch r := p.s.peek(); {
		case r == '.' && !decimalSep && !expSep:
			decimalSep = true
			p.s.next()
		case (r == 'e' || r == 'E') && !expSep:
			expSep = true
			p.s.next()
			switch p.s.peek() {
			case '-', '+':
				p.s.next()
			}
		case unicode.IsDigit(r):
			p.s.next()
		default:
			break Loop
		}
	}
	text := p.s.consume()
	if decimalSep || expSep {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.syntaxErrorf("invalid float: %v", err)
		}
		return &floatLiteral{f}, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.syntaxErrorf("invalid integer: %v", err)
	}
	return &intLiteral{i}, nil
}

// parseFilterQryExpr parses a query nested in a filter.
func (p *queryParser) parseFilterQryExpr() (filterExpr, error) {
	p.s.subQryCnt++
	inner, err := parseInnerQuery(fmt.Sprintf("filterQry-%d", p.s.subQryCnt-1), p.s)
	if err != nil {
		return nil, err
	}
	return &filterQry{false, inner}, nil
}

// parseAlphaNumeric parses a function name or keyword: letters, digits and '_'.
func (p *queryParser) parseAlphaNumeric() string {
	for isAlphaNumeric(p.s.peek()) {
		p.s.next()
	}
	return p.s.consume()
}

// parseName parses an unquoted member name, which may also contain '-'.
func (p *queryParser) parseName() (string, error) {
	for {
		switch r := p.s.peek(); {
		case r == '\\':
			return "", p.syntaxErrorf("escaping not allowed in unquoted names (hint: quote the name)")
		case isNameChar(r):
			p.s.next()
		default:
			return p.s.consume(), nil
		}
	}
}
