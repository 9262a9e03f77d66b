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
	"unicode/utf16"
	"unicode/utf8"
)

const eof = -1

// scanner walks the query text rune by rune. Nested filter queries share the
// scanner of the query they are embedded in.
type scanner struct {
	input string

	start int
	width int
	pos   int

	subQryCnt int
}

func newScanner(input string) *scanner {
	return &scanner{input: input}
}

func (s *scanner) next() rune {
	if s.pos >= len(s.input) {
		s.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(s.input[s.pos:])
	s.width = w
	s.pos += s.width
	return r
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(s.input[s.pos:])
	return r
}

// consume returns the text scanned since the last consume.
func (s *scanner) consume() string {
	value := s.input[s.start:s.pos]
	s.start = s.pos
	s.width = 0
	return value
}

func (s *scanner) consumeNext() rune {
	r := s.next()
	s.consume()
	return r
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func (s *scanner) nextSkippingBlanks() rune {
	for {
		r := s.next()
		if !isBlank(r) {
			return r
		}
		s.consume()
	}
}

func (s *scanner) peekSkippingBlanks() rune {
	for {
		r := s.peek()
		if !isBlank(r) {
			return r
		}
		s.consumeNext()
	}
}

// scanHex reads n hex digits and returns their value.
func (s *scanner) scanHex(n int) (rune, error) {
	var digits strings.Builder
	for i := 0; i < n; i++ {
		r := s.next()
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return 0, fmt.Errorf("expected %d hex digits in unicode escape", n)
		}
		digits.WriteRune(r)
	}
	v, err := strconv.ParseUint(digits.String(), 16, 32)
	if err != nil {
		return 0, err
	}
	return rune(v), nil
}

// parseInteger parses an integer with an optional sign.
func (s *scanner) parseInteger() (int, error) {
	switch r := s.peekSkippingBlanks(); {
	case r == '-' || r == '+' || unicode.IsDigit(r):
		s.next()
	default:
		return 0, fmt.Errorf("unexpected char %q in number", r)
	}
	for unicode.IsDigit(s.peek()) {
		s.next()
	}
	text := s.consume()
	i, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer '%s' - %v", text, err)
	}
	return int(i), nil
}

// parseQuote parses a single or double quoted string and returns its
// unescaped content.
func (s *scanner) parseQuote() (string, error) {
	q := s.next()
	var b strings.Builder
	for {
		r := s.next()
		switch r {
		case eof:
			return "", fmt.Errorf("unterminated quoted string")
		case q:
			s.consume()
			return b.String(), nil
		case '\\':
			if err := s.unescapeInto(&b); err != nil {
				return "", err
			}
		default:
			b.WriteRune(r)
		}
	}
}

func (s *scanner) unescapeInto(b *strings.Builder) error {
	r := s.next()
	switch r {
	case '\\', '/', '"', '\'':
		b.WriteRune(r)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		u, err := s.scanHex(4)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(u) && strings.HasPrefix(s.input[s.pos:], `\u`) {
			s.pos += 2
			low, err := s.scanHex(4)
			if err != nil {
				return err
			}
			u = utf16.DecodeRune(u, low)
		}
		b.WriteRune(u)
	case 'U':
		u, err := s.scanHex(8)
		if err != nil {
			return err
		}
		b.WriteRune(u)
	case '\n':
		return fmt.Errorf("newline not supported in quoted strings")
	default:
		return fmt.Errorf("unexpected escaping of char %q", r)
	}
	return nil
}

// unwrapByDelimiters runs inner between leftDelim and rightDelim, which must
// be the next and the following characters after inner has returned.
func (s *scanner) unwrapByDelimiters(leftDelim rune, rightDelim rune, inner func() (interface{}, error)) (interface{}, error) {
	if s.consumeNext() != leftDelim {
		return nil, fmt.Errorf("expected left delimiter '%s'", string(leftDelim))
	}
	s.peekSkippingBlanks()
	content, err := inner()
	if err != nil {
		return nil, err
	}
	if s.nextSkippingBlanks() != rightDelim {
		return nil, fmt.Errorf("expected right delimiter '%s'", string(rightDelim))
	}
	s.consume()
	return content, nil
}

func isAlphaNumeric(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isNameChar reports whether r may continue an unquoted member name.
func isNameChar(r rune) bool {
	return isAlphaNumeric(r) || r == '-'
}
