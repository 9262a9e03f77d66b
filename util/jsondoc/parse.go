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

package jsondoc

import (
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrInvalid is returned for input that is not a syntactically valid JSON value.
	ErrInvalid = errors.New("invalid JSON")

	// ErrTrailingData is returned when a valid value is followed by anything but whitespace.
	ErrTrailingData = errors.New("unexpected data after top-level JSON value")
)

// Valid reports whether text holds exactly one complete JSON value, optionally
// surrounded by whitespace. Blank input is not valid.
func Valid(text string) bool {
	return Check(text) == nil
}

// Check is Valid with the reason for rejecting text. The grammar is checked
// strictly: truncated literals, leading zeros, a bare trailing '.' and raw
// control characters in strings are rejected. Numbers of any magnitude are
// accepted since they are never converted.
func Check(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty input", ErrInvalid)
	}
	dec := stdjson.NewDecoder(strings.NewReader(text))
	var raw stdjson.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	// the decoder stops after the first value - anything but EOF is garbage
	tok, err := dec.Token()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTrailingData, err)
	}
	return fmt.Errorf("%w: found %v", ErrTrailingData, tok)
}

// Parse reads text into an ordered value tree. It accepts exactly what Valid accepts.
func Parse(text string) (Value, error) {
	if err := Check(text); err != nil {
		return nil, err
	}
	dec := newDecoder(text)
	return readValue(dec)
}

func newDecoder(text string) *json.Decoder {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	return dec
}

func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		default:
			return nil, fmt.Errorf("%w: unexpected delimiter '%s'", ErrInvalid, t)
		}
	case string:
		return String(t), nil
	case json.Number:
		// the token may share memory with the decoder's buffer
		return Number(strings.Clone(string(t))), nil
	case float64:
		return Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %#v", ErrInvalid, tok)
	}
}

func readObject(dec *json.Decoder) (Value, error) {
	obj := make(Object, 0, 4)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if d, isDelim := tok.(json.Delim); isDelim && d == '}' {
			return obj, nil
		}
		name, isName := tok.(string)
		if !isName {
			return nil, fmt.Errorf("%w: expected member name, found %v", ErrInvalid, tok)
		}
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		obj = append(obj, Member{Name: name, Value: v})
	}
}

func readArray(dec *json.Decoder) (Value, error) {
	arr := make(Array, 0, 4)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if d, isDelim := tok.(json.Delim); isDelim && d == ']' {
			return arr, nil
		}
		v, err := valueFromToken(dec, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
