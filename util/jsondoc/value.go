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
	"fmt"
	"math"
	"math/big"
	"strconv"
)

type Kind uint

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint(k))
	}
}

// Value is a parsed JSON value: one of Null, Bool, Number, String, Array or Object.
type Value interface {
	Kind() Kind
	valueInheritanceLimiter()
}

type Null struct{}

func (Null) Kind() Kind                { return NullKind }
func (Null) valueInheritanceLimiter() {}

type Bool bool

func (Bool) Kind() Kind                { return BoolKind }
func (Bool) valueInheritanceLimiter() {}

// Number keeps the literal text of a JSON number as it appeared in the input.
type Number string

func (Number) Kind() Kind                { return NumberKind }
func (Number) valueInheritanceLimiter() {}

func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Int64 returns the number as an integer if its literal is an integer that fits into int64.
func (n Number) Int64() (int64, bool) {
	i, err := strconv.ParseInt(string(n), 10, 64)
	return i, err == nil
}

// NumberFromFloat renders f the way encoding/json does for float64 values.
func NumberFromFloat(f float64) Number {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Number("null")
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	return Number(strconv.FormatFloat(f, format, -1, 64))
}

func NumberFromInt(i int64) Number {
	return Number(strconv.FormatInt(i, 10))
}

type String string

func (String) Kind() Kind                { return StringKind }
func (String) valueInheritanceLimiter() {}

type Array []Value

func (Array) Kind() Kind                { return ArrayKind }
func (Array) valueInheritanceLimiter() {}

// Member is a single name/value pair of an Object.
type Member struct {
	Name  string
	Value Value
}

// Object is an ordered sequence of members. Member order and duplicate names
// are kept exactly as read.
type Object []Member

func (Object) Kind() Kind                { return ObjectKind }
func (Object) valueInheritanceLimiter() {}

// Get returns the value of the last member called name.
func (o Object) Get(name string) (Value, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Name == name {
			return o[i].Value, true
		}
	}
	return nil, false
}

func (o Object) Names() []string {
	names := make([]string, len(o))
	for i, m := range o {
		names[i] = m.Name
	}
	return names
}

// Equal reports whether a and b denote the same JSON value. Numbers compare
// by their exact decimal value, so 1 equals 1.0 but 9007199254740993 differs
// from 9007199254740992. Objects compare independent of member order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case String:
		return av == b.(String)
	case Number:
		return numbersEqual(av, b.(Number))
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv := b.(Object)
		if len(distinctNames(av)) != len(distinctNames(bv)) {
			return false
		}
		for _, name := range distinctNames(av) {
			left, _ := av.Get(name)
			right, found := bv.Get(name)
			if !found || !Equal(left, right) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("internal error - unknown value type: %#v", a))
	}
}

func numbersEqual(a, b Number) bool {
	if a == b {
		return true
	}
	if ai, ok := a.Int64(); ok {
		if bi, ok := b.Int64(); ok {
			return ai == bi
		}
	}
	ar, aOk := new(big.Rat).SetString(string(a))
	br, bOk := new(big.Rat).SetString(string(b))
	return aOk && bOk && ar.Cmp(br) == 0
}

func distinctNames(o Object) []string {
	seen := make(map[string]struct{}, len(o))
	names := make([]string, 0, len(o))
	for _, m := range o {
		if _, dup := seen[m.Name]; dup {
			continue
		}
		seen[m.Name] = struct{}{}
		names = append(names, m.Name)
	}
	return names
}
