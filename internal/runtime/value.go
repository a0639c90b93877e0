// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtime holds the data model shared by the compiler and the
// virtual machine: the tagged Value, the heap object family, bytecode
// chunks, the string-keyed hash table, and the garbage-collected heap
// that owns every object.
package runtime

import (
	"fmt"
	"strconv"
)

// ValueKind discriminates the variants of a Value.
type ValueKind uint8

const (
	ValNil ValueKind = iota
	ValBool
	ValNumber
	ValObj
)

// A Value is the uniform tagged value the language computes with.
// Numbers are IEEE-754 doubles; everything heavier lives behind an Obj
// reference. The zero Value is nil.
type Value struct {
	Kind ValueKind
	b    bool
	n    float64
	o    Obj
}

// Nil returns the nil value.
func Nil() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: ValBool, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{Kind: ValNumber, n: n} }

// ObjVal returns a value referencing the heap object o.
func ObjVal(o Obj) Value { return Value{Kind: ValObj, o: o} }

func (v Value) IsNil() bool    { return v.Kind == ValNil }
func (v Value) IsBool() bool   { return v.Kind == ValBool }
func (v Value) IsNumber() bool { return v.Kind == ValNumber }
func (v Value) IsObj() bool    { return v.Kind == ValObj }

// AsBool returns the boolean payload. Only valid when IsBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the numeric payload. Only valid when IsNumber.
func (v Value) AsNumber() float64 { return v.n }

// AsObj returns the object payload. Only valid when IsObj.
func (v Value) AsObj() Obj { return v.o }

// AsString returns the payload as a *String, or nil if the value is
// not a string object.
func (v Value) AsString() *String {
	if v.Kind != ValObj {
		return nil
	}
	s, _ := v.o.(*String)
	return s
}

// IsString reports whether v references a string object.
func (v Value) IsString() bool { return v.AsString() != nil }

// IsFalsey reports whether v is false in a condition. Only nil and
// false are falsey; 0, "" and every object are truthy.
func (v Value) IsFalsey() bool {
	return v.Kind == ValNil || v.Kind == ValBool && !v.b
}

// Equals reports whether two values are equal. Object values compare
// by identity; because strings are interned, equal string contents
// imply equal identity. NaN != NaN holds, per IEEE.
func (v Value) Equals(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}
	switch v.Kind {
	case ValBool:
		return v.b == w.b
	case ValNil:
		return true
	case ValNumber:
		return v.n == w.n
	case ValObj:
		return v.o == w.o
	}
	return false // unreachable
}

// String formats the value the way the print statement does.
func (v Value) String() string {
	switch v.Kind {
	case ValBool:
		if v.b {
			return "true"
		}
		return "false"
	case ValNil:
		return "nil"
	case ValNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case ValObj:
		return v.o.String()
	}
	return fmt.Sprintf("<bad value kind %d>", v.Kind)
}
