// Much of the shape of this package (Value as a small tagged
// struct, String()/Type() naming, the comparison helpers) is adapted from the
// Starlark-derived machine package this VM's ancestor is built on:
// https://github.com/google/starlark-go
//
// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

// Package vm implements the effect-handler bytecode virtual machine: value
// representation, the tracing garbage-collected object heap, fibers and
// frames, closures and delimited continuations, the mutable reference table,
// the foreign-function registry, and the instruction dispatch loop.
package vm

import (
	"fmt"
	"math"
)

// Kind discriminates the immediate cases of a Value. Heap-allocated cases all
// share KindObj and are further discriminated by the dynamic type of the Obj
// they point to.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindDouble
	KindObj
)

// Value is the uniform representation manipulated by the machine: a tagged
// union rather than NaN-boxing or low-bit pointer tagging. A tagged struct
// needs no unsafe pointer arithmetic, and Go's struct comparison gives
// cheap bit-identity for immediates (whose obj field is nil) for free. IS_OBJ/AS_OBJ
// map to Kind==KindObj and the Obj field; boolean/double extraction panics
// if the tag doesn't match — a conversion failure is not recoverable at
// runtime, since it indicates either a miscompiled program or memory
// corruption.
type Value struct {
	kind Kind
	num  float64 // valid when kind == KindDouble (also doubles as the bool payload: 0/1)
	obj  Obj     // valid when kind == KindObj
}

// Nil is the single value of nil type.
var Nil = Value{kind: KindNil}

// True and False are the two boolean singletons.
var (
	True  = Value{kind: KindBool, num: 1}
	False = Value{kind: KindBool, num: 0}
)

// Bool returns the Value for the given Go bool, reusing the True/False
// singletons.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Double returns the Value wrapping a float64.
func Double(f float64) Value { return Value{kind: KindDouble, num: f} }

// ObjVal returns the Value wrapping a heap object pointer.
func ObjVal(o Obj) Value {
	if o == nil {
		panic("vm: ObjVal(nil)")
	}
	return Value{kind: KindObj, obj: o}
}

// IsObj reports whether v holds a heap object pointer.
func (v Value) IsObj() bool { return v.kind == KindObj }

// IsNil reports whether v is the Nil value.
func (v Value) IsNil() bool { return v.kind == KindNil }

// AsObj extracts the heap object pointer. It panics if v does not hold one:
// an unrecoverable condition (miscompiled program or memory corruption), not
// a user-facing error.
func (v Value) AsObj() Obj {
	if v.kind != KindObj {
		panic(fmt.Sprintf("vm: AsObj on non-object value (kind %d)", v.kind))
	}
	return v.obj
}

// AsBool extracts the boolean payload, panicking on a tag mismatch.
func (v Value) AsBool() bool {
	if v.kind != KindBool {
		panic(fmt.Sprintf("vm: AsBool on non-bool value (kind %d)", v.kind))
	}
	return v.num != 0
}

// AsDouble extracts the float64 payload, panicking on a tag mismatch.
func (v Value) AsDouble() float64 {
	if v.kind != KindDouble {
		panic(fmt.Sprintf("vm: AsDouble on non-double value (kind %d)", v.kind))
	}
	return v.num
}

// Truth reports the truthiness of v: nil and false are falsy, everything else
// (including 0.0 and NaN, unlike some dynamic languages) is truthy. The
// source language is statically typed, so truthiness only ever applies to
// actual booleans produced by comparisons; this is kept simple on purpose.
func (v Value) Truth() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.num != 0
	default:
		return true
	}
}

// Equal reports bit/pointer-identity equality between two values, per spec
// §4.1: "comparison is bit-identity for immediates and pointer-identity for
// objects".
func Equal(x, y Value) bool {
	if x.kind != y.kind {
		return false
	}
	switch x.kind {
	case KindNil:
		return true
	case KindBool, KindDouble:
		return x.num == y.num
	case KindObj:
		return x.obj == y.obj
	}
	return false
}

// TypeName returns a short diagnostic name for v's dynamic type, used
// throughout error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindDouble:
		return "double"
	case KindObj:
		return v.obj.Type()
	}
	return "invalid"
}

func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return Bool(v.num != 0).dbgString()
	case KindDouble:
		if math.IsInf(v.num, 0) || math.IsNaN(v.num) {
			return fmt.Sprintf("%g", v.num)
		}
		return fmt.Sprintf("%g", v.num)
	case KindObj:
		return v.obj.String()
	}
	return "<invalid value>"
}

func (v Value) dbgString() string {
	if v.num != 0 {
		return "true"
	}
	return "false"
}
