// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

// ObjKind identifies the concrete type of a heap object.
type ObjKind uint8

const (
	KindString ObjKind = iota
	KindFunction
	KindNative
	KindClosure
	KindUpvalue
	KindClass
	KindInstance
)

// An Obj is any value that lives on the interpreted heap. Every
// implementation embeds ObjHeader, which carries the GC mark bit and
// the intrusive link into the heap's all-objects list.
type Obj interface {
	Kind() ObjKind
	String() string
	header() *ObjHeader
}

// ObjHeader is the common prefix of every heap object. Objects are
// created only through the Heap, which links them here. size is the
// footprint charged at allocation, so freeing credits back exactly
// what was debited even if the object grew afterwards.
type ObjHeader struct {
	marked bool
	size   int
	next   Obj
}

func (h *ObjHeader) header() *ObjHeader { return h }

// A String is an interned, immutable string. Two live strings with
// equal contents are always the same object, so equality elsewhere is
// pointer identity. The 32-bit hash is computed once at interning.
type String struct {
	ObjHeader
	Str  string
	Hash uint32
}

func (*String) Kind() ObjKind    { return KindString }
func (s *String) String() string { return s.Str }

// A Function is a compiled function body: its bytecode chunk, arity,
// and how many upvalues any closure over it must carry. The top-level
// script is a Function with no name.
type Function struct {
	ObjHeader
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *String // nil for the top-level script
}

func (*Function) Kind() ObjKind { return KindFunction }

func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Str + ">"
}

// A NativeFn is a host-provided function. It receives the argument
// values and returns the call's result.
type NativeFn func(args []Value) Value

// A Native wraps a NativeFn as a callable heap object.
type Native struct {
	ObjHeader
	Function NativeFn
}

func (*Native) Kind() ObjKind  { return KindNative }
func (*Native) String() string { return "<native fn>" }

// A Closure pairs a Function with the upvalues it captured. Closures,
// not bare functions, are what the VM calls.
type Closure struct {
	ObjHeader
	Function *Function
	Upvalues []*Upvalue
}

func (*Closure) Kind() ObjKind    { return KindClosure }
func (c *Closure) String() string { return c.Function.String() }

// An Upvalue is the indirection a closure reads and writes an enclosing
// function's variable through. While the variable is still on the value
// stack the upvalue is "open": Location points at the stack slot and
// Slot is its index, so the open list can stay sorted without comparing
// pointers. Closing copies the variable into Closed and repoints
// Location there.
type Upvalue struct {
	ObjHeader
	Location *Value
	Closed   Value
	Slot     int // stack slot index while open, -1 once closed
	Next     *Upvalue
}

func (*Upvalue) Kind() ObjKind  { return KindUpvalue }
func (*Upvalue) String() string { return "upvalue" }

// A Class is a named factory for instances. Fields are per-instance;
// there is no method table.
type Class struct {
	ObjHeader
	Name *String
}

func (*Class) Kind() ObjKind    { return KindClass }
func (c *Class) String() string { return c.Name.Str }

// An Instance is a bag of fields attached to a class.
type Instance struct {
	ObjHeader
	Class  *Class
	Fields Table
}

func (*Instance) Kind() ObjKind    { return KindInstance }
func (i *Instance) String() string { return i.Class.Name.Str + " instance" }
