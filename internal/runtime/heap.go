// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"fmt"
	"os"
	"unsafe"
)

// GC tuning. Stress collecting on every allocation is how the tests
// shake out liveness bugs; logging narrates each cycle to stderr.
const (
	gcHeapGrowFactor = 2
	gcInitialNextGC  = 1 << 20 // 1 MiB

	debugLogGC = false
)

// A RootSource is anything holding references the collector must treat
// as roots. The VM registers itself for its value stack, frames, open
// upvalues and globals; the compiler registers its in-progress function
// chain for the duration of a compile.
type RootSource interface {
	MarkRoots(h *Heap)
}

// A Heap owns every object the interpreter allocates. Objects live on
// an intrusive all-objects list threaded through their headers; the
// collector is a precise tri-color mark-sweep over that list, triggered
// from inside allocation when the live-byte estimate crosses a
// watermark. The heap also owns the string intern set, which is weak:
// unreachable strings are weeded from it before each sweep.
//
// Collection happens before a new object is linked in, never after, so
// an allocation can never reclaim the object it is about to return.
// The safe-point contract follows: any transient value must be
// reachable from a registered root (in practice, pushed on the VM
// stack) before the next allocation.
type Heap struct {
	objects        Obj // head of the all-objects list
	bytesAllocated int
	nextGC         int
	gray           []Obj
	strings        Table
	sources        []RootSource

	// Stress forces a collection on every allocation.
	Stress bool
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{nextGC: gcInitialNextGC}
}

// AddRootSource registers a source of GC roots.
func (h *Heap) AddRootSource(s RootSource) {
	h.sources = append(h.sources, s)
}

// RemoveRootSource unregisters a previously added root source.
func (h *Heap) RemoveRootSource(s RootSource) {
	for i, have := range h.sources {
		if have == s {
			h.sources = append(h.sources[:i], h.sources[i+1:]...)
			return
		}
	}
}

// BytesAllocated returns the current live-byte estimate.
func (h *Heap) BytesAllocated() int { return h.bytesAllocated }

// NumObjects counts the objects on the all-objects list.
func (h *Heap) NumObjects() int {
	n := 0
	for o := h.objects; o != nil; o = o.header().next {
		n++
	}
	return n
}

// allocate accounts for a new object's size, runs a collection if the
// watermark says so, and only then links the object into the heap.
func (h *Heap) allocate(o Obj, size int) {
	h.bytesAllocated += size
	if h.Stress || h.bytesAllocated > h.nextGC {
		h.Collect()
	}
	o.header().size = size
	o.header().next = h.objects
	h.objects = o
	if debugLogGC {
		fmt.Fprintf(os.Stderr, "%p allocate %d bytes for kind %d\n", o, size, o.Kind())
	}
}

// Intern returns the unique *String for the given contents, allocating
// it on first sight. Every string value in the system comes from here,
// which is what makes identity comparison sound.
func (h *Heap) Intern(s string) *String {
	hash := hashString(s)
	if interned := h.strings.FindString(s, hash); interned != nil {
		return interned
	}
	str := &String{Str: s, Hash: hash}
	h.allocate(str, objSize(str))
	// The new string is unreachable until this insert; nothing between
	// allocate and here may allocate.
	h.strings.Set(str, Nil())
	return str
}

// NewFunction allocates a blank function object.
func (h *Heap) NewFunction() *Function {
	f := &Function{}
	h.allocate(f, objSize(f))
	return f
}

// NewNative wraps fn as a heap object.
func (h *Heap) NewNative(fn NativeFn) *Native {
	n := &Native{Function: fn}
	h.allocate(n, objSize(n))
	return n
}

// NewClosure allocates a closure over function with room for its
// upvalues, all initially nil.
func (h *Heap) NewClosure(function *Function) *Closure {
	c := &Closure{Function: function, Upvalues: make([]*Upvalue, function.UpvalueCount)}
	h.allocate(c, objSize(c))
	return c
}

// NewUpvalue allocates an open upvalue for the stack slot at location.
func (h *Heap) NewUpvalue(location *Value, slot int) *Upvalue {
	u := &Upvalue{Location: location, Slot: slot}
	h.allocate(u, objSize(u))
	return u
}

// NewClass allocates a class named name.
func (h *Heap) NewClass(name *String) *Class {
	c := &Class{Name: name}
	h.allocate(c, objSize(c))
	return c
}

// NewInstance allocates an instance of class with no fields.
func (h *Heap) NewInstance(class *Class) *Instance {
	i := &Instance{Class: class}
	h.allocate(i, objSize(i))
	return i
}

// MarkValue marks the object behind v, if any.
func (h *Heap) MarkValue(v Value) {
	if v.IsObj() {
		h.MarkObject(v.AsObj())
	}
}

// MarkObject colors o gray: sets its mark bit and queues it for
// scanning. Marking an already-marked or nil object is a no-op, which
// is what terminates cycles.
func (h *Heap) MarkObject(o Obj) {
	if o == nil || o.header().marked {
		return
	}
	if debugLogGC {
		fmt.Fprintf(os.Stderr, "%p mark %s\n", o, o.String())
	}
	o.header().marked = true
	h.gray = append(h.gray, o)
}

// MarkTable marks a table's keys and values. The VM uses it for the
// globals table; the intern set is deliberately NOT marked this way.
func (h *Heap) MarkTable(t *Table) {
	t.Mark(h)
}

// Collect runs a full mark-sweep cycle and rearms the watermark.
func (h *Heap) Collect() {
	before := h.bytesAllocated
	if debugLogGC {
		fmt.Fprintln(os.Stderr, "-- gc begin")
	}

	h.markRoots()
	h.traceReferences()
	h.strings.RemoveWhite()
	h.sweep()

	h.nextGC = h.bytesAllocated * gcHeapGrowFactor

	if debugLogGC {
		fmt.Fprintln(os.Stderr, "-- gc end")
		fmt.Fprintf(os.Stderr, "   collected %d bytes (from %d to %d) next at %d\n",
			before-h.bytesAllocated, before, h.bytesAllocated, h.nextGC)
	}
}

func (h *Heap) markRoots() {
	for _, s := range h.sources {
		s.MarkRoots(h)
	}
}

// traceReferences drains the gray worklist, blackening one object at a
// time. Children it discovers go gray, so the loop runs until the whole
// reachable graph is black.
func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		o := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(o)
	}
}

// blacken marks everything o references.
func (h *Heap) blacken(o Obj) {
	if debugLogGC {
		fmt.Fprintf(os.Stderr, "%p blacken %s\n", o, o.String())
	}
	switch o := o.(type) {
	case *Class:
		h.MarkObject(o.Name)
	case *Closure:
		h.MarkObject(o.Function)
		for _, u := range o.Upvalues {
			if u != nil {
				h.MarkObject(u)
			}
		}
	case *Function:
		if o.Name != nil {
			h.MarkObject(o.Name)
		}
		for _, c := range o.Chunk.Constants {
			h.MarkValue(c)
		}
	case *Instance:
		h.MarkObject(o.Class)
		o.Fields.Mark(h)
	case *Upvalue:
		h.MarkValue(o.Closed)
	case *Native, *String:
		// No outgoing references.
	}
}

// sweep unlinks and frees every unmarked object, and clears the mark
// bit on survivors for the next cycle.
func (h *Heap) sweep() {
	var previous Obj
	o := h.objects
	for o != nil {
		hdr := o.header()
		if hdr.marked {
			hdr.marked = false
			previous = o
			o = hdr.next
			continue
		}
		unreached := o
		o = hdr.next
		if previous != nil {
			previous.header().next = o
		} else {
			h.objects = o
		}
		h.free(unreached)
	}
}

// free returns an object's bytes to the accounting and cuts its
// outgoing references so a stale handle cannot keep a subgraph alive.
func (h *Heap) free(o Obj) {
	if debugLogGC {
		fmt.Fprintf(os.Stderr, "%p free %s\n", o, o.String())
	}
	h.bytesAllocated -= o.header().size
	switch o := o.(type) {
	case *Closure:
		o.Upvalues = nil
	case *Function:
		o.Chunk = Chunk{}
	case *Instance:
		o.Fields = Table{}
	}
	o.header().next = nil
}

// FreeObjects drops the whole heap; called at VM shutdown.
func (h *Heap) FreeObjects() {
	o := h.objects
	for o != nil {
		next := o.header().next
		h.free(o)
		o = next
	}
	h.objects = nil
	h.gray = nil
	h.strings = Table{}
}

// objSize estimates an object's footprint for the growth heuristic.
// Exact byte counts do not matter; monotone-with-reality does.
func objSize(o Obj) int {
	switch o := o.(type) {
	case *String:
		return int(unsafe.Sizeof(*o)) + len(o.Str) + 1
	case *Function:
		return int(unsafe.Sizeof(*o)) + len(o.Chunk.Code) + 8*len(o.Chunk.Lines) + 16*len(o.Chunk.Constants)
	case *Native:
		return int(unsafe.Sizeof(*o))
	case *Closure:
		return int(unsafe.Sizeof(*o)) + 8*len(o.Upvalues)
	case *Upvalue:
		return int(unsafe.Sizeof(*o))
	case *Class:
		return int(unsafe.Sizeof(*o))
	case *Instance:
		return int(unsafe.Sizeof(*o))
	}
	return 0
}

// hashString is 32-bit FNV-1a.
func hashString(s string) uint32 {
	hash := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}
