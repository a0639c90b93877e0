// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vm is the stack-based bytecode interpreter: a fixed value
// stack, a fixed call-frame stack, a dispatch loop, and the open
// upvalue bookkeeping that makes closures work.
package vm

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/lox/internal/compiler"
	"golang.org/x/lox/internal/runtime"
)

// Interpret's failure modes, distinguished so the host can map them to
// exit codes.
var (
	ErrCompile = errors.New("compile error")
	ErrRuntime = errors.New("runtime error")
)

const (
	// FramesMax bounds call depth; StackMax is the value stack size,
	// 256 slots per possible frame.
	FramesMax = 64
	StackMax  = FramesMax * 256
)

// Set to trace every instruction with the stack contents beneath it.
const debugTraceExecution = false

// A frame is one function activation: the closure being run, the index
// of the next instruction in its chunk, and the stack slot its window
// starts at (slot 0 of the window is the closure itself, then
// parameters, then locals).
type frame struct {
	closure *runtime.Closure
	ip      int
	slots   int
}

// A VM executes compiled scripts. Each VM is self-contained — its own
// heap, globals and stacks — so tests can run many in parallel.
type VM struct {
	heap         *runtime.Heap
	stack        [StackMax]runtime.Value
	stackTop     int
	frames       [FramesMax]frame
	frameCount   int
	openUpvalues *runtime.Upvalue
	globals      runtime.Table

	// Stdout receives print output; Stderr receives diagnostics.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a VM with the standard natives installed.
func New() *VM {
	vm := &VM{
		heap:   runtime.NewHeap(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	vm.heap.AddRootSource(vm)
	vm.DefineNative("clock", clockNative)
	return vm
}

// Free releases the interpreted heap. The VM must not be used after.
func (vm *VM) Free() {
	vm.heap.FreeObjects()
}

// Heap exposes the VM's heap, mainly so tests and the disassembler can
// poke at it.
func (vm *VM) Heap() *runtime.Heap { return vm.heap }

// MarkRoots implements runtime.RootSource: every live stack slot, every
// frame's closure, the open upvalue list, and the globals table.
func (vm *VM) MarkRoots(h *runtime.Heap) {
	for i := 0; i < vm.stackTop; i++ {
		h.MarkValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		h.MarkObject(vm.frames[i].closure)
	}
	for u := vm.openUpvalues; u != nil; u = u.Next {
		h.MarkObject(u)
	}
	h.MarkTable(&vm.globals)
}

// DefineNative registers a host function under name in the globals
// table. Name and native are kept on the stack across the allocations
// so a collection between them cannot reclaim either.
func (vm *VM) DefineNative(name string, fn runtime.NativeFn) {
	vm.push(runtime.ObjVal(vm.heap.Intern(name)))
	vm.push(runtime.ObjVal(vm.heap.NewNative(fn)))
	vm.globals.Set(vm.peek(1).AsString(), vm.peek(0))
	vm.pop()
	vm.pop()
}

// Interpret compiles and runs a top-level script. It returns nil,
// ErrCompile, or ErrRuntime.
func (vm *VM) Interpret(source string) error {
	function, err := compiler.Compile(source, vm.heap, vm.Stderr)
	if err != nil {
		return ErrCompile
	}

	vm.push(runtime.ObjVal(function))
	closure := vm.heap.NewClosure(function)
	vm.pop()
	vm.push(runtime.ObjVal(closure))
	vm.call(closure, 0)

	return vm.run()
}

func (vm *VM) push(v runtime.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() runtime.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) runtime.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// runtimeError reports a formatted message followed by the call stack,
// innermost frame first, then resets the stacks.
func (vm *VM) runtimeError(format string, args ...interface{}) {
	fmt.Fprintf(vm.Stderr, format, args...)
	fmt.Fprintln(vm.Stderr)

	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		function := f.closure.Function
		// ip already advanced past the faulting instruction.
		line := function.Chunk.Lines[f.ip-1]
		fmt.Fprintf(vm.Stderr, "[line %d] in ", line)
		if function.Name == nil {
			fmt.Fprintf(vm.Stderr, "script\n")
		} else {
			fmt.Fprintf(vm.Stderr, "%s()\n", function.Name.Str)
		}
	}
	vm.resetStack()
}

// call pushes a frame for closure. The callee is already on the stack
// below its arguments, and becomes slot 0 of the frame's window.
func (vm *VM) call(closure *runtime.Closure, argCount int) bool {
	if argCount != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
		return false
	}
	if vm.frameCount == FramesMax {
		vm.runtimeError("Stack overflow.")
		return false
	}
	vm.frames[vm.frameCount] = frame{
		closure: closure,
		slots:   vm.stackTop - argCount - 1,
	}
	vm.frameCount++
	return true
}

// callValue dispatches a call on any value: closures get frames,
// natives run inline, classes instantiate. Everything else is a
// runtime error.
func (vm *VM) callValue(callee runtime.Value, argCount int) bool {
	if callee.IsObj() {
		switch callee := callee.AsObj().(type) {
		case *runtime.Closure:
			return vm.call(callee, argCount)
		case *runtime.Native:
			result := callee.Function(vm.stack[vm.stackTop-argCount : vm.stackTop])
			vm.stackTop -= argCount + 1
			vm.push(result)
			return true
		case *runtime.Class:
			if argCount != 0 {
				vm.runtimeError("Expected 0 arguments but got %d.", argCount)
				return false
			}
			vm.stack[vm.stackTop-1] = runtime.ObjVal(vm.heap.NewInstance(callee))
			return true
		}
	}
	vm.runtimeError("Can only call functions and classes.")
	return false
}

// captureUpvalue returns the open upvalue for the stack slot, creating
// one if no closure has captured that slot yet. The open list is kept
// sorted by descending slot so the scan can stop early, and so closing
// a frame's slots is a prefix walk.
func (vm *VM) captureUpvalue(slot int) *runtime.Upvalue {
	var prev *runtime.Upvalue
	u := vm.openUpvalues
	for u != nil && u.Slot > slot {
		prev = u
		u = u.Next
	}
	if u != nil && u.Slot == slot {
		return u
	}

	created := vm.heap.NewUpvalue(&vm.stack[slot], slot)
	created.Next = u
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above the given slot:
// the variable's current value moves into the upvalue, which then
// points at itself instead of the dying stack slot.
func (vm *VM) closeUpvalues(last int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Slot >= last {
		u := vm.openUpvalues
		u.Closed = *u.Location
		u.Location = &u.Closed
		u.Slot = -1
		vm.openUpvalues = u.Next
	}
}

// concatenate joins the two strings on top of the stack. They stay on
// the stack until the result is interned, keeping them visible to a
// collection triggered by the allocation.
func (vm *VM) concatenate() {
	b := vm.peek(0).AsString()
	a := vm.peek(1).AsString()
	result := vm.heap.Intern(a.Str + b.Str)
	vm.pop()
	vm.pop()
	vm.push(runtime.ObjVal(result))
}

// run is the dispatch loop.
func (vm *VM) run() error {
	f := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := f.closure.Function.Chunk.Code[f.ip]
		f.ip++
		return b
	}
	readShort := func() int {
		hi := int(readByte())
		return hi<<8 | int(readByte())
	}
	readConstant := func() runtime.Value {
		return f.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *runtime.String {
		return readConstant().AsString()
	}

	for {
		if debugTraceExecution {
			fmt.Fprintf(os.Stderr, "          ")
			for i := 0; i < vm.stackTop; i++ {
				fmt.Fprintf(os.Stderr, "[ %s ]", vm.stack[i])
			}
			fmt.Fprintln(os.Stderr)
			f.closure.Function.Chunk.DisassembleInstruction(os.Stderr, f.ip)
		}

		switch runtime.OpCode(readByte()) {
		case runtime.OpConstant:
			vm.push(readConstant())
		case runtime.OpNil:
			vm.push(runtime.Nil())
		case runtime.OpTrue:
			vm.push(runtime.Bool(true))
		case runtime.OpFalse:
			vm.push(runtime.Bool(false))
		case runtime.OpPop:
			vm.pop()

		case runtime.OpGetLocal:
			slot := int(readByte())
			vm.push(vm.stack[f.slots+slot])
		case runtime.OpSetLocal:
			slot := int(readByte())
			vm.stack[f.slots+slot] = vm.peek(0)

		case runtime.OpGetGlobal:
			name := readString()
			value, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name.Str)
				return ErrRuntime
			}
			vm.push(value)
		case runtime.OpDefineGlobal:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case runtime.OpSetGlobal:
			name := readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				vm.runtimeError("Undefined variable '%s'.", name.Str)
				return ErrRuntime
			}

		case runtime.OpGetUpvalue:
			slot := readByte()
			vm.push(*f.closure.Upvalues[slot].Location)
		case runtime.OpSetUpvalue:
			slot := readByte()
			*f.closure.Upvalues[slot].Location = vm.peek(0)

		case runtime.OpGetProperty:
			instance, ok := vm.peek(0).AsObj().(*runtime.Instance)
			if !vm.peek(0).IsObj() || !ok {
				vm.runtimeError("Only instances have properties.")
				return ErrRuntime
			}
			name := readString()
			value, found := instance.Fields.Get(name)
			if !found {
				vm.runtimeError("Undefined property '%s'.", name.Str)
				return ErrRuntime
			}
			vm.pop() // instance
			vm.push(value)
		case runtime.OpSetProperty:
			instance, ok := vm.peek(1).AsObj().(*runtime.Instance)
			if !vm.peek(1).IsObj() || !ok {
				vm.runtimeError("Only instances have fields.")
				return ErrRuntime
			}
			instance.Fields.Set(readString(), vm.peek(0))
			value := vm.pop()
			vm.pop() // instance
			vm.push(value)

		case runtime.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(runtime.Bool(a.Equals(b)))
		case runtime.OpGreater:
			if !vm.binaryNumbers() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(runtime.Bool(a > b))
		case runtime.OpLess:
			if !vm.binaryNumbers() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(runtime.Bool(a < b))

		case runtime.OpAdd:
			switch {
			case vm.peek(0).IsString() && vm.peek(1).IsString():
				vm.concatenate()
			case vm.peek(0).IsNumber() && vm.peek(1).IsNumber():
				b := vm.pop().AsNumber()
				a := vm.pop().AsNumber()
				vm.push(runtime.Number(a + b))
			default:
				vm.runtimeError("Operands must be two numbers or two strings.")
				return ErrRuntime
			}
		case runtime.OpSubtract:
			if !vm.binaryNumbers() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(runtime.Number(a - b))
		case runtime.OpMultiply:
			if !vm.binaryNumbers() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(runtime.Number(a * b))
		case runtime.OpDivide:
			if !vm.binaryNumbers() {
				return ErrRuntime
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(runtime.Number(a / b))

		case runtime.OpNot:
			vm.push(runtime.Bool(vm.pop().IsFalsey()))
		case runtime.OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return ErrRuntime
			}
			vm.push(runtime.Number(-vm.pop().AsNumber()))

		case runtime.OpPrint:
			fmt.Fprintln(vm.Stdout, vm.pop())

		case runtime.OpJump:
			offset := readShort()
			f.ip += offset
		case runtime.OpJumpIfFalse:
			offset := readShort()
			if vm.peek(0).IsFalsey() {
				f.ip += offset
			}
		case runtime.OpLoop:
			offset := readShort()
			f.ip -= offset

		case runtime.OpCall:
			argCount := int(readByte())
			if !vm.callValue(vm.peek(argCount), argCount) {
				return ErrRuntime
			}
			f = &vm.frames[vm.frameCount-1]

		case runtime.OpClosure:
			function := readConstant().AsObj().(*runtime.Function)
			closure := vm.heap.NewClosure(function)
			vm.push(runtime.ObjVal(closure))
			for i := range closure.Upvalues {
				isLocal := readByte()
				index := int(readByte())
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(f.slots + index)
				} else {
					closure.Upvalues[i] = f.closure.Upvalues[index]
				}
			}

		case runtime.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case runtime.OpClass:
			vm.push(runtime.ObjVal(vm.heap.NewClass(readString())))

		case runtime.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(f.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = f.slots
			vm.push(result)
			f = &vm.frames[vm.frameCount-1]
		}
	}
}

// binaryNumbers verifies both operands of a numeric binary op and
// raises the runtime error if not.
func (vm *VM) binaryNumbers() bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	return true
}
