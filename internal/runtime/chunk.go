// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

// An OpCode is a single-byte bytecode instruction. Operands, where an
// instruction has them, follow inline in the code stream.
type OpCode byte

const (
	OpConstant OpCode = iota // operand: constant index
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal      // operand: stack slot
	OpSetLocal      // operand: stack slot
	OpGetGlobal     // operand: name constant index
	OpDefineGlobal  // operand: name constant index
	OpSetGlobal     // operand: name constant index
	OpGetUpvalue    // operand: upvalue index
	OpSetUpvalue    // operand: upvalue index
	OpGetProperty   // operand: name constant index
	OpSetProperty   // operand: name constant index
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump        // operand: 16-bit forward offset
	OpJumpIfFalse // operand: 16-bit forward offset
	OpLoop        // operand: 16-bit backward offset
	OpCall        // operand: argument count
	OpClosure     // operand: function constant, then (isLocal, index) pairs
	OpCloseUpvalue
	OpReturn
	OpClass // operand: name constant index
)

var opNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
}

// String returns the assembler-style name of the opcode.
func (op OpCode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "OP_UNKNOWN"
}

// A Chunk is a function's bytecode: the code bytes, a parallel source
// line for every byte, and the constant pool the code indexes into.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// Write appends one byte of code, recording the source line it was
// compiled from.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index.
// The caller is responsible for checking that the index fits in the
// one-byte operand encoding.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}
