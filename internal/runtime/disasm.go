// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of the whole chunk.
func (c *Chunk) Disassemble(w io.Writer, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = c.DisassembleInstruction(w, offset)
	}
}

// DisassembleInstruction writes one instruction at offset and returns
// the offset of the next one.
func (c *Chunk) DisassembleInstruction(w io.Writer, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprintf(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := OpCode(c.Code[offset])
	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal, OpGetProperty, OpSetProperty, OpClass:
		return c.constantInstruction(w, op, offset)
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		return c.byteInstruction(w, op, offset)
	case OpJump, OpJumpIfFalse:
		return c.jumpInstruction(w, op, 1, offset)
	case OpLoop:
		return c.jumpInstruction(w, op, -1, offset)
	case OpClosure:
		return c.closureInstruction(w, offset)
	case OpNil, OpTrue, OpFalse, OpPop, OpEqual, OpGreater, OpLess,
		OpAdd, OpSubtract, OpMultiply, OpDivide, OpNot, OpNegate,
		OpPrint, OpCloseUpvalue, OpReturn:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
	fmt.Fprintf(w, "Unknown opcode %d\n", byte(op))
	return offset + 1
}

func (c *Chunk) constantInstruction(w io.Writer, op OpCode, offset int) int {
	constant := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, constant, c.Constants[constant])
	return offset + 2
}

func (c *Chunk) byteInstruction(w io.Writer, op OpCode, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func (c *Chunk) jumpInstruction(w io.Writer, op OpCode, sign int, offset int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

// closureInstruction prints the function constant followed by the
// (isLocal, index) pair trailing in the code stream for each upvalue.
func (c *Chunk) closureInstruction(w io.Writer, offset int) int {
	offset++
	constant := c.Code[offset]
	offset++
	fmt.Fprintf(w, "%-16s %4d %s\n", OpClosure, constant, c.Constants[constant])

	function := c.Constants[constant].AsObj().(*Function)
	for i := 0; i < function.UpvalueCount; i++ {
		isLocal := c.Code[offset]
		index := c.Code[offset+1]
		what := "upvalue"
		if isLocal == 1 {
			what = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset, what, index)
		offset += 2
	}
	return offset
}
