// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	var c Chunk
	ci := c.AddConstant(Number(1.2))
	c.WriteOp(OpConstant, 123)
	c.Write(byte(ci), 123)
	c.WriteOp(OpAdd, 123)
	c.WriteOp(OpJump, 124)
	c.Write(0, 124)
	c.Write(3, 124)
	c.WriteOp(OpGetLocal, 124)
	c.Write(2, 124)
	c.WriteOp(OpReturn, 125)

	var b strings.Builder
	c.Disassemble(&b, "test")
	out := b.String()

	for _, want := range []string{
		"== test ==",
		"OP_CONSTANT",
		"'1.2'",
		"OP_ADD",
		"OP_JUMP",
		"3 -> 9", // offset 3, operand 3: target 3+3+3
		"OP_GET_LOCAL",
		"OP_RETURN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
	// Repeated lines collapse to a pipe.
	if !strings.Contains(out, "   | ") {
		t.Errorf("listing does not collapse repeated line numbers:\n%s", out)
	}
}

func TestDisassembleInstructionStepping(t *testing.T) {
	var c Chunk
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpCall, 1)
	c.Write(2, 1)
	c.WriteOp(OpLoop, 1)
	c.Write(0, 1)
	c.Write(4, 1)

	var b strings.Builder
	offsets := []int{}
	for offset := 0; offset < len(c.Code); {
		offsets = append(offsets, offset)
		offset = c.DisassembleInstruction(&b, offset)
	}
	want := []int{0, 1, 3}
	if len(offsets) != len(want) {
		t.Fatalf("stepped offsets %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("stepped offsets %v, want %v", offsets, want)
		}
	}
}
