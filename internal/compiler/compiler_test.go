// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compiler

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"golang.org/x/lox/internal/runtime"
)

// compileOK compiles source and fails the test on any diagnostic.
func compileOK(t *testing.T, source string) *runtime.Function {
	t.Helper()
	var diag bytes.Buffer
	fn, err := Compile(source, runtime.NewHeap(), &diag)
	if err != nil {
		t.Fatalf("compile failed:\n%s", diag.String())
	}
	return fn
}

// compileErr compiles source, expecting failure, and returns the
// diagnostics.
func compileErr(t *testing.T, source string) string {
	t.Helper()
	var diag bytes.Buffer
	if _, err := Compile(source, runtime.NewHeap(), &diag); err == nil {
		t.Fatalf("compile of %q unexpectedly succeeded", source)
	}
	return diag.String()
}

func TestExpressionBytecode(t *testing.T) {
	fn := compileOK(t, "1 + 2;")
	want := []byte{
		byte(runtime.OpConstant), 0,
		byte(runtime.OpConstant), 1,
		byte(runtime.OpAdd),
		byte(runtime.OpPop),
		byte(runtime.OpNil),
		byte(runtime.OpReturn),
	}
	if !bytes.Equal(fn.Chunk.Code, want) {
		t.Errorf("code = %v, want %v", fn.Chunk.Code, want)
	}
	if !fn.Chunk.Constants[0].Equals(runtime.Number(1)) || !fn.Chunk.Constants[1].Equals(runtime.Number(2)) {
		t.Errorf("constants = %v", fn.Chunk.Constants)
	}
}

func TestPrecedence(t *testing.T) {
	// 1 + 2 * 3 must emit the multiply before the add.
	fn := compileOK(t, "print 1 + 2 * 3;")
	code := fn.Chunk.Code
	add := bytes.IndexByte(code, byte(runtime.OpAdd))
	mul := bytes.IndexByte(code, byte(runtime.OpMultiply))
	if add < 0 || mul < 0 || mul > add {
		t.Errorf("multiply at %d, add at %d; want multiply first\ncode: %v", mul, add, code)
	}
}

func TestLinesParallelCode(t *testing.T) {
	fn := compileOK(t, "var a = 1;\nvar b = 2;\nprint a + b;\n")
	if len(fn.Chunk.Lines) != len(fn.Chunk.Code) {
		t.Fatalf("lines %d, code %d; want equal", len(fn.Chunk.Lines), len(fn.Chunk.Code))
	}
	if fn.Chunk.Lines[0] != 1 {
		t.Errorf("first instruction attributed to line %d, want 1", fn.Chunk.Lines[0])
	}
	last := fn.Chunk.Lines[len(fn.Chunk.Lines)-1]
	if last != 3 {
		t.Errorf("last instruction attributed to line %d, want 3", last)
	}
}

// instructionBoundaries walks a chunk with the disassembler's stepper
// and returns the set of valid instruction offsets.
func instructionBoundaries(c *runtime.Chunk) map[int]bool {
	boundaries := map[int]bool{}
	for offset := 0; offset < len(c.Code); {
		boundaries[offset] = true
		offset = c.DisassembleInstruction(io.Discard, offset)
	}
	boundaries[len(c.Code)] = true
	return boundaries
}

// checkJumpTargets asserts that every JUMP/JUMP_IF_FALSE/LOOP in the
// function (and in nested functions) lands on an instruction boundary
// within its own chunk.
func checkJumpTargets(t *testing.T, fn *runtime.Function) {
	t.Helper()
	c := &fn.Chunk
	boundaries := instructionBoundaries(c)
	for offset := 0; offset < len(c.Code); {
		next := c.DisassembleInstruction(io.Discard, offset)
		switch runtime.OpCode(c.Code[offset]) {
		case runtime.OpJump, runtime.OpJumpIfFalse:
			target := offset + 3 + (int(c.Code[offset+1])<<8 | int(c.Code[offset+2]))
			if !boundaries[target] {
				t.Errorf("forward jump at %d targets %d, not an instruction boundary", offset, target)
			}
		case runtime.OpLoop:
			target := offset + 3 - (int(c.Code[offset+1])<<8 | int(c.Code[offset+2]))
			if target < 0 || !boundaries[target] {
				t.Errorf("loop at %d targets %d, not an instruction boundary", offset, target)
			}
		}
		offset = next
	}
	for _, v := range c.Constants {
		if inner, ok := v.AsObj().(*runtime.Function); v.IsObj() && ok {
			checkJumpTargets(t, inner)
		}
	}
}

func TestJumpTargetsAreInstructionBoundaries(t *testing.T) {
	sources := []string{
		"if (true) print 1; else print 2;",
		"var i = 0; while (i < 10) { i = i + 1; }",
		"for (var i = 0; i < 10; i = i + 1) { print i; }",
		"for (;;) { if (true) return; }", // inside a function below
		"print true and false or true;",
		`fun f(n) {
			for (var i = 0; i < n; i = i + 1) {
				if (i == 2) { print i; } else { while (false) {} }
			}
		}
		f(5);`,
	}
	for _, src := range sources {
		if strings.Contains(src, "return") && !strings.Contains(src, "fun") {
			src = "fun g() { " + src + " } g();"
		}
		checkJumpTargets(t, compileOK(t, src))
	}
}

func TestFunctionCompilation(t *testing.T) {
	fn := compileOK(t, "fun add(a, b) { return a + b; }")
	var inner *runtime.Function
	for _, v := range fn.Chunk.Constants {
		if f, ok := v.AsObj().(*runtime.Function); v.IsObj() && ok {
			inner = f
		}
	}
	if inner == nil {
		t.Fatal("no function constant emitted for declaration")
	}
	if inner.Arity != 2 {
		t.Errorf("arity = %d, want 2", inner.Arity)
	}
	if inner.Name == nil || inner.Name.Str != "add" {
		t.Errorf("name = %v, want add", inner.Name)
	}
	if inner.UpvalueCount != 0 {
		t.Errorf("upvalue count = %d, want 0", inner.UpvalueCount)
	}
}

func TestUpvalueResolution(t *testing.T) {
	// inc captures n from make's frame: one local upvalue.
	fn := compileOK(t, `
		fun make(n) {
			fun inc() { n = n + 1; return n; }
			return inc;
		}`)
	var makeFn, incFn *runtime.Function
	for _, v := range fn.Chunk.Constants {
		if f, ok := v.AsObj().(*runtime.Function); v.IsObj() && ok {
			makeFn = f
		}
	}
	if makeFn == nil {
		t.Fatal("make not compiled")
	}
	for _, v := range makeFn.Chunk.Constants {
		if f, ok := v.AsObj().(*runtime.Function); v.IsObj() && ok {
			incFn = f
		}
	}
	if incFn == nil {
		t.Fatal("inc not compiled")
	}
	if incFn.UpvalueCount != 1 {
		t.Errorf("inc upvalue count = %d, want 1", incFn.UpvalueCount)
	}
	// The OP_CLOSURE for inc must be followed by (isLocal=1, index=1):
	// slot 1 of make's frame is the parameter n.
	code := makeFn.Chunk.Code
	i := bytes.IndexByte(code, byte(runtime.OpClosure))
	if i < 0 {
		t.Fatal("no OP_CLOSURE in make")
	}
	if isLocal, index := code[i+2], code[i+3]; isLocal != 1 || index != 1 {
		t.Errorf("closure operands = (%d, %d), want (1, 1)", isLocal, index)
	}
}

// A doubly nested capture goes through the middle function as a
// non-local upvalue.
func TestTransitiveUpvalue(t *testing.T) {
	fn := compileOK(t, `
		fun outer() {
			var x = 1;
			fun middle() {
				fun inner() { return x; }
				return inner;
			}
			return middle;
		}`)
	funcs := map[string]*runtime.Function{}
	var walk func(f *runtime.Function)
	walk = func(f *runtime.Function) {
		for _, v := range f.Chunk.Constants {
			if inner, ok := v.AsObj().(*runtime.Function); v.IsObj() && ok {
				funcs[inner.Name.Str] = inner
				walk(inner)
			}
		}
	}
	walk(fn)
	if funcs["middle"].UpvalueCount != 1 {
		t.Errorf("middle upvalues = %d, want 1", funcs["middle"].UpvalueCount)
	}
	if funcs["inner"].UpvalueCount != 1 {
		t.Errorf("inner upvalues = %d, want 1", funcs["inner"].UpvalueCount)
	}
	// inner's upvalue refers to middle's upvalue 0, not a local.
	code := funcs["middle"].Chunk.Code
	i := bytes.IndexByte(code, byte(runtime.OpClosure))
	if isLocal := code[i+2]; isLocal != 0 {
		t.Errorf("inner capture isLocal = %d, want 0", isLocal)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"{ var a; var a; }", "Already a variable with this name in this scope."},
		{"return 1;", "Can't return from top-level code."},
		{"a + b = c;", "Invalid assignment target."},
		{"{ var a = a; }", "Can't read local variable in its own initializer."},
		{"print 1", "Expect ';' after value."},
		{"var 1 = 2;", "Expect variable name."},
		{"(1 + 2;", "Expect ')' after expression."},
		{"fun f(a, b { }", "Expect ')' after parameters."},
		{"fun f() return 1;", "Expect '{' before function body."},
		{"+;", "Expect expression."},
	}
	for _, tt := range tests {
		diag := compileErr(t, tt.source)
		if !strings.Contains(diag, tt.want) {
			t.Errorf("compile %q:\ngot  %q\nwant a diagnostic containing %q", tt.source, diag, tt.want)
		}
	}
}

func TestErrorFormat(t *testing.T) {
	diag := compileErr(t, "var x =\n return 1;")
	if !strings.Contains(diag, "[line 2] Error at 'return'") {
		t.Errorf("diagnostic %q missing line/lexeme prefix", diag)
	}
}

// One bad statement must not hide errors in later ones: the parser
// synchronizes and keeps going.
func TestMultipleErrorsReported(t *testing.T) {
	diag := compileErr(t, "var 1;\nreturn 2;\n")
	if !strings.Contains(diag, "Expect variable name.") {
		t.Errorf("first error missing from %q", diag)
	}
	if !strings.Contains(diag, "Can't return from top-level code.") {
		t.Errorf("second error missing from %q", diag)
	}
}

func TestTooManyConstants(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "%d;", i)
	}
	diag := compileErr(t, b.String())
	if !strings.Contains(diag, "Too many constants in one chunk.") {
		t.Errorf("got %q", diag)
	}
}

func TestShadowingAllowed(t *testing.T) {
	compileOK(t, "{ var a = 1; { var a = 2; print a; } print a; }")
}

func TestClassDeclaration(t *testing.T) {
	fn := compileOK(t, "class Pair {} var p = Pair();")
	if i := bytes.IndexByte(fn.Chunk.Code, byte(runtime.OpClass)); i < 0 {
		t.Error("no OP_CLASS emitted")
	}
}
