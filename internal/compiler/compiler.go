// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compiler is the single-pass compiler: it parses source text
// with a Pratt parser and emits bytecode as it goes. There is no AST;
// each parse function writes instructions into the chunk of the
// function currently being compiled.
package compiler

import (
	"errors"
	"io"
	"math"
	"os"
	"strconv"

	"golang.org/x/lox/internal/runtime"
	"golang.org/x/lox/internal/scanner"
	"golang.org/x/lox/internal/token"
)

// ErrCompile is returned when compilation reported one or more errors.
var ErrCompile = errors.New("compile error")

// Set to dump each function's bytecode as it finishes compiling.
const debugPrintCode = false

const maxLocals = 256
const maxUpvalues = 256

// precedence levels, lowest to highest. parsePrecedence(p) consumes
// every infix operator whose level is at least p.
type precedence int

const (
	precNone precedence = iota
	precAssignment // =
	precOr         // or
	precAnd        // and
	precEquality   // == !=
	precComparison // < > <= >=
	precTerm       // + -
	precFactor     // * /
	precUnary      // ! -
	precCall       // . ()
	precPrimary
)

type parseFn func(p *parser, canAssign bool)

// A parseRule is one row of the Pratt table: how a token parses in
// prefix position, in infix position, and its precedence as an infix
// operator.
type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

var rules [token.NumTypes]parseRule

// The table references parser methods and the methods consult the
// table, so it has to be filled in at init time.
func init() {
	rules[token.LeftParen] = parseRule{(*parser).grouping, (*parser).call, precCall}
	rules[token.Dot] = parseRule{nil, (*parser).dot, precCall}
	rules[token.Minus] = parseRule{(*parser).unary, (*parser).binary, precTerm}
	rules[token.Plus] = parseRule{nil, (*parser).binary, precTerm}
	rules[token.Slash] = parseRule{nil, (*parser).binary, precFactor}
	rules[token.Star] = parseRule{nil, (*parser).binary, precFactor}
	rules[token.Bang] = parseRule{(*parser).unary, nil, precNone}
	rules[token.BangEqual] = parseRule{nil, (*parser).binary, precEquality}
	rules[token.EqualEqual] = parseRule{nil, (*parser).binary, precEquality}
	rules[token.Greater] = parseRule{nil, (*parser).binary, precComparison}
	rules[token.GreaterEqual] = parseRule{nil, (*parser).binary, precComparison}
	rules[token.Less] = parseRule{nil, (*parser).binary, precComparison}
	rules[token.LessEqual] = parseRule{nil, (*parser).binary, precComparison}
	rules[token.Identifier] = parseRule{(*parser).variable, nil, precNone}
	rules[token.String] = parseRule{(*parser).stringLiteral, nil, precNone}
	rules[token.Number] = parseRule{(*parser).number, nil, precNone}
	rules[token.And] = parseRule{nil, (*parser).and, precAnd}
	rules[token.Or] = parseRule{nil, (*parser).or, precOr}
	rules[token.False] = parseRule{(*parser).literal, nil, precNone}
	rules[token.True] = parseRule{(*parser).literal, nil, precNone}
	rules[token.Nil] = parseRule{(*parser).literal, nil, precNone}
}

// FunctionType tells a funcCompiler whether it is compiling the
// top-level script or a declared function; return is allowed, and the
// function is named, only in the latter.
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
)

// A local is a variable slot in the function being compiled. depth -1
// marks a declared-but-uninitialized local, which is what makes
// `var a = a;` inside a block a detectable error.
type local struct {
	name       token.Token
	depth      int
	isCaptured bool
}

// An upvalue descriptor records where a captured variable lives: slot
// index in the enclosing function if isLocal, otherwise upvalue index
// in the enclosing closure.
type upvalue struct {
	index   uint8
	isLocal bool
}

// A funcCompiler is the per-function compiler state. Nested function
// declarations push a new one; enclosing links them into a chain that
// upvalue resolution walks outward.
type funcCompiler struct {
	enclosing  *funcCompiler
	function   *runtime.Function
	ftype      FunctionType
	locals     [maxLocals]local
	localCount int
	upvalues   [maxUpvalues]upvalue
	scopeDepth int
	lastOp     runtime.OpCode
}

type parser struct {
	scanner   *scanner.Scanner
	heap      *runtime.Heap
	errw      io.Writer
	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	compiler  *funcCompiler
}

// Compile parses source and returns the top-level script function.
// Diagnostics go to errw (stderr if nil); if any were produced the
// returned function is nil and the error is ErrCompile. The heap is
// where the compiler allocates functions and string constants, and the
// in-progress function chain is registered as a GC root for the
// duration of the compile.
func Compile(source string, heap *runtime.Heap, errw io.Writer) (*runtime.Function, error) {
	if errw == nil {
		errw = os.Stderr
	}
	p := &parser{
		scanner: scanner.New(source),
		heap:    heap,
		errw:    errw,
	}
	heap.AddRootSource(p)
	defer heap.RemoveRootSource(p)

	p.initCompiler(TypeScript)

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}
	function := p.endCompiler()
	if p.hadError {
		return nil, ErrCompile
	}
	return function, nil
}

// MarkRoots marks every function in the nested-compiler chain, so a
// collection in mid-compile cannot reclaim a half-built function or the
// constants already hanging off it.
func (p *parser) MarkRoots(h *runtime.Heap) {
	for fc := p.compiler; fc != nil; fc = fc.enclosing {
		h.MarkObject(fc.function)
	}
}

// Token plumbing.

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.ScanToken()
		if p.current.Type != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) consume(typ token.Type, message string) {
	if p.current.Type == typ {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

func (p *parser) check(typ token.Type) bool {
	return p.current.Type == typ
}

func (p *parser) match(typ token.Type) bool {
	if !p.check(typ) {
		return false
	}
	p.advance()
	return true
}

// Error reporting. panicMode suppresses cascading reports until the
// parser resynchronizes at a statement boundary.

func (p *parser) errorAt(tok token.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	io.WriteString(p.errw, "[line "+strconv.Itoa(tok.Line)+"] Error")
	switch tok.Type {
	case token.EOF:
		io.WriteString(p.errw, " at end")
	case token.Error:
		// The lexeme is the scanner's message, not source text.
	default:
		io.WriteString(p.errw, " at '"+tok.Lexeme+"'")
	}
	io.WriteString(p.errw, ": "+message+"\n")
	p.hadError = true
}

func (p *parser) error(message string) {
	p.errorAt(p.previous, message)
}

func (p *parser) errorAtCurrent(message string) {
	p.errorAt(p.current, message)
}

func (p *parser) synchronize() {
	p.panicMode = false
	for p.current.Type != token.EOF {
		if p.previous.Type == token.Semicolon {
			return
		}
		switch p.current.Type {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

// Bytecode emission.

func (p *parser) currentChunk() *runtime.Chunk {
	return &p.compiler.function.Chunk
}

func (p *parser) emitOp(op runtime.OpCode) {
	p.currentChunk().WriteOp(op, p.previous.Line)
	p.compiler.lastOp = op
}

func (p *parser) emitByte(b byte) {
	p.currentChunk().Write(b, p.previous.Line)
}

func (p *parser) emitOps(op1, op2 runtime.OpCode) {
	p.emitOp(op1)
	p.emitOp(op2)
}

func (p *parser) emitOpByte(op runtime.OpCode, b byte) {
	p.emitOp(op)
	p.emitByte(b)
}

// emitJump writes op with a two-byte placeholder operand and returns
// the placeholder's offset for patchJump.
func (p *parser) emitJump(op runtime.OpCode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.currentChunk().Code) - 2
}

// patchJump back-fills the placeholder at offset with the distance from
// just past the operand to the current end of code.
func (p *parser) patchJump(offset int) {
	jump := len(p.currentChunk().Code) - offset - 2
	if jump > math.MaxUint16 {
		p.error("Too much code to jump over.")
	}
	p.currentChunk().Code[offset] = byte(jump >> 8)
	p.currentChunk().Code[offset+1] = byte(jump)
	// Code now falls through to here from the jump, so a preceding
	// return no longer ends every path.
	p.compiler.lastOp = runtime.OpCode(0xff)
}

// emitLoop writes a backward jump to loopStart.
func (p *parser) emitLoop(loopStart int) {
	p.emitOp(runtime.OpLoop)
	offset := len(p.currentChunk().Code) - loopStart + 2
	if offset > math.MaxUint16 {
		p.error("Loop body too large.")
	}
	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset))
}

func (p *parser) emitReturn() {
	p.emitOps(runtime.OpNil, runtime.OpReturn)
}

// makeConstant adds v to the constant pool, failing the compile if the
// index no longer fits the one-byte operand.
func (p *parser) makeConstant(v runtime.Value) byte {
	constant := p.currentChunk().AddConstant(v)
	if constant > math.MaxUint8 {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(constant)
}

func (p *parser) emitConstant(v runtime.Value) {
	p.emitOpByte(runtime.OpConstant, p.makeConstant(v))
}

// Compiler state.

// initCompiler pushes a fresh funcCompiler. Slot 0 is reserved with a
// blank name; at runtime it holds the closure being executed.
func (p *parser) initCompiler(ftype FunctionType) {
	fc := &funcCompiler{
		enclosing: p.compiler,
		function:  p.heap.NewFunction(),
		ftype:     ftype,
		lastOp:    runtime.OpCode(0xff),
	}
	p.compiler = fc
	if ftype != TypeScript {
		fc.function.Name = p.heap.Intern(p.previous.Lexeme)
	}

	fc.locals[0] = local{depth: 0}
	fc.localCount = 1
}

// endCompiler finishes the current function, appending the implicit
// `nil` return unless the body already ended with one, and pops back to
// the enclosing compiler.
func (p *parser) endCompiler() *runtime.Function {
	if p.compiler.lastOp != runtime.OpReturn {
		p.emitReturn()
	}
	function := p.compiler.function

	if debugPrintCode && !p.hadError {
		name := "<script>"
		if function.Name != nil {
			name = function.Name.Str
		}
		function.Chunk.Disassemble(os.Stderr, name)
	}

	p.compiler = p.compiler.enclosing
	return function
}

func (p *parser) beginScope() {
	p.compiler.scopeDepth++
}

// endScope pops the block's locals. A local captured by some inner
// function gets OP_CLOSE_UPVALUE instead of OP_POP so the upvalue is
// closed over its final value.
func (p *parser) endScope() {
	fc := p.compiler
	fc.scopeDepth--
	for fc.localCount > 0 && fc.locals[fc.localCount-1].depth > fc.scopeDepth {
		if fc.locals[fc.localCount-1].isCaptured {
			p.emitOp(runtime.OpCloseUpvalue)
		} else {
			p.emitOp(runtime.OpPop)
		}
		fc.localCount--
	}
}

// Variables.

func (p *parser) identifierConstant(name token.Token) byte {
	return p.makeConstant(runtime.ObjVal(p.heap.Intern(name.Lexeme)))
}

// resolveLocal returns the stack slot of name in fc, or -1 if name is
// not a local there.
func (p *parser) resolveLocal(fc *funcCompiler, name token.Token) int {
	for i := fc.localCount - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if l.name.Lexeme == name.Lexeme {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// addUpvalue records that the current function captures either a local
// slot or an upvalue of its enclosing function, de-duplicating repeat
// captures of the same thing.
func (p *parser) addUpvalue(fc *funcCompiler, index uint8, isLocal bool) int {
	upvalueCount := fc.function.UpvalueCount
	for i := 0; i < upvalueCount; i++ {
		uv := &fc.upvalues[i]
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if upvalueCount == maxUpvalues {
		p.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues[upvalueCount] = upvalue{index: index, isLocal: isLocal}
	fc.function.UpvalueCount++
	return upvalueCount
}

// resolveUpvalue finds name in some enclosing function and returns the
// upvalue index in fc that reaches it, or -1. A hit on the immediately
// enclosing function's locals marks that local captured; anything
// further out resolves recursively, building the chain of upvalue
// descriptors level by level.
func (p *parser) resolveUpvalue(fc *funcCompiler, name token.Token) int {
	if fc.enclosing == nil {
		return -1
	}
	if l := p.resolveLocal(fc.enclosing, name); l != -1 {
		fc.enclosing.locals[l].isCaptured = true
		return p.addUpvalue(fc, uint8(l), true)
	}
	if uv := p.resolveUpvalue(fc.enclosing, name); uv != -1 {
		return p.addUpvalue(fc, uint8(uv), false)
	}
	return -1
}

func (p *parser) addLocal(name token.Token) {
	fc := p.compiler
	if fc.localCount == maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	fc.locals[fc.localCount] = local{name: name, depth: -1}
	fc.localCount++
}

// declareVariable reserves a slot for a new local. Globals are late
// bound and skip this entirely. Redeclaring a name within the same
// block is an error; shadowing an outer block's name is not.
func (p *parser) declareVariable() {
	fc := p.compiler
	if fc.scopeDepth == 0 {
		return
	}
	name := p.previous
	for i := fc.localCount - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if l.depth != -1 && l.depth < fc.scopeDepth {
			break
		}
		if l.name.Lexeme == name.Lexeme {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

// parseVariable consumes a variable name. At scope depth 0 it returns
// the name's constant index for the global-table opcodes; deeper it
// declares a local and the index is unused.
func (p *parser) parseVariable(message string) byte {
	p.consume(token.Identifier, message)
	p.declareVariable()
	if p.compiler.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *parser) markInitialized() {
	fc := p.compiler
	if fc.scopeDepth == 0 {
		return
	}
	fc.locals[fc.localCount-1].depth = fc.scopeDepth
}

func (p *parser) defineVariable(global byte) {
	if p.compiler.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOpByte(runtime.OpDefineGlobal, global)
}

// namedVariable compiles a read of name, or a write when an `=` follows
// and this expression is allowed to be an assignment target.
func (p *parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp runtime.OpCode
	arg := p.resolveLocal(p.compiler, name)
	switch {
	case arg != -1:
		getOp, setOp = runtime.OpGetLocal, runtime.OpSetLocal
	default:
		if uv := p.resolveUpvalue(p.compiler, name); uv != -1 {
			arg = uv
			getOp, setOp = runtime.OpGetUpvalue, runtime.OpSetUpvalue
		} else {
			arg = int(p.identifierConstant(name))
			getOp, setOp = runtime.OpGetGlobal, runtime.OpSetGlobal
		}
	}
	if canAssign && p.match(token.Equal) {
		p.expression()
		p.emitOpByte(setOp, byte(arg))
	} else {
		p.emitOpByte(getOp, byte(arg))
	}
}

// Expression parsing.

// parsePrecedence parses everything at the given precedence or tighter:
// one prefix expression, then any run of infix operators that bind at
// least that strongly. canAssign is true only at assignment level; it
// keeps `a + b = c` from silently parsing `b = c`, so the leftover `=`
// is reported as an invalid target instead.
func (p *parser) parsePrecedence(prec precedence) {
	p.advance()
	prefix := rules[p.previous.Type].prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefix(p, canAssign)

	for prec <= rules[p.current.Type].prec {
		p.advance()
		rules[p.previous.Type].infix(p, canAssign)
	}

	if canAssign && p.match(token.Equal) {
		p.error("Invalid assignment target.")
	}
}

func (p *parser) expression() {
	p.parsePrecedence(precAssignment)
}

func (p *parser) grouping(canAssign bool) {
	p.expression()
	p.consume(token.RightParen, "Expect ')' after expression.")
}

func (p *parser) number(canAssign bool) {
	n, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.emitConstant(runtime.Number(n))
}

func (p *parser) stringLiteral(canAssign bool) {
	lexeme := p.previous.Lexeme
	s := p.heap.Intern(lexeme[1 : len(lexeme)-1])
	p.emitConstant(runtime.ObjVal(s))
}

func (p *parser) variable(canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *parser) literal(canAssign bool) {
	switch p.previous.Type {
	case token.False:
		p.emitOp(runtime.OpFalse)
	case token.Nil:
		p.emitOp(runtime.OpNil)
	case token.True:
		p.emitOp(runtime.OpTrue)
	}
}

func (p *parser) unary(canAssign bool) {
	op := p.previous.Type
	p.parsePrecedence(precUnary)
	switch op {
	case token.Bang:
		p.emitOp(runtime.OpNot)
	case token.Minus:
		p.emitOp(runtime.OpNegate)
	}
}

func (p *parser) binary(canAssign bool) {
	op := p.previous.Type
	p.parsePrecedence(rules[op].prec + 1)
	switch op {
	case token.BangEqual:
		p.emitOps(runtime.OpEqual, runtime.OpNot)
	case token.EqualEqual:
		p.emitOp(runtime.OpEqual)
	case token.Greater:
		p.emitOp(runtime.OpGreater)
	case token.GreaterEqual:
		p.emitOps(runtime.OpLess, runtime.OpNot)
	case token.Less:
		p.emitOp(runtime.OpLess)
	case token.LessEqual:
		p.emitOps(runtime.OpGreater, runtime.OpNot)
	case token.Plus:
		p.emitOp(runtime.OpAdd)
	case token.Minus:
		p.emitOp(runtime.OpSubtract)
	case token.Star:
		p.emitOp(runtime.OpMultiply)
	case token.Slash:
		p.emitOp(runtime.OpDivide)
	}
}

// and short-circuits: with a falsey left operand, jump over the right
// one and leave the left on the stack as the result.
func (p *parser) and(canAssign bool) {
	endJump := p.emitJump(runtime.OpJumpIfFalse)
	p.emitOp(runtime.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

// or short-circuits the other way around.
func (p *parser) or(canAssign bool) {
	elseJump := p.emitJump(runtime.OpJumpIfFalse)
	endJump := p.emitJump(runtime.OpJump)
	p.patchJump(elseJump)
	p.emitOp(runtime.OpPop)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func (p *parser) call(canAssign bool) {
	argCount := p.argumentList()
	p.emitOpByte(runtime.OpCall, argCount)
}

func (p *parser) dot(canAssign bool) {
	p.consume(token.Identifier, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous)
	if canAssign && p.match(token.Equal) {
		p.expression()
		p.emitOpByte(runtime.OpSetProperty, name)
	} else {
		p.emitOpByte(runtime.OpGetProperty, name)
	}
}

func (p *parser) argumentList() byte {
	argCount := 0
	if !p.check(token.RightParen) {
		for {
			p.expression()
			if argCount == 255 {
				p.error("Can't have more than 255 arguments.")
			}
			argCount++
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(argCount)
}

// Declarations and statements.

func (p *parser) declaration() {
	switch {
	case p.match(token.Class):
		p.classDeclaration()
	case p.match(token.Fun):
		p.funDeclaration()
	case p.match(token.Var):
		p.varDeclaration()
	default:
		p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(token.Print):
		p.printStatement()
	case p.match(token.If):
		p.ifStatement()
	case p.match(token.Return):
		p.returnStatement()
	case p.match(token.While):
		p.whileStatement()
	case p.match(token.For):
		p.forStatement()
	case p.match(token.LeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) block() {
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
}

// function compiles a function body into its own funcCompiler and emits
// OP_CLOSURE in the enclosing chunk, trailed by one (isLocal, index)
// byte pair per upvalue for the VM to consume.
func (p *parser) function(ftype FunctionType) {
	p.initCompiler(ftype)
	p.beginScope()

	p.consume(token.LeftParen, "Expect '(' after function name.")
	if !p.check(token.RightParen) {
		for {
			p.compiler.function.Arity++
			if p.compiler.function.Arity > 255 {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")
	p.consume(token.LeftBrace, "Expect '{' before function body.")
	p.block()

	upvalues := p.compiler.upvalues
	function := p.endCompiler()
	p.emitOpByte(runtime.OpClosure, p.makeConstant(runtime.ObjVal(function)))
	for i := 0; i < function.UpvalueCount; i++ {
		if upvalues[i].isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(upvalues[i].index)
	}
}

func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	// The name is usable inside the body, so recursion works.
	p.markInitialized()
	p.function(TypeFunction)
	p.defineVariable(global)
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")
	if p.match(token.Equal) {
		p.expression()
	} else {
		p.emitOp(runtime.OpNil)
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

// classDeclaration compiles `class Name {}`: a name and per-instance
// field storage, nothing more. The method-related keywords stay
// reserved.
func (p *parser) classDeclaration() {
	p.consume(token.Identifier, "Expect class name.")
	nameConstant := p.identifierConstant(p.previous)
	p.declareVariable()

	p.emitOpByte(runtime.OpClass, nameConstant)
	p.defineVariable(nameConstant)

	p.consume(token.LeftBrace, "Expect '{' before class body.")
	p.consume(token.RightBrace, "Expect '}' after class body.")
}

func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	p.emitOp(runtime.OpPop)
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	p.emitOp(runtime.OpPrint)
}

func (p *parser) returnStatement() {
	if p.compiler.ftype == TypeScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(token.Semicolon) {
		p.emitReturn()
		return
	}
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after return value.")
	p.emitOp(runtime.OpReturn)
}

func (p *parser) ifStatement() {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(runtime.OpJumpIfFalse)
	p.emitOp(runtime.OpPop)
	p.statement()
	elseJump := p.emitJump(runtime.OpJump)

	p.patchJump(thenJump)
	p.emitOp(runtime.OpPop)
	if p.match(token.Else) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := len(p.currentChunk().Code)
	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(runtime.OpJumpIfFalse)
	p.emitOp(runtime.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(runtime.OpPop)
}

// forStatement lowers to `{ init; while (cond) { body; incr; } }`. The
// increment clause textually precedes the body but runs after it, so it
// is emitted first and jumped over on the way in; the body loops back
// to it, and it loops back to the condition.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LeftParen, "Expect '(' after 'for'.")
	switch {
	case p.match(token.Semicolon):
		// No initializer.
	case p.match(token.Var):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.currentChunk().Code)
	exitJump := -1
	if !p.match(token.Semicolon) {
		p.expression()
		p.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = p.emitJump(runtime.OpJumpIfFalse)
		p.emitOp(runtime.OpPop)
	}

	if !p.match(token.RightParen) {
		bodyJump := p.emitJump(runtime.OpJump)
		incrementStart := len(p.currentChunk().Code)
		p.expression()
		p.emitOp(runtime.OpPop)
		p.consume(token.RightParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(runtime.OpPop)
	}
	p.endScope()
}
