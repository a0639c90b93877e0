// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package token defines the lexical tokens of the language and the
// Token value the scanner hands to the compiler.
package token

// Type identifies the kind of a token.
type Type uint8

const (
	// Single-character tokens.
	LeftParen Type = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One- or two-character tokens.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	Error
	EOF

	// NumTypes is the number of distinct token types. The compiler
	// sizes its parse-rule table with it.
	NumTypes = int(EOF) + 1
)

// A Token is a single lexeme with its source position. For Error
// tokens the Lexeme holds the error message instead of source text.
type Token struct {
	Type   Type
	Lexeme string
	Line   int
}
