// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scanner turns source text into a stream of tokens.
//
// The scanner is deliberately dumb: it never allocates per token and
// reports lexical problems by returning an Error token whose lexeme is
// the message. All real error handling lives in the compiler.
package scanner

import "golang.org/x/lox/internal/token"

// A Scanner holds the state for tokenizing a single source string.
type Scanner struct {
	source  string
	start   int // start of the token being scanned
	current int // next byte to consume
	line    int
}

// New returns a Scanner positioned at the start of source.
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// ScanToken returns the next token. Once the end of the source is
// reached it returns EOF tokens forever.
func (s *Scanner) ScanToken() token.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.isAtEnd() {
		return s.makeToken(token.EOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.makeToken(token.LeftParen)
	case ')':
		return s.makeToken(token.RightParen)
	case '{':
		return s.makeToken(token.LeftBrace)
	case '}':
		return s.makeToken(token.RightBrace)
	case ';':
		return s.makeToken(token.Semicolon)
	case ',':
		return s.makeToken(token.Comma)
	case '.':
		return s.makeToken(token.Dot)
	case '-':
		return s.makeToken(token.Minus)
	case '+':
		return s.makeToken(token.Plus)
	case '/':
		return s.makeToken(token.Slash)
	case '*':
		return s.makeToken(token.Star)
	case '!':
		if s.match('=') {
			return s.makeToken(token.BangEqual)
		}
		return s.makeToken(token.Bang)
	case '=':
		if s.match('=') {
			return s.makeToken(token.EqualEqual)
		}
		return s.makeToken(token.Equal)
	case '<':
		if s.match('=') {
			return s.makeToken(token.LessEqual)
		}
		return s.makeToken(token.Less)
	case '>':
		if s.match('=') {
			return s.makeToken(token.GreaterEqual)
		}
		return s.makeToken(token.Greater)
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) makeToken(typ token.Type) token.Token {
	return token.Token{Type: typ, Lexeme: s.source[s.start:s.current], Line: s.line}
}

func (s *Scanner) errorToken(message string) token.Token {
	return token.Token{Type: token.Error, Lexeme: message, Line: s.line}
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.makeToken(s.identifierType())
}

// identifierType resolves keywords with a hand-rolled trie keyed on the
// first byte, the same shape the scanner has always had.
func (s *Scanner) identifierType() token.Type {
	switch s.source[s.start] {
	case 'a':
		return s.checkKeyword(1, "nd", token.And)
	case 'c':
		return s.checkKeyword(1, "lass", token.Class)
	case 'e':
		return s.checkKeyword(1, "lse", token.Else)
	case 'f':
		if s.current-s.start > 1 {
			switch s.source[s.start+1] {
			case 'a':
				return s.checkKeyword(2, "lse", token.False)
			case 'o':
				return s.checkKeyword(2, "r", token.For)
			case 'u':
				return s.checkKeyword(2, "n", token.Fun)
			}
		}
	case 'i':
		return s.checkKeyword(1, "f", token.If)
	case 'n':
		return s.checkKeyword(1, "il", token.Nil)
	case 'o':
		return s.checkKeyword(1, "r", token.Or)
	case 'p':
		return s.checkKeyword(1, "rint", token.Print)
	case 'r':
		return s.checkKeyword(1, "eturn", token.Return)
	case 's':
		return s.checkKeyword(1, "uper", token.Super)
	case 't':
		if s.current-s.start > 1 {
			switch s.source[s.start+1] {
			case 'h':
				return s.checkKeyword(2, "is", token.This)
			case 'r':
				return s.checkKeyword(2, "ue", token.True)
			}
		}
	case 'v':
		return s.checkKeyword(1, "ar", token.Var)
	case 'w':
		return s.checkKeyword(1, "hile", token.While)
	}
	return token.Identifier
}

func (s *Scanner) checkKeyword(start int, rest string, typ token.Type) token.Type {
	lexeme := s.source[s.start:s.current]
	if len(lexeme) == start+len(rest) && lexeme[start:] == rest {
		return typ
	}
	return token.Identifier
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	return s.makeToken(token.String)
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.makeToken(token.Number)
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
